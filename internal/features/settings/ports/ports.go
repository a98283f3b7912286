package ports

import (
	"context"

	"shipping-quoter/internal/features/settings/domain"
)

// SettingsService is the primary port for reading and mutating the shipping
// settings singleton.
type SettingsService interface {
	// Snapshot returns the current immutable settings snapshot for quoting.
	// It never fails: absent or unreadable persisted state yields defaults.
	Snapshot(ctx context.Context) *domain.ShippingSettings
	// Get returns the current settings with credentials masked, for admins.
	Get(ctx context.Context) *domain.ShippingSettings
	// Update validates and applies a partial update, persists the result and
	// returns the new masked settings.
	Update(ctx context.Context, update *domain.SettingsUpdate) (*domain.ShippingSettings, error)
}

// SettingsRepository is the secondary port for settings persistence.
type SettingsRepository interface {
	// Load returns the persisted settings, or (nil, nil) when none exist yet.
	Load(ctx context.Context) (*domain.ShippingSettings, error)
	// Save persists the full settings record.
	Save(ctx context.Context, settings *domain.ShippingSettings) error
}
