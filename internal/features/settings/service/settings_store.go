package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"shipping-quoter/internal/core/logger"
	"shipping-quoter/internal/features/settings/domain"
	"shipping-quoter/internal/features/settings/ports"

	"go.uber.org/zap"
)

// SettingsStore owns the shipping settings singleton. Reads are lock-free
// loads of an atomically swapped snapshot, so a concurrent update can never
// expose a torn record. Updates are serialized by a single-writer mutex and
// applied last-write-wins at the field-group level.
type SettingsStore struct {
	repo   ports.SettingsRepository
	logger *zap.Logger

	// mu serializes updates and the one-time lazy load.
	mu      sync.Mutex
	current atomic.Pointer[domain.ShippingSettings]
}

// NewSettingsStore creates a SettingsStore backed by the given repository.
func NewSettingsStore(repo ports.SettingsRepository) *SettingsStore {
	return &SettingsStore{
		repo:   repo,
		logger: logger.Get(),
	}
}

// Snapshot returns the current settings snapshot, lazily seeding defaults on
// first access. The returned value is shared and must be treated as
// read-only; Update swaps in a fresh record instead of mutating it.
func (s *SettingsStore) Snapshot(ctx context.Context) *domain.ShippingSettings {
	if snap := s.current.Load(); snap != nil {
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// loadLocked performs the lazy first load. Callers must hold mu.
func (s *SettingsStore) loadLocked(ctx context.Context) *domain.ShippingSettings {
	if snap := s.current.Load(); snap != nil {
		return snap
	}

	snap, err := s.repo.Load(ctx)
	if err != nil {
		// Reads never fail; quoting continues on defaults until the
		// repository recovers.
		s.logger.Warn("Failed to load persisted shipping settings, using defaults", zap.Error(err))
		snap = nil
	}

	if snap == nil {
		snap = domain.DefaultSettings()
		if err := s.repo.Save(ctx, snap); err != nil {
			s.logger.Warn("Failed to persist default shipping settings", zap.Error(err))
		}
	}

	s.current.Store(snap)
	return snap
}

// Get returns the current settings with credentials masked.
func (s *SettingsStore) Get(ctx context.Context) *domain.ShippingSettings {
	return s.Snapshot(ctx).Masked()
}

// Update validates the partial update, merges it into a fresh settings value,
// persists it and swaps it in. Readers keep their old snapshot until the swap
// completes.
func (s *SettingsStore) Update(ctx context.Context, update *domain.SettingsUpdate) (*domain.ShippingSettings, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.loadLocked(ctx)
	next := base.ApplyUpdate(update)

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to persist shipping settings: %w", err)
	}

	s.current.Store(next)

	s.logger.Info("Shipping settings updated",
		zap.Int("packaging_tiers", len(next.PackagingTiers)),
		zap.Int("carriers", len(next.Carriers)),
	)

	return next.Masked(), nil
}
