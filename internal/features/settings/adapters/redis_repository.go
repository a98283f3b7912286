package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shipping-quoter/internal/core/cache"
	"shipping-quoter/internal/features/settings/domain"
)

const settingsCacheKey = "shipping_settings"

// RedisSettingsRepository persists the settings singleton as one JSON value.
type RedisSettingsRepository struct {
	cache cache.Cache
}

// NewRedisSettingsRepository creates a new RedisSettingsRepository.
func NewRedisSettingsRepository(c cache.Cache) *RedisSettingsRepository {
	return &RedisSettingsRepository{
		cache: c,
	}
}

// Load retrieves the persisted settings, or (nil, nil) when none exist yet.
func (r *RedisSettingsRepository) Load(ctx context.Context) (*domain.ShippingSettings, error) {
	data, err := r.cache.Get(ctx, settingsCacheKey)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load shipping settings: %w", err)
	}

	var settings domain.ShippingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping settings: %w", err)
	}

	return &settings, nil
}

// Save persists the full settings record. Settings never expire.
func (r *RedisSettingsRepository) Save(ctx context.Context, settings *domain.ShippingSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping settings: %w", err)
	}

	if err := r.cache.Set(ctx, settingsCacheKey, data, 0); err != nil {
		return fmt.Errorf("failed to save shipping settings: %w", err)
	}

	return nil
}
