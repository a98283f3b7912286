package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrNoPackagingTiers is returned when tier selection runs against an
	// empty tier list. This is a configuration error, not a quoting miss.
	ErrNoPackagingTiers = errors.New("no packaging tiers configured")
	// ErrInvalidSettings is the base error for rejected settings updates.
	ErrInvalidSettings = errors.New("invalid shipping settings")
)

// MaskedCredential replaces credential values on the admin read path.
const MaskedCredential = "********"

// Dimensions describes a packaging tier's outer box in centimeters.
type Dimensions struct {
	LengthCm float64 `json:"length_cm"`
	WidthCm  float64 `json:"width_cm"`
	HeightCm float64 `json:"height_cm"`
}

// PackagingTier is a named packaging class selected by item count.
type PackagingTier struct {
	// Name uniquely identifies the tier within the settings.
	Name string `json:"name"`
	// MaxItems is the inclusive upper bound of items this tier covers.
	MaxItems int `json:"max_items"`
	// Dimensions is the outer size of the packaging.
	Dimensions Dimensions `json:"dimensions"`
	// WeightEstimateKg is the packed weight estimate for this tier.
	WeightEstimateKg float64 `json:"weight_estimate_kg"`
}

// CarrierConfig is the admin-managed configuration for one carrier.
type CarrierConfig struct {
	// Name is the carrier key matched against registered adapters.
	Name string `json:"name"`
	// Enabled gates whether this carrier is ever queried.
	Enabled bool `json:"enabled"`
	// Credentials are opaque, carrier-specific secrets. May be empty.
	Credentials map[string]string `json:"credentials,omitempty"`
	// MarkupPercentage is the surcharge applied multiplicatively to the
	// carrier's raw rate, in [0,100].
	MarkupPercentage float64 `json:"markup_percentage"`
	// DelayDays is added to the carrier's base transit estimate.
	DelayDays int `json:"delay_days"`
	// Priority orders carriers for display and equal-rate tie-breaks.
	Priority int `json:"priority"`
	// Description is free-form admin text.
	Description string `json:"description,omitempty"`
}

// FallbackRates are the synthetic base rates used when no carrier quote
// succeeds.
type FallbackRates struct {
	Domestic      float64 `json:"domestic"`
	International float64 `json:"international"`
	Express       float64 `json:"express"`
}

// ShippingSettings is the singleton shipping configuration record. Readers
// receive immutable snapshots; mutation happens only through ApplyUpdate,
// which builds a fresh value.
type ShippingSettings struct {
	PackagingTiers []PackagingTier `json:"packaging_tiers"`
	Carriers       []CarrierConfig `json:"carriers"`
	Fallback       FallbackRates   `json:"fallback_rates"`

	// DefaultMarkupPercentage seeds carriers added without an explicit markup.
	DefaultMarkupPercentage float64 `json:"default_markup_percentage"`
	// DefaultDelayDays seeds carriers added without an explicit delay.
	DefaultDelayDays int `json:"default_delay_days"`

	Currency   string `json:"currency"`
	WeightUnit string `json:"weight_unit"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings record created lazily on first access.
func DefaultSettings() *ShippingSettings {
	return &ShippingSettings{
		PackagingTiers: []PackagingTier{
			{Name: "Envelope", MaxItems: 2, Dimensions: Dimensions{LengthCm: 30, WidthCm: 25, HeightCm: 2}, WeightEstimateKg: 0.3},
			{Name: "Small Box", MaxItems: 5, Dimensions: Dimensions{LengthCm: 30, WidthCm: 25, HeightCm: 15}, WeightEstimateKg: 1.0},
			{Name: "Medium Box", MaxItems: 12, Dimensions: Dimensions{LengthCm: 45, WidthCm: 35, HeightCm: 25}, WeightEstimateKg: 2.5},
			{Name: "Large Box", MaxItems: 30, Dimensions: Dimensions{LengthCm: 60, WidthCm: 45, HeightCm: 40}, WeightEstimateKg: 5.0},
		},
		Carriers: []CarrierConfig{
			{Name: "velocity_express", Enabled: true, MarkupPercentage: 10, DelayDays: 0, Priority: 1, Description: "Velocity Express rating API"},
			{Name: "globaltrans", Enabled: true, MarkupPercentage: 12, DelayDays: 1, Priority: 2, Description: "GlobalTrans rating API"},
			{Name: "mercurio_cargo", Enabled: false, MarkupPercentage: 8, DelayDays: 2, Priority: 3, Description: "Mercurio Cargo public rate calculator"},
		},
		Fallback: FallbackRates{
			Domestic:      12.99,
			International: 29.99,
			Express:       24.99,
		},
		DefaultMarkupPercentage: 10,
		DefaultDelayDays:        0,
		Currency:                "USD",
		WeightUnit:              "kg",
		UpdatedAt:               time.Now().UTC(),
	}
}

// SelectTier returns the first tier whose MaxItems covers totalItems, or the
// last (largest) tier when the count exceeds every threshold. An empty tier
// list fails loudly: downstream weight and dimension assumptions depend on a
// tier always existing.
func (s *ShippingSettings) SelectTier(totalItems int) (PackagingTier, error) {
	if len(s.PackagingTiers) == 0 {
		return PackagingTier{}, ErrNoPackagingTiers
	}

	for _, tier := range s.PackagingTiers {
		if tier.MaxItems >= totalItems {
			return tier, nil
		}
	}

	return s.PackagingTiers[len(s.PackagingTiers)-1], nil
}

// EnabledCarriers returns the enabled carriers sorted by ascending priority.
func (s *ShippingSettings) EnabledCarriers() []CarrierConfig {
	enabled := make([]CarrierConfig, 0, len(s.Carriers))
	for _, c := range s.Carriers {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	return enabled
}

// Clone returns a deep copy, so a swapped-in snapshot never shares slices or
// credential maps with its predecessor.
func (s *ShippingSettings) Clone() *ShippingSettings {
	out := *s

	out.PackagingTiers = make([]PackagingTier, len(s.PackagingTiers))
	copy(out.PackagingTiers, s.PackagingTiers)

	out.Carriers = make([]CarrierConfig, len(s.Carriers))
	for i, c := range s.Carriers {
		cc := c
		if c.Credentials != nil {
			cc.Credentials = make(map[string]string, len(c.Credentials))
			for k, v := range c.Credentials {
				cc.Credentials[k] = v
			}
		}
		out.Carriers[i] = cc
	}

	return &out
}

// Masked returns a copy with every credential value replaced, for the admin
// read path.
func (s *ShippingSettings) Masked() *ShippingSettings {
	out := s.Clone()
	for i := range out.Carriers {
		for k := range out.Carriers[i].Credentials {
			out.Carriers[i].Credentials[k] = MaskedCredential
		}
	}
	return out
}

// SettingsUpdate is a partial update. Nil groups are left untouched; present
// groups replace the existing group wholesale (last-write-wins).
type SettingsUpdate struct {
	PackagingTiers []PackagingTier       `json:"packaging_tiers,omitempty"`
	Carriers       []CarrierConfigUpdate `json:"carriers,omitempty"`
	Fallback       *FallbackRates        `json:"fallback_rates,omitempty"`

	DefaultMarkupPercentage *float64 `json:"default_markup_percentage,omitempty"`
	DefaultDelayDays        *int     `json:"default_delay_days,omitempty"`
	Currency                *string  `json:"currency,omitempty"`
	WeightUnit              *string  `json:"weight_unit,omitempty"`
}

// CarrierConfigUpdate mirrors CarrierConfig with optional markup/delay so an
// omitted field inherits the settings-level default rather than zero.
type CarrierConfigUpdate struct {
	Name             string            `json:"name"`
	Enabled          bool              `json:"enabled"`
	Credentials      map[string]string `json:"credentials,omitempty"`
	MarkupPercentage *float64          `json:"markup_percentage,omitempty"`
	DelayDays        *int              `json:"delay_days,omitempty"`
	Priority         int               `json:"priority"`
	Description      string            `json:"description,omitempty"`
}

// Validate rejects updates that would corrupt the settings record.
func (u *SettingsUpdate) Validate() error {
	// An explicit empty list would wipe the tiers and break quoting; only a
	// nil (omitted) group leaves them untouched.
	if u.PackagingTiers != nil && len(u.PackagingTiers) == 0 {
		return fmt.Errorf("%w: packaging_tiers must not be empty", ErrInvalidSettings)
	}

	for _, tier := range u.PackagingTiers {
		if tier.Name == "" {
			return fmt.Errorf("%w: packaging tier name is required", ErrInvalidSettings)
		}
		if tier.MaxItems <= 0 {
			return fmt.Errorf("%w: tier %q max_items must be positive", ErrInvalidSettings, tier.Name)
		}
		if tier.WeightEstimateKg <= 0 {
			return fmt.Errorf("%w: tier %q weight_estimate_kg must be positive", ErrInvalidSettings, tier.Name)
		}
		if tier.Dimensions.LengthCm <= 0 || tier.Dimensions.WidthCm <= 0 || tier.Dimensions.HeightCm <= 0 {
			return fmt.Errorf("%w: tier %q dimensions must be positive", ErrInvalidSettings, tier.Name)
		}
	}

	for _, c := range u.Carriers {
		if c.Name == "" {
			return fmt.Errorf("%w: carrier name is required", ErrInvalidSettings)
		}
		if c.MarkupPercentage != nil && (*c.MarkupPercentage < 0 || *c.MarkupPercentage > 100) {
			return fmt.Errorf("%w: carrier %q markup_percentage must be in [0,100]", ErrInvalidSettings, c.Name)
		}
		if c.DelayDays != nil && *c.DelayDays < 0 {
			return fmt.Errorf("%w: carrier %q delay_days must not be negative", ErrInvalidSettings, c.Name)
		}
	}

	if u.Fallback != nil {
		if u.Fallback.Domestic <= 0 || u.Fallback.International <= 0 || u.Fallback.Express <= 0 {
			return fmt.Errorf("%w: fallback rates must be positive", ErrInvalidSettings)
		}
	}

	if u.DefaultMarkupPercentage != nil && (*u.DefaultMarkupPercentage < 0 || *u.DefaultMarkupPercentage > 100) {
		return fmt.Errorf("%w: default_markup_percentage must be in [0,100]", ErrInvalidSettings)
	}
	if u.DefaultDelayDays != nil && *u.DefaultDelayDays < 0 {
		return fmt.Errorf("%w: default_delay_days must not be negative", ErrInvalidSettings)
	}

	return nil
}

// ApplyUpdate merges a validated update into a fresh settings value. The
// receiver is never mutated; callers swap the returned record in atomically.
func (s *ShippingSettings) ApplyUpdate(u *SettingsUpdate) *ShippingSettings {
	out := s.Clone()

	if u.DefaultMarkupPercentage != nil {
		out.DefaultMarkupPercentage = *u.DefaultMarkupPercentage
	}
	if u.DefaultDelayDays != nil {
		out.DefaultDelayDays = *u.DefaultDelayDays
	}
	if u.Currency != nil {
		out.Currency = *u.Currency
	}
	if u.WeightUnit != nil {
		out.WeightUnit = *u.WeightUnit
	}

	if u.PackagingTiers != nil {
		tiers := make([]PackagingTier, len(u.PackagingTiers))
		copy(tiers, u.PackagingTiers)
		sort.SliceStable(tiers, func(i, j int) bool {
			return tiers[i].MaxItems < tiers[j].MaxItems
		})
		out.PackagingTiers = tiers
	}

	if u.Carriers != nil {
		carriers := make([]CarrierConfig, 0, len(u.Carriers))
		for _, cu := range u.Carriers {
			c := CarrierConfig{
				Name:             cu.Name,
				Enabled:          cu.Enabled,
				Credentials:      cu.Credentials,
				MarkupPercentage: out.DefaultMarkupPercentage,
				DelayDays:        out.DefaultDelayDays,
				Priority:         cu.Priority,
				Description:      cu.Description,
			}
			if cu.MarkupPercentage != nil {
				c.MarkupPercentage = *cu.MarkupPercentage
			}
			if cu.DelayDays != nil {
				c.DelayDays = *cu.DelayDays
			}
			carriers = append(carriers, c)
		}
		out.Carriers = carriers
	}

	if u.Fallback != nil {
		out.Fallback = *u.Fallback
	}

	out.UpdatedAt = time.Now().UTC()
	return out
}
