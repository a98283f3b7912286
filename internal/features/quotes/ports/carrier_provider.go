package ports

import (
	"context"

	"shipping-quoter/internal/features/quotes/domain"
	settingsdomain "shipping-quoter/internal/features/settings/domain"
)

// RateRequest carries everything an adapter needs to price one shipment.
type RateRequest struct {
	Origin      domain.Address
	Destination domain.Address
	// Tier is the packaging tier selected for the order.
	Tier settingsdomain.PackagingTier
	// TotalWeightKg is the aggregate order weight.
	TotalWeightKg float64
	// Credentials are the opaque secrets configured for this carrier.
	Credentials map[string]string
}

// RateEstimate is a carrier's raw answer: a base rate quoted at the
// reference weight, before weight scaling and markup are applied centrally.
type RateEstimate struct {
	BaseRate          float64
	Currency          string
	ServiceLabel      string
	TrackingSupported bool
}

// CarrierProvider is implemented by each carrier integration. Adapters are
// selected by the carrier key configured in the shipping settings, never by
// branching on carrier names in the aggregation path.
type CarrierProvider interface {
	// CarrierKey returns the settings key this adapter serves.
	CarrierKey() string
	// GetRate obtains one rate estimate. Errors remove only this carrier's
	// candidate; they are never surfaced to the storefront caller.
	GetRate(ctx context.Context, req RateRequest) (*RateEstimate, error)
	// TestConnection attempts one live call with the supplied credentials
	// without producing a quote.
	TestConnection(ctx context.Context, credentials map[string]string) error
}
