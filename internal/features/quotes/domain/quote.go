package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultUnitWeightKg is the conservative estimate used for items with a
	// missing or zero unit weight. It is an approximation, not a measurement.
	DefaultUnitWeightKg = 0.2

	// ReferenceWeightKg is the baseline weight carrier base rates are quoted
	// at; heavier orders scale linearly above it, lighter ones pay it flat.
	ReferenceWeightKg = 2.5

	// DomesticTransitDays and InternationalTransitDays are the fixed transit
	// heuristic; they are not carrier-reported data.
	DomesticTransitDays      = 3
	InternationalTransitDays = 7

	// FallbackCarrierName and FallbackServiceLabel identify the synthetic
	// quote produced when every carrier attempt fails.
	FallbackCarrierName  = "standard"
	FallbackServiceLabel = "Standard Shipping"
)

// Address is a shipping origin or destination. All fields are required.
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderItem is a single order line submitted for quoting.
type OrderItem struct {
	// ProductRef identifies the product in the storefront catalog.
	ProductRef string `json:"product_ref"`
	// Quantity is the number of units.
	Quantity int `json:"quantity"`
	// UnitPrice is informational; it does not affect the rate.
	UnitPrice float64 `json:"unit_price"`
	// UnitWeightKg is the per-unit weight. Zero or absent falls back to
	// DefaultUnitWeightKg.
	UnitWeightKg float64 `json:"unit_weight,omitempty"`
}

// OrderMetrics are the aggregates rating works from. Derived per request,
// never persisted.
type OrderMetrics struct {
	TotalWeightKg float64 `json:"total_weight"`
	TotalItems    int     `json:"total_items"`
}

// ShippingQuote is one priced, timed delivery option. Immutable once
// produced; its lifetime is the response that carries it.
type ShippingQuote struct {
	// QuoteID is an advisory reference for the storefront; quotes are
	// recomputed on demand and never persisted.
	QuoteID           string    `json:"quote_id"`
	CarrierName       string    `json:"carrier_name"`
	ServiceLabel      string    `json:"service_label"`
	Rate              float64   `json:"rate"`
	Currency          string    `json:"currency"`
	EstimatedDays     int       `json:"estimated_days"`
	DeliveryDate      time.Time `json:"delivery_date"`
	TrackingSupported bool      `json:"tracking_supported"`
	PackagingTier     string    `json:"packaging_tier"`

	// Priority is the configured carrier priority, carried only to break
	// equal-rate ties deterministically.
	Priority int `json:"-"`
}

// ValidationError reports the request fields that failed validation, before
// any metrics or tier computation happened.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rate request: %s", strings.Join(e.Fields, ", "))
}

// CalculateMetrics reduces order lines into total weight and item count.
// Empty input yields zero metrics; rejecting that is the caller's job.
func CalculateMetrics(items []OrderItem) OrderMetrics {
	var m OrderMetrics
	for _, item := range items {
		weight := item.UnitWeightKg
		if weight <= 0 {
			weight = DefaultUnitWeightKg
		}
		m.TotalItems += item.Quantity
		m.TotalWeightKg += weight * float64(item.Quantity)
	}
	return m
}

// IsDomestic reports whether origin and destination share a country.
func IsDomestic(origin, destination Address) bool {
	return strings.EqualFold(strings.TrimSpace(origin.Country), strings.TrimSpace(destination.Country))
}

// BaseTransitDays returns the fixed transit heuristic for a route.
func BaseTransitDays(domestic bool) int {
	if domestic {
		return DomesticTransitDays
	}
	return InternationalTransitDays
}

// WeightMultiplier scales a reference-weight base rate by order weight.
// Orders at or below the reference weight pay the base rate unscaled.
func WeightMultiplier(totalWeightKg float64) float64 {
	return math.Max(1, totalWeightKg/ReferenceWeightKg)
}

// ApplyMarkup applies a percentage surcharge multiplicatively, once, and
// rounds to cents.
func ApplyMarkup(rate, markupPercentage float64) float64 {
	return RoundRate(rate * (1 + markupPercentage/100))
}

// RoundRate rounds a currency amount to two decimals.
func RoundRate(rate float64) float64 {
	return math.Round(rate*100) / 100
}

// ProjectDeliveryDate converts a transit-day count into a calendar date,
// nudging weekend landings forward: Sunday +1, Saturday +2. Only the landing
// date is adjusted; the days spanned in transit are not weekend-aware. This
// single-pass behavior is a documented approximation and is intentional — a
// +1/+2 shift from Sun/Sat always lands on Monday, so no loop is needed.
func ProjectDeliveryDate(now time.Time, estimatedDays int) time.Time {
	date := now.AddDate(0, 0, estimatedDays)
	switch date.Weekday() {
	case time.Sunday:
		date = date.AddDate(0, 0, 1)
	case time.Saturday:
		date = date.AddDate(0, 0, 2)
	}
	return date
}

// RankQuotes sorts quotes ascending by rate; equal rates fall back to the
// configured carrier priority, ascending, for a deterministic order.
func RankQuotes(quotes []ShippingQuote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		if quotes[i].Rate != quotes[j].Rate {
			return quotes[i].Rate < quotes[j].Rate
		}
		return quotes[i].Priority < quotes[j].Priority
	})
}
