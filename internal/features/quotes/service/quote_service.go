package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"shipping-quoter/internal/core/logger"
	"shipping-quoter/internal/features/quotes/domain"
	"shipping-quoter/internal/features/quotes/ports"
	settingsdomain "shipping-quoter/internal/features/settings/domain"
	settingsports "shipping-quoter/internal/features/settings/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCarrierNotSupported is returned when no adapter is registered for the
// requested carrier key.
var ErrCarrierNotSupported = errors.New("carrier not supported")

// RateQuoteRequest is the storefront's quoting input.
type RateQuoteRequest struct {
	OrderItems  []domain.OrderItem `json:"order_items"`
	Origin      domain.Address     `json:"origin"`
	Destination domain.Address     `json:"destination"`
}

// RateQuoteResponse is the ranked option list plus the order aggregates it
// was computed from.
type RateQuoteResponse struct {
	Options       []domain.ShippingQuote `json:"options"`
	PackagingTier string                 `json:"packaging_tier"`
	TotalWeightKg float64                `json:"total_weight"`
	TotalItems    int                    `json:"total_items"`
}

// QuoteService computes ranked shipping quotes: metrics, tier selection,
// bounded-parallel carrier aggregation, fallback and assembly.
type QuoteService struct {
	settings  settingsports.SettingsService
	providers map[string]ports.CarrierProvider

	carrierTimeout time.Duration
	maxParallel    int

	logger *zap.Logger
}

// NewQuoteService creates a QuoteService over the given settings store and
// carrier adapters.
func NewQuoteService(settings settingsports.SettingsService, providers []ports.CarrierProvider, carrierTimeout time.Duration, maxParallel int) *QuoteService {
	byKey := make(map[string]ports.CarrierProvider, len(providers))
	for _, p := range providers {
		byKey[p.CarrierKey()] = p
	}

	if maxParallel < 1 {
		maxParallel = 1
	}

	return &QuoteService{
		settings:       settings,
		providers:      byKey,
		carrierTimeout: carrierTimeout,
		maxParallel:    maxParallel,
		logger:         logger.Get(),
	}
}

// GetQuotes produces the ranked delivery options for one order. The caller
// always receives either a non-empty option list or an error; never both.
func (s *QuoteService) GetQuotes(ctx context.Context, req *RateQuoteRequest) (*RateQuoteResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	snap := s.settings.Snapshot(ctx)
	metrics := domain.CalculateMetrics(req.OrderItems)

	tier, err := snap.SelectTier(metrics.TotalItems)
	if err != nil {
		return nil, err
	}

	domestic := domain.IsDomestic(req.Origin, req.Destination)
	options := s.aggregateCarriers(ctx, snap, req, tier, metrics, domestic)

	if len(options) == 0 {
		options = append(options, s.fallbackQuote(snap, tier, metrics, domestic))
	}

	now := time.Now().UTC()
	for i := range options {
		options[i].DeliveryDate = domain.ProjectDeliveryDate(now, options[i].EstimatedDays)
	}

	domain.RankQuotes(options)

	return &RateQuoteResponse{
		Options:       options,
		PackagingTier: tier.Name,
		TotalWeightKg: metrics.TotalWeightKg,
		TotalItems:    metrics.TotalItems,
	}, nil
}

// aggregateCarriers fans out one attempt per enabled carrier, bounded by a
// semaphore, each with its own deadline derived from the request context. A
// failing carrier contributes nothing; the join waits for every attempt
// because ranking needs the full candidate set.
func (s *QuoteService) aggregateCarriers(ctx context.Context, snap *settingsdomain.ShippingSettings, req *RateQuoteRequest, tier settingsdomain.PackagingTier, metrics domain.OrderMetrics, domestic bool) []domain.ShippingQuote {
	carriers := snap.EnabledCarriers()
	if len(carriers) == 0 {
		return nil
	}

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		candidates []domain.ShippingQuote
	)
	sem := make(chan struct{}, s.maxParallel)

	for _, cc := range carriers {
		provider, ok := s.providers[cc.Name]
		if !ok {
			s.logger.Warn("No adapter registered for enabled carrier, skipping",
				zap.String("carrier", cc.Name),
			)
			continue
		}

		wg.Add(1)
		go func(cc settingsdomain.CarrierConfig, provider ports.CarrierProvider) {
			defer wg.Done()
			// A panicking adapter counts as a failed attempt, not a crash.
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Carrier rate attempt panicked",
						zap.String("carrier", cc.Name),
						zap.Any("panic", r),
					)
				}
			}()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			attemptCtx, cancel := context.WithTimeout(ctx, s.carrierTimeout)
			defer cancel()

			estimate, err := provider.GetRate(attemptCtx, ports.RateRequest{
				Origin:        req.Origin,
				Destination:   req.Destination,
				Tier:          tier,
				TotalWeightKg: metrics.TotalWeightKg,
				Credentials:   cc.Credentials,
			})
			if err != nil {
				s.logger.Warn("Carrier rate attempt failed",
					zap.String("carrier", cc.Name),
					zap.Error(err),
				)
				return
			}

			quote := s.assembleQuote(snap, cc, estimate, tier, metrics, domestic)

			mu.Lock()
			candidates = append(candidates, quote)
			mu.Unlock()
		}(cc, provider)
	}

	wg.Wait()
	return candidates
}

// assembleQuote turns a raw carrier estimate into a priced candidate: scale
// by weight, apply the markup multiplicatively exactly once, add the
// carrier's configured delay to the route's base transit days.
func (s *QuoteService) assembleQuote(snap *settingsdomain.ShippingSettings, cc settingsdomain.CarrierConfig, estimate *ports.RateEstimate, tier settingsdomain.PackagingTier, metrics domain.OrderMetrics, domestic bool) domain.ShippingQuote {
	rate := domain.ApplyMarkup(estimate.BaseRate*domain.WeightMultiplier(metrics.TotalWeightKg), cc.MarkupPercentage)

	currency := estimate.Currency
	if currency == "" {
		currency = snap.Currency
	}

	return domain.ShippingQuote{
		QuoteID:           uuid.NewString(),
		CarrierName:       cc.Name,
		ServiceLabel:      estimate.ServiceLabel,
		Rate:              rate,
		Currency:          currency,
		EstimatedDays:     domain.BaseTransitDays(domestic) + cc.DelayDays,
		TrackingSupported: estimate.TrackingSupported,
		PackagingTier:     tier.Name,
		Priority:          cc.Priority,
	}
}

// fallbackQuote builds the synthetic option from configured base rates. It
// is pure configuration and arithmetic, so the storefront never receives an
// empty option list for a valid request.
func (s *QuoteService) fallbackQuote(snap *settingsdomain.ShippingSettings, tier settingsdomain.PackagingTier, metrics domain.OrderMetrics, domestic bool) domain.ShippingQuote {
	base := snap.Fallback.International
	if domestic {
		base = snap.Fallback.Domestic
	}

	s.logger.Info("No carrier candidates, using fallback rate",
		zap.Bool("domestic", domestic),
		zap.Float64("base_rate", base),
	)

	return domain.ShippingQuote{
		QuoteID:           uuid.NewString(),
		CarrierName:       domain.FallbackCarrierName,
		ServiceLabel:      domain.FallbackServiceLabel,
		Rate:              domain.RoundRate(base * domain.WeightMultiplier(metrics.TotalWeightKg)),
		Currency:          snap.Currency,
		EstimatedDays:     domain.BaseTransitDays(domestic),
		TrackingSupported: false,
		PackagingTier:     tier.Name,
	}
}

// TestCarrier performs one live connection test against the named carrier
// with the supplied credentials.
func (s *QuoteService) TestCarrier(ctx context.Context, carrierKey string, credentials map[string]string) error {
	provider, ok := s.providers[carrierKey]
	if !ok {
		return ErrCarrierNotSupported
	}

	attemptCtx, cancel := context.WithTimeout(ctx, s.carrierTimeout)
	defer cancel()

	return provider.TestConnection(attemptCtx, credentials)
}

// validateRequest rejects malformed input before any computation.
func validateRequest(req *RateQuoteRequest) error {
	var fields []string

	if len(req.OrderItems) == 0 {
		fields = append(fields, "order_items")
	} else {
		for _, item := range req.OrderItems {
			if item.Quantity <= 0 {
				fields = append(fields, "order_items.quantity")
				break
			}
		}
	}

	fields = append(fields, missingAddressFields("origin", req.Origin)...)
	fields = append(fields, missingAddressFields("destination", req.Destination)...)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// missingAddressFields reports the empty required fields of one address.
func missingAddressFields(prefix string, addr domain.Address) []string {
	var fields []string
	if addr.Address == "" {
		fields = append(fields, prefix+".address")
	}
	if addr.City == "" {
		fields = append(fields, prefix+".city")
	}
	if addr.PostalCode == "" {
		fields = append(fields, prefix+".postal_code")
	}
	if addr.Country == "" {
		fields = append(fields, prefix+".country")
	}
	return fields
}
