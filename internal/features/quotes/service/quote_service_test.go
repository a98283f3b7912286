package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shipping-quoter/internal/features/quotes/domain"
	"shipping-quoter/internal/features/quotes/ports"
	settingsdomain "shipping-quoter/internal/features/settings/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSettings is a SettingsService serving a fixed snapshot.
type stubSettings struct {
	snapshot *settingsdomain.ShippingSettings
}

func (s *stubSettings) Snapshot(ctx context.Context) *settingsdomain.ShippingSettings {
	return s.snapshot
}

func (s *stubSettings) Get(ctx context.Context) *settingsdomain.ShippingSettings {
	return s.snapshot.Masked()
}

func (s *stubSettings) Update(ctx context.Context, update *settingsdomain.SettingsUpdate) (*settingsdomain.ShippingSettings, error) {
	return nil, errors.New("not implemented")
}

// stubProvider is a CarrierProvider returning a canned estimate or error.
type stubProvider struct {
	key      string
	estimate *ports.RateEstimate
	err      error
	delay    time.Duration
	testErr  error
}

func (p *stubProvider) CarrierKey() string { return p.key }

func (p *stubProvider) GetRate(ctx context.Context, req ports.RateRequest) (*ports.RateEstimate, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.estimate, nil
}

func (p *stubProvider) TestConnection(ctx context.Context, credentials map[string]string) error {
	return p.testErr
}

// panickingProvider fails the way a browser-automation adapter can: by
// panicking instead of returning an error.
type panickingProvider struct {
	key string
}

func (p *panickingProvider) CarrierKey() string { return p.key }

func (p *panickingProvider) GetRate(ctx context.Context, req ports.RateRequest) (*ports.RateEstimate, error) {
	panic("rod: page load failed")
}

func (p *panickingProvider) TestConnection(ctx context.Context, credentials map[string]string) error {
	panic("rod: page load failed")
}

func testSettings(carriers ...settingsdomain.CarrierConfig) *settingsdomain.ShippingSettings {
	s := settingsdomain.DefaultSettings()
	s.Carriers = carriers
	return s
}

func domesticRequest() *RateQuoteRequest {
	return &RateQuoteRequest{
		OrderItems: []domain.OrderItem{
			{ProductRef: "sku-1", Quantity: 3},
		},
		Origin: domain.Address{
			Address: "1 Warehouse Way", City: "Portland", PostalCode: "97201", Country: "US",
		},
		Destination: domain.Address{
			Address: "9 Elm St", City: "Austin", PostalCode: "73301", Country: "US",
		},
	}
}

// TestGetQuotes_SingleCarrierMarkup verifies markup and delay arithmetic:
// raw $10 at reference weight, 10% markup, 1-day delay, domestic route.
func TestGetQuotes_SingleCarrierMarkup(t *testing.T) {
	settings := testSettings(settingsdomain.CarrierConfig{
		Name: "velocity_express", Enabled: true, MarkupPercentage: 10, DelayDays: 1, Priority: 1,
	})
	provider := &stubProvider{
		key:      "velocity_express",
		estimate: &ports.RateEstimate{BaseRate: 10, Currency: "USD", ServiceLabel: "Ground", TrackingSupported: true},
	}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{provider}, time.Second, 4)

	resp, err := svc.GetQuotes(context.Background(), domesticRequest())

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)

	opt := resp.Options[0]
	assert.Equal(t, "velocity_express", opt.CarrierName)
	assert.Equal(t, 11.00, opt.Rate)
	assert.Equal(t, 4, opt.EstimatedDays)
	assert.True(t, opt.TrackingSupported)
	assert.NotEmpty(t, opt.QuoteID)
	assert.False(t, opt.DeliveryDate.IsZero())
	assert.Equal(t, 3, resp.TotalItems)
	assert.InDelta(t, 0.6, resp.TotalWeightKg, 1e-9)
}

// TestGetQuotes_NoCarriersUsesFallback verifies the synthetic quote: zero
// enabled carriers, domestic base rate 12.99, weight below the reference.
func TestGetQuotes_NoCarriersUsesFallback(t *testing.T) {
	settings := testSettings() // no carriers at all
	svc := NewQuoteService(&stubSettings{snapshot: settings}, nil, time.Second, 4)

	resp, err := svc.GetQuotes(context.Background(), domesticRequest())

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)

	opt := resp.Options[0]
	assert.Equal(t, domain.FallbackCarrierName, opt.CarrierName)
	assert.Equal(t, domain.FallbackServiceLabel, opt.ServiceLabel)
	assert.Equal(t, 12.99, opt.Rate)
	assert.Equal(t, 3, opt.EstimatedDays)
	assert.False(t, opt.TrackingSupported)
}

// TestGetQuotes_FallbackInternational verifies the international fallback path.
func TestGetQuotes_FallbackInternational(t *testing.T) {
	settings := testSettings()
	svc := NewQuoteService(&stubSettings{snapshot: settings}, nil, time.Second, 4)

	req := domesticRequest()
	req.Destination.Country = "DE"

	resp, err := svc.GetQuotes(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, 29.99, resp.Options[0].Rate)
	assert.Equal(t, 7, resp.Options[0].EstimatedDays)
}

// TestGetQuotes_FailingCarrierIsolated verifies one carrier timing out does
// not abort the other or surface an error.
func TestGetQuotes_FailingCarrierIsolated(t *testing.T) {
	settings := testSettings(
		settingsdomain.CarrierConfig{Name: "velocity_express", Enabled: true, Priority: 1},
		settingsdomain.CarrierConfig{Name: "globaltrans", Enabled: true, Priority: 2},
	)
	ok := &stubProvider{
		key:      "velocity_express",
		estimate: &ports.RateEstimate{BaseRate: 18, Currency: "USD", ServiceLabel: "Express"},
	}
	hanging := &stubProvider{
		key:   "globaltrans",
		delay: 5 * time.Second,
	}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{ok, hanging}, 50*time.Millisecond, 4)

	req := domesticRequest()
	req.Destination.Country = "DE"

	resp, err := svc.GetQuotes(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, "velocity_express", resp.Options[0].CarrierName)
}

// TestGetQuotes_PanickingCarrierIsolated verifies a carrier whose adapter
// panics mid-attempt is contained like any other failure: the process
// survives and the remaining carriers still answer.
func TestGetQuotes_PanickingCarrierIsolated(t *testing.T) {
	settings := testSettings(
		settingsdomain.CarrierConfig{Name: "velocity_express", Enabled: true, Priority: 1},
		settingsdomain.CarrierConfig{Name: "mercurio_cargo", Enabled: true, Priority: 2},
	)
	ok := &stubProvider{
		key:      "velocity_express",
		estimate: &ports.RateEstimate{BaseRate: 12, Currency: "USD", ServiceLabel: "Ground"},
	}
	broken := &panickingProvider{key: "mercurio_cargo"}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{ok, broken}, time.Second, 4)

	resp, err := svc.GetQuotes(context.Background(), domesticRequest())

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, "velocity_express", resp.Options[0].CarrierName)
}

// TestGetQuotes_AllCarriersPanicUsesFallback verifies the synthetic quote
// still answers when every adapter panics.
func TestGetQuotes_AllCarriersPanicUsesFallback(t *testing.T) {
	settings := testSettings(
		settingsdomain.CarrierConfig{Name: "mercurio_cargo", Enabled: true, Priority: 1},
	)
	broken := &panickingProvider{key: "mercurio_cargo"}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{broken}, time.Second, 4)

	resp, err := svc.GetQuotes(context.Background(), domesticRequest())

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, domain.FallbackCarrierName, resp.Options[0].CarrierName)
}

// TestGetQuotes_AggregatorFirst verifies the fallback is not used when a
// carrier succeeds.
func TestGetQuotes_AggregatorFirst(t *testing.T) {
	settings := testSettings(settingsdomain.CarrierConfig{Name: "velocity_express", Enabled: true, Priority: 1})
	provider := &stubProvider{
		key:      "velocity_express",
		estimate: &ports.RateEstimate{BaseRate: 10, Currency: "USD"},
	}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{provider}, time.Second, 4)

	resp, err := svc.GetQuotes(context.Background(), domesticRequest())

	require.NoError(t, err)
	for _, opt := range resp.Options {
		assert.NotEqual(t, domain.FallbackCarrierName, opt.CarrierName)
	}
}

// TestGetQuotes_SortedByRate verifies ascending rate ordering across carriers.
func TestGetQuotes_SortedByRate(t *testing.T) {
	settings := testSettings(
		settingsdomain.CarrierConfig{Name: "velocity_express", Enabled: true, Priority: 1},
		settingsdomain.CarrierConfig{Name: "globaltrans", Enabled: true, Priority: 2},
		settingsdomain.CarrierConfig{Name: "mercurio_cargo", Enabled: true, Priority: 3},
	)
	providers := []ports.CarrierProvider{
		&stubProvider{key: "velocity_express", estimate: &ports.RateEstimate{BaseRate: 22, Currency: "USD"}},
		&stubProvider{key: "globaltrans", estimate: &ports.RateEstimate{BaseRate: 9.5, Currency: "USD"}},
		&stubProvider{key: "mercurio_cargo", estimate: &ports.RateEstimate{BaseRate: 14, Currency: "USD"}},
	}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, providers, time.Second, 2)

	resp, err := svc.GetQuotes(context.Background(), domesticRequest())

	require.NoError(t, err)
	require.Len(t, resp.Options, 3)
	for i := 1; i < len(resp.Options); i++ {
		assert.LessOrEqual(t, resp.Options[i-1].Rate, resp.Options[i].Rate)
	}
}

// TestGetQuotes_DisabledCarrierNeverQueried verifies disabled carriers are skipped.
func TestGetQuotes_DisabledCarrierNeverQueried(t *testing.T) {
	settings := testSettings(
		settingsdomain.CarrierConfig{Name: "velocity_express", Enabled: false, Priority: 1},
	)
	provider := &stubProvider{
		key: "velocity_express",
		err: errors.New("must not be called"),
	}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{provider}, time.Second, 4)

	resp, err := svc.GetQuotes(context.Background(), domesticRequest())

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, domain.FallbackCarrierName, resp.Options[0].CarrierName)
}

// TestGetQuotes_EmptyItems verifies validation rejects before any computation.
func TestGetQuotes_EmptyItems(t *testing.T) {
	svc := NewQuoteService(&stubSettings{snapshot: testSettings()}, nil, time.Second, 4)

	req := domesticRequest()
	req.OrderItems = nil

	_, err := svc.GetQuotes(context.Background(), req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "order_items")
}

// TestGetQuotes_ZeroQuantities verifies an order of only zero quantities is rejected.
func TestGetQuotes_ZeroQuantities(t *testing.T) {
	svc := NewQuoteService(&stubSettings{snapshot: testSettings()}, nil, time.Second, 4)

	req := domesticRequest()
	req.OrderItems = []domain.OrderItem{{ProductRef: "sku-1", Quantity: 0}}

	_, err := svc.GetQuotes(context.Background(), req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "order_items.quantity")
}

// TestGetQuotes_NegativeQuantityRejected verifies a negative line cannot hide
// behind positive ones and skew the metrics.
func TestGetQuotes_NegativeQuantityRejected(t *testing.T) {
	svc := NewQuoteService(&stubSettings{snapshot: testSettings()}, nil, time.Second, 4)

	req := domesticRequest()
	req.OrderItems = []domain.OrderItem{
		{ProductRef: "sku-1", Quantity: 3},
		{ProductRef: "sku-2", Quantity: -3},
	}

	_, err := svc.GetQuotes(context.Background(), req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "order_items.quantity")
}

// TestGetQuotes_MissingAddressFields verifies field-level address validation.
func TestGetQuotes_MissingAddressFields(t *testing.T) {
	svc := NewQuoteService(&stubSettings{snapshot: testSettings()}, nil, time.Second, 4)

	req := domesticRequest()
	req.Origin.City = ""
	req.Destination.Country = ""

	_, err := svc.GetQuotes(context.Background(), req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "origin.city")
	assert.Contains(t, verr.Fields, "destination.country")
}

// TestGetQuotes_EmptyTiersIsConfigError verifies the loud configuration
// failure, distinct from the no-carriers fallback.
func TestGetQuotes_EmptyTiersIsConfigError(t *testing.T) {
	settings := testSettings()
	settings.PackagingTiers = nil

	svc := NewQuoteService(&stubSettings{snapshot: settings}, nil, time.Second, 4)

	_, err := svc.GetQuotes(context.Background(), domesticRequest())

	assert.ErrorIs(t, err, settingsdomain.ErrNoPackagingTiers)
}

// TestGetQuotes_WeightScaling verifies heavy orders scale the base rate.
func TestGetQuotes_WeightScaling(t *testing.T) {
	settings := testSettings(settingsdomain.CarrierConfig{Name: "velocity_express", Enabled: true})
	provider := &stubProvider{
		key:      "velocity_express",
		estimate: &ports.RateEstimate{BaseRate: 10, Currency: "USD"},
	}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{provider}, time.Second, 4)

	req := domesticRequest()
	req.OrderItems = []domain.OrderItem{{ProductRef: "sku-heavy", Quantity: 2, UnitWeightKg: 2.5}} // 5 kg = 2x reference

	resp, err := svc.GetQuotes(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, 20.00, resp.Options[0].Rate)
}

// TestGetQuotes_RequestCancelled verifies in-flight attempts stop on cancellation.
func TestGetQuotes_RequestCancelled(t *testing.T) {
	settings := testSettings(settingsdomain.CarrierConfig{Name: "velocity_express", Enabled: true})
	provider := &stubProvider{
		key:   "velocity_express",
		delay: 5 * time.Second,
	}

	svc := NewQuoteService(&stubSettings{snapshot: settings}, []ports.CarrierProvider{provider}, 10*time.Second, 4)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	resp, err := svc.GetQuotes(ctx, domesticRequest())

	// The hung carrier contributes nothing; the fallback still answers.
	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, domain.FallbackCarrierName, resp.Options[0].CarrierName)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// TestTestCarrier_UnknownCarrier verifies the not-supported sentinel.
func TestTestCarrier_UnknownCarrier(t *testing.T) {
	svc := NewQuoteService(&stubSettings{snapshot: testSettings()}, nil, time.Second, 4)

	err := svc.TestCarrier(context.Background(), "nope", nil)

	assert.ErrorIs(t, err, ErrCarrierNotSupported)
}

// TestTestCarrier_Propagates verifies adapter results pass through.
func TestTestCarrier_Propagates(t *testing.T) {
	failing := &stubProvider{key: "velocity_express", testErr: errors.New("bad credentials")}
	svc := NewQuoteService(&stubSettings{snapshot: testSettings()}, []ports.CarrierProvider{failing}, time.Second, 4)

	err := svc.TestCarrier(context.Background(), "velocity_express", map[string]string{"api_key": "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad credentials")

	ok := &stubProvider{key: "globaltrans"}
	svc = NewQuoteService(&stubSettings{snapshot: testSettings()}, []ports.CarrierProvider{ok}, time.Second, 4)
	assert.NoError(t, svc.TestCarrier(context.Background(), "globaltrans", nil))
}
