package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shipping-quoter/internal/core/httpclient"
	"shipping-quoter/internal/core/logger"
	"shipping-quoter/internal/features/quotes/domain"
	"shipping-quoter/internal/features/quotes/ports"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// MercurioAdapter obtains rates from Mercurio Cargo, a carrier without a
// public API. It drives the carrier's web rate calculator in a headless
// browser and intercepts the XHR the page makes to its tariff backend.
type MercurioAdapter struct {
	// baseURL is the public calculator page.
	baseURL string
	logger  *zap.Logger
}

// NewMercurioAdapter creates a new MercurioAdapter for the given calculator URL.
func NewMercurioAdapter(baseURL string) *MercurioAdapter {
	return &MercurioAdapter{
		baseURL: baseURL,
		logger:  logger.Get(),
	}
}

// CarrierKey returns the settings key this adapter serves.
func (a *MercurioAdapter) CarrierKey() string {
	return "mercurio_cargo"
}

// mercurioTariffResponse is the JSON structure the calculator's backend returns.
type mercurioTariffResponse struct {
	Tarifa   float64 `json:"tarifa"`
	Moneda   string  `json:"moneda"`
	Servicio string  `json:"servicio"`
	Rastreo  bool    `json:"rastreo"`
}

// GetRate loads the calculator page for the route and waits for the tariff
// XHR. The rate is requested at the reference weight; the aggregator scales
// it by the actual order weight.
func (a *MercurioAdapter) GetRate(ctx context.Context, req ports.RateRequest) (*ports.RateEstimate, error) {
	q := url.Values{}
	q.Set("origen", req.Origin.Country)
	q.Set("destino", req.Destination.Country)
	q.Set("cp", req.Destination.PostalCode)
	q.Set("peso", strconv.FormatFloat(domain.ReferenceWeightKg, 'f', 1, 64))
	pageURL := a.baseURL + "?" + q.Encode()

	a.logger.Debug("Launching browser for Mercurio tariff lookup",
		zap.String("url", pageURL),
	)

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to open calculator page: %w", err)
	}

	router := page.HijackRequests()
	defer router.Stop()

	// Buffered plus non-blocking send: the handler must never block when the
	// deadline branch already won, or when the page fires the XHR twice.
	done := make(chan []byte, 1)

	err = router.Add("*/api/cotizador/tarifa*", "", func(hctx *rod.Hijack) {
		if err := hctx.LoadResponse(http.DefaultClient, true); err != nil {
			return
		}
		select {
		case done <- []byte(hctx.Response.Body()):
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register tariff interception: %w", err)
	}

	go router.Run()

	select {
	case body := <-done:
		return a.parseTariff(body)

	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for mercurio tariff: %w", ctx.Err())
	}
}

// parseTariff converts the tariff backend response into a rate estimate.
func (a *MercurioAdapter) parseTariff(body []byte) (*ports.RateEstimate, error) {
	var resp mercurioTariffResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse mercurio tariff response: %w", err)
	}

	if resp.Tarifa <= 0 {
		return nil, fmt.Errorf("mercurio returned non-positive tariff: %f", resp.Tarifa)
	}

	label := resp.Servicio
	if label == "" {
		label = "Mercurio Cargo"
	}

	return &ports.RateEstimate{
		BaseRate:          resp.Tarifa,
		Currency:          resp.Moneda,
		ServiceLabel:      label,
		TrackingSupported: resp.Rastreo,
	}, nil
}

// TestConnection checks that the calculator page is reachable. Mercurio has
// no credentials; an empty credential map is valid.
func (a *MercurioAdapter) TestConnection(ctx context.Context, _ map[string]string) error {
	client := httpclient.NewClient(10 * time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connection test failed with status: %d", resp.StatusCode)
	}

	return nil
}
