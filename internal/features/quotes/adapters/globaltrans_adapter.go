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
	"shipping-quoter/internal/features/quotes/domain"
	"shipping-quoter/internal/features/quotes/ports"
)

// GlobalTransAdapter prices shipments through the GlobalTrans rating API.
type GlobalTransAdapter struct {
	client  *http.Client
	baseURL string
}

// NewGlobalTransAdapter creates a new instance of GlobalTransAdapter.
func NewGlobalTransAdapter(baseURL string) *GlobalTransAdapter {
	return &GlobalTransAdapter{
		client:  httpclient.NewClient(10 * time.Second),
		baseURL: baseURL,
	}
}

// CarrierKey returns the settings key this adapter serves.
func (a *GlobalTransAdapter) CarrierKey() string {
	return "globaltrans"
}

// globaltransQuoteResponse is the upstream response payload.
type globaltransQuoteResponse struct {
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	ServiceName string  `json:"service_name"`
	Trackable   bool    `json:"trackable"`
}

// GetRate requests a reference-weight quote from GlobalTrans.
func (a *GlobalTransAdapter) GetRate(ctx context.Context, req ports.RateRequest) (*ports.RateEstimate, error) {
	apiKey := req.Credentials["api_key"]
	if apiKey == "" {
		return nil, fmt.Errorf("globaltrans api key not configured")
	}

	q := url.Values{}
	q.Set("origin", req.Origin.Country)
	q.Set("origin_zip", req.Origin.PostalCode)
	q.Set("destination", req.Destination.Country)
	q.Set("destination_zip", req.Destination.PostalCode)
	q.Set("weight", strconv.FormatFloat(domain.ReferenceWeightKg, 'f', -1, 64))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/v1/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("globaltrans API returned status: %d", resp.StatusCode)
	}

	var quote globaltransQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if quote.Price <= 0 {
		return nil, fmt.Errorf("globaltrans returned non-positive price: %f", quote.Price)
	}

	return &ports.RateEstimate{
		BaseRate:          quote.Price,
		Currency:          quote.Currency,
		ServiceLabel:      quote.ServiceName,
		TrackingSupported: quote.Trackable,
	}, nil
}

// TestConnection verifies the API key against the ping endpoint.
func (a *GlobalTransAdapter) TestConnection(ctx context.Context, credentials map[string]string) error {
	apiKey := credentials["api_key"]
	if apiKey == "" {
		return fmt.Errorf("globaltrans api key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/v1/ping", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connection test failed with status: %d", resp.StatusCode)
	}

	return nil
}
