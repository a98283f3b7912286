package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shipping-quoter/internal/core/httpclient"
	"shipping-quoter/internal/features/quotes/domain"
	"shipping-quoter/internal/features/quotes/ports"
)

// VelocityAdapter prices shipments through the Velocity Express rating API.
type VelocityAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the API root, e.g. https://api.velocity-express.com.
	baseURL string
}

// NewVelocityAdapter creates a new instance of VelocityAdapter.
func NewVelocityAdapter(baseURL string) *VelocityAdapter {
	return &VelocityAdapter{
		client:  httpclient.NewClient(10 * time.Second),
		baseURL: baseURL,
	}
}

// CarrierKey returns the settings key this adapter serves.
func (a *VelocityAdapter) CarrierKey() string {
	return "velocity_express"
}

// velocityRateRequest is the upstream request payload.
type velocityRateRequest struct {
	OriginCountry    string  `json:"origin_country"`
	OriginPostalCode string  `json:"origin_postal_code"`
	DestCountry      string  `json:"dest_country"`
	DestPostalCode   string  `json:"dest_postal_code"`
	WeightKg         float64 `json:"weight_kg"`
	PackageLengthCm  float64 `json:"package_length_cm"`
	PackageWidthCm   float64 `json:"package_width_cm"`
	PackageHeightCm  float64 `json:"package_height_cm"`
}

// velocityRateResponse is the upstream response payload.
type velocityRateResponse struct {
	Service  string  `json:"service"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Tracking bool    `json:"tracking_available"`
}

// GetRate requests a reference-weight rate from Velocity Express. The
// aggregator scales the result by the actual order weight, so the upstream
// is always asked for the reference weight.
func (a *VelocityAdapter) GetRate(ctx context.Context, req ports.RateRequest) (*ports.RateEstimate, error) {
	key, secret := req.Credentials["api_key"], req.Credentials["api_secret"]
	if key == "" || secret == "" {
		return nil, fmt.Errorf("velocity credentials not configured")
	}

	payload := velocityRateRequest{
		OriginCountry:    req.Origin.Country,
		OriginPostalCode: req.Origin.PostalCode,
		DestCountry:      req.Destination.Country,
		DestPostalCode:   req.Destination.PostalCode,
		WeightKg:         domain.ReferenceWeightKg,
		PackageLengthCm:  req.Tier.Dimensions.LengthCm,
		PackageWidthCm:   req.Tier.Dimensions.WidthCm,
		PackageHeightCm:  req.Tier.Dimensions.HeightCm,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/rates", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", basicAuth(key, secret))

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("velocity API returned status: %d", resp.StatusCode)
	}

	var rate velocityRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rate); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rate.Amount <= 0 {
		return nil, fmt.Errorf("velocity returned non-positive amount: %f", rate.Amount)
	}

	return &ports.RateEstimate{
		BaseRate:          rate.Amount,
		Currency:          rate.Currency,
		ServiceLabel:      rate.Service,
		TrackingSupported: rate.Tracking,
	}, nil
}

// TestConnection verifies that the API is reachable and the credentials are
// accepted, without producing a quote.
func (a *VelocityAdapter) TestConnection(ctx context.Context, credentials map[string]string) error {
	key, secret := credentials["api_key"], credentials["api_secret"]
	if key == "" || secret == "" {
		return fmt.Errorf("velocity credentials not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v2/account", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", basicAuth(key, secret))

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

// basicAuth builds a Basic authorization header value.
func basicAuth(key, secret string) string {
	authVal := make([]byte, 0, len(key)+len(secret)+1)
	authVal = fmt.Appendf(authVal, "%s:%s", key, secret)
	return "Basic " + base64.StdEncoding.EncodeToString(authVal)
}
