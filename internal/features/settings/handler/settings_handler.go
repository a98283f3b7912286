package handler

import (
	"context"
	"errors"
	"net/http"

	"shipping-quoter/internal/core/logger"
	quoteservice "shipping-quoter/internal/features/quotes/service"
	"shipping-quoter/internal/features/settings/domain"
	"shipping-quoter/internal/features/settings/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CarrierTester performs a single live connection test against a carrier.
type CarrierTester interface {
	TestCarrier(ctx context.Context, carrierKey string, credentials map[string]string) error
}

// SettingsHandler handles the administrative shipping settings endpoints.
type SettingsHandler struct {
	settings ports.SettingsService
	tester   CarrierTester
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings ports.SettingsService, tester CarrierTester) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		tester:   tester,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// testConnectionRequest is the body of a carrier connection test.
type testConnectionRequest struct {
	Credentials map[string]string `json:"credentials"`
}

// testConnectionResponse reports the outcome of a carrier connection test.
type testConnectionResponse struct {
	OK      bool   `json:"ok"`
	Carrier string `json:"carrier"`
	Error   string `json:"error,omitempty"`
}

// GetSettings godoc
// @Summary Read shipping settings
// @Description Returns packaging tiers, carriers (credentials masked) and fallback rates.
// @Tags settings
// @Produce json
// @Success 200 {object} domain.ShippingSettings
// @Router /admin/shipping/settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(h.settings.Get(c.Context()))
}

// UpdateSettings godoc
// @Summary Apply a partial settings update
// @Description Merges partial tier/carrier/fallback/global-default updates into the settings singleton. Present groups replace the existing group wholesale.
// @Tags settings
// @Accept json
// @Produce json
// @Param update body domain.SettingsUpdate true "Partial settings update"
// @Success 200 {object} domain.ShippingSettings
// @Failure 400 {object} ErrorResponse
// @Router /admin/shipping/settings [put]
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	var update domain.SettingsUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID,
		})
	}

	updated, err := h.settings.Update(c.Context(), &update)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSettings) {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   rayID,
			})
		}

		logger.Get().Error("Failed to update shipping settings",
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID,
		})
	}

	return c.JSON(updated)
}

// TestCarrier godoc
// @Summary Test a carrier connection
// @Description Attempts one live call against the named carrier with the supplied credentials. No quote is produced.
// @Tags settings
// @Accept json
// @Produce json
// @Param name path string true "Carrier key"
// @Param request body testConnectionRequest true "Credentials to test"
// @Success 200 {object} testConnectionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} testConnectionResponse
// @Router /admin/shipping/carriers/{name}/test [post]
func (h *SettingsHandler) TestCarrier(c *fiber.Ctx) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	name := c.Params("name")

	var req testConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID,
		})
	}

	if err := h.tester.TestCarrier(c.Context(), name, req.Credentials); err != nil {
		if errors.Is(err, quoteservice.ErrCarrierNotSupported) {
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Message: "carrier not supported",
				RayID:   rayID,
			})
		}

		logger.Get().Warn("Carrier connection test failed",
			zap.String("carrier", name),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		return c.Status(http.StatusBadGateway).JSON(testConnectionResponse{
			OK:      false,
			Carrier: name,
			Error:   err.Error(),
		})
	}

	return c.JSON(testConnectionResponse{
		OK:      true,
		Carrier: name,
	})
}
