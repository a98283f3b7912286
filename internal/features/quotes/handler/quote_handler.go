package handler

import (
	"errors"
	"net/http"

	"shipping-quoter/internal/core/logger"
	"shipping-quoter/internal/features/quotes/domain"
	"shipping-quoter/internal/features/quotes/service"
	settingsdomain "shipping-quoter/internal/features/settings/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuoteHandler handles HTTP requests for shipping rate quotes.
type QuoteHandler struct {
	service *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(s *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: s,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Fields lists the offending request fields for validation errors.
	Fields []string `json:"fields,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// GetRates godoc
// @Summary Compute ranked shipping quotes
// @Description Computes a price-sorted list of delivery options for the given order items and route. Always returns at least one option for a valid request.
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body service.RateQuoteRequest true "Order items plus origin and destination"
// @Success 200 {object} service.RateQuoteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /shipping/rates [post]
func (h *QuoteHandler) GetRates(c *fiber.Ctx) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	var req service.RateQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID,
		})
	}

	resp, err := h.service.GetQuotes(c.Context(), &req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Message: "missing or invalid fields",
				Fields:  verr.Fields,
				RayID:   rayID,
			})
		}

		logger.Get().Error("Failed to compute shipping quotes",
			zap.String("ray_id", rayID),
			zap.Error(err),
		)

		if errors.Is(err, settingsdomain.ErrNoPackagingTiers) {
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Message: "shipping configuration error: no packaging tiers",
				RayID:   rayID,
			})
		}

		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID,
		})
	}

	return c.JSON(resp)
}
