package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"resumatch/ats-engine/internal/services"
)

// pipelineStatus maps pipeline failure classes onto HTTP statuses: caller
// mistakes are 4xx, upstream model/index trouble is 502, anything else 500.
func pipelineStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrExtractionFailed),
		errors.Is(err, services.ErrStructuredExtractionFailed),
		errors.Is(err, services.ErrDimensionMismatch):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrEmbeddingFailed),
		errors.Is(err, services.ErrIndexUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, services.ErrScoringUnavailable):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
