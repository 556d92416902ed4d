package handlers

import (
	"github.com/gofiber/fiber/v2"

	"resumatch/ats-engine/internal/models"
	"resumatch/ats-engine/internal/services"
)

type IndexHandler struct {
	index services.VectorIndex
}

func NewIndexHandler(index services.VectorIndex) *IndexHandler {
	return &IndexHandler{index: index}
}

// HandleListIDs handles GET /index/ids. Diagnostics: which documents
// currently have a stored vector.
func (h *IndexHandler) HandleListIDs(c *fiber.Ctx) error {
	ids, err := h.index.ListIDs(c.Context())
	if err != nil {
		return c.Status(pipelineStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(models.IndexIDsResponse{
		Count: len(ids),
		IDs:   ids,
	})
}
