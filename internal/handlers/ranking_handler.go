package handlers

import (
	"github.com/gofiber/fiber/v2"

	"resumatch/ats-engine/internal/middleware"
	"resumatch/ats-engine/internal/models"
	"resumatch/ats-engine/internal/repositories"
	"resumatch/ats-engine/internal/services"
)

type RankingHandler struct {
	jobRepo repositories.JobRepository
	ranker  services.RankingService
}

func NewRankingHandler(jobRepo repositories.JobRepository, ranker services.RankingService) *RankingHandler {
	return &RankingHandler{
		jobRepo: jobRepo,
		ranker:  ranker,
	}
}

// HandleRankCandidates handles GET /jobs/:id/candidates: every candidate with
// a stored representation, ordered by descending similarity to the job.
func (h *RankingHandler) HandleRankCandidates(c *fiber.Ctx) error {
	jobID, err := c.ParamsInt("id")
	if err != nil || jobID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID",
		})
	}

	job, err := h.jobRepo.FindByID(uint(jobID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
		})
	}

	if job.PosterID != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Job not yours",
		})
	}

	results, err := h.ranker.RankCandidates(c.Context(), job.ID)
	if err != nil {
		return c.Status(pipelineStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(models.RankingResponse{
		JobID:   job.ID,
		Results: results,
	})
}
