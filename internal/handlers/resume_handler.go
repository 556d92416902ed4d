package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/ats-engine/internal/middleware"
	"resumatch/ats-engine/internal/models"
	"resumatch/ats-engine/internal/repositories"
	"resumatch/ats-engine/internal/services"
)

type ResumeHandler struct {
	ingestionRepo repositories.IngestionRepository
	storageSvc    services.StorageService
	ingestor      services.Ingestor
	maxFileSize   int64
}

func NewResumeHandler(
	ingestionRepo repositories.IngestionRepository,
	storageSvc services.StorageService,
	ingestor services.Ingestor,
	maxFileSize int64,
) *ResumeHandler {
	return &ResumeHandler{
		ingestionRepo: ingestionRepo,
		storageSvc:    storageSvc,
		ingestor:      ingestor,
		maxFileSize:   maxFileSize,
	}
}

// HandleIngestResume handles POST /resume: save the upload, track an
// ingestion, run the pipeline synchronously, return the structured resume.
func (h *ResumeHandler) HandleIngestResume(c *fiber.Ctx) error {
	file, err := c.FormFile("resume_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No resume_file provided",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storageSvc.SaveFile(file, "resume")
	if err != nil {
		return c.Status(pipelineStatus(err)).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume file: %v", err),
		})
	}

	ingestion := &models.Ingestion{
		ID:       uuid.New(),
		OwnerID:  middleware.CallerID(c),
		Role:     models.RoleResume,
		FilePath: filePath,
		Status:   models.IngestionQueued,
	}

	if err := h.ingestionRepo.Create(ingestion); err != nil {
		h.storageSvc.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create ingestion record",
		})
	}

	record, err := h.ingestor.Run(c.Context(), ingestion.ID)
	if err != nil {
		return c.Status(pipelineStatus(err)).JSON(fiber.Map{
			"error":        err.Error(),
			"ingestion_id": ingestion.ID.String(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.ResumeIngestResponse{
		Message:          "Resume uploaded and processed successfully",
		IngestionID:      ingestion.ID.String(),
		StructuredResume: record,
	})
}
