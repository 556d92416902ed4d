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

type JobHandler struct {
	jobRepo       repositories.JobRepository
	ingestionRepo repositories.IngestionRepository
	storageSvc    services.StorageService
	ingestor      services.Ingestor
	maxFileSize   int64
}

func NewJobHandler(
	jobRepo repositories.JobRepository,
	ingestionRepo repositories.IngestionRepository,
	storageSvc services.StorageService,
	ingestor services.Ingestor,
	maxFileSize int64,
) *JobHandler {
	return &JobHandler{
		jobRepo:       jobRepo,
		ingestionRepo: ingestionRepo,
		storageSvc:    storageSvc,
		ingestor:      ingestor,
		maxFileSize:   maxFileSize,
	}
}

// HandleCreateJob handles POST /jobs: create the job record, then ingest the
// uploaded JD so the posting carries both its vector and its structured form.
func (h *JobHandler) HandleCreateJob(c *fiber.Ctx) error {
	file, err := c.FormFile("jd_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No jd_file provided",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("JD file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storageSvc.SaveFile(file, "jd")
	if err != nil {
		return c.Status(pipelineStatus(err)).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save JD file: %v", err),
		})
	}

	job := &models.Job{
		PosterID:    middleware.CallerID(c),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	if err := h.jobRepo.Create(job); err != nil {
		h.storageSvc.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job",
		})
	}

	ingestion := &models.Ingestion{
		ID:       uuid.New(),
		OwnerID:  job.ID,
		Role:     models.RoleJobDescription,
		FilePath: filePath,
		Status:   models.IngestionQueued,
	}

	if err := h.ingestionRepo.Create(ingestion); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create ingestion record",
		})
	}

	record, err := h.ingestor.Run(c.Context(), ingestion.ID)
	if err != nil {
		// The job row exists and the failed ingestion is tracked; the repair
		// worker will retry it from the persisted upload.
		return c.Status(pipelineStatus(err)).JSON(fiber.Map{
			"error":        err.Error(),
			"job_id":       job.ID,
			"ingestion_id": ingestion.ID.String(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.JobCreateResponse{
		ID:           job.ID,
		Title:        job.Title,
		Description:  job.Description,
		IngestionID:  ingestion.ID.String(),
		StructuredJD: record,
	})
}

// HandleListJobs handles GET /jobs: the caller's own postings only.
func (h *JobHandler) HandleListJobs(c *fiber.Ctx) error {
	jobs, err := h.jobRepo.FindByPoster(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list jobs",
		})
	}

	return c.JSON(fiber.Map{"jobs": jobs})
}

// HandleGetJob handles GET /jobs/:id.
func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
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

	return c.JSON(job)
}
