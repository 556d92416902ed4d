package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/ats-engine/internal/models"
	"resumatch/ats-engine/internal/repositories"
)

// Ingestor runs the document pipeline for one tracked ingestion:
// extract text, embed, upsert into the vector index, extract the structured
// record, persist it on the owning profile or job. Any stage failure aborts
// the remaining stages and marks the ingestion failed; the repair worker
// re-runs failed rows, which reconverges the index and the structured record.
type Ingestor interface {
	Run(ctx context.Context, ingestionID uuid.UUID) (json.RawMessage, error)
}

type ingestorService struct {
	ingestionRepo repositories.IngestionRepository
	profileRepo   repositories.ProfileRepository
	jobRepo       repositories.JobRepository
	extractor     TextExtractor
	gemini        GeminiService
	structured    StructuredExtractor
	index         VectorIndex
	logger        *zap.Logger
}

func NewIngestor(
	ingestionRepo repositories.IngestionRepository,
	profileRepo repositories.ProfileRepository,
	jobRepo repositories.JobRepository,
	extractor TextExtractor,
	gemini GeminiService,
	structured StructuredExtractor,
	index VectorIndex,
	logger *zap.Logger,
) Ingestor {
	return &ingestorService{
		ingestionRepo: ingestionRepo,
		profileRepo:   profileRepo,
		jobRepo:       jobRepo,
		extractor:     extractor,
		gemini:        gemini,
		structured:    structured,
		index:         index,
		logger:        logger,
	}
}

// Run implements Ingestor.
func (s *ingestorService) Run(ctx context.Context, ingestionID uuid.UUID) (json.RawMessage, error) {
	ingestion, err := s.ingestionRepo.FindByID(ingestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingestion: %w", err)
	}

	if err := s.ingestionRepo.UpdateStatus(ingestionID, models.IngestionProcessing); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	log := s.logger.With(
		zap.String("ingestion_id", ingestionID.String()),
		zap.String("role", string(ingestion.Role)),
		zap.Uint("owner_id", ingestion.OwnerID),
	)
	log.Info("ingestion started")

	text, err := s.extractor.Extract(ingestion.FilePath)
	if err != nil {
		return nil, s.fail(ingestionID, log, err)
	}

	embedding, err := s.gemini.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, s.fail(ingestionID, log, err)
	}

	docID := VectorDocID(ingestion.Role, ingestion.OwnerID)
	metadata := map[string]string{
		"role":     string(ingestion.Role),
		"owner_id": strconv.FormatUint(uint64(ingestion.OwnerID), 10),
	}
	if err := s.index.Upsert(ctx, docID, embedding, metadata); err != nil {
		return nil, s.fail(ingestionID, log, err)
	}

	record, err := s.structured.Extract(ctx, text, ingestion.Role)
	if err != nil {
		return nil, s.fail(ingestionID, log, err)
	}

	if err := s.persistRecord(ingestion, record); err != nil {
		return nil, s.fail(ingestionID, log, err)
	}

	if err := s.ingestionRepo.MarkCompleted(ingestionID); err != nil {
		return nil, fmt.Errorf("failed to mark completed: %w", err)
	}

	log.Info("ingestion completed", zap.String("doc_id", docID))
	return record, nil
}

func (s *ingestorService) persistRecord(ingestion *models.Ingestion, record json.RawMessage) error {
	switch ingestion.Role {
	case models.RoleResume:
		return s.profileRepo.UpsertResumeData(ingestion.OwnerID, record)
	case models.RoleJobDescription:
		return s.jobRepo.UpdateJDData(ingestion.OwnerID, record)
	default:
		return fmt.Errorf("unknown ingestion role %q", ingestion.Role)
	}
}

func (s *ingestorService) fail(ingestionID uuid.UUID, log *zap.Logger, cause error) error {
	log.Warn("ingestion failed", zap.Error(cause))
	if err := s.ingestionRepo.MarkFailed(ingestionID, cause.Error()); err != nil {
		log.Error("failed to record ingestion failure", zap.Error(err))
	}
	return cause
}
