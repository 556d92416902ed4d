package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumatch/ats-engine/internal/models"
)

type IngestionRepository interface {
	Create(ingestion *models.Ingestion) error
	FindByID(id uuid.UUID) (*models.Ingestion, error)
	UpdateStatus(id uuid.UUID, status models.IngestionStatus) error
	MarkFailed(id uuid.UUID, errorMsg string) error
	MarkCompleted(id uuid.UUID) error
	FindRetryable(maxAttempts int, limit int) ([]models.Ingestion, error)
}

type ingestionRepository struct {
	db *gorm.DB
}

func NewIngestionRepository(db *gorm.DB) IngestionRepository {
	return &ingestionRepository{db: db}
}

func (r *ingestionRepository) Create(ingestion *models.Ingestion) error {
	if err := r.db.Create(ingestion).Error; err != nil {
		return fmt.Errorf("failed to create ingestion: %w", err)
	}
	return nil
}

func (r *ingestionRepository) FindByID(id uuid.UUID) (*models.Ingestion, error) {
	var ingestion models.Ingestion
	if err := r.db.Where("id = ?", id).First(&ingestion).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ingestion not found")
		}
		return nil, fmt.Errorf("failed to find ingestion: %w", err)
	}
	return &ingestion, nil
}

func (r *ingestionRepository) UpdateStatus(id uuid.UUID, status models.IngestionStatus) error {
	result := r.db.Model(&models.Ingestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("ingestion not found")
	}

	return nil
}

// MarkFailed records the failure cause and bumps the attempt counter the
// repair worker keys off.
func (r *ingestionRepository) MarkFailed(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Ingestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.IngestionFailed,
			"error_message": errorMsg,
			"attempts":      gorm.Expr("attempts + 1"),
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("ingestion not found")
	}

	return nil
}

func (r *ingestionRepository) MarkCompleted(id uuid.UUID) error {
	result := r.db.Model(&models.Ingestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.IngestionCompleted,
			"error_message": nil,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark completed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("ingestion not found")
	}

	return nil
}

func (r *ingestionRepository) FindRetryable(maxAttempts int, limit int) ([]models.Ingestion, error) {
	var ingestions []models.Ingestion
	err := r.db.
		Where("status = ? AND attempts < ?", models.IngestionFailed, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&ingestions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find retryable ingestions: %w", err)
	}

	return ingestions, nil
}
