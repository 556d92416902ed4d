package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumatch/ats-engine/internal/models"
)

type ProfileRepository interface {
	UpsertResumeData(userID uint, data json.RawMessage) error
	FindByUserID(userID uint) (*models.CandidateProfile, error)
	FindAll() ([]models.CandidateProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// UpsertResumeData implements ProfileRepository. Re-ingestion replaces the
// stored record wholesale; there are no merge semantics.
func (r *profileRepository) UpsertResumeData(userID uint, data json.RawMessage) error {
	profile := models.CandidateProfile{
		UserID:     userID,
		ResumeData: data,
		UpdatedAt:  time.Now(),
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"resume_data", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		return fmt.Errorf("failed to upsert candidate profile: %w", err)
	}

	return nil
}

// FindByUserID implements ProfileRepository.
func (r *profileRepository) FindByUserID(userID uint) (*models.CandidateProfile, error) {
	var profile models.CandidateProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("candidate profile not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find candidate profile: %w", err)
	}

	return &profile, nil
}

// FindAll implements ProfileRepository.
func (r *profileRepository) FindAll() ([]models.CandidateProfile, error) {
	var profiles []models.CandidateProfile
	if err := r.db.Order("user_id ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidate profiles: %w", err)
	}

	return profiles, nil
}
