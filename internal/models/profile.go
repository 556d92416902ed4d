package models

import (
	"encoding/json"
	"time"
)

// CandidateProfile holds the structured resume extracted for one candidate.
// ResumeData is overwritten wholesale on every re-ingestion.
type CandidateProfile struct {
	ID         uint            `gorm:"primary_key;auto_increment" json:"id"`
	UserID     uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	ResumeData json.RawMessage `gorm:"type:jsonb" json:"resume_data,omitempty"`
	UpdatedAt  time.Time       `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}
