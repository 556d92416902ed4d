package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentRole selects which structured schema an ingestion extracts.
type DocumentRole string

const (
	RoleResume         DocumentRole = "resume"
	RoleJobDescription DocumentRole = "job_description"
)

type IngestionStatus string

const (
	IngestionQueued     IngestionStatus = "queued"
	IngestionProcessing IngestionStatus = "processing"
	IngestionCompleted  IngestionStatus = "completed"
	IngestionFailed     IngestionStatus = "failed"
)

// Ingestion tracks one document through the pipeline. Failed rows keep the
// persisted upload path so the repair worker can re-run them.
type Ingestion struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID      uint            `gorm:"index;not null" json:"owner_id"`
	Role         DocumentRole    `gorm:"type:text;not null" json:"role"`
	FilePath     string          `gorm:"type:text;not null" json:"file_path"`
	Status       IngestionStatus `gorm:"not null;default:'queued'" json:"status"`
	Attempts     int             `gorm:"not null;default:0" json:"attempts"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Ingestion) TableName() string {
	return "ingestions"
}
