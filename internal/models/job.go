package models

import (
	"encoding/json"
	"time"
)

// Job is a posting owned by a job-role user. JDData holds the structured
// job description extracted from the uploaded JD file.
type Job struct {
	ID          uint            `gorm:"primary_key;auto_increment" json:"id"`
	PosterID    uint            `gorm:"index;not null" json:"poster_id"`
	Title       string          `gorm:"type:text" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	JDData      json.RawMessage `gorm:"type:jsonb" json:"jd_data,omitempty"`
	CreatedAt   time.Time       `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}
