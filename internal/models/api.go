package models

import "encoding/json"

// SimilarityResult is one entry of a ranking: higher score means the
// candidate's resume is more similar to the job description.
type SimilarityResult struct {
	CandidateID uint    `json:"candidate_id"`
	Score       float64 `json:"score"`
}

type ResumeIngestResponse struct {
	Message          string          `json:"message"`
	IngestionID      string          `json:"ingestion_id"`
	StructuredResume json.RawMessage `json:"structured_resume"`
}

type JobCreateResponse struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	IngestionID  string          `json:"ingestion_id"`
	StructuredJD json.RawMessage `json:"structured_jd"`
}

type RankingResponse struct {
	JobID   uint               `json:"job_id"`
	Results []SimilarityResult `json:"results"`
}

type IndexIDsResponse struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}
