package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"resumatch/ats-engine/internal/models"
)

// StructuredExtractor turns normalized document text into a role-specific
// structured record. The model's output is parsed and checked for the
// required field set before anything is stored; malformed output is rejected,
// never persisted as opaque text.
type StructuredExtractor interface {
	Extract(ctx context.Context, text string, role models.DocumentRole) (json.RawMessage, error)
}

// ResumeRecord is the resume field set. Values stay free-form nested JSON;
// only presence is enforced.
type ResumeRecord struct {
	Summary        json.RawMessage `json:"summary" validate:"required"`
	Experience     json.RawMessage `json:"experience" validate:"required"`
	Skills         json.RawMessage `json:"skills" validate:"required"`
	Education      json.RawMessage `json:"education" validate:"required"`
	Projects       json.RawMessage `json:"projects" validate:"required"`
	Certifications json.RawMessage `json:"certifications" validate:"required"`
}

// JobDescriptionRecord is the job-description field set.
type JobDescriptionRecord struct {
	AboutCompany   json.RawMessage `json:"about_company" validate:"required"`
	RoleOverview   json.RawMessage `json:"role_overview" validate:"required"`
	Qualifications json.RawMessage `json:"qualifications" validate:"required"`
	Location       json.RawMessage `json:"location" validate:"required"`
	JobType        json.RawMessage `json:"job_type" validate:"required"`
	Benefits       json.RawMessage `json:"benefits" validate:"required"`
}

const resumeSystemPrompt = `You are an AI assistant that parses resumes into structured JSON. ` +
	`Required fields: summary, experience, skills, education, projects, certifications. ` +
	`Output valid JSON only, with exactly those top-level keys.`

const jobDescriptionSystemPrompt = `You are an AI assistant that parses job descriptions into structured JSON. ` +
	`Required fields: about_company, role_overview, qualifications, location, job_type, benefits. ` +
	`Output valid JSON only, with exactly those top-level keys.`

type structuredExtractor struct {
	gemini   GeminiService
	validate *validator.Validate
}

func NewStructuredExtractor(gemini GeminiService) StructuredExtractor {
	return &structuredExtractor{
		gemini:   gemini,
		validate: validator.New(),
	}
}

// Extract implements StructuredExtractor.
func (s *structuredExtractor) Extract(ctx context.Context, text string, role models.DocumentRole) (json.RawMessage, error) {
	var systemPrompt string
	switch role {
	case models.RoleResume:
		systemPrompt = resumeSystemPrompt
	case models.RoleJobDescription:
		systemPrompt = jobDescriptionSystemPrompt
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrStructuredExtractionFailed, role)
	}

	userPrompt := fmt.Sprintf("Extract and summarize the following text in JSON format:\n\n%s\n", text)

	response, err := s.gemini.GenerateJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructuredExtractionFailed, err)
	}

	record := json.RawMessage(ExtractJSON(response))
	if err := s.validateRecord(record, role); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructuredExtractionFailed, err)
	}

	return record, nil
}

func (s *structuredExtractor) validateRecord(record json.RawMessage, role models.DocumentRole) error {
	var target interface{}
	switch role {
	case models.RoleResume:
		target = &ResumeRecord{}
	case models.RoleJobDescription:
		target = &JobDescriptionRecord{}
	}

	if err := json.Unmarshal(record, target); err != nil {
		return fmt.Errorf("model output is not valid JSON: %v", err)
	}

	if err := s.validate.Struct(target); err != nil {
		return fmt.Errorf("model output misses required fields: %v", err)
	}

	return nil
}

// ExtractJSON pulls the JSON object or array out of text that may wrap it in
// markdown fences or prose.
func ExtractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
