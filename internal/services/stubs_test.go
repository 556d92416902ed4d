package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumatch/ats-engine/internal/models"
	"resumatch/ats-engine/internal/repositories"
)

// stubGemini stands in for the model client: canned embedding and JSON
// output, call accounting for the pipeline tests.
type stubGemini struct {
	embedding  []float32
	embedErr   error
	jsonOutput string
	genErr     error

	embedCalls    int
	genCalls      int
	lastEmbedText string
	lastUserText  string
}

func (s *stubGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	s.embedCalls++
	s.lastEmbedText = text
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return s.embedding, nil
}

func (s *stubGemini) GenerateJSON(_ context.Context, _, userPrompt string) (string, error) {
	s.genCalls++
	s.lastUserText = userPrompt
	if s.genErr != nil {
		return "", s.genErr
	}
	return s.jsonOutput, nil
}

// fakeIndex is an in-memory VectorIndex with replace-by-id semantics.
type fakeIndex struct {
	mu      sync.Mutex
	entries map[string]*IndexEntry
	err     error

	upsertCalls int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[string]*IndexEntry)}
}

func (f *fakeIndex) EnsureCollection(context.Context) error {
	return f.err
}

func (f *fakeIndex) Upsert(_ context.Context, docID string, vector []float32, metadata map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upsertCalls++
	f.entries[docID] = &IndexEntry{DocID: docID, Vector: vector, Metadata: metadata}
	return nil
}

func (f *fakeIndex) Fetch(_ context.Context, docID string) (*IndexEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	entry, ok := f.entries[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, docID)
	}
	return entry, nil
}

func (f *fakeIndex) ListIDs(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.entries))
	for id := range f.entries {
		ids = append(ids, id)
	}
	return ids, nil
}

// fakeProfileRepo is an in-memory ProfileRepository.
type fakeProfileRepo struct {
	profiles map[uint]*models.CandidateProfile
}

func newFakeProfileRepo(userIDs ...uint) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[uint]*models.CandidateProfile)}
	for _, id := range userIDs {
		r.profiles[id] = &models.CandidateProfile{UserID: id}
	}
	return r
}

func (r *fakeProfileRepo) UpsertResumeData(userID uint, data json.RawMessage) error {
	r.profiles[userID] = &models.CandidateProfile{UserID: userID, ResumeData: data, UpdatedAt: time.Now()}
	return nil
}

func (r *fakeProfileRepo) FindByUserID(userID uint) (*models.CandidateProfile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("candidate profile not found")
	}
	return profile, nil
}

func (r *fakeProfileRepo) FindAll() ([]models.CandidateProfile, error) {
	out := make([]models.CandidateProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, nil
}

// fakeJobRepo is an in-memory JobRepository.
type fakeJobRepo struct {
	jobs   map[uint]*models.Job
	nextID uint
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uint]*models.Job), nextID: 1}
}

func (r *fakeJobRepo) Create(job *models.Job) error {
	job.ID = r.nextID
	r.nextID++
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) FindByID(id uint) (*models.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found")
	}
	return job, nil
}

func (r *fakeJobRepo) FindByPoster(posterID uint) ([]models.Job, error) {
	var out []models.Job
	for _, j := range r.jobs {
		if j.PosterID == posterID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateJDData(id uint, data json.RawMessage) error {
	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job not found")
	}
	job.JDData = data
	return nil
}

// fakeIngestionRepo is an in-memory IngestionRepository.
type fakeIngestionRepo struct {
	mu         sync.Mutex
	ingestions map[uuid.UUID]*models.Ingestion
}

func newFakeIngestionRepo() *fakeIngestionRepo {
	return &fakeIngestionRepo{ingestions: make(map[uuid.UUID]*models.Ingestion)}
}

func (r *fakeIngestionRepo) Create(ingestion *models.Ingestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingestions[ingestion.ID] = ingestion
	return nil
}

func (r *fakeIngestionRepo) FindByID(id uuid.UUID) (*models.Ingestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ingestion, ok := r.ingestions[id]
	if !ok {
		return nil, fmt.Errorf("ingestion not found")
	}
	copied := *ingestion
	return &copied, nil
}

func (r *fakeIngestionRepo) UpdateStatus(id uuid.UUID, status models.IngestionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ingestion, ok := r.ingestions[id]
	if !ok {
		return fmt.Errorf("ingestion not found")
	}
	ingestion.Status = status
	return nil
}

func (r *fakeIngestionRepo) MarkFailed(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ingestion, ok := r.ingestions[id]
	if !ok {
		return fmt.Errorf("ingestion not found")
	}
	ingestion.Status = models.IngestionFailed
	ingestion.ErrorMessage = &errorMsg
	ingestion.Attempts++
	return nil
}

func (r *fakeIngestionRepo) MarkCompleted(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ingestion, ok := r.ingestions[id]
	if !ok {
		return fmt.Errorf("ingestion not found")
	}
	ingestion.Status = models.IngestionCompleted
	ingestion.ErrorMessage = nil
	return nil
}

func (r *fakeIngestionRepo) FindRetryable(maxAttempts int, limit int) ([]models.Ingestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Ingestion
	for _, ingestion := range r.ingestions {
		if ingestion.Status == models.IngestionFailed && ingestion.Attempts < maxAttempts {
			out = append(out, *ingestion)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

var (
	_ GeminiService                    = (*stubGemini)(nil)
	_ VectorIndex                      = (*fakeIndex)(nil)
	_ repositories.ProfileRepository   = (*fakeProfileRepo)(nil)
	_ repositories.JobRepository       = (*fakeJobRepo)(nil)
	_ repositories.IngestionRepository = (*fakeIngestionRepo)(nil)
)
