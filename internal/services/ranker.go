package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"resumatch/ats-engine/internal/models"
	"resumatch/ats-engine/internal/repositories"
)

// RankingService orders all candidates by similarity to one job. Candidates
// without a stored vector are excluded, not scored as zero: data absence and
// low similarity are different facts. A scoring failure aborts the whole
// ranking so a partial result can never masquerade as a complete one.
type RankingService interface {
	RankCandidates(ctx context.Context, jobID uint) ([]models.SimilarityResult, error)
	Release()
}

type rankerService struct {
	profileRepo repositories.ProfileRepository
	index       VectorIndex
	scorer      SimilarityScorer
	pool        *ants.Pool
	logger      *zap.Logger
}

func NewRanker(
	profileRepo repositories.ProfileRepository,
	index VectorIndex,
	scorer SimilarityScorer,
	concurrency int,
	logger *zap.Logger,
) (RankingService, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring pool: %w", err)
	}

	return &rankerService{
		profileRepo: profileRepo,
		index:       index,
		scorer:      scorer,
		pool:        pool,
		logger:      logger,
	}, nil
}

// RankCandidates implements RankingService.
func (r *rankerService) RankCandidates(ctx context.Context, jobID uint) ([]models.SimilarityResult, error) {
	jobEntry, err := r.index.Fetch(ctx, VectorDocID(models.RoleJobDescription, jobID))
	if err != nil {
		if errors.Is(err, ErrNotIndexed) {
			return nil, fmt.Errorf("%w: job %d has no stored representation", ErrScoringUnavailable, jobID)
		}
		return nil, err
	}

	profiles, err := r.profileRepo.FindAll()
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make([]models.SimilarityResult, 0, len(profiles))
		firstErr error
	)

	for _, profile := range profiles {
		candidateID := profile.UserID

		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()

			entry, err := r.index.Fetch(ctx, VectorDocID(models.RoleResume, candidateID))
			if errors.Is(err, ErrNotIndexed) {
				r.logger.Debug("candidate has no stored representation, excluded",
					zap.Uint("candidate_id", candidateID))
				return
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			score, err := r.scorer.Score(entry.Vector, jobEntry.Vector)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			results = append(results, models.SimilarityResult{
				CandidateID: candidateID,
				Score:       score,
			})
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to submit scoring task: %w", submitErr)
			}
			mu.Unlock()
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	// Descending by score; equal scores break by ascending candidate id so
	// repeated rankings over the same data come out identical.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	return results, nil
}

// Release implements RankingService.
func (r *rankerService) Release() {
	r.pool.Release()
}
