package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resumatch/ats-engine/internal/models"
)

func seedVector(t *testing.T, index *fakeIndex, role models.DocumentRole, ownerID uint, vector []float32) {
	t.Helper()
	require.NoError(t, index.Upsert(context.Background(), VectorDocID(role, ownerID), vector, nil))
}

func newTestRanker(t *testing.T, index VectorIndex, profiles *fakeProfileRepo) RankingService {
	t.Helper()
	ranker, err := NewRanker(profiles, index, NewCosineScorer(), 4, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(ranker.Release)
	return ranker
}

func TestRankCandidatesExcludesUnindexed(t *testing.T) {
	index := newFakeIndex()
	seedVector(t, index, models.RoleJobDescription, 1, []float32{1, 0})
	// Candidate 10 never uploaded a resume; 20 and 30 did.
	seedVector(t, index, models.RoleResume, 20, []float32{0.8, 0.6})
	seedVector(t, index, models.RoleResume, 30, []float32{0.5, 0.8660254})
	profiles := newFakeProfileRepo(10, 20, 30)

	ranker := newTestRanker(t, index, profiles)
	results, err := ranker.RankCandidates(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, uint(20), results[0].CandidateID)
	assert.InDelta(t, 0.8, results[0].Score, 1e-6)
	assert.Equal(t, uint(30), results[1].CandidateID)
	assert.InDelta(t, 0.5, results[1].Score, 1e-6)
}

func TestRankCandidatesOrdering(t *testing.T) {
	index := newFakeIndex()
	seedVector(t, index, models.RoleJobDescription, 7, []float32{1, 0, 0})
	seedVector(t, index, models.RoleResume, 1, []float32{0, 1, 0})
	seedVector(t, index, models.RoleResume, 2, []float32{1, 0, 0})
	seedVector(t, index, models.RoleResume, 3, []float32{1, 1, 0})
	profiles := newFakeProfileRepo(1, 2, 3)

	ranker := newTestRanker(t, index, profiles)
	results, err := ranker.RankCandidates(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	assert.Equal(t, uint(2), results[0].CandidateID)
}

func TestRankCandidatesDeterministic(t *testing.T) {
	index := newFakeIndex()
	seedVector(t, index, models.RoleJobDescription, 2, []float32{1, 1})
	// Candidates 5 and 9 have identical vectors; ascending id breaks the tie.
	seedVector(t, index, models.RoleResume, 9, []float32{1, 1})
	seedVector(t, index, models.RoleResume, 5, []float32{1, 1})
	seedVector(t, index, models.RoleResume, 4, []float32{1, 0})
	profiles := newFakeProfileRepo(4, 5, 9)

	ranker := newTestRanker(t, index, profiles)

	first, err := ranker.RankCandidates(context.Background(), 2)
	require.NoError(t, err)
	second, err := ranker.RankCandidates(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, uint(5), first[0].CandidateID)
	assert.Equal(t, uint(9), first[1].CandidateID)
	assert.Equal(t, uint(4), first[2].CandidateID)
}

func TestRankCandidatesJobNotIndexed(t *testing.T) {
	index := newFakeIndex()
	seedVector(t, index, models.RoleResume, 1, []float32{1, 0})
	profiles := newFakeProfileRepo(1)

	ranker := newTestRanker(t, index, profiles)
	_, err := ranker.RankCandidates(context.Background(), 42)
	require.ErrorIs(t, err, ErrScoringUnavailable)
	assert.Contains(t, err.Error(), "job 42")
}

func TestRankCandidatesScoringFailureAborts(t *testing.T) {
	index := newFakeIndex()
	seedVector(t, index, models.RoleJobDescription, 1, []float32{1, 0})
	// Dimension mismatch against the job vector makes scoring fail.
	seedVector(t, index, models.RoleResume, 1, []float32{1, 0, 0})
	seedVector(t, index, models.RoleResume, 2, []float32{0, 1})
	profiles := newFakeProfileRepo(1, 2)

	ranker := newTestRanker(t, index, profiles)
	results, err := ranker.RankCandidates(context.Background(), 1)
	require.ErrorIs(t, err, ErrScoringUnavailable)
	assert.Nil(t, results)
}

func TestRankCandidatesEmptyPool(t *testing.T) {
	index := newFakeIndex()
	seedVector(t, index, models.RoleJobDescription, 1, []float32{1, 0})

	ranker := newTestRanker(t, index, newFakeProfileRepo())
	results, err := ranker.RankCandidates(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRankCandidatesIndexFailurePropagates(t *testing.T) {
	index := newFakeIndex()
	index.err = errors.New("index offline")

	ranker := newTestRanker(t, index, newFakeProfileRepo(1))
	_, err := ranker.RankCandidates(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index offline")
}
