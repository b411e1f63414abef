package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
)

func TestSummarizeComputesCountsPerBoard(t *testing.T) {
	stats := &fakeStatsRepo{contributors: map[string]int{"board-1": 3, "board-2": 1}}
	evaluations := &fakeEvaluationRepo{evaluators: map[string]int{"board-1": 2, "board-2": 5}}

	svc := NewBoardService(BoardDependencies{
		StatsRepo:      stats,
		EvaluationRepo: evaluations,
		Site:           config.SiteConfig{CacheTTLSeconds: 60},
	})

	summaries, err := svc.summarize(context.Background(), []domain.Board{
		{ID: "board-1", Title: "First"},
		{ID: "board-2", Title: "Second"},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, 3, summaries[0].ContributorCount)
	assert.Equal(t, 2, summaries[0].EvaluatorCount)
	assert.Equal(t, 1, summaries[1].ContributorCount)
	assert.Equal(t, 5, summaries[1].EvaluatorCount)

	// one tally query per board without a cache in front
	assert.Equal(t, 2, stats.calls)
}

func TestCountsForFallsThroughWithoutCache(t *testing.T) {
	stats := &fakeStatsRepo{contributors: map[string]int{"board-1": 4}}
	evaluations := &fakeEvaluationRepo{evaluators: map[string]int{"board-1": 7}}

	svc := NewBoardService(BoardDependencies{
		StatsRepo:      stats,
		EvaluationRepo: evaluations,
		Site:           config.SiteConfig{CacheTTLSeconds: 60},
	})

	counts, err := svc.countsFor(context.Background(), "board-1")
	require.NoError(t, err)
	assert.Equal(t, boardCounts{Contributors: 4, Evaluators: 7}, counts)
}

func TestBoardCountsKey(t *testing.T) {
	assert.Equal(t, "boards:counts:board-1", boardCountsKey("board-1"))
}
