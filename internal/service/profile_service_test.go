package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/repository"
)

func TestMergeContributionsOrdersByLatestActivity(t *testing.T) {
	at := func(day int) time.Time {
		return time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
	}

	fromHypotheses := []repository.BoardContribution{
		{BoardID: "board-1", LastAt: at(3)},
		{BoardID: "board-2", LastAt: at(1)},
	}
	fromEvidence := []repository.BoardContribution{
		{BoardID: "board-2", LastAt: at(4)},
		{BoardID: "board-3", LastAt: at(2)},
	}

	// board-2's evidence on day 4 is the newest contribution overall, so it
	// leads despite the older hypothesis entry
	merged := mergeContributions(fromHypotheses, fromEvidence)
	assert.Equal(t, []string{"board-2", "board-1", "board-3"}, merged)
}

func TestMergeContributionsDropsDuplicates(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	merged := mergeContributions(
		[]repository.BoardContribution{{BoardID: "board-1", LastAt: now}},
		[]repository.BoardContribution{{BoardID: "board-1", LastAt: now.Add(-time.Hour)}},
	)
	assert.Equal(t, []string{"board-1"}, merged)
}

func TestOrderBoardsRestoresContributionOrder(t *testing.T) {
	// the repository returns boards in its own order; the profile keeps the
	// caller's newest-first contribution order
	boards := []domain.Board{{ID: "board-3"}, {ID: "board-1"}, {ID: "board-2"}}
	ordered := orderBoards(boards, []string{"board-1", "board-2", "board-3"}, 10)

	ids := make([]string, len(ordered))
	for i, b := range ordered {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"board-1", "board-2", "board-3"}, ids)
}

func TestOrderBoardsCapsAfterUnreadableBoardsDropOut(t *testing.T) {
	// board-2 was filtered out by the readability query, so the cap applies
	// to what the viewer can actually see
	boards := []domain.Board{{ID: "board-1"}, {ID: "board-3"}, {ID: "board-4"}}
	ordered := orderBoards(boards, []string{"board-1", "board-2", "board-3", "board-4"}, 2)

	ids := make([]string, len(ordered))
	for i, b := range ordered {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"board-1", "board-3"}, ids)
}
