package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository answers aggregate questions about board participation.
type StatsRepository interface {
	ContributorCounts(ctx context.Context, boardIDs []string) (map[string]int, error)
	SiteCounts(ctx context.Context) (SiteCounts, error)
}

// SiteCounts summarizes overall activity for the front page.
type SiteCounts struct {
	Boards      int `json:"boards"`
	Users       int `json:"users"`
	Evaluations int `json:"evaluations"`
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

// ContributorCounts counts the distinct users who added live hypotheses or
// evidence per board. Board creators count through the elements they added.
func (r *statsRepository) ContributorCounts(ctx context.Context, boardIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(boardIDs))
	if len(boardIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT board_id, COUNT(DISTINCT creator_id) FROM (
            SELECT board_id, creator_id FROM hypotheses
            WHERE board_id = ANY($1) AND NOT removed AND creator_id IS NOT NULL
            UNION
            SELECT board_id, creator_id FROM evidence
            WHERE board_id = ANY($1) AND NOT removed AND creator_id IS NOT NULL
        ) contributions
        GROUP BY board_id`
	rows, err := r.pool.Query(ctx, query, boardIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var boardID string
		var count int
		if err := rows.Scan(&boardID, &count); err != nil {
			return nil, err
		}
		result[boardID] = count
	}
	return result, rows.Err()
}

func (r *statsRepository) SiteCounts(ctx context.Context) (SiteCounts, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM boards WHERE NOT removed),
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM evaluations)`
	var counts SiteCounts
	if err := r.pool.QueryRow(ctx, query).Scan(&counts.Boards, &counts.Users, &counts.Evaluations); err != nil {
		return SiteCounts{}, err
	}
	return counts, nil
}
