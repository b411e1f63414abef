package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// FollowerRepository tracks which users follow a board and why.
type FollowerRepository interface {
	Upsert(ctx context.Context, follower *domain.BoardFollower) error
	ListByBoard(ctx context.Context, boardID string) ([]domain.BoardFollower, error)
}

type followerRepository struct {
	pool *pgxpool.Pool
}

// NewFollowerRepository instantiates repository.
func NewFollowerRepository(pool *pgxpool.Pool) FollowerRepository {
	return &followerRepository{pool: pool}
}

// Upsert records the follower, merging role flags so an existing role is
// never lost.
func (r *followerRepository) Upsert(ctx context.Context, follower *domain.BoardFollower) error {
	const query = `
        INSERT INTO board_followers (board_id, user_id, is_creator, is_contributor, is_evaluator)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (board_id, user_id) DO UPDATE SET
            is_creator = board_followers.is_creator OR EXCLUDED.is_creator,
            is_contributor = board_followers.is_contributor OR EXCLUDED.is_contributor,
            is_evaluator = board_followers.is_evaluator OR EXCLUDED.is_evaluator,
            updated_at = NOW()`
	_, err := r.pool.Exec(ctx, query,
		follower.BoardID,
		follower.UserID,
		follower.IsCreator,
		follower.IsContributor,
		follower.IsEvaluator,
	)
	return err
}

func (r *followerRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.BoardFollower, error) {
	const query = `
        SELECT board_id, user_id, is_creator, is_contributor, is_evaluator, updated_at
        FROM board_followers WHERE board_id=$1`
	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BoardFollower
	for rows.Next() {
		var f domain.BoardFollower
		if err := rows.Scan(&f.BoardID, &f.UserID, &f.IsCreator, &f.IsContributor, &f.IsEvaluator, &f.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
