package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// HypothesisRepository encapsulates hypothesis persistence.
type HypothesisRepository interface {
	Create(ctx context.Context, hypothesis *domain.Hypothesis) error
	Update(ctx context.Context, hypothesis *domain.Hypothesis) error
	GetByID(ctx context.Context, id string) (*domain.Hypothesis, error)
	ListByBoard(ctx context.Context, boardID string, includeRemoved bool) ([]domain.Hypothesis, error)
	ContributionsByCreator(ctx context.Context, creatorID string) ([]BoardContribution, error)
}

type hypothesisRepository struct {
	pool *pgxpool.Pool
}

// NewHypothesisRepository instantiates repository.
func NewHypothesisRepository(pool *pgxpool.Pool) HypothesisRepository {
	return &hypothesisRepository{pool: pool}
}

const hypothesisColumns = `id, board_id, hypothesis_text, creator_id, removed, created_at, updated_at`

func (r *hypothesisRepository) Create(ctx context.Context, hypothesis *domain.Hypothesis) error {
	const query = `
        INSERT INTO hypotheses (board_id, hypothesis_text, creator_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		hypothesis.BoardID,
		hypothesis.Text,
		hypothesis.CreatorID,
	).Scan(&hypothesis.ID, &hypothesis.CreatedAt, &hypothesis.UpdatedAt)
}

func (r *hypothesisRepository) Update(ctx context.Context, hypothesis *domain.Hypothesis) error {
	const query = `
        UPDATE hypotheses SET hypothesis_text=$1, removed=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, hypothesis.Text, hypothesis.Removed, hypothesis.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *hypothesisRepository) GetByID(ctx context.Context, id string) (*domain.Hypothesis, error) {
	query := `SELECT ` + hypothesisColumns + ` FROM hypotheses WHERE id=$1`
	var h domain.Hypothesis
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&h.ID, &h.BoardID, &h.Text, &h.CreatorID, &h.Removed, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hypothesisRepository) ListByBoard(ctx context.Context, boardID string, includeRemoved bool) ([]domain.Hypothesis, error) {
	query := `SELECT ` + hypothesisColumns + ` FROM hypotheses WHERE board_id=$1`
	if !includeRemoved {
		query += ` AND NOT removed`
	}
	query += ` ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Hypothesis
	for rows.Next() {
		var h domain.Hypothesis
		if err := rows.Scan(&h.ID, &h.BoardID, &h.Text, &h.CreatorID, &h.Removed, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// ContributionsByCreator returns the distinct boards the user has added
// hypotheses to with the latest contribution time, newest first.
func (r *hypothesisRepository) ContributionsByCreator(ctx context.Context, creatorID string) ([]BoardContribution, error) {
	const query = `
        SELECT board_id, MAX(created_at) FROM hypotheses
        WHERE creator_id=$1 AND NOT removed
        GROUP BY board_id
        ORDER BY MAX(created_at) DESC`
	return collectContributions(r.pool, ctx, query, creatorID)
}
