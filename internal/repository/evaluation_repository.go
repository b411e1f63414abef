package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// EvaluationRepository encapsulates vote persistence.
type EvaluationRepository interface {
	Upsert(ctx context.Context, evaluation *domain.Evaluation) error
	Delete(ctx context.Context, boardID, hypothesisID, evidenceID, userID string) error
	ListByBoard(ctx context.Context, boardID string) ([]domain.Evaluation, error)
	ListByUserForEvidence(ctx context.Context, boardID, evidenceID, userID string) ([]domain.Evaluation, error)
	BoardIDsByUser(ctx context.Context, userID string) ([]string, error)
	EvaluatorCounts(ctx context.Context, boardIDs []string) (map[string]int, error)
}

type evaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository instantiates repository.
func NewEvaluationRepository(pool *pgxpool.Pool) EvaluationRepository {
	return &evaluationRepository{pool: pool}
}

func (r *evaluationRepository) Upsert(ctx context.Context, evaluation *domain.Evaluation) error {
	const query = `
        INSERT INTO evaluations (board_id, hypothesis_id, evidence_id, user_id, value)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (board_id, hypothesis_id, evidence_id, user_id)
            DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()
        RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, query,
		evaluation.BoardID,
		evaluation.HypothesisID,
		evaluation.EvidenceID,
		evaluation.UserID,
		evaluation.Value,
	).Scan(&evaluation.ID, &evaluation.UpdatedAt)
}

func (r *evaluationRepository) Delete(ctx context.Context, boardID, hypothesisID, evidenceID, userID string) error {
	const query = `
        DELETE FROM evaluations
        WHERE board_id=$1 AND hypothesis_id=$2 AND evidence_id=$3 AND user_id=$4`
	_, err := r.pool.Exec(ctx, query, boardID, hypothesisID, evidenceID, userID)
	return err
}

const evaluationColumns = `id, board_id, hypothesis_id, evidence_id, user_id, value, updated_at`

func (r *evaluationRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE board_id=$1`
	return r.queryEvaluations(ctx, query, boardID)
}

func (r *evaluationRepository) ListByUserForEvidence(ctx context.Context, boardID, evidenceID, userID string) ([]domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE board_id=$1 AND evidence_id=$2 AND user_id=$3`
	return r.queryEvaluations(ctx, query, boardID, evidenceID, userID)
}

func (r *evaluationRepository) queryEvaluations(ctx context.Context, query string, args ...any) ([]domain.Evaluation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Evaluation
	for rows.Next() {
		var e domain.Evaluation
		if err := rows.Scan(&e.ID, &e.BoardID, &e.HypothesisID, &e.EvidenceID, &e.UserID, &e.Value, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// BoardIDsByUser returns the distinct boards the user has voted on, most
// recently voted first.
func (r *evaluationRepository) BoardIDsByUser(ctx context.Context, userID string) ([]string, error) {
	const query = `
        SELECT board_id FROM evaluations
        WHERE user_id=$1
        GROUP BY board_id
        ORDER BY MAX(updated_at) DESC`
	return collectStrings(r.pool, ctx, query, userID)
}

func (r *evaluationRepository) EvaluatorCounts(ctx context.Context, boardIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(boardIDs))
	if len(boardIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT board_id, COUNT(DISTINCT user_id)
        FROM evaluations WHERE board_id = ANY($1)
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
