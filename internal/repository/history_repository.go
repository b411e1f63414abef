package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// HistoryRepository stores the immutable edit audit trail for boards.
type HistoryRepository interface {
	Record(ctx context.Context, change *domain.FieldChange) error
	ListByBoard(ctx context.Context, boardID string, limit int) ([]domain.FieldChange, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository instantiates repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Record(ctx context.Context, change *domain.FieldChange) error {
	const query = `
        INSERT INTO field_changes (board_id, entity_kind, entity_id, field, old_value, new_value, changed_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		change.BoardID,
		change.EntityKind,
		change.EntityID,
		change.Field,
		change.OldValue,
		change.NewValue,
		change.ChangedByID,
	).Scan(&change.ID, &change.CreatedAt)
}

func (r *historyRepository) ListByBoard(ctx context.Context, boardID string, limit int) ([]domain.FieldChange, error) {
	const query = `
        SELECT id, board_id, entity_kind, entity_id, field, old_value, new_value, changed_by, created_at
        FROM field_changes WHERE board_id=$1
        ORDER BY created_at DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, boardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FieldChange
	for rows.Next() {
		var change domain.FieldChange
		if err := rows.Scan(
			&change.ID, &change.BoardID, &change.EntityKind, &change.EntityID,
			&change.Field, &change.OldValue, &change.NewValue, &change.ChangedByID, &change.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}
