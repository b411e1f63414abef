package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// PasswordResetRepository persists single-use password reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository instantiates repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	const query = `
        INSERT INTO password_reset_tokens (user_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, reset.UserID, reset.Token, reset.ExpiresAt).
		Scan(&reset.ID, &reset.CreatedAt)
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	const query = `
        SELECT id, user_id, token, expires_at, used_at, created_at
        FROM password_reset_tokens WHERE token=$1`
	var reset domain.PasswordReset
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&reset.ID, &reset.UserID, &reset.Token, &reset.ExpiresAt, &reset.UsedAt, &reset.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `UPDATE password_reset_tokens SET used_at=$1 WHERE id=$2 AND used_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
