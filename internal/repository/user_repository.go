package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// UserRepository encapsulates user and settings persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	DecrementInvites(ctx context.Context, id string) error

	GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error)
	SaveSettings(ctx context.Context, settings *domain.UserSettings) error
	ListByDigestFrequency(ctx context.Context, freq domain.DigestFrequency) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, is_staff, invites_remaining, joined_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, password_hash, is_staff, invites_remaining)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, joined_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsStaff,
		user.InvitesRemaining,
	).Scan(&user.ID, &user.JoinedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, email=$2, password_hash=$3, is_staff=$4,
            invites_remaining=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsStaff,
		user.InvitesRemaining,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsStaff,
		&user.InvitesRemaining,
		&user.JoinedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) DecrementInvites(ctx context.Context, id string) error {
	const query = `
        UPDATE users SET invites_remaining = invites_remaining - 1, updated_at=NOW()
        WHERE id=$1 AND invites_remaining > 0`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	const query = `SELECT user_id, digest_frequency, updated_at FROM user_settings WHERE user_id=$1`
	var settings domain.UserSettings
	err := r.pool.QueryRow(ctx, query, userID).Scan(&settings.UserID, &settings.DigestFrequency, &settings.UpdatedAt)
	if err == pgx.ErrNoRows {
		// settings default to a daily digest until the user opts out
		return &domain.UserSettings{UserID: userID, DigestFrequency: domain.DigestDaily}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *userRepository) SaveSettings(ctx context.Context, settings *domain.UserSettings) error {
	const query = `
        INSERT INTO user_settings (user_id, digest_frequency)
        VALUES ($1,$2)
        ON CONFLICT (user_id) DO UPDATE SET digest_frequency=EXCLUDED.digest_frequency, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, settings.UserID, settings.DigestFrequency)
	return err
}

func (r *userRepository) ListByDigestFrequency(ctx context.Context, freq domain.DigestFrequency) ([]domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users u
        WHERE EXISTS (
            SELECT 1 FROM user_settings s WHERE s.user_id=u.id AND s.digest_frequency=$1
        ) OR ($1 = 1 AND NOT EXISTS (SELECT 1 FROM user_settings s WHERE s.user_id=u.id))`
	rows, err := r.pool.Query(ctx, query, freq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.IsStaff,
			&user.InvitesRemaining,
			&user.JoinedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
