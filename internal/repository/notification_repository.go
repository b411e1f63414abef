package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// NotificationRepository persists user notifications and digest delivery
// state.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListUnread(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error)
	ListUnreadSince(ctx context.Context, recipientID string, since time.Time) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)

	GetDigestStatus(ctx context.Context, userID string) (*domain.DigestStatus, error)
	SaveDigestStatus(ctx context.Context, status *domain.DigestStatus) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationColumns = `id, recipient_id, actor_id, verb, object_kind, object_id, object_label, target_id, read, created_at`

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_id, actor_id, verb, object_kind, object_id, object_label, target_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.RecipientID,
		notification.ActorID,
		notification.Verb,
		notification.ObjectKind,
		notification.ObjectID,
		notification.ObjectLabel,
		notification.TargetID,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListUnread(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	query := `
        SELECT ` + notificationColumns + ` FROM notifications
        WHERE recipient_id=$1 AND NOT read
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	return r.queryNotifications(ctx, query, recipientID, limit, offset)
}

func (r *notificationRepository) ListUnreadSince(ctx context.Context, recipientID string, since time.Time) ([]domain.Notification, error) {
	query := `
        SELECT ` + notificationColumns + ` FROM notifications
        WHERE recipient_id=$1 AND NOT read AND created_at >= $2
        ORDER BY created_at DESC`
	return r.queryNotifications(ctx, query, recipientID, since)
}

func (r *notificationRepository) queryNotifications(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.ActorID, &n.Verb, &n.ObjectKind,
			&n.ObjectID, &n.ObjectLabel, &n.TargetID, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	const query = `UPDATE notifications SET read=TRUE WHERE recipient_id=$1 AND NOT read`
	cmd, err := r.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *notificationRepository) GetDigestStatus(ctx context.Context, userID string) (*domain.DigestStatus, error) {
	const query = `SELECT user_id, last_success, last_attempt FROM digest_status WHERE user_id=$1`
	var status domain.DigestStatus
	err := r.pool.QueryRow(ctx, query, userID).Scan(&status.UserID, &status.LastSuccess, &status.LastAttempt)
	if err == pgx.ErrNoRows {
		return &domain.DigestStatus{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *notificationRepository) SaveDigestStatus(ctx context.Context, status *domain.DigestStatus) error {
	const query = `
        INSERT INTO digest_status (user_id, last_success, last_attempt)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO UPDATE SET
            last_success=EXCLUDED.last_success,
            last_attempt=EXCLUDED.last_attempt`
	_, err := r.pool.Exec(ctx, query, status.UserID, status.LastSuccess, status.LastAttempt)
	return err
}
