package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// InvitationRepository persists email invitations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *domain.Invitation) error
	ListByInviter(ctx context.Context, inviterID string) ([]domain.Invitation, error)
}

type invitationRepository struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository instantiates repository.
func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &invitationRepository{pool: pool}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	const query = `
        INSERT INTO invitations (inviter_id, invitee_email)
        VALUES ($1,$2)
        RETURNING id, token, created_at`
	return r.pool.QueryRow(ctx, query, invitation.InviterID, invitation.InviteeEmail).
		Scan(&invitation.ID, &invitation.Token, &invitation.CreatedAt)
}

func (r *invitationRepository) ListByInviter(ctx context.Context, inviterID string) ([]domain.Invitation, error) {
	const query = `
        SELECT id, inviter_id, invitee_email, token, created_at
        FROM invitations WHERE inviter_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, inviterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.ID, &inv.InviterID, &inv.InviteeEmail, &inv.Token, &inv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}
