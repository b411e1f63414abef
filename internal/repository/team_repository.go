package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// TeamRepository encapsulates team, membership, and request persistence.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListVisible(ctx context.Context, userID *string) ([]domain.Team, error)

	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	ListMemberIDs(ctx context.Context, teamID string) ([]string, error)
	MemberCounts(ctx context.Context, teamIDs []string) (map[string]int, error)
	TeamIDsByMember(ctx context.Context, userID string) ([]string, error)

	CreateRequest(ctx context.Context, request *domain.TeamRequest) error
	GetRequestByID(ctx context.Context, id string) (*domain.TeamRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	ListRequestsByTeam(ctx context.Context, teamID string) ([]domain.TeamRequest, error)
	FindRequest(ctx context.Context, teamID, inviteeID string) (*domain.TeamRequest, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository instantiates repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

const teamColumns = `id, name, description, owner_id, creator_id, public, invitation_required, created_at, updated_at`

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, description, owner_id, creator_id, public, invitation_required)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.Desc,
		team.OwnerID,
		team.CreatorID,
		team.Public,
		team.InvitationRequired,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, description=$2, owner_id=$3, public=$4, invitation_required=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		team.Name,
		team.Desc,
		team.OwnerID,
		team.Public,
		team.InvitationRequired,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Desc, &team.OwnerID, &team.CreatorID,
		&team.Public, &team.InvitationRequired, &team.CreatedAt, &team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListVisible returns public teams plus any private teams the user belongs
// to or owns.
func (r *teamRepository) ListVisible(ctx context.Context, userID *string) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.public`
	var args []any
	if userID != nil {
		args = append(args, *userID)
		query = `SELECT ` + teamColumns + ` FROM teams t
            WHERE t.public OR t.owner_id=$1
                OR EXISTS (SELECT 1 FROM team_members m WHERE m.team_id=t.id AND m.user_id=$1)`
	}
	query += ` ORDER BY t.name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(
			&team.ID, &team.Name, &team.Desc, &team.OwnerID, &team.CreatorID,
			&team.Public, &team.InvitationRequired, &team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

func (r *teamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	const query = `INSERT INTO team_members (team_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, teamID, userID)
	return err
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	const query = `DELETE FROM team_members WHERE team_id=$1 AND user_id=$2`
	_, err := r.pool.Exec(ctx, query, teamID, userID)
	return err
}

func (r *teamRepository) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id=$1 AND user_id=$2)`
	var ok bool
	if err := r.pool.QueryRow(ctx, query, teamID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *teamRepository) ListMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	return collectStrings(r.pool, ctx, `SELECT user_id FROM team_members WHERE team_id=$1`, teamID)
}

func (r *teamRepository) MemberCounts(ctx context.Context, teamIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(teamIDs))
	if len(teamIDs) == 0 {
		return result, nil
	}
	const query = `SELECT team_id, COUNT(*) FROM team_members WHERE team_id = ANY($1) GROUP BY team_id`
	rows, err := r.pool.Query(ctx, query, teamIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var teamID string
		var count int
		if err := rows.Scan(&teamID, &count); err != nil {
			return nil, err
		}
		result[teamID] = count
	}
	return result, rows.Err()
}

func (r *teamRepository) TeamIDsByMember(ctx context.Context, userID string) ([]string, error) {
	return collectStrings(r.pool, ctx, `SELECT team_id FROM team_members WHERE user_id=$1`, userID)
}

const requestColumns = `id, team_id, inviter_id, invitee_id, created_at`

func (r *teamRepository) CreateRequest(ctx context.Context, request *domain.TeamRequest) error {
	const query = `
        INSERT INTO team_requests (team_id, inviter_id, invitee_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, request.TeamID, request.InviterID, request.InviteeID).
		Scan(&request.ID, &request.CreatedAt)
}

func (r *teamRepository) GetRequestByID(ctx context.Context, id string) (*domain.TeamRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM team_requests WHERE id=$1`
	var request domain.TeamRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.TeamID, &request.InviterID, &request.InviteeID, &request.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *teamRepository) DeleteRequest(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM team_requests WHERE id=$1`, id)
	return err
}

func (r *teamRepository) ListRequestsByTeam(ctx context.Context, teamID string) ([]domain.TeamRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM team_requests WHERE team_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamRequest
	for rows.Next() {
		var request domain.TeamRequest
		if err := rows.Scan(&request.ID, &request.TeamID, &request.InviterID, &request.InviteeID, &request.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}

func (r *teamRepository) FindRequest(ctx context.Context, teamID, inviteeID string) (*domain.TeamRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM team_requests WHERE team_id=$1 AND invitee_id=$2 LIMIT 1`
	var request domain.TeamRequest
	if err := r.pool.QueryRow(ctx, query, teamID, inviteeID).Scan(
		&request.ID, &request.TeamID, &request.InviterID, &request.InviteeID, &request.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}
