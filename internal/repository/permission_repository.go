package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// PermissionRepository persists per-board authorization schemes.
type PermissionRepository interface {
	Get(ctx context.Context, boardID string) (*domain.BoardPermissions, error)
	Save(ctx context.Context, perms *domain.BoardPermissions) error
	IsCollaborator(ctx context.Context, boardID, userID string) (bool, error)
	CollaboratorUserIDs(ctx context.Context, boardID string) ([]string, error)
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository instantiates repository.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

func (r *permissionRepository) Get(ctx context.Context, boardID string) (*domain.BoardPermissions, error) {
	const query = `
        SELECT board_id, read_board, read_comments, add_comments, add_elements, edit_elements, edit_board
        FROM board_permissions WHERE board_id=$1`
	perms := &domain.BoardPermissions{}
	err := r.pool.QueryRow(ctx, query, boardID).Scan(
		&perms.BoardID,
		&perms.ReadBoard,
		&perms.ReadComments,
		&perms.AddComments,
		&perms.AddElements,
		&perms.EditElements,
		&perms.EditBoard,
	)
	if err == pgx.ErrNoRows {
		perms = domain.DefaultBoardPermissions(boardID)
	} else if err != nil {
		return nil, err
	}

	if perms.CollaboratorIDs, err = r.collectIDs(ctx,
		`SELECT user_id FROM board_collaborators WHERE board_id=$1`, boardID); err != nil {
		return nil, err
	}
	if perms.TeamIDs, err = r.collectIDs(ctx,
		`SELECT team_id FROM board_team_collaborators WHERE board_id=$1`, boardID); err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) collectIDs(ctx context.Context, query, boardID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *permissionRepository) Save(ctx context.Context, perms *domain.BoardPermissions) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsert = `
        INSERT INTO board_permissions (board_id, read_board, read_comments, add_comments, add_elements, edit_elements, edit_board)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (board_id) DO UPDATE SET
            read_board=EXCLUDED.read_board,
            read_comments=EXCLUDED.read_comments,
            add_comments=EXCLUDED.add_comments,
            add_elements=EXCLUDED.add_elements,
            edit_elements=EXCLUDED.edit_elements,
            edit_board=EXCLUDED.edit_board`
	if _, err := tx.Exec(ctx, upsert,
		perms.BoardID,
		perms.ReadBoard,
		perms.ReadComments,
		perms.AddComments,
		perms.AddElements,
		perms.EditElements,
		perms.EditBoard,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM board_collaborators WHERE board_id=$1`, perms.BoardID); err != nil {
		return err
	}
	for _, userID := range perms.CollaboratorIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO board_collaborators (board_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			perms.BoardID, userID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM board_team_collaborators WHERE board_id=$1`, perms.BoardID); err != nil {
		return err
	}
	for _, teamID := range perms.TeamIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO board_team_collaborators (board_id, team_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			perms.BoardID, teamID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// IsCollaborator reports whether the user is a direct collaborator or a
// member of a collaborating team.
func (r *permissionRepository) IsCollaborator(ctx context.Context, boardID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM board_collaborators WHERE board_id=$1 AND user_id=$2)
            OR EXISTS (
                SELECT 1 FROM board_team_collaborators tc
                JOIN team_members tm ON tm.team_id=tc.team_id
                WHERE tc.board_id=$1 AND tm.user_id=$2
            )`
	var ok bool
	if err := r.pool.QueryRow(ctx, query, boardID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// CollaboratorUserIDs returns the users allowed to vote in collaborator
// mode: the board creator, direct collaborators, and members of
// collaborating teams.
func (r *permissionRepository) CollaboratorUserIDs(ctx context.Context, boardID string) ([]string, error) {
	const query = `
        SELECT creator_id FROM boards WHERE id=$1 AND creator_id IS NOT NULL
        UNION
        SELECT user_id FROM board_collaborators WHERE board_id=$1
        UNION
        SELECT tm.user_id FROM board_team_collaborators tc
        JOIN team_members tm ON tm.team_id=tc.team_id
        WHERE tc.board_id=$1`
	return collectStrings(r.pool, ctx, query, boardID)
}
