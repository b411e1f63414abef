package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// Viewer identifies the caller for permission-aware queries. A nil UserID
// means the caller is unauthenticated.
type Viewer struct {
	UserID  *string
	IsStaff bool
}

// BoardRepository encapsulates board persistence. List methods filter out
// boards the viewer cannot read.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	Update(ctx context.Context, board *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	ListReadable(ctx context.Context, viewer Viewer, limit, offset int) ([]domain.Board, error)
	CountReadable(ctx context.Context, viewer Viewer) (int, error)
	Search(ctx context.Context, viewer Viewer, term string, limit int) ([]domain.Board, error)
	ListCreatedBy(ctx context.Context, viewer Viewer, creatorID string, limit int) ([]domain.Board, error)
	ListByIDs(ctx context.Context, viewer Viewer, ids []string) ([]domain.Board, error)
	ListPublishedSince(ctx context.Context, viewer Viewer, since time.Time) ([]domain.Board, error)
}

type boardRepository struct {
	pool *pgxpool.Pool
}

// NewBoardRepository instantiates repository.
func NewBoardRepository(pool *pgxpool.Pool) BoardRepository {
	return &boardRepository{pool: pool}
}

const boardColumns = `b.id, b.title, b.slug, b.description, b.creator_id, b.pub_date, b.removed, b.created_at, b.updated_at`

// readableClause builds a SQL predicate restricting boards to those the
// viewer may read, appending bind arguments as needed. Staff see everything
// including removed boards.
func readableClause(viewer Viewer, args *[]any) string {
	if viewer.IsStaff {
		return "TRUE"
	}
	if viewer.UserID == nil {
		return `NOT b.removed AND EXISTS (
            SELECT 1 FROM board_permissions p
            WHERE p.board_id=b.id AND p.read_board >= 3
        )`
	}
	*args = append(*args, *viewer.UserID)
	n := len(*args)
	return fmt.Sprintf(`NOT b.removed AND (
        b.creator_id = $%[1]d
        OR EXISTS (
            SELECT 1 FROM board_permissions p
            WHERE p.board_id=b.id AND (
                p.read_board >= 2
                OR (p.read_board = 1 AND (
                    EXISTS (SELECT 1 FROM board_collaborators c WHERE c.board_id=b.id AND c.user_id=$%[1]d)
                    OR EXISTS (
                        SELECT 1 FROM board_team_collaborators tc
                        JOIN team_members tm ON tm.team_id=tc.team_id
                        WHERE tc.board_id=b.id AND tm.user_id=$%[1]d
                    )
                ))
            )
        )
    )`, n)
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) error {
	const query = `
        INSERT INTO boards (title, slug, description, creator_id, pub_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		board.Title,
		board.Slug,
		board.Desc,
		board.CreatorID,
		board.PubDate,
	).Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
}

func (r *boardRepository) Update(ctx context.Context, board *domain.Board) error {
	const query = `
        UPDATE boards SET title=$1, slug=$2, description=$3, removed=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		board.Title,
		board.Slug,
		board.Desc,
		board.Removed,
		board.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *boardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards b WHERE b.id=$1`
	var board domain.Board
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&board.ID,
		&board.Title,
		&board.Slug,
		&board.Desc,
		&board.CreatorID,
		&board.PubDate,
		&board.Removed,
		&board.CreatedAt,
		&board.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) ListReadable(ctx context.Context, viewer Viewer, limit, offset int) ([]domain.Board, error) {
	var args []any
	where := readableClause(viewer, &args)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
        SELECT `+boardColumns+` FROM boards b
        WHERE %s
        ORDER BY b.pub_date DESC
        LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	return r.queryBoards(ctx, query, args...)
}

func (r *boardRepository) CountReadable(ctx context.Context, viewer Viewer) (int, error) {
	var args []any
	where := readableClause(viewer, &args)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM boards b WHERE %s`, where)
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *boardRepository) Search(ctx context.Context, viewer Viewer, term string, limit int) ([]domain.Board, error) {
	var args []any
	where := readableClause(viewer, &args)
	args = append(args, "%"+term+"%")
	termArg := len(args)
	args = append(args, limit)
	query := fmt.Sprintf(`
        SELECT `+boardColumns+` FROM boards b
        WHERE %s AND (b.title ILIKE $%d OR b.description ILIKE $%d)
        ORDER BY b.pub_date DESC
        LIMIT $%d`, where, termArg, termArg, len(args))
	return r.queryBoards(ctx, query, args...)
}

func (r *boardRepository) ListCreatedBy(ctx context.Context, viewer Viewer, creatorID string, limit int) ([]domain.Board, error) {
	var args []any
	where := readableClause(viewer, &args)
	args = append(args, creatorID, limit)
	query := fmt.Sprintf(`
        SELECT `+boardColumns+` FROM boards b
        WHERE %s AND b.creator_id=$%d
        ORDER BY b.pub_date DESC
        LIMIT $%d`, where, len(args)-1, len(args))
	return r.queryBoards(ctx, query, args...)
}

func (r *boardRepository) ListByIDs(ctx context.Context, viewer Viewer, ids []string) ([]domain.Board, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var args []any
	where := readableClause(viewer, &args)
	args = append(args, ids)
	query := fmt.Sprintf(`
        SELECT `+boardColumns+` FROM boards b
        WHERE %s AND b.id = ANY($%d)
        ORDER BY b.pub_date DESC`, where, len(args))
	return r.queryBoards(ctx, query, args...)
}

func (r *boardRepository) ListPublishedSince(ctx context.Context, viewer Viewer, since time.Time) ([]domain.Board, error) {
	var args []any
	where := readableClause(viewer, &args)
	args = append(args, since)
	query := fmt.Sprintf(`
        SELECT `+boardColumns+` FROM boards b
        WHERE %s AND b.pub_date >= $%d
        ORDER BY b.pub_date DESC`, where, len(args))
	return r.queryBoards(ctx, query, args...)
}

func (r *boardRepository) queryBoards(ctx context.Context, query string, args ...any) ([]domain.Board, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(
			&board.ID,
			&board.Title,
			&board.Slug,
			&board.Desc,
			&board.CreatorID,
			&board.PubDate,
			&board.Removed,
			&board.CreatedAt,
			&board.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, board)
	}
	return result, rows.Err()
}
