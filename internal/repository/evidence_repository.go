package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// EvidenceRepository encapsulates evidence and evidence-source persistence.
type EvidenceRepository interface {
	Create(ctx context.Context, evidence *domain.Evidence) error
	Update(ctx context.Context, evidence *domain.Evidence) error
	GetByID(ctx context.Context, id string) (*domain.Evidence, error)
	ListByBoard(ctx context.Context, boardID string, includeRemoved bool) ([]domain.Evidence, error)
	ContributionsByCreator(ctx context.Context, creatorID string) ([]BoardContribution, error)

	CreateSource(ctx context.Context, source *domain.EvidenceSource) error
	UpdateSource(ctx context.Context, source *domain.EvidenceSource) error
	GetSourceByID(ctx context.Context, id string) (*domain.EvidenceSource, error)
	ListSourcesByEvidence(ctx context.Context, evidenceIDs []string) (map[string][]domain.EvidenceSource, error)
}

type evidenceRepository struct {
	pool *pgxpool.Pool
}

// NewEvidenceRepository instantiates repository.
func NewEvidenceRepository(pool *pgxpool.Pool) EvidenceRepository {
	return &evidenceRepository{pool: pool}
}

const evidenceColumns = `id, board_id, evidence_desc, event_date, creator_id, removed, created_at, updated_at`

func (r *evidenceRepository) Create(ctx context.Context, evidence *domain.Evidence) error {
	const query = `
        INSERT INTO evidence (board_id, evidence_desc, event_date, creator_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		evidence.BoardID,
		evidence.Desc,
		evidence.EventDate,
		evidence.CreatorID,
	).Scan(&evidence.ID, &evidence.CreatedAt, &evidence.UpdatedAt)
}

func (r *evidenceRepository) Update(ctx context.Context, evidence *domain.Evidence) error {
	const query = `
        UPDATE evidence SET evidence_desc=$1, event_date=$2, removed=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, evidence.Desc, evidence.EventDate, evidence.Removed, evidence.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *evidenceRepository) GetByID(ctx context.Context, id string) (*domain.Evidence, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE id=$1`
	var e domain.Evidence
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.BoardID, &e.Desc, &e.EventDate, &e.CreatorID, &e.Removed, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *evidenceRepository) ListByBoard(ctx context.Context, boardID string, includeRemoved bool) ([]domain.Evidence, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE board_id=$1`
	if !includeRemoved {
		query += ` AND NOT removed`
	}
	query += ` ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Evidence
	for rows.Next() {
		var e domain.Evidence
		if err := rows.Scan(&e.ID, &e.BoardID, &e.Desc, &e.EventDate, &e.CreatorID, &e.Removed, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ContributionsByCreator returns the distinct boards the user has added
// evidence to with the latest contribution time, newest first.
func (r *evidenceRepository) ContributionsByCreator(ctx context.Context, creatorID string) ([]BoardContribution, error) {
	const query = `
        SELECT board_id, MAX(created_at) FROM evidence
        WHERE creator_id=$1 AND NOT removed
        GROUP BY board_id
        ORDER BY MAX(created_at) DESC`
	return collectContributions(r.pool, ctx, query, creatorID)
}

const sourceColumns = `id, evidence_id, source_url, source_title, source_description, source_date, uploader_id, corroborating, removed, created_at, updated_at`

func (r *evidenceRepository) CreateSource(ctx context.Context, source *domain.EvidenceSource) error {
	const query = `
        INSERT INTO evidence_sources (evidence_id, source_url, source_title, source_description, source_date, uploader_id, corroborating)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		source.EvidenceID,
		source.URL,
		source.Title,
		source.Description,
		source.SourceDate,
		source.UploaderID,
		source.Corroborating,
	).Scan(&source.ID, &source.CreatedAt, &source.UpdatedAt)
}

func (r *evidenceRepository) UpdateSource(ctx context.Context, source *domain.EvidenceSource) error {
	const query = `
        UPDATE evidence_sources SET source_title=$1, source_description=$2, removed=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, source.Title, source.Description, source.Removed, source.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *evidenceRepository) GetSourceByID(ctx context.Context, id string) (*domain.EvidenceSource, error) {
	query := `SELECT ` + sourceColumns + ` FROM evidence_sources WHERE id=$1`
	var s domain.EvidenceSource
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.EvidenceID, &s.URL, &s.Title, &s.Description, &s.SourceDate,
		&s.UploaderID, &s.Corroborating, &s.Removed, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSourcesByEvidence returns live sources grouped by evidence, newest
// source date first.
func (r *evidenceRepository) ListSourcesByEvidence(ctx context.Context, evidenceIDs []string) (map[string][]domain.EvidenceSource, error) {
	result := make(map[string][]domain.EvidenceSource, len(evidenceIDs))
	if len(evidenceIDs) == 0 {
		return result, nil
	}
	query := `
        SELECT ` + sourceColumns + ` FROM evidence_sources
        WHERE evidence_id = ANY($1) AND NOT removed
        ORDER BY source_date DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, query, evidenceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.EvidenceSource
		if err := rows.Scan(
			&s.ID, &s.EvidenceID, &s.URL, &s.Title, &s.Description, &s.SourceDate,
			&s.UploaderID, &s.Corroborating, &s.Removed, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[s.EvidenceID] = append(result[s.EvidenceID], s)
	}
	return result, rows.Err()
}
