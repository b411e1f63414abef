package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// TagRepository manages the source tag catalog and per-analyst taggings.
type TagRepository interface {
	ListTags(ctx context.Context) ([]domain.SourceTag, error)
	GetTagByName(ctx context.Context, name string) (*domain.SourceTag, error)
	CreateTag(ctx context.Context, tag *domain.SourceTag) error

	AddTagging(ctx context.Context, tagging *domain.AnalystSourceTag) error
	RemoveTagging(ctx context.Context, sourceID, taggerID, tagID string) (bool, error)
	ListTaggingsBySources(ctx context.Context, sourceIDs []string) (map[string][]domain.AnalystSourceTag, error)
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository instantiates repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) ListTags(ctx context.Context) ([]domain.SourceTag, error) {
	const query = `SELECT id, tag_name, tag_desc FROM source_tags ORDER BY tag_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SourceTag
	for rows.Next() {
		var tag domain.SourceTag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Desc); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

func (r *tagRepository) GetTagByName(ctx context.Context, name string) (*domain.SourceTag, error) {
	const query = `SELECT id, tag_name, tag_desc FROM source_tags WHERE tag_name=$1`
	var tag domain.SourceTag
	if err := r.pool.QueryRow(ctx, query, name).Scan(&tag.ID, &tag.Name, &tag.Desc); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) CreateTag(ctx context.Context, tag *domain.SourceTag) error {
	const query = `INSERT INTO source_tags (tag_name, tag_desc) VALUES ($1,$2) RETURNING id`
	return r.pool.QueryRow(ctx, query, tag.Name, tag.Desc).Scan(&tag.ID)
}

func (r *tagRepository) AddTagging(ctx context.Context, tagging *domain.AnalystSourceTag) error {
	const query = `
        INSERT INTO analyst_source_tags (source_id, tagger_id, tag_id)
        VALUES ($1,$2,$3)
        ON CONFLICT (source_id, tagger_id, tag_id) DO UPDATE SET created_at=analyst_source_tags.created_at
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, tagging.SourceID, tagging.TaggerID, tagging.TagID).
		Scan(&tagging.ID, &tagging.CreatedAt)
}

// RemoveTagging deletes the analyst's tagging, reporting whether one
// existed.
func (r *tagRepository) RemoveTagging(ctx context.Context, sourceID, taggerID, tagID string) (bool, error) {
	const query = `DELETE FROM analyst_source_tags WHERE source_id=$1 AND tagger_id=$2 AND tag_id=$3`
	cmd, err := r.pool.Exec(ctx, query, sourceID, taggerID, tagID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *tagRepository) ListTaggingsBySources(ctx context.Context, sourceIDs []string) (map[string][]domain.AnalystSourceTag, error) {
	result := make(map[string][]domain.AnalystSourceTag, len(sourceIDs))
	if len(sourceIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT id, source_id, tagger_id, tag_id, created_at
        FROM analyst_source_tags WHERE source_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, sourceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.AnalystSourceTag
		if err := rows.Scan(&t.ID, &t.SourceID, &t.TaggerID, &t.TagID, &t.CreatedAt); err != nil {
			return nil, err
		}
		result[t.SourceID] = append(result[t.SourceID], t)
	}
	return result, rows.Err()
}
