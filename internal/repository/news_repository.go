package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openintel/achboard/internal/domain"
)

// NewsRepository persists front-page news items.
type NewsRepository interface {
	Create(ctx context.Context, news *domain.ProjectNews) error
	ListCurrent(ctx context.Context, now time.Time, limit int) ([]domain.ProjectNews, error)
}

type newsRepository struct {
	pool *pgxpool.Pool
}

// NewNewsRepository instantiates repository.
func NewNewsRepository(pool *pgxpool.Pool) NewsRepository {
	return &newsRepository{pool: pool}
}

func (r *newsRepository) Create(ctx context.Context, news *domain.ProjectNews) error {
	const query = `
        INSERT INTO project_news (content, pub_date, author_id)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.pool.QueryRow(ctx, query, news.Content, news.PubDate, news.AuthorID).Scan(&news.ID)
}

// ListCurrent returns published news, newest first. Items with a future
// publication date stay hidden.
func (r *newsRepository) ListCurrent(ctx context.Context, now time.Time, limit int) ([]domain.ProjectNews, error) {
	const query = `
        SELECT id, content, pub_date, author_id FROM project_news
        WHERE pub_date <= $1
        ORDER BY pub_date DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProjectNews
	for rows.Next() {
		var news domain.ProjectNews
		if err := rows.Scan(&news.ID, &news.Content, &news.PubDate, &news.AuthorID); err != nil {
			return nil, err
		}
		result = append(result, news)
	}
	return result, rows.Err()
}
