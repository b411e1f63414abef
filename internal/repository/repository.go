package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BoardContribution pairs a board with the timestamp of the user's most
// recent activity on it.
type BoardContribution struct {
	BoardID string
	LastAt  time.Time
}

func collectContributions(pool *pgxpool.Pool, ctx context.Context, query string, args ...any) ([]BoardContribution, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BoardContribution
	for rows.Next() {
		var c BoardContribution
		if err := rows.Scan(&c.BoardID, &c.LastAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func collectStrings(pool *pgxpool.Pool, ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
