package newswire

import (
	"context"
	"fmt"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/database"
)

// Repository is the PostgreSQL implementation of contracts.NewsStore.
type Repository struct {
	db *database.DB
}

// NewRepository creates a news repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// UpsertBatch stores news items idempotently by (stock, url).
func (r *Repository) UpsertBatch(ctx context.Context, items []contracts.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO news_items (stock_code, title, url, sentiment, impact_score, published_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (stock_code, url) DO UPDATE SET
			title = EXCLUDED.title,
			sentiment = EXCLUDED.sentiment,
			impact_score = EXCLUDED.impact_score,
			published_at = EXCLUDED.published_at
	`

	saved := 0
	for _, item := range items {
		if _, err := r.db.Pool.Exec(ctx, query,
			item.StockCode, item.Title, item.URL,
			item.Sentiment, item.ImpactScore, item.PublishedAt,
		); err != nil {
			return saved, fmt.Errorf("upsert news item failed: stock=%s: %w", item.StockCode, err)
		}
		saved++
	}
	return saved, nil
}

// Recent returns news for a stock published within the window ending at asOf.
func (r *Repository) Recent(ctx context.Context, stockCode string, asOf time.Time, window time.Duration) ([]contracts.NewsItem, error) {
	query := `
		SELECT id, stock_code, title, url, sentiment, impact_score, published_at
		FROM news_items
		WHERE stock_code = $1 AND published_at > $2 AND published_at <= $3
		ORDER BY published_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, stockCode, asOf.Add(-window), asOf)
	if err != nil {
		return nil, fmt.Errorf("query news items failed: %w", err)
	}
	defer rows.Close()

	var items []contracts.NewsItem
	for rows.Next() {
		var item contracts.NewsItem
		if err := rows.Scan(
			&item.ID, &item.StockCode, &item.Title, &item.URL,
			&item.Sentiment, &item.ImpactScore, &item.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan news item failed: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
