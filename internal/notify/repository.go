package notify

import (
	"context"
	"fmt"

	"github.com/vistalabs/vista/pkg/database"
)

// Repository is the PostgreSQL implementation of EventStore.
type Repository struct {
	db *database.DB
}

// NewRepository creates a notification event repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Save appends a notification event.
func (r *Repository) Save(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO notification_events (stock_code, signal_id, signal_type, confidence, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		event.StockCode, event.SignalID, event.SignalType, event.Confidence,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification event failed: %w", err)
	}
	return nil
}
