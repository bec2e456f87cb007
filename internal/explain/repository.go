package explain

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/database"
)

// Repository is the PostgreSQL implementation of contracts.ExplanationStore.
type Repository struct {
	db *database.DB
}

// NewRepository creates an explanation repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Upsert replaces the explanation for a signal. One row per signal.
func (r *Repository) Upsert(ctx context.Context, exp *contracts.Explanation) error {
	query := `
		INSERT INTO explanations (signal_id, reasons, caveats, summary, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (signal_id) DO UPDATE SET
			reasons = EXCLUDED.reasons,
			caveats = EXCLUDED.caveats,
			summary = EXCLUDED.summary
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		exp.SignalID, exp.Reasons, exp.Caveats, exp.Summary,
	).Scan(&exp.ID)
	if err != nil {
		return fmt.Errorf("upsert explanation failed: %w", err)
	}
	return nil
}

// GetBySignal returns the explanation attached to a signal, or nil.
func (r *Repository) GetBySignal(ctx context.Context, signalID int64) (*contracts.Explanation, error) {
	query := `
		SELECT id, signal_id, reasons, caveats, summary, created_at
		FROM explanations
		WHERE signal_id = $1
	`

	var exp contracts.Explanation
	err := r.db.Pool.QueryRow(ctx, query, signalID).Scan(
		&exp.ID, &exp.SignalID, &exp.Reasons, &exp.Caveats, &exp.Summary, &exp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query explanation failed: %w", err)
	}
	return &exp, nil
}
