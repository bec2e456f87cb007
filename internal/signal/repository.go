package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/database"
)

// Repository is the PostgreSQL implementation of contracts.SignalStore.
// The unique constraint on (stock_code, date) makes concurrent upserts
// safe; both writers compute the same deterministic row, so last write
// wins is acceptable.
type Repository struct {
	db *database.DB
}

// NewRepository creates a signal repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a signal by (stock, date) and returns the stored row.
func (r *Repository) Upsert(ctx context.Context, sig *contracts.Signal) (*contracts.Signal, error) {
	var meta []byte
	if sig.Meta != nil {
		var err error
		meta, err = json.Marshal(sig.Meta)
		if err != nil {
			return nil, fmt.Errorf("marshal calculation meta failed: %w", err)
		}
	}

	query := `
		INSERT INTO signals (
			stock_code, date, type, confidence, risk_level,
			price_at_signal, target_price, stop_loss,
			meta, status, source_version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (stock_code, date) DO UPDATE SET
			type = EXCLUDED.type,
			confidence = EXCLUDED.confidence,
			risk_level = EXCLUDED.risk_level,
			price_at_signal = EXCLUDED.price_at_signal,
			target_price = EXCLUDED.target_price,
			stop_loss = EXCLUDED.stop_loss,
			meta = EXCLUDED.meta,
			status = EXCLUDED.status,
			source_version = EXCLUDED.source_version,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	stored := *sig
	err := r.db.Pool.QueryRow(ctx, query,
		sig.StockCode, sig.Date, sig.Type, sig.Confidence, sig.RiskLevel,
		sig.PriceAtSignal, sig.TargetPrice, sig.StopLoss,
		meta, sig.Status, sig.SourceVersion,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert signal failed: %w", err)
	}
	return &stored, nil
}

// Get returns the signal for one stock and date, or nil.
func (r *Repository) Get(ctx context.Context, stockCode string, date time.Time) (*contracts.Signal, error) {
	query := signalSelect + ` WHERE stock_code = $1 AND date = $2`

	row := r.db.Pool.QueryRow(ctx, query, stockCode, date)
	sig, err := scanSignal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query signal failed: %w", err)
	}
	return sig, nil
}

// ListByDate returns all signals generated for a date.
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]contracts.Signal, error) {
	query := signalSelect + ` WHERE date = $1 ORDER BY stock_code`

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query signals by date failed: %w", err)
	}
	defer rows.Close()

	var signals []contracts.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signal failed: %w", err)
		}
		signals = append(signals, *sig)
	}
	return signals, rows.Err()
}

const signalSelect = `
	SELECT id, stock_code, date, type, confidence, risk_level,
	       price_at_signal, target_price, stop_loss,
	       meta, status, source_version, created_at, updated_at
	FROM signals
`

func scanSignal(row pgx.Row) (*contracts.Signal, error) {
	var sig contracts.Signal
	var meta []byte

	err := row.Scan(
		&sig.ID, &sig.StockCode, &sig.Date, &sig.Type, &sig.Confidence, &sig.RiskLevel,
		&sig.PriceAtSignal, &sig.TargetPrice, &sig.StopLoss,
		&meta, &sig.Status, &sig.SourceVersion, &sig.CreatedAt, &sig.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(meta) > 0 {
		sig.Meta = &contracts.CalculationMeta{}
		if err := json.Unmarshal(meta, sig.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal calculation meta failed: %w", err)
		}
	}
	return &sig, nil
}
