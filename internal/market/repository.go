package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/database"
)

// Repository is the PostgreSQL implementation of contracts.CandleStore.
type Repository struct {
	db *database.DB
}

// NewRepository creates a candle repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// UpsertBatch stores candles idempotently by (stock, date) in one transaction.
// Returns the number of rows written.
func (r *Repository) UpsertBatch(ctx context.Context, candles []contracts.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candles (stock_code, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (stock_code, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	saved := 0
	for _, c := range candles {
		if _, err := tx.Exec(ctx, query,
			c.StockCode, c.Date, c.Open, c.High, c.Low, c.Close, c.Volume,
		); err != nil {
			return 0, fmt.Errorf("upsert candle failed: stock=%s date=%s: %w",
				c.StockCode, c.Date.Format("2006-01-02"), err)
		}
		saved++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction failed: %w", err)
	}
	return saved, nil
}

// History returns candles for one stock ordered by date ascending,
// limited to dates <= asOf.
func (r *Repository) History(ctx context.Context, stockCode string, asOf time.Time, limit int) ([]contracts.Candle, error) {
	query := `
		SELECT id, stock_code, date, open, high, low, close, volume, created_at
		FROM (
			SELECT id, stock_code, date, open, high, low, close, volume, created_at
			FROM candles
			WHERE stock_code = $1 AND date <= $2
			ORDER BY date DESC
			LIMIT $3
		) recent
		ORDER BY date ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, stockCode, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("query candle history failed: %w", err)
	}
	defer rows.Close()

	var candles []contracts.Candle
	for rows.Next() {
		var c contracts.Candle
		if err := rows.Scan(
			&c.ID, &c.StockCode, &c.Date,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candle failed: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

// Latest returns the most recent candle with date <= asOf, or nil.
func (r *Repository) Latest(ctx context.Context, stockCode string, asOf time.Time) (*contracts.Candle, error) {
	query := `
		SELECT id, stock_code, date, open, high, low, close, volume, created_at
		FROM candles
		WHERE stock_code = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT 1
	`

	var c contracts.Candle
	err := r.db.Pool.QueryRow(ctx, query, stockCode, asOf).Scan(
		&c.ID, &c.StockCode, &c.Date,
		&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest candle failed: %w", err)
	}
	return &c, nil
}

// ActiveStocks lists distinct stock codes that have candle data.
func (r *Repository) ActiveStocks(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT stock_code FROM candles ORDER BY stock_code`)
	if err != nil {
		return nil, fmt.Errorf("query active stocks failed: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan stock code failed: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
