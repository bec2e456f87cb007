package indicator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/database"
)

// Repository is the PostgreSQL implementation of contracts.IndicatorStore.
type Repository struct {
	db *database.DB
}

// NewRepository creates an indicator repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores a snapshot keyed by (stock, date).
func (r *Repository) Upsert(ctx context.Context, snap *contracts.IndicatorSnapshot) error {
	query := `
		INSERT INTO indicator_snapshots (
			stock_code, date, rsi_14, ma_20, ma_50, ma_200,
			volatility_20, volatility_60, avg_volume_20, avg_volume_60,
			volume_ratio, liquidity_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (stock_code, date) DO UPDATE SET
			rsi_14 = EXCLUDED.rsi_14,
			ma_20 = EXCLUDED.ma_20,
			ma_50 = EXCLUDED.ma_50,
			ma_200 = EXCLUDED.ma_200,
			volatility_20 = EXCLUDED.volatility_20,
			volatility_60 = EXCLUDED.volatility_60,
			avg_volume_20 = EXCLUDED.avg_volume_20,
			avg_volume_60 = EXCLUDED.avg_volume_60,
			volume_ratio = EXCLUDED.volume_ratio,
			liquidity_score = EXCLUDED.liquidity_score
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		snap.StockCode, snap.Date, snap.RSI14, snap.MA20, snap.MA50, snap.MA200,
		snap.Volatility20, snap.Volatility60, snap.AvgVolume20, snap.AvgVolume60,
		snap.VolumeRatio, snap.LiquidityScore,
	).Scan(&snap.ID)
	if err != nil {
		return fmt.Errorf("upsert indicator snapshot failed: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot with date <= asOf, or nil.
func (r *Repository) Latest(ctx context.Context, stockCode string, asOf time.Time) (*contracts.IndicatorSnapshot, error) {
	query := `
		SELECT id, stock_code, date, rsi_14, ma_20, ma_50, ma_200,
		       volatility_20, volatility_60, avg_volume_20, avg_volume_60,
		       volume_ratio, liquidity_score, created_at
		FROM indicator_snapshots
		WHERE stock_code = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT 1
	`

	var snap contracts.IndicatorSnapshot
	err := r.db.Pool.QueryRow(ctx, query, stockCode, asOf).Scan(
		&snap.ID, &snap.StockCode, &snap.Date, &snap.RSI14,
		&snap.MA20, &snap.MA50, &snap.MA200,
		&snap.Volatility20, &snap.Volatility60,
		&snap.AvgVolume20, &snap.AvgVolume60,
		&snap.VolumeRatio, &snap.LiquidityScore, &snap.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query indicator snapshot failed: %w", err)
	}
	return &snap, nil
}
