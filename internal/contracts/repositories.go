package contracts

import (
	"context"
	"time"
)

// CandleStore persists and reads daily candles.
type CandleStore interface {
	// UpsertBatch stores candles idempotently by (stock, date).
	UpsertBatch(ctx context.Context, candles []Candle) (int, error)

	// History returns candles for one stock ordered by date ascending,
	// limited to dates <= asOf.
	History(ctx context.Context, stockCode string, asOf time.Time, limit int) ([]Candle, error)

	// Latest returns the most recent candle with date <= asOf, or nil.
	Latest(ctx context.Context, stockCode string, asOf time.Time) (*Candle, error)

	// ActiveStocks lists stock codes that have at least one candle.
	ActiveStocks(ctx context.Context) ([]string, error)
}

// IndicatorStore persists and reads indicator snapshots.
type IndicatorStore interface {
	Upsert(ctx context.Context, snap *IndicatorSnapshot) error

	// Latest returns the most recent snapshot with date <= asOf, or nil.
	Latest(ctx context.Context, stockCode string, asOf time.Time) (*IndicatorSnapshot, error)
}

// AssessmentStore persists quality audit records.
type AssessmentStore interface {
	Save(ctx context.Context, a *QualityAssessment) error
	Latest(ctx context.Context, limit int) ([]QualityAssessment, error)
}

// SignalStore persists signals and their explanations.
type SignalStore interface {
	// Upsert writes a signal by (stock, date) and returns the stored row.
	Upsert(ctx context.Context, sig *Signal) (*Signal, error)

	Get(ctx context.Context, stockCode string, date time.Time) (*Signal, error)

	// ListByDate returns all signals generated for a date.
	ListByDate(ctx context.Context, date time.Time) ([]Signal, error)
}

// ExplanationStore persists signal explanations 1:1 by signal id.
type ExplanationStore interface {
	Upsert(ctx context.Context, exp *Explanation) error
	GetBySignal(ctx context.Context, signalID int64) (*Explanation, error)
}

// NewsStore reads scored news items.
type NewsStore interface {
	// Recent returns news for a stock published within the window ending at asOf.
	Recent(ctx context.Context, stockCode string, asOf time.Time, window time.Duration) ([]NewsItem, error)

	UpsertBatch(ctx context.Context, items []NewsItem) (int, error)
}

// SettingsStore reads and writes the analysis configuration.
type SettingsStore interface {
	// Load returns the current configuration snapshot, falling back to
	// defaults for missing keys.
	Load(ctx context.Context) (AnalysisConfig, error)

	// Save validates and persists a configuration, recording who changed it.
	Save(ctx context.Context, cfg AnalysisConfig, changedBy string) error
}
