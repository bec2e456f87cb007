package signal

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

type fakeCandleStore struct {
	latest *contracts.Candle
}

func (f *fakeCandleStore) UpsertBatch(_ context.Context, _ []contracts.Candle) (int, error) {
	return 0, nil
}
func (f *fakeCandleStore) History(_ context.Context, _ string, _ time.Time, _ int) ([]contracts.Candle, error) {
	return nil, nil
}
func (f *fakeCandleStore) Latest(_ context.Context, _ string, _ time.Time) (*contracts.Candle, error) {
	return f.latest, nil
}
func (f *fakeCandleStore) ActiveStocks(_ context.Context) ([]string, error) {
	return nil, nil
}

type fakeIndicatorStore struct {
	latest *contracts.IndicatorSnapshot
}

func (f *fakeIndicatorStore) Upsert(_ context.Context, _ *contracts.IndicatorSnapshot) error {
	return nil
}
func (f *fakeIndicatorStore) Latest(_ context.Context, _ string, _ time.Time) (*contracts.IndicatorSnapshot, error) {
	return f.latest, nil
}

type fakeNewsStore struct {
	items []contracts.NewsItem
}

func (f *fakeNewsStore) Recent(_ context.Context, _ string, _ time.Time, _ time.Duration) ([]contracts.NewsItem, error) {
	return f.items, nil
}
func (f *fakeNewsStore) UpsertBatch(_ context.Context, _ []contracts.NewsItem) (int, error) {
	return 0, nil
}

// fakeSignalStore upserts by (stock, date) like the real table constraint.
type fakeSignalStore struct {
	rows map[string]*contracts.Signal
}

func newFakeSignalStore() *fakeSignalStore {
	return &fakeSignalStore{rows: make(map[string]*contracts.Signal)}
}

func (f *fakeSignalStore) key(stockCode string, date time.Time) string {
	return stockCode + "|" + date.Format("2006-01-02")
}

func (f *fakeSignalStore) Upsert(_ context.Context, sig *contracts.Signal) (*contracts.Signal, error) {
	stored := *sig
	stored.ID = 1
	f.rows[f.key(sig.StockCode, sig.Date)] = &stored
	return &stored, nil
}

func (f *fakeSignalStore) Get(_ context.Context, stockCode string, date time.Time) (*contracts.Signal, error) {
	return f.rows[f.key(stockCode, date)], nil
}

func (f *fakeSignalStore) ListByDate(_ context.Context, _ time.Time) ([]contracts.Signal, error) {
	var out []contracts.Signal
	for _, sig := range f.rows {
		out = append(out, *sig)
	}
	return out, nil
}

var testDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func bullishFixture() (*fakeCandleStore, *fakeIndicatorStore) {
	candles := &fakeCandleStore{latest: &contracts.Candle{
		StockCode: "005930",
		Date:      testDate,
		Open:      100, High: 106, Low: 99, Close: 105,
		Volume: 5000,
	}}
	indicators := &fakeIndicatorStore{latest: &contracts.IndicatorSnapshot{
		StockCode:      "005930",
		Date:           testDate,
		RSI14:          25,
		Volatility20:   15,
		VolumeRatio:    2.5,
		LiquidityScore: 70,
		AvgVolume20:    2000,
	}}
	return candles, indicators
}

func newTestEngine(candles *fakeCandleStore, indicators *fakeIndicatorStore, news contracts.NewsStore, signals contracts.SignalStore) *Engine {
	return NewEngine(candles, indicators, news, signals, logger.NewWithWriter(io.Discard, "error"))
}

func TestGenerateForStockNoCandle(t *testing.T) {
	_, indicators := bullishFixture()
	store := newFakeSignalStore()
	engine := newTestEngine(&fakeCandleStore{}, indicators, nil, store)

	sig, err := engine.GenerateForStock(context.Background(), "005930", testDate, contracts.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.Nil(t, sig)
	assert.Empty(t, store.rows, "no row written when data is missing")
}

func TestGenerateForStockNoIndicator(t *testing.T) {
	candles, _ := bullishFixture()
	store := newFakeSignalStore()
	engine := newTestEngine(candles, &fakeIndicatorStore{}, nil, store)

	sig, err := engine.GenerateForStock(context.Background(), "005930", testDate, contracts.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.Nil(t, sig)
	assert.Empty(t, store.rows)
}

func TestGenerateForStockBuySignal(t *testing.T) {
	candles, indicators := bullishFixture()
	store := newFakeSignalStore()
	engine := newTestEngine(candles, indicators, nil, store)

	sig, err := engine.GenerateForStock(context.Background(), "005930", testDate, contracts.DefaultAnalysisConfig())
	require.NoError(t, err)
	require.NotNil(t, sig)

	// Sub-scores 100/70/80/70/80/0 under default weights give 77.5 -> 78
	assert.Equal(t, 78, sig.Confidence)
	assert.Equal(t, contracts.SignalBuy, sig.Type)
	assert.Equal(t, contracts.RiskLow, sig.RiskLevel)
	assert.Equal(t, contracts.SignalStatusPublished, sig.Status)

	require.NotNil(t, sig.TargetPrice)
	require.NotNil(t, sig.StopLoss)
	assert.InDelta(t, 113.4, *sig.TargetPrice, 1e-9, "close * 1.08")
	assert.InDelta(t, 98.7, *sig.StopLoss, 1e-9, "close * 0.94")

	require.NotNil(t, sig.Meta)
	assert.Equal(t, contracts.DefaultAnalysisConfig().Weights, sig.Meta.Weights)
	assert.Equal(t, 100.0, sig.Meta.SubScores["volume"])
	assert.Equal(t, 25.0, sig.Meta.RSI14)
}

func TestGenerateForStockHoldHasNoPriceBands(t *testing.T) {
	candles, indicators := bullishFixture()
	indicators.latest.RSI14 = 50
	indicators.latest.VolumeRatio = 1.0
	store := newFakeSignalStore()
	engine := newTestEngine(candles, indicators, nil, store)

	sig, err := engine.GenerateForStock(context.Background(), "005930", testDate, contracts.DefaultAnalysisConfig())
	require.NoError(t, err)
	require.NotNil(t, sig)

	assert.Equal(t, contracts.SignalHold, sig.Type)
	assert.Nil(t, sig.TargetPrice)
	assert.Nil(t, sig.StopLoss)
}

func TestGenerateForStockIdempotent(t *testing.T) {
	candles, indicators := bullishFixture()
	store := newFakeSignalStore()
	engine := newTestEngine(candles, indicators, nil, store)

	cfg := contracts.DefaultAnalysisConfig()
	first, err := engine.GenerateForStock(context.Background(), "005930", testDate, cfg)
	require.NoError(t, err)
	second, err := engine.GenerateForStock(context.Background(), "005930", testDate, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs reproduce the identical signal")
	assert.Len(t, store.rows, 1, "upsert, not a duplicate row")
}

func TestGenerateForStockThresholdMonotonicity(t *testing.T) {
	candles, indicators := bullishFixture()
	store := newFakeSignalStore()
	engine := newTestEngine(candles, indicators, nil, store)

	cfg := contracts.DefaultAnalysisConfig()
	sig, err := engine.GenerateForStock(context.Background(), "005930", testDate, cfg)
	require.NoError(t, err)
	require.Equal(t, contracts.SignalBuy, sig.Type)

	// Raising the buy threshold above the confidence reclassifies to hold
	cfg.SignalThresholds.Buy = sig.Confidence + 1
	regenerated, err := engine.GenerateForStock(context.Background(), "005930", testDate, cfg)
	require.NoError(t, err)

	assert.Equal(t, contracts.SignalHold, regenerated.Type)
	assert.Equal(t, sig.Confidence, regenerated.Confidence, "confidence is threshold-independent")
}

func TestGenerateForStockNewsMovesConfidence(t *testing.T) {
	candles, indicators := bullishFixture()
	news := &fakeNewsStore{items: []contracts.NewsItem{
		{Sentiment: contracts.SentimentPositive, ImpactScore: 80, PublishedAt: testDate.AddDate(0, 0, -1)},
	}}
	engine := newTestEngine(candles, indicators, news, newFakeSignalStore())

	sig, err := engine.GenerateForStock(context.Background(), "005930", testDate, contracts.DefaultAnalysisConfig())
	require.NoError(t, err)

	// News impact 0.9 adds 0.9*0.05*100 = 4.5 on top of 77.5 -> 82
	assert.Equal(t, 82, sig.Confidence)
	assert.InDelta(t, 0.9, sig.Meta.NewsImpact, 1e-9)
}
