package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistalabs/vista/internal/contracts"
)

func batchFixture(rsi, vol20, vol60, avgVol float64, volume int64) (map[string]contracts.Candle, map[string]contracts.IndicatorSnapshot) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	candles := map[string]contracts.Candle{
		"005930": {StockCode: "005930", Date: date, Open: 100, High: 106, Low: 99, Close: 105, Volume: volume},
	}
	snapshots := map[string]contracts.IndicatorSnapshot{
		"005930": {StockCode: "005930", Date: date, RSI14: rsi, Volatility20: vol20, Volatility60: vol60, AvgVolume20: avgVol},
	}
	return candles, snapshots
}

func TestGenerateBatchOversold(t *testing.T) {
	candles, snaps := batchFixture(25, 1, 2, 1000, 1000)
	signals := GenerateBatch(candles, snaps, "nightly")

	require.Len(t, signals, 1)
	sig := signals[0]
	assert.Equal(t, contracts.SignalBuy, sig.Type)
	assert.Equal(t, 68, sig.Confidence)
	assert.Equal(t, "batch-v1-nightly", sig.SourceVersion)
	assert.NotNil(t, sig.TargetPrice)
	assert.NotNil(t, sig.StopLoss)
}

func TestGenerateBatchOverbought(t *testing.T) {
	candles, snaps := batchFixture(75, 1, 2, 1000, 1000)
	signals := GenerateBatch(candles, snaps, "nightly")

	require.Len(t, signals, 1)
	assert.Equal(t, contracts.SignalSell, signals[0].Type)
	assert.Equal(t, 66, signals[0].Confidence)
	assert.Nil(t, signals[0].TargetPrice)
}

func TestGenerateBatchVolumeSpike(t *testing.T) {
	candles, snaps := batchFixture(50, 1, 2, 1000, 2000)
	signals := GenerateBatch(candles, snaps, "nightly")

	require.Len(t, signals, 1)
	assert.Equal(t, contracts.SignalBuy, signals[0].Type)
	assert.Equal(t, 60, signals[0].Confidence)
}

func TestGenerateBatchDefaultHold(t *testing.T) {
	candles, snaps := batchFixture(50, 1, 2, 1000, 1000)
	signals := GenerateBatch(candles, snaps, "nightly")

	require.Len(t, signals, 1)
	assert.Equal(t, contracts.SignalHold, signals[0].Type)
	assert.Equal(t, 50, signals[0].Confidence)
}

func TestGenerateBatchRisk(t *testing.T) {
	t.Run("rising short-window volatility is high", func(t *testing.T) {
		candles, snaps := batchFixture(50, 5, 2, 1000, 1000)
		signals := GenerateBatch(candles, snaps, "x")
		assert.Equal(t, contracts.RiskHigh, signals[0].RiskLevel)
	})

	t.Run("near-zero volatility is low", func(t *testing.T) {
		candles, snaps := batchFixture(50, 0.2, 2, 1000, 1000)
		signals := GenerateBatch(candles, snaps, "x")
		assert.Equal(t, contracts.RiskLow, signals[0].RiskLevel)
	})

	t.Run("otherwise medium", func(t *testing.T) {
		candles, snaps := batchFixture(50, 1, 2, 1000, 1000)
		signals := GenerateBatch(candles, snaps, "x")
		assert.Equal(t, contracts.RiskMedium, signals[0].RiskLevel)
	})
}

func TestGenerateBatchSkipsStocksWithoutIndicators(t *testing.T) {
	candles, _ := batchFixture(50, 1, 2, 1000, 1000)
	signals := GenerateBatch(candles, map[string]contracts.IndicatorSnapshot{}, "x")
	assert.Empty(t, signals)
}
