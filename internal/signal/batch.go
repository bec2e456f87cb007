package signal

import (
	"github.com/vistalabs/vista/internal/contracts"
)

// Batch fallback rule constants.
const (
	batchOversoldRSI   = 30.0
	batchOverboughtRSI = 70.0
	batchVolumeSpike   = 1.5
	batchLowVolatility = 0.5
)

// GenerateBatch is the reduced fallback scorer for bulk offline runs.
// It uses only RSI thresholds and volume spikes, without news or weights.
// The weighted engine is authoritative whenever configuration is available;
// this path exists for environments without a settings store.
func GenerateBatch(candles map[string]contracts.Candle, snapshots map[string]contracts.IndicatorSnapshot, label string) []contracts.Signal {
	var signals []contracts.Signal

	for stockCode, candle := range candles {
		snap, ok := snapshots[stockCode]
		if !ok {
			continue
		}

		sigType, confidence := batchRule(candle, snap)
		price := candle.Close

		sig := contracts.Signal{
			StockCode:     stockCode,
			Date:          candle.Date,
			Type:          sigType,
			Confidence:    confidence,
			RiskLevel:     batchRisk(snap),
			PriceAtSignal: &price,
			Status:        contracts.SignalStatusPublished,
			SourceVersion: "batch-v1-" + label,
		}

		if sigType == contracts.SignalBuy {
			target := round2(candle.Close * targetBand)
			stop := round2(candle.Close * stopLossBand)
			sig.TargetPrice = &target
			sig.StopLoss = &stop
		}

		signals = append(signals, sig)
	}

	return signals
}

// batchRule applies the fixed rule set in priority order.
func batchRule(candle contracts.Candle, snap contracts.IndicatorSnapshot) (contracts.SignalType, int) {
	switch {
	case snap.RSI14 <= batchOversoldRSI:
		return contracts.SignalBuy, 68
	case snap.RSI14 >= batchOverboughtRSI:
		return contracts.SignalSell, 66
	case snap.AvgVolume20 > 0 && float64(candle.Volume) > snap.AvgVolume20*batchVolumeSpike:
		return contracts.SignalBuy, 60
	default:
		return contracts.SignalHold, 50
	}
}

// batchRisk compares short and long volatility windows.
func batchRisk(snap contracts.IndicatorSnapshot) contracts.RiskLevel {
	switch {
	case snap.Volatility20 > snap.Volatility60:
		return contracts.RiskHigh
	case snap.Volatility20 < batchLowVolatility:
		return contracts.RiskLow
	default:
		return contracts.RiskMedium
	}
}
