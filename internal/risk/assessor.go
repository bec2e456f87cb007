package risk

import "github.com/vistalabs/vista/internal/contracts"

// Assess classifies a stock's risk from its latest indicator snapshot.
// No snapshot means the risk cannot be measured, so it defaults to medium.
// Sub-risks combine by worst case: a single red flag is never diluted
// by an otherwise-good metric.
func Assess(snap *contracts.IndicatorSnapshot, thresholds contracts.RiskThresholds) contracts.RiskLevel {
	if snap == nil {
		return contracts.RiskMedium
	}

	return contracts.CombineRisk(
		volatilityRisk(snap.Volatility20, thresholds),
		liquidityRisk(snap.LiquidityScore, thresholds),
	)
}

func volatilityRisk(volatility float64, t contracts.RiskThresholds) contracts.RiskLevel {
	switch {
	case volatility <= t.VolatilityLow:
		return contracts.RiskLow
	case volatility >= t.VolatilityMedium:
		return contracts.RiskHigh
	default:
		return contracts.RiskMedium
	}
}

// liquidityRisk is binary: a stock is either liquid enough or it is not.
func liquidityRisk(liquidityScore float64, t contracts.RiskThresholds) contracts.RiskLevel {
	if liquidityScore >= t.LiquidityMin {
		return contracts.RiskLow
	}
	return contracts.RiskHigh
}
