package contracts

import (
	"fmt"
	"math"
)

// IndicatorWeights are the six factor weights of the weighted signal engine.
// They must sum to 1.0; the sum is enforced when settings are written,
// never at scoring time.
type IndicatorWeights struct {
	Volume        float64 `json:"volume"`
	Liquidity     float64 `json:"liquidity"`
	Trend         float64 `json:"trend"`
	MeanReversion float64 `json:"mean_reversion"`
	Volatility    float64 `json:"volatility"`
	News          float64 `json:"news"`
}

// Sum returns the total of all six weights.
func (w IndicatorWeights) Sum() float64 {
	return w.Volume + w.Liquidity + w.Trend + w.MeanReversion + w.Volatility + w.News
}

// SignalThresholds classify a confidence score into a signal type.
type SignalThresholds struct {
	Buy           int `json:"buy"`
	Sell          int `json:"sell"`
	MinConfidence int `json:"min_confidence"`
}

// RiskThresholds parameterize the risk assessor.
type RiskThresholds struct {
	VolatilityLow    float64 `json:"volatility_low"`
	VolatilityMedium float64 `json:"volatility_medium"`
	LiquidityMin     float64 `json:"liquidity_min"`
}

// AnalysisConfig is the configuration snapshot injected into a pipeline run.
// Loaded once per run; the engines never read ambient settings.
type AnalysisConfig struct {
	Weights          IndicatorWeights `json:"weights"`
	SignalThresholds SignalThresholds `json:"signal_thresholds"`
	RiskThresholds   RiskThresholds   `json:"risk_thresholds"`
}

// weightSumTolerance allows for float rounding in stored weights.
const weightSumTolerance = 0.01

// Validate checks the configuration invariants.
// Invalid configuration is rejected at write time so the engines
// never execute with it.
func (c AnalysisConfig) Validate() error {
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("indicator weights must sum to 1.0, got %.4f", sum)
	}
	for name, v := range map[string]int{
		"buy":            c.SignalThresholds.Buy,
		"sell":           c.SignalThresholds.Sell,
		"min_confidence": c.SignalThresholds.MinConfidence,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("threshold %s out of range [0,100]: %d", name, v)
		}
	}
	if c.RiskThresholds.VolatilityLow < 0 || c.RiskThresholds.VolatilityMedium < c.RiskThresholds.VolatilityLow {
		return fmt.Errorf("invalid volatility risk thresholds: low=%.2f medium=%.2f",
			c.RiskThresholds.VolatilityLow, c.RiskThresholds.VolatilityMedium)
	}
	if c.RiskThresholds.LiquidityMin < 0 || c.RiskThresholds.LiquidityMin > 100 {
		return fmt.Errorf("liquidity minimum out of range [0,100]: %.2f", c.RiskThresholds.LiquidityMin)
	}
	return nil
}

// DefaultAnalysisConfig returns the configuration used when no
// settings rows exist yet.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Weights: IndicatorWeights{
			Volume:        0.25,
			Liquidity:     0.20,
			Trend:         0.25,
			MeanReversion: 0.15,
			Volatility:    0.10,
			News:          0.05,
		},
		SignalThresholds: SignalThresholds{
			Buy:           70,
			Sell:          30,
			MinConfidence: 0,
		},
		RiskThresholds: RiskThresholds{
			VolatilityLow:    20,
			VolatilityMedium: 50,
			LiquidityMin:     40,
		},
	}
}
