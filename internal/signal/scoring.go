package signal

import (
	"math"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
)

// newsWindow is the trailing window news items are scored over.
const newsWindow = 7 * 24 * time.Hour

// SubScores are the six 0-100 factor scores feeding the weighted confidence.
type SubScores struct {
	Volume        float64
	Liquidity     float64
	Trend         float64
	MeanReversion float64
	Volatility    float64
	News          float64
}

// Map returns the sub-scores keyed by factor name for calculation metadata.
func (s SubScores) Map() map[string]float64 {
	return map[string]float64{
		"volume":         s.Volume,
		"liquidity":      s.Liquidity,
		"trend":          s.Trend,
		"mean_reversion": s.MeanReversion,
		"volatility":     s.Volatility,
		"news":           s.News,
	}
}

// ComputeSubScores derives all factor scores from an indicator snapshot and
// the news impact.
func ComputeSubScores(snap *contracts.IndicatorSnapshot, newsImpact float64) SubScores {
	return SubScores{
		Volume:        VolumeScore(snap.VolumeRatio),
		Liquidity:     LiquidityScore(snap),
		Trend:         TrendScore(snap.RSI14),
		MeanReversion: MeanReversionScore(snap.RSI14),
		Volatility:    VolatilityScore(snap.Volatility20),
		News:          newsImpact * 100,
	}
}

// VolumeScore is piecewise-linear in the volume ratio: saturated at 2x
// average volume, 50-100 between 1x and 2x, 0-100 below 1x.
func VolumeScore(ratio float64) float64 {
	switch {
	case ratio >= 2.0:
		return 100
	case ratio >= 1.0:
		return 50 + (ratio-1.0)*50
	case ratio > 0:
		return ratio * 100
	default:
		return 0
	}
}

// LiquidityScore is taken from the snapshot, defaulting to neutral 50
// when the snapshot carries none.
func LiquidityScore(snap *contracts.IndicatorSnapshot) float64 {
	if snap == nil || snap.LiquidityScore == 0 {
		return 50
	}
	return snap.LiquidityScore
}

// TrendScore is an RSI-derived proxy: oversold reads bullish, overbought
// reads bearish.
func TrendScore(rsi float64) float64 {
	switch {
	case rsi < 30:
		return 80
	case rsi > 70:
		return 20
	default:
		return 50
	}
}

// MeanReversionScore rates reversion opportunity at RSI extremes.
func MeanReversionScore(rsi float64) float64 {
	if rsi < 30 || rsi > 70 {
		return 70
	}
	return 30
}

// VolatilityScore favors trend stability: lower volatility scores higher.
func VolatilityScore(volatility float64) float64 {
	switch {
	case volatility < 20:
		return 80
	case volatility < 50:
		return 50
	default:
		return 20
	}
}

// NewsImpact averages recent news into [0,1]. Items outside the trailing
// window are ignored. No recent news is neutral 0, not 0.5, so newsless
// stocks contribute nothing through the news weight.
func NewsImpact(items []contracts.NewsItem, asOf time.Time) float64 {
	cutoff := asOf.Add(-newsWindow)

	var sum float64
	counted := 0
	for _, item := range items {
		if item.PublishedAt.Before(cutoff) || item.PublishedAt.After(asOf) {
			continue
		}
		sum += (item.ImpactScore / 100) * item.Sentiment.Sign()
		counted++
	}
	if counted == 0 {
		return 0
	}

	avg := sum / float64(counted)
	return (avg + 1) / 2
}

// Confidence folds the weighted sub-scores into a 0-100 integer.
// The clamp holds even when a sub-score drifts out of range.
func Confidence(scores SubScores, w contracts.IndicatorWeights) int {
	raw := 100 * (scores.Volume/100*w.Volume +
		scores.Liquidity/100*w.Liquidity +
		scores.Trend/100*w.Trend +
		scores.MeanReversion/100*w.MeanReversion +
		scores.Volatility/100*w.Volatility +
		scores.News/100*w.News)

	confidence := int(math.Round(raw))
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

// Classify thresholds a confidence score into a signal type.
func Classify(confidence int, t contracts.SignalThresholds) contracts.SignalType {
	switch {
	case confidence >= t.Buy:
		return contracts.SignalBuy
	case confidence <= t.Sell:
		return contracts.SignalSell
	default:
		return contracts.SignalHold
	}
}
