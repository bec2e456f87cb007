package indicator

import (
	"math"

	"github.com/vistalabs/vista/internal/contracts"
)

// Default calculation windows.
const (
	RSIPeriod      = 14
	MAShortPeriod  = 20
	MAMidPeriod    = 50
	MALongPeriod   = 200
	VolShortPeriod = 20
	VolLongPeriod  = 60
	VolumeAvgShort = 20
	VolumeAvgLong  = 60
	neutralRSI     = 50.0
)

// ComputeSnapshot derives the indicator snapshot for the latest date in the
// candle series. Candles must be ordered by date ascending. Degenerate input
// never fails; it produces the defined neutral defaults so scoring always
// receives valid numbers.
func ComputeSnapshot(stockCode string, candles []contracts.Candle) *contracts.IndicatorSnapshot {
	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = float64(c.Volume)
	}

	snap := &contracts.IndicatorSnapshot{
		StockCode:    stockCode,
		RSI14:        RSI(closes, RSIPeriod),
		MA20:         MovingAverage(closes, MAShortPeriod),
		MA50:         MovingAverage(closes, MAMidPeriod),
		MA200:        MovingAverage(closes, MALongPeriod),
		Volatility20: Volatility(closes, VolShortPeriod),
		Volatility60: Volatility(closes, VolLongPeriod),
		AvgVolume20:  MovingAverage(volumes, VolumeAvgShort),
		AvgVolume60:  MovingAverage(volumes, VolumeAvgLong),
	}

	if len(candles) > 0 {
		snap.Date = candles[len(candles)-1].Date
		latestVolume := volumes[len(volumes)-1]
		if snap.AvgVolume20 > 0 {
			snap.VolumeRatio = round2(latestVolume / snap.AvgVolume20)
		}
	}
	snap.LiquidityScore = LiquidityScore(snap.VolumeRatio, snap.AvgVolume20)

	return snap
}

// RSI computes the Wilder-style relative strength index over the last
// period+1 closes. Fewer than period+1 points returns a neutral 50.0.
// A perfectly flat window also returns 50.0 rather than the zero-loss
// branch's 100.0, so no movement is not reported as a strong uptrend.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return neutralRSI
	}

	window := closes[len(closes)-(period+1):]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	if gains == 0 && losses == 0 {
		return neutralRSI
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return round2(100 - 100/(1+rs))
}

// MovingAverage returns the arithmetic mean of the last period values.
// Shorter series average over what is available; empty returns 0.
func MovingAverage(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	window := values
	if len(values) > period {
		window = values[len(values)-period:]
	}

	var sum float64
	for _, v := range window {
		sum += v
	}
	return round2(sum / float64(len(window)))
}

// Volatility returns the population standard deviation of the last
// period values. Empty input returns 0.
func Volatility(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	window := values
	if len(values) > period {
		window = values[len(values)-period:]
	}

	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(len(window))

	var sq float64
	for _, v := range window {
		d := v - mean
		sq += d * d
	}
	return round4(math.Sqrt(sq / float64(len(window))))
}

// LiquidityScore blends relative trading activity and absolute depth.
// The volume-ratio component is linear up to 2x average volume and weighs
// 0.6; the logarithmic absolute-volume component weighs 0.4.
func LiquidityScore(volumeRatio, avgVolume float64) float64 {
	ratioScore := math.Min(100, volumeRatio*50)

	absScore := math.Min(100, math.Log10(math.Max(avgVolume, 1))*20)

	return round2(ratioScore*0.6 + absScore*0.4)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
