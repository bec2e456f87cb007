package contracts

import "time"

// IndicatorSnapshot is the derived technical state of one stock on one date.
// Computed only from candles with date <= snapshot date; upserted by (stock, date).
type IndicatorSnapshot struct {
	ID             int64     `json:"id"`
	StockCode      string    `json:"stock_code"`
	Date           time.Time `json:"date"`
	RSI14          float64   `json:"rsi_14"`
	MA20           float64   `json:"ma_20"`
	MA50           float64   `json:"ma_50"`
	MA200          float64   `json:"ma_200"`
	Volatility20   float64   `json:"volatility_20"`
	Volatility60   float64   `json:"volatility_60"`
	AvgVolume20    float64   `json:"avg_volume_20"`
	AvgVolume60    float64   `json:"avg_volume_60"`
	VolumeRatio    float64   `json:"volume_ratio"`
	LiquidityScore float64   `json:"liquidity_score"`
	CreatedAt      time.Time `json:"created_at"`
}
