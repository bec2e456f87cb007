package contracts

import (
	"fmt"
	"time"
)

// Candle is one trading day's OHLCV for one stock.
// Immutable once validated; ingestion upserts by (stock, date).
type Candle struct {
	ID        int64     `json:"id"`
	StockCode string    `json:"stock_code"`
	Date      time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the OHLCV invariants at the ingestion boundary.
// Malformed rows are rejected here and never reach the engines.
func (c *Candle) Validate() error {
	if c.StockCode == "" {
		return fmt.Errorf("candle missing stock code")
	}
	if c.Date.IsZero() {
		return fmt.Errorf("candle missing date: stock=%s", c.StockCode)
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return fmt.Errorf("non-positive price: stock=%s date=%s", c.StockCode, c.Date.Format("2006-01-02"))
	}
	if c.Volume < 0 {
		return fmt.Errorf("negative volume: stock=%s date=%s", c.StockCode, c.Date.Format("2006-01-02"))
	}
	maxOC := c.Open
	if c.Close > maxOC {
		maxOC = c.Close
	}
	minOC := c.Open
	if c.Close < minOC {
		minOC = c.Close
	}
	if c.High < maxOC {
		return fmt.Errorf("high below open/close: stock=%s date=%s", c.StockCode, c.Date.Format("2006-01-02"))
	}
	if c.Low > minOC {
		return fmt.Errorf("low above open/close: stock=%s date=%s", c.StockCode, c.Date.Format("2006-01-02"))
	}
	return nil
}

// DayRow is a loosely shaped ingestion row before it becomes a Candle.
// Numeric fields are nullable so the quality gate can count violations
// instead of failing on malformed provider data.
type DayRow struct {
	StockCode string     `json:"stock_code"`
	Date      *time.Time `json:"date"`
	Open      *float64   `json:"open"`
	High      *float64   `json:"high"`
	Low       *float64   `json:"low"`
	Close     *float64   `json:"close"`
	Volume    *int64     `json:"volume"`
}
