package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/config"
	"github.com/vistalabs/vista/pkg/httputil"
	"github.com/vistalabs/vista/pkg/logger"
)

// Client fetches daily OHLCV rows from the market data provider.
// Provider responses are treated as untrusted; fields come back nullable
// and the quality gate decides what survives.
type Client struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// NewClient creates a provider client. Requests are rate limited to the
// configured requests-per-second because the provider throttles hard.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	httpClient := httputil.NewWithTimeout(log, 20*time.Second).
		WithRetry(3, 1*time.Second).
		WithRateLimit(cfg.Provider.RequestsPerSec)

	return &Client{
		http:    httpClient,
		baseURL: cfg.Provider.BaseURL,
		apiKey:  cfg.Provider.APIKey,
		logger:  log,
	}
}

// dailyResponse is the provider's daily price payload.
type dailyResponse struct {
	Symbol string     `json:"symbol"`
	Rows   []dailyRow `json:"rows"`
}

type dailyRow struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *int64   `json:"volume"`
}

// FetchDailyRows returns raw daily rows for one stock over a date range.
func (c *Client) FetchDailyRows(ctx context.Context, stockCode string, from, to time.Time) ([]contracts.DayRow, error) {
	endpoint := fmt.Sprintf("%s/v1/daily?%s", c.baseURL, url.Values{
		"symbol": {stockCode},
		"from":   {from.Format("2006-01-02")},
		"to":     {to.Format("2006-01-02")},
		"apikey": {c.apiKey},
	}.Encode())

	var resp dailyResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetch daily prices failed: stock=%s: %w", stockCode, err)
	}

	rows := make([]contracts.DayRow, 0, len(resp.Rows))
	for _, raw := range resp.Rows {
		row := contracts.DayRow{
			StockCode: stockCode,
			Open:      raw.Open,
			High:      raw.High,
			Low:       raw.Low,
			Close:     raw.Close,
			Volume:    raw.Volume,
		}
		if parsed, err := time.Parse("2006-01-02", raw.Date); err == nil {
			row.Date = &parsed
		}
		rows = append(rows, row)
	}

	c.logger.WithFields(map[string]interface{}{
		"stock": stockCode,
		"rows":  len(rows),
	}).Debug("Fetched daily rows from provider")

	return rows, nil
}
