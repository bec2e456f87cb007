package indicator

import (
	"context"
	"fmt"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

// historyLimit bounds how many candles feed one snapshot.
// MA200 is the longest window, so 250 covers it with margin.
const historyLimit = 250

// Service computes and persists indicator snapshots.
type Service struct {
	candles    contracts.CandleStore
	indicators contracts.IndicatorStore
	logger     *logger.Logger
}

// NewService creates an indicator service.
func NewService(candles contracts.CandleStore, indicators contracts.IndicatorStore, log *logger.Logger) *Service {
	return &Service{
		candles:    candles,
		indicators: indicators,
		logger:     log,
	}
}

// ComputeForStock derives and upserts the snapshot for one stock as of a date.
// A stock with no candle history yields no snapshot and no error.
func (s *Service) ComputeForStock(ctx context.Context, stockCode string, asOf time.Time) (*contracts.IndicatorSnapshot, error) {
	history, err := s.candles.History(ctx, stockCode, asOf, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch candle history failed: stock=%s: %w", stockCode, err)
	}
	if len(history) == 0 {
		s.logger.WithFields(map[string]interface{}{
			"stock": stockCode,
			"as_of": asOf.Format("2006-01-02"),
		}).Debug("No candle history, skipping indicator snapshot")
		return nil, nil
	}

	snap := ComputeSnapshot(stockCode, history)
	if err := s.indicators.Upsert(ctx, snap); err != nil {
		return nil, fmt.Errorf("store indicator snapshot failed: stock=%s: %w", stockCode, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"stock":  stockCode,
		"date":   snap.Date.Format("2006-01-02"),
		"rsi_14": snap.RSI14,
	}).Debug("Indicator snapshot stored")

	return snap, nil
}

// ComputeForStocks computes snapshots for many stocks sequentially.
// Per-stock failures are logged and skipped.
func (s *Service) ComputeForStocks(ctx context.Context, stockCodes []string, asOf time.Time) (int, error) {
	computed := 0
	for _, code := range stockCodes {
		snap, err := s.ComputeForStock(ctx, code, asOf)
		if err != nil {
			s.logger.WithError(err).WithField("stock", code).Warn("Indicator computation failed, skipping stock")
			continue
		}
		if snap != nil {
			computed++
		}
	}
	return computed, nil
}
