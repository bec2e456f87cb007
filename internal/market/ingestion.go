package market

import (
	"context"
	"fmt"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

// PriceSource supplies raw daily rows for one stock.
// Implemented by the external provider client.
type PriceSource interface {
	FetchDailyRows(ctx context.Context, stockCode string, from, to time.Time) ([]contracts.DayRow, error)
}

// BatchGate scores a batch of raw rows before storage.
type BatchGate interface {
	AssessBatch(ctx context.Context, stockCode string, rows []contracts.DayRow) (*contracts.QualityAssessment, error)
}

// IngestionService pulls provider rows, gates them, and stores valid candles.
type IngestionService struct {
	source  PriceSource
	gate    BatchGate
	candles contracts.CandleStore
	logger  *logger.Logger
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(source PriceSource, gate BatchGate, candles contracts.CandleStore, log *logger.Logger) *IngestionService {
	return &IngestionService{
		source:  source,
		gate:    gate,
		candles: candles,
		logger:  log,
	}
}

// IngestResult summarizes one stock's ingestion run.
type IngestResult struct {
	StockCode    string
	Fetched      int
	Stored       int
	Skipped      int
	QualityScore float64
}

// IngestStock fetches and stores candles for one stock over a date range.
// Malformed rows lower the batch quality score and are skipped; they never
// reach the engines. The quality verdict is advisory here: valid rows are
// stored even when the batch as a whole scores poorly.
func (s *IngestionService) IngestStock(ctx context.Context, stockCode string, from, to time.Time) (*IngestResult, error) {
	rows, err := s.source.FetchDailyRows(ctx, stockCode, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch daily rows failed: stock=%s: %w", stockCode, err)
	}

	result := &IngestResult{StockCode: stockCode, Fetched: len(rows)}
	if len(rows) == 0 {
		s.logger.WithField("stock", stockCode).Debug("Provider returned no rows")
		return result, nil
	}

	assessment, err := s.gate.AssessBatch(ctx, stockCode, rows)
	if err != nil {
		return nil, fmt.Errorf("batch quality assessment failed: stock=%s: %w", stockCode, err)
	}
	result.QualityScore = assessment.Score
	if !assessment.CanPublish {
		s.logger.WithFields(map[string]interface{}{
			"stock":     stockCode,
			"score":     assessment.Score,
			"anomalies": assessment.Anomalies,
		}).Warn("Batch quality below publish threshold")
	}

	var candles []contracts.Candle
	for _, row := range rows {
		candle, ok := rowToCandle(stockCode, row)
		if !ok {
			result.Skipped++
			continue
		}
		if err := candle.Validate(); err != nil {
			s.logger.WithError(err).WithField("stock", stockCode).Debug("Rejected malformed candle row")
			result.Skipped++
			continue
		}
		candles = append(candles, candle)
	}

	stored, err := s.candles.UpsertBatch(ctx, candles)
	if err != nil {
		return nil, fmt.Errorf("store candles failed: stock=%s: %w", stockCode, err)
	}
	result.Stored = stored

	s.logger.WithFields(map[string]interface{}{
		"stock":   stockCode,
		"fetched": result.Fetched,
		"stored":  result.Stored,
		"skipped": result.Skipped,
	}).Info("Candle ingestion completed")

	return result, nil
}

// IngestStocks ingests many stocks sequentially, skipping per-stock failures.
func (s *IngestionService) IngestStocks(ctx context.Context, stockCodes []string, from, to time.Time) (int, error) {
	stored := 0
	for _, code := range stockCodes {
		res, err := s.IngestStock(ctx, code, from, to)
		if err != nil {
			s.logger.WithError(err).WithField("stock", code).Warn("Ingestion failed, skipping stock")
			continue
		}
		stored += res.Stored
	}
	return stored, nil
}

// rowToCandle converts a raw provider row into a candle.
// Rows with any missing field are dropped; the quality gate has already
// counted them against the batch score.
func rowToCandle(stockCode string, row contracts.DayRow) (contracts.Candle, bool) {
	if row.Date == nil || row.Open == nil || row.High == nil || row.Low == nil || row.Close == nil || row.Volume == nil {
		return contracts.Candle{}, false
	}
	return contracts.Candle{
		StockCode: stockCode,
		Date:      *row.Date,
		Open:      *row.Open,
		High:      *row.High,
		Low:       *row.Low,
		Close:     *row.Close,
		Volume:    *row.Volume,
	}, true
}
