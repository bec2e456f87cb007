package signal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/internal/risk"
	"github.com/vistalabs/vista/pkg/logger"
)

// Fixed buy-signal price bands. Not derived from volatility.
const (
	targetBand   = 1.08
	stopLossBand = 0.94
)

// sourceVersionWeighted tags signals produced by the weighted engine.
const sourceVersionWeighted = "weighted-v1"

// Engine is the weighted signal engine. It is a pure function of
// (candle, indicator, news, configuration); given identical inputs it
// always produces an identical signal.
type Engine struct {
	candles    contracts.CandleStore
	indicators contracts.IndicatorStore
	news       contracts.NewsStore
	signals    contracts.SignalStore
	logger     *logger.Logger
}

// NewEngine creates a signal engine. The news store may be nil; stocks then
// score with a neutral news impact.
func NewEngine(
	candles contracts.CandleStore,
	indicators contracts.IndicatorStore,
	news contracts.NewsStore,
	signals contracts.SignalStore,
	log *logger.Logger,
) *Engine {
	return &Engine{
		candles:    candles,
		indicators: indicators,
		news:       news,
		signals:    signals,
		logger:     log,
	}
}

// GenerateForStock scores one stock as of a date and upserts the result.
// A stock missing its candle or indicator for the date yields no signal
// and no error; that outcome is logged and skipped.
func (e *Engine) GenerateForStock(ctx context.Context, stockCode string, date time.Time, cfg contracts.AnalysisConfig) (*contracts.Signal, error) {
	candle, err := e.candles.Latest(ctx, stockCode, date)
	if err != nil {
		return nil, fmt.Errorf("fetch latest candle failed: stock=%s: %w", stockCode, err)
	}
	snap, err := e.indicators.Latest(ctx, stockCode, date)
	if err != nil {
		return nil, fmt.Errorf("fetch latest indicator failed: stock=%s: %w", stockCode, err)
	}
	if candle == nil || snap == nil {
		e.logger.WithFields(map[string]interface{}{
			"stock": stockCode,
			"date":  date.Format("2006-01-02"),
		}).Debug("No candle or indicator data, skipping signal")
		return nil, nil
	}

	var newsItems []contracts.NewsItem
	if e.news != nil {
		newsItems, err = e.news.Recent(ctx, stockCode, date, newsWindow)
		if err != nil {
			// News is an enrichment input; score without it rather than
			// failing the stock.
			e.logger.WithError(err).WithField("stock", stockCode).Warn("News fetch failed, scoring without news")
			newsItems = nil
		}
	}

	sig := Score(candle, snap, newsItems, date, cfg)
	sig.StockCode = stockCode

	stored, err := e.signals.Upsert(ctx, sig)
	if err != nil {
		return nil, fmt.Errorf("store signal failed: stock=%s: %w", stockCode, err)
	}

	e.logger.WithFields(map[string]interface{}{
		"stock":      stockCode,
		"date":       stored.Date.Format("2006-01-02"),
		"type":       stored.Type,
		"confidence": stored.Confidence,
		"risk":       stored.RiskLevel,
	}).Info("Signal generated")

	return stored, nil
}

// Score computes a signal from already-fetched inputs. It performs no I/O,
// which keeps the derivation reproducible from the stored calculation
// metadata alone.
func Score(candle *contracts.Candle, snap *contracts.IndicatorSnapshot, newsItems []contracts.NewsItem, date time.Time, cfg contracts.AnalysisConfig) *contracts.Signal {
	impact := NewsImpact(newsItems, date)
	scores := ComputeSubScores(snap, impact)
	confidence := Confidence(scores, cfg.Weights)
	sigType := Classify(confidence, cfg.SignalThresholds)
	riskLevel := risk.Assess(snap, cfg.RiskThresholds)

	price := candle.Close
	sig := &contracts.Signal{
		StockCode:     candle.StockCode,
		Date:          snap.Date,
		Type:          sigType,
		Confidence:    confidence,
		RiskLevel:     riskLevel,
		PriceAtSignal: &price,
		Status:        contracts.SignalStatusPublished,
		SourceVersion: sourceVersionWeighted,
		Meta: &contracts.CalculationMeta{
			Weights:     cfg.Weights,
			Thresholds:  cfg.SignalThresholds,
			SubScores:   scores.Map(),
			NewsImpact:  impact,
			RSI14:       snap.RSI14,
			VolumeRatio: snap.VolumeRatio,
			Volatility:  snap.Volatility20,
			Close:       candle.Close,
		},
	}

	if sigType == contracts.SignalBuy {
		target := round2(candle.Close * targetBand)
		stop := round2(candle.Close * stopLossBand)
		sig.TargetPrice = &target
		sig.StopLoss = &stop
	}

	return sig
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
