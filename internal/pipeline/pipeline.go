package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

// Stage collaborators. The pipeline only orchestrates; all real work
// lives in the stage services.
type (
	// Ingestor pulls and stores provider candles.
	Ingestor interface {
		IngestStocks(ctx context.Context, stockCodes []string, from, to time.Time) (int, error)
	}

	// RangeGate scores stored candles over a date range.
	RangeGate interface {
		AssessRange(ctx context.Context, stockCode string, candles []contracts.Candle, from, to time.Time) (*contracts.QualityAssessment, error)
	}

	// IndicatorComputer derives and stores a stock's snapshot.
	IndicatorComputer interface {
		ComputeForStock(ctx context.Context, stockCode string, asOf time.Time) (*contracts.IndicatorSnapshot, error)
	}

	// SignalGenerator scores and stores a stock's signal.
	SignalGenerator interface {
		GenerateForStock(ctx context.Context, stockCode string, date time.Time, cfg contracts.AnalysisConfig) (*contracts.Signal, error)
	}

	// Explainer attaches the templated rationale to a signal.
	Explainer interface {
		Attach(ctx context.Context, sig *contracts.Signal) (*contracts.Explanation, error)
	}

	// Notifier emits alert events for new signals.
	Notifier interface {
		Dispatch(ctx context.Context, signals []contracts.Signal) (int, error)
	}

	// NewsCollector refreshes stored headlines before scoring.
	NewsCollector interface {
		Collect(ctx context.Context, stockCodes []string) (int, error)
	}
)

// Options tune a pipeline run.
type Options struct {
	Workers     int
	HistoryDays int
}

// Pipeline runs the daily analysis batch: ingest, quality-check,
// compute indicators, generate signals, explain, notify.
type Pipeline struct {
	ingestor   Ingestor
	news       NewsCollector
	gate       RangeGate
	candles    contracts.CandleStore
	indicators IndicatorComputer
	engine     SignalGenerator
	explainer  Explainer
	notifier   Notifier
	settings   contracts.SettingsStore
	opts       Options
	logger     *logger.Logger
}

// New creates a pipeline. The ingestor, news collector and notifier may be
// nil; those stages are then skipped, which covers offline re-scoring runs.
func New(
	ingestor Ingestor,
	news NewsCollector,
	gate RangeGate,
	candles contracts.CandleStore,
	indicators IndicatorComputer,
	engine SignalGenerator,
	explainer Explainer,
	notifier Notifier,
	settings contracts.SettingsStore,
	opts Options,
	log *logger.Logger,
) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.HistoryDays < 1 {
		opts.HistoryDays = 260
	}
	return &Pipeline{
		ingestor:   ingestor,
		news:       news,
		gate:       gate,
		candles:    candles,
		indicators: indicators,
		engine:     engine,
		explainer:  explainer,
		notifier:   notifier,
		settings:   settings,
		opts:       opts,
		logger:     log,
	}
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Stocks        int
	Ingested      int
	Signals       int
	Skipped       int
	Notifications int
	Duration      time.Duration
}

// Run executes the full batch for a target date. Per-stock failures and
// panics are logged and skipped; one stock never aborts the batch.
func (p *Pipeline) Run(ctx context.Context, stockCodes []string, asOf time.Time) (*RunStats, error) {
	start := time.Now()

	cfg, err := p.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load analysis configuration failed: %w", err)
	}

	from := asOf.AddDate(0, 0, -p.opts.HistoryDays)

	if p.ingestor != nil {
		ingested, err := p.ingestor.IngestStocks(ctx, stockCodes, from, asOf)
		if err != nil {
			return nil, fmt.Errorf("ingestion stage failed: %w", err)
		}
		p.logger.WithField("candles", ingested).Info("Ingestion stage completed")
	}

	if len(stockCodes) == 0 {
		stockCodes, err = p.candles.ActiveStocks(ctx)
		if err != nil {
			return nil, fmt.Errorf("list active stocks failed: %w", err)
		}
	}

	if p.news != nil {
		if _, err := p.news.Collect(ctx, stockCodes); err != nil {
			p.logger.WithError(err).Warn("News collection stage failed")
		}
	}

	stats := &RunStats{Stocks: len(stockCodes)}

	signals := p.processStocks(ctx, stockCodes, asOf, from, cfg, stats)

	if p.notifier != nil && len(signals) > 0 {
		emitted, err := p.notifier.Dispatch(ctx, signals)
		if err != nil {
			p.logger.WithError(err).Warn("Notification stage failed")
		}
		stats.Notifications = emitted
	}

	stats.Signals = len(signals)
	stats.Duration = time.Since(start)

	p.logger.WithFields(map[string]interface{}{
		"stocks":        stats.Stocks,
		"signals":       stats.Signals,
		"skipped":       stats.Skipped,
		"notifications": stats.Notifications,
		"duration":      stats.Duration,
	}).Info("Pipeline run completed")

	return stats, nil
}

// processStocks fans stocks out over the worker pool and collects the
// generated signals. No state is shared across stocks except the
// read-only configuration snapshot.
func (p *Pipeline) processStocks(ctx context.Context, stockCodes []string, asOf, from time.Time, cfg contracts.AnalysisConfig, stats *RunStats) []contracts.Signal {
	jobs := make(chan string)
	var mu sync.Mutex
	var signals []contracts.Signal
	skipped := 0

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stockCode := range jobs {
				sig := p.processStock(ctx, stockCode, asOf, from, cfg)
				mu.Lock()
				if sig != nil {
					signals = append(signals, *sig)
				} else {
					skipped++
				}
				mu.Unlock()
			}
		}()
	}

	for _, code := range stockCodes {
		jobs <- code
	}
	close(jobs)
	wg.Wait()

	stats.Skipped = skipped
	return signals
}

// processStock runs the per-stock stages. A panic here is contained to
// the stock that raised it.
func (p *Pipeline) processStock(ctx context.Context, stockCode string, asOf, from time.Time, cfg contracts.AnalysisConfig) (sig *contracts.Signal) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(map[string]interface{}{
				"stock": stockCode,
				"date":  asOf.Format("2006-01-02"),
				"panic": fmt.Sprintf("%v", r),
			}).Error("Stock processing panicked, skipping")
			sig = nil
		}
	}()

	// Quality verdict is advisory on this path: stored data is scored and
	// audited but a poor score only warns.
	if p.gate != nil {
		history, err := p.candles.History(ctx, stockCode, asOf, p.opts.HistoryDays)
		if err != nil {
			p.logger.WithError(err).WithField("stock", stockCode).Warn("History fetch for quality check failed")
		} else {
			assessment, err := p.gate.AssessRange(ctx, stockCode, history, from, asOf)
			if err != nil {
				p.logger.WithError(err).WithField("stock", stockCode).Warn("Quality assessment failed")
			} else if !assessment.CanPublish {
				p.logger.WithFields(map[string]interface{}{
					"stock": stockCode,
					"score": assessment.Score,
				}).Warn("Data quality below threshold, generating signal anyway")
			}
		}
	}

	if _, err := p.indicators.ComputeForStock(ctx, stockCode, asOf); err != nil {
		p.logger.WithError(err).WithField("stock", stockCode).Warn("Indicator stage failed, skipping stock")
		return nil
	}

	generated, err := p.engine.GenerateForStock(ctx, stockCode, asOf, cfg)
	if err != nil {
		p.logger.WithError(err).WithField("stock", stockCode).Warn("Signal stage failed, skipping stock")
		return nil
	}
	if generated == nil {
		return nil
	}

	if p.explainer != nil {
		if _, err := p.explainer.Attach(ctx, generated); err != nil {
			p.logger.WithError(err).WithField("stock", stockCode).Warn("Explanation stage failed")
		}
	}

	return generated
}
