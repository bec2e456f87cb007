package quality

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

// Scoring constants.
const (
	missingClosePenalty = 10.0
	publishThreshold    = 70.0
	acceptThreshold     = 70.0
	completenessWarnAt  = 80.0
	outlierWarnAt       = 70.0
	outlierSigma        = 3.0
)

const missingCloseAnomaly = "missing close price detected in batch"

// Gate scores ingested data and records an audit trail of every verdict.
// It never fails on malformed input; missing fields lower the score instead.
type Gate struct {
	store  contracts.AssessmentStore
	logger *logger.Logger
}

// NewGate creates a quality gate.
func NewGate(store contracts.AssessmentStore, log *logger.Logger) *Gate {
	return &Gate{store: store, logger: log}
}

// AssessBatch scores a flat batch of raw rows by missing-close count.
// Every evaluation persists an audit record, even when the caller
// discards the verdict.
func (g *Gate) AssessBatch(ctx context.Context, stockCode string, rows []contracts.DayRow) (*contracts.QualityAssessment, error) {
	assessment := &contracts.QualityAssessment{
		StockCode:   stockCode,
		Mode:        contracts.QualityModeBatch,
		EvaluatedAt: time.Now(),
	}

	if len(rows) == 0 {
		assessment.Score = 0
		assessment.CanPublish = false
		assessment.Anomalies = []string{"empty batch"}
		return g.persist(ctx, assessment)
	}

	missing := 0
	for _, row := range rows {
		if row.Close == nil {
			missing++
		}
	}

	assessment.Score = math.Max(0, 100-float64(missing)*missingClosePenalty)
	assessment.CanPublish = assessment.Score >= publishThreshold
	if missing > 0 {
		assessment.Anomalies = append(assessment.Anomalies, missingCloseAnomaly)
	}

	return g.persist(ctx, assessment)
}

// AssessRange scores a stock's candle collection against a date range,
// combining range completeness with a price-change outlier scan.
func (g *Gate) AssessRange(ctx context.Context, stockCode string, candles []contracts.Candle, from, to time.Time) (*contracts.QualityAssessment, error) {
	assessment := &contracts.QualityAssessment{
		StockCode:   stockCode,
		Mode:        contracts.QualityModeRange,
		EvaluatedAt: time.Now(),
	}

	expectedDays := int(to.Sub(from).Hours()/24) + 1
	if expectedDays < 1 {
		expectedDays = 1
	}

	completeness := math.Min(100, float64(len(candles))/float64(expectedDays)*100)
	outlierScore := outlierScoreOf(candles)

	assessment.CompletenessRate = round2(completeness)
	assessment.OutlierScore = round2(outlierScore)
	assessment.Score = round2((completeness + outlierScore) / 2)
	assessment.CanPublish = assessment.Score >= acceptThreshold

	if completeness < completenessWarnAt {
		assessment.Anomalies = append(assessment.Anomalies,
			fmt.Sprintf("completeness %.1f%% below %.0f%%: %d of %d expected days",
				completeness, completenessWarnAt, len(candles), expectedDays))
	}
	if outlierScore < outlierWarnAt {
		assessment.Anomalies = append(assessment.Anomalies,
			fmt.Sprintf("outlier score %.1f below %.0f", outlierScore, outlierWarnAt))
	}

	return g.persist(ctx, assessment)
}

// outlierScoreOf measures how many daily price-change ratios fall beyond
// three standard deviations from the window mean.
func outlierScoreOf(candles []contracts.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}

	ratios := make([]float64, len(candles))
	for i, c := range candles {
		ratios[i] = math.Abs(c.Close-c.Open) / math.Max(c.Open, 0.01)
	}

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	mean := sum / float64(len(ratios))

	var sq float64
	for _, r := range ratios {
		d := r - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(ratios)))

	outliers := 0
	for _, r := range ratios {
		if math.Abs(r-mean) > outlierSigma*stddev {
			outliers++
		}
	}

	outlierRatio := float64(outliers) / float64(len(ratios))
	return 100 - outlierRatio*100
}

// persist writes the audit record and returns the assessment.
// Audit failures are reported; the verdict itself is still returned so
// callers can log it.
func (g *Gate) persist(ctx context.Context, a *contracts.QualityAssessment) (*contracts.QualityAssessment, error) {
	if err := g.store.Save(ctx, a); err != nil {
		return a, fmt.Errorf("persist quality assessment failed: %w", err)
	}

	g.logger.WithFields(map[string]interface{}{
		"stock":       a.StockCode,
		"mode":        a.Mode,
		"score":       a.Score,
		"can_publish": a.CanPublish,
	}).Debug("Quality assessment recorded")

	return a, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
