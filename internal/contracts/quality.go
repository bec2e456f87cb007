package contracts

import "time"

// QualityAssessment is a verdict over a batch of rows or a stock/date range.
// Persisted as an audit record on every evaluation, never mutated.
type QualityAssessment struct {
	ID               int64     `json:"id"`
	StockCode        string    `json:"stock_code,omitempty"`
	Mode             string    `json:"mode"`
	Score            float64   `json:"score"`
	CompletenessRate float64   `json:"completeness_rate"`
	OutlierScore     float64   `json:"outlier_score"`
	CanPublish       bool      `json:"can_publish"`
	Anomalies        []string  `json:"anomalies"`
	EvaluatedAt      time.Time `json:"evaluated_at"`
}

// Assessment modes.
const (
	QualityModeBatch = "batch"
	QualityModeRange = "range"
)
