package contracts

import "time"

// SignalType is the trading action a signal recommends.
type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
	SignalHold SignalType = "hold"
)

// Valid reports whether the signal type is one of the known values.
func (t SignalType) Valid() bool {
	switch t {
	case SignalBuy, SignalSell, SignalHold:
		return true
	}
	return false
}

// RiskLevel classifies how risky acting on a signal is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// rank orders risk levels for worst-case combination.
func (r RiskLevel) rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	default:
		return 1
	}
}

// CombineRisk returns the worst of the given risk levels.
// A single high sub-risk dominates regardless of the others.
func CombineRisk(levels ...RiskLevel) RiskLevel {
	combined := RiskLow
	for _, l := range levels {
		if l.rank() > combined.rank() {
			combined = l
		}
	}
	return combined
}

// Signal statuses.
const (
	SignalStatusDraft     = "draft"
	SignalStatusPublished = "published"
)

// CalculationMeta records the exact inputs a signal was derived from.
// Stored with the signal so any past derivation can be replayed after
// configuration changes.
type CalculationMeta struct {
	Weights     IndicatorWeights   `json:"weights"`
	Thresholds  SignalThresholds   `json:"thresholds"`
	SubScores   map[string]float64 `json:"sub_scores"`
	NewsImpact  float64            `json:"news_impact"`
	RSI14       float64            `json:"rsi_14"`
	VolumeRatio float64            `json:"volume_ratio"`
	Volatility  float64            `json:"volatility"`
	Close       float64            `json:"close"`
}

// Signal is the scored, risk-tagged recommendation for one stock on one date.
// Created only by the signal engine; manual writes are denied for every actor.
type Signal struct {
	ID            int64            `json:"id"`
	StockCode     string           `json:"stock_code"`
	Date          time.Time        `json:"date"`
	Type          SignalType       `json:"type"`
	Confidence    int              `json:"confidence"`
	RiskLevel     RiskLevel        `json:"risk_level"`
	PriceAtSignal *float64         `json:"price_at_signal,omitempty"`
	TargetPrice   *float64         `json:"target_price,omitempty"`
	StopLoss      *float64         `json:"stop_loss,omitempty"`
	Meta          *CalculationMeta `json:"meta,omitempty"`
	Status        string           `json:"status"`
	SourceVersion string           `json:"source_version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Explanation is the templated rationale attached 1:1 to a signal.
type Explanation struct {
	ID        int64     `json:"id"`
	SignalID  int64     `json:"signal_id"`
	Reasons   []string  `json:"reasons"`
	Caveats   []string  `json:"caveats"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
