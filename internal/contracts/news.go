package contracts

import "time"

// Sentiment classifies a news item's tone.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sign maps the sentiment to its scoring direction.
func (s Sentiment) Sign() float64 {
	switch s {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}

// NewsItem is one scored headline for one stock.
type NewsItem struct {
	ID          int64     `json:"id"`
	StockCode   string    `json:"stock_code"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Sentiment   Sentiment `json:"sentiment"`
	ImpactScore float64   `json:"impact_score"`
	PublishedAt time.Time `json:"published_at"`
}
