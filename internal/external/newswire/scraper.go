package newswire

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/config"
	"github.com/vistalabs/vista/pkg/httputil"
	"github.com/vistalabs/vista/pkg/logger"
	"github.com/vistalabs/vista/pkg/redis"
)

// Scraper pulls recent headlines for a stock from the newswire portal and
// scores them with a keyword lexicon. Scoring is intentionally crude; the
// signal engine only consumes the aggregate impact.
type Scraper struct {
	http    *httputil.Client
	limiter *redis.Limiter
	baseURL string
	logger  *logger.Logger
}

// NewScraper creates a newswire scraper. The portal blocks aggressive
// crawlers, so requests are paced through a shared sliding-window limiter
// that holds across instances.
func NewScraper(cfg *config.Config, redisClient *redis.Client, log *logger.Logger) *Scraper {
	return &Scraper{
		http:    httputil.NewWithTimeout(log, 15*time.Second).WithRetry(2, 500*time.Millisecond),
		limiter: redis.NewLimiter(redisClient, "newswire", 30, time.Minute),
		baseURL: cfg.NewsWire.BaseURL,
		logger:  log,
	}
}

var positiveWords = []string{
	"surge", "rally", "beat", "record", "growth", "upgrade", "profit", "wins", "strong",
}

var negativeWords = []string{
	"drop", "plunge", "miss", "loss", "downgrade", "lawsuit", "recall", "weak", "cuts",
}

// FetchRecent scrapes and scores headlines for one stock.
func (s *Scraper) FetchRecent(ctx context.Context, stockCode string) ([]contracts.NewsItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("newswire rate limit wait failed: %w", err)
	}

	endpoint := fmt.Sprintf("%s/news?%s", s.baseURL, url.Values{"symbol": {stockCode}}.Encode())

	resp, err := s.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch newswire page failed: stock=%s: %w", stockCode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("newswire returned status %d: stock=%s", resp.StatusCode, stockCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse newswire page failed: %w", err)
	}

	var items []contracts.NewsItem
	doc.Find("ul.headlines li.item").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find("a.title").Text())
		if title == "" {
			return
		}

		href, _ := sel.Find("a.title").Attr("href")
		publishedAt := parseTimestamp(sel.Find("span.date").Text())

		sentiment, impact := ScoreHeadline(title)
		items = append(items, contracts.NewsItem{
			StockCode:   stockCode,
			Title:       title,
			URL:         href,
			Sentiment:   sentiment,
			ImpactScore: impact,
			PublishedAt: publishedAt,
		})
	})

	s.logger.WithFields(map[string]interface{}{
		"stock": stockCode,
		"items": len(items),
	}).Debug("Scraped newswire headlines")

	return items, nil
}

// ScoreHeadline classifies a headline and estimates its impact from
// lexicon hits. More hits read as a stronger story.
func ScoreHeadline(title string) (contracts.Sentiment, float64) {
	lower := strings.ToLower(title)

	positives := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positives++
		}
	}
	negatives := 0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negatives++
		}
	}

	hits := positives + negatives
	impact := math.Min(100, 40+float64(hits)*20)

	switch {
	case positives > negatives:
		return contracts.SentimentPositive, impact
	case negatives > positives:
		return contracts.SentimentNegative, impact
	default:
		return contracts.SentimentNeutral, impact
	}
}

// parseTimestamp reads the portal's date format, falling back to now so a
// missing date does not drop the headline from the trailing window.
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Now()
}
