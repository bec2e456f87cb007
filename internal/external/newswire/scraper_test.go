package newswire

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/config"
	"github.com/vistalabs/vista/pkg/logger"
	"github.com/vistalabs/vista/pkg/redis"
)

const samplePage = `
<html><body>
<ul class="headlines">
  <li class="item">
    <a class="title" href="/a/1">Chipmaker posts record profit on strong demand</a>
    <span class="date">2026-08-27 09:30</span>
  </li>
  <li class="item">
    <a class="title" href="/a/2">Shares drop after earnings miss</a>
    <span class="date">2026-08-27</span>
  </li>
  <li class="item">
    <a class="title" href="/a/3">Company schedules annual shareholder meeting</a>
    <span class="date">2026-08-26</span>
  </li>
  <li class="item"><a class="title" href="/a/4"></a></li>
</ul>
</body></html>`

func newTestScraper(baseURL string) *Scraper {
	cfg := &config.Config{}
	cfg.NewsWire.BaseURL = baseURL
	return NewScraper(cfg, redis.Disabled(), logger.NewWithWriter(io.Discard, "error"))
}

func TestFetchRecent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "005930", r.URL.Query().Get("symbol"))
		io.WriteString(w, samplePage)
	}))
	defer server.Close()

	scraper := newTestScraper(server.URL)
	items, err := scraper.FetchRecent(context.Background(), "005930")
	require.NoError(t, err)
	require.Len(t, items, 3, "empty titles are dropped")

	assert.Equal(t, contracts.SentimentPositive, items[0].Sentiment)
	assert.Equal(t, "/a/1", items[0].URL)
	assert.Equal(t, "2026-08-27 09:30", items[0].PublishedAt.Format("2006-01-02 15:04"))

	assert.Equal(t, contracts.SentimentNegative, items[1].Sentiment)
	assert.Equal(t, contracts.SentimentNeutral, items[2].Sentiment)
}

func TestScoreHeadline(t *testing.T) {
	tests := []struct {
		title         string
		wantSentiment contracts.Sentiment
		wantImpact    float64
	}{
		{"Company posts record profit growth", contracts.SentimentPositive, 100},
		{"Stock plunges on downgrade", contracts.SentimentNegative, 80},
		{"Board meets next week", contracts.SentimentNeutral, 40},
		{"Strong quarter but shares drop", contracts.SentimentNeutral, 80},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			sentiment, impact := ScoreHeadline(tt.title)
			assert.Equal(t, tt.wantSentiment, sentiment)
			assert.Equal(t, tt.wantImpact, impact)
		})
	}
}

func TestFetchRecentBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	scraper := newTestScraper(server.URL)
	_, err := scraper.FetchRecent(context.Background(), "005930")
	assert.Error(t, err)
}
