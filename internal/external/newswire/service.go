package newswire

import (
	"context"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

// Service scrapes and stores headlines for a set of stocks.
type Service struct {
	scraper *Scraper
	store   contracts.NewsStore
	logger  *logger.Logger
}

// NewService creates a news collection service.
func NewService(scraper *Scraper, store contracts.NewsStore, log *logger.Logger) *Service {
	return &Service{scraper: scraper, store: store, logger: log}
}

// Collect fetches and upserts headlines for each stock. News is an
// enrichment input, so per-stock failures are logged and skipped.
func (s *Service) Collect(ctx context.Context, stockCodes []string) (int, error) {
	stored := 0
	for _, code := range stockCodes {
		items, err := s.scraper.FetchRecent(ctx, code)
		if err != nil {
			s.logger.WithError(err).WithField("stock", code).Warn("News fetch failed, skipping stock")
			continue
		}
		if len(items) == 0 {
			continue
		}

		saved, err := s.store.UpsertBatch(ctx, items)
		if err != nil {
			s.logger.WithError(err).WithField("stock", code).Warn("News store failed, skipping stock")
			continue
		}
		stored += saved
	}

	s.logger.WithField("items", stored).Info("News collection completed")
	return stored, nil
}
