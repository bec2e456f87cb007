package explain

import (
	"context"
	"fmt"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

// Service generates and persists explanations for signals.
type Service struct {
	store  contracts.ExplanationStore
	logger *logger.Logger
}

// NewService creates an explanation service.
func NewService(store contracts.ExplanationStore, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// Attach generates the explanation for a signal and upserts it 1:1.
func (s *Service) Attach(ctx context.Context, sig *contracts.Signal) (*contracts.Explanation, error) {
	exp := Generate(sig)
	if err := s.store.Upsert(ctx, exp); err != nil {
		return nil, fmt.Errorf("store explanation failed: signal=%d: %w", sig.ID, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"signal_id": sig.ID,
		"stock":     sig.StockCode,
	}).Debug("Explanation attached")

	return exp, nil
}
