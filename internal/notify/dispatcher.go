package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
	"github.com/vistalabs/vista/pkg/redis"
)

// Event is one recorded alert decision for a new signal.
type Event struct {
	ID         int64                `json:"id"`
	StockCode  string               `json:"stock_code"`
	SignalID   int64                `json:"signal_id"`
	SignalType contracts.SignalType `json:"signal_type"`
	Confidence int                  `json:"confidence"`
	CreatedAt  time.Time            `json:"created_at"`
}

// EventStore persists notification events.
type EventStore interface {
	Save(ctx context.Context, event *Event) error
}

// Dispatcher turns newly generated signals into notification events,
// deduplicated per stock and signal type within a repeat window.
// With Redis disabled the dedup degrades to always-notify.
type Dispatcher struct {
	cache  *redis.Cache
	events EventStore
	window time.Duration
	logger *logger.Logger
}

// NewDispatcher creates a dispatcher. A zero window uses the 6 hour default.
func NewDispatcher(cache *redis.Cache, events EventStore, window time.Duration, log *logger.Logger) *Dispatcher {
	if window <= 0 {
		window = 6 * time.Hour
	}
	return &Dispatcher{
		cache:  cache,
		events: events,
		window: window,
		logger: log,
	}
}

// Dispatch records events for actionable signals. Hold signals never alert.
// Returns the number of events emitted.
func (d *Dispatcher) Dispatch(ctx context.Context, signals []contracts.Signal) (int, error) {
	emitted := 0
	for _, sig := range signals {
		if sig.Type == contracts.SignalHold {
			continue
		}

		key := fmt.Sprintf("notify:%s:%s", sig.StockCode, sig.Type)
		fresh, err := d.cache.SetNX(ctx, key, sig.Date.Format("2006-01-02"), d.window)
		if err != nil {
			d.logger.WithError(err).WithField("stock", sig.StockCode).Warn("Dedup check failed, emitting anyway")
			fresh = true
		}
		if !fresh {
			d.logger.WithFields(map[string]interface{}{
				"stock": sig.StockCode,
				"type":  sig.Type,
			}).Debug("Suppressed duplicate notification within repeat window")
			continue
		}

		event := &Event{
			StockCode:  sig.StockCode,
			SignalID:   sig.ID,
			SignalType: sig.Type,
			Confidence: sig.Confidence,
		}
		if err := d.events.Save(ctx, event); err != nil {
			return emitted, fmt.Errorf("save notification event failed: stock=%s: %w", sig.StockCode, err)
		}
		emitted++

		d.logger.WithFields(map[string]interface{}{
			"stock":      sig.StockCode,
			"type":       sig.Type,
			"confidence": sig.Confidence,
		}).Info("Notification event emitted")
	}
	return emitted, nil
}
