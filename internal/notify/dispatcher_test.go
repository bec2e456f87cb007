package notify

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
	"github.com/vistalabs/vista/pkg/redis"
)

type memEventStore struct {
	events []*Event
}

func (m *memEventStore) Save(_ context.Context, e *Event) error {
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, e)
	return nil
}

func newTestDispatcher() (*Dispatcher, *memEventStore) {
	store := &memEventStore{}
	cache := redis.NewCache(redis.Disabled(), "vista")
	return NewDispatcher(cache, store, 6*time.Hour, logger.NewWithWriter(io.Discard, "error")), store
}

func TestDispatchEmitsActionableSignals(t *testing.T) {
	dispatcher, store := newTestDispatcher()

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	signals := []contracts.Signal{
		{ID: 1, StockCode: "005930", Date: date, Type: contracts.SignalBuy, Confidence: 78},
		{ID: 2, StockCode: "000660", Date: date, Type: contracts.SignalSell, Confidence: 25},
		{ID: 3, StockCode: "035720", Date: date, Type: contracts.SignalHold, Confidence: 50},
	}

	emitted, err := dispatcher.Dispatch(context.Background(), signals)
	require.NoError(t, err)

	assert.Equal(t, 2, emitted, "hold signals never alert")
	require.Len(t, store.events, 2)
	assert.Equal(t, "005930", store.events[0].StockCode)
	assert.Equal(t, contracts.SignalBuy, store.events[0].SignalType)
	assert.Equal(t, 78, store.events[0].Confidence)
}

func TestDispatchEmptyBatch(t *testing.T) {
	dispatcher, store := newTestDispatcher()

	emitted, err := dispatcher.Dispatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, emitted)
	assert.Empty(t, store.events)
}

func TestDispatchWithoutRedisAlwaysNotifies(t *testing.T) {
	// Disabled Redis means no dedup state; repeated dispatches all emit
	dispatcher, store := newTestDispatcher()

	sig := []contracts.Signal{{ID: 1, StockCode: "005930", Type: contracts.SignalBuy, Confidence: 80}}
	_, err := dispatcher.Dispatch(context.Background(), sig)
	require.NoError(t, err)
	_, err = dispatcher.Dispatch(context.Background(), sig)
	require.NoError(t, err)

	assert.Len(t, store.events, 2)
}
