package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/pkg/logger"
)

type fakeSignalStore struct {
	signals []contracts.Signal
}

func (f *fakeSignalStore) Upsert(_ context.Context, sig *contracts.Signal) (*contracts.Signal, error) {
	return sig, nil
}
func (f *fakeSignalStore) Get(_ context.Context, stockCode string, _ time.Time) (*contracts.Signal, error) {
	for i := range f.signals {
		if f.signals[i].StockCode == stockCode {
			return &f.signals[i], nil
		}
	}
	return nil, nil
}
func (f *fakeSignalStore) ListByDate(_ context.Context, _ time.Time) ([]contracts.Signal, error) {
	return f.signals, nil
}

type fakeAssessmentStore struct {
	rows []contracts.QualityAssessment
}

func (f *fakeAssessmentStore) Save(_ context.Context, _ *contracts.QualityAssessment) error {
	return nil
}
func (f *fakeAssessmentStore) Latest(_ context.Context, limit int) ([]contracts.QualityAssessment, error) {
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

type fakeSettingsStore struct {
	cfg contracts.AnalysisConfig
}

func (f *fakeSettingsStore) Load(_ context.Context) (contracts.AnalysisConfig, error) {
	return f.cfg, nil
}
func (f *fakeSettingsStore) Save(_ context.Context, cfg contracts.AnalysisConfig, _ string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.cfg = cfg
	return nil
}

func newTestHandler(signals *fakeSignalStore) http.Handler {
	router := NewRouter(
		nil,
		signals,
		&fakeAssessmentStore{rows: []contracts.QualityAssessment{{Score: 95, CanPublish: true}}},
		&fakeSettingsStore{cfg: contracts.DefaultAnalysisConfig()},
		nil,
		logger.NewWithWriter(io.Discard, "error"),
	)
	return router.Handler()
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignalsByDate(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{signals: []contracts.Signal{
		{StockCode: "005930", Type: contracts.SignalBuy, Confidence: 78},
	}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/signals?date=2026-08-28", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "005930")
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestSignalsByDateRequiresDate(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/signals", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignalNotFound(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/signals/000660?date=2026-08-28", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManualSignalWritesDenied(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{})

	requests := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/signals", strings.NewReader(`{}`)),
		httptest.NewRequest(http.MethodPut, "/api/v1/signals/005930", strings.NewReader(`{}`)),
		httptest.NewRequest(http.MethodDelete, "/api/v1/signals/005930", nil),
	}

	for _, req := range requests {
		// Even admin actors are denied
		req.Header.Set("X-Actor-ID", "a1")
		req.Header.Set("X-Actor-Role", "admin")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equalf(t, http.StatusForbidden, rec.Code, "%s %s", req.Method, req.URL.Path)
	}
}

func TestQualityLatest(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quality", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestSettingsRoundTrip(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"buy":70`)

	valid := `{
		"weights": {"volume":0.30,"liquidity":0.20,"trend":0.20,"mean_reversion":0.15,"volatility":0.10,"news":0.05},
		"signal_thresholds": {"buy":75,"sell":25,"min_confidence":0},
		"risk_thresholds": {"volatility_low":20,"volatility_medium":50,"liquidity_min":40}
	}`
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(valid)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsRejectsInvalidWeights(t *testing.T) {
	handler := newTestHandler(&fakeSignalStore{})

	invalid := `{
		"weights": {"volume":0.90,"liquidity":0.20,"trend":0.20,"mean_reversion":0.15,"volatility":0.10,"news":0.05},
		"signal_thresholds": {"buy":70,"sell":30,"min_confidence":0},
		"risk_thresholds": {"volatility_low":20,"volatility_medium":50,"liquidity_min":40}
	}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings", strings.NewReader(invalid)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "sum to 1.0")
}
