package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/vistalabs/vista/internal/contracts"
	"github.com/vistalabs/vista/internal/scheduler"
	"github.com/vistalabs/vista/internal/signal"
	"github.com/vistalabs/vista/pkg/database"
	"github.com/vistalabs/vista/pkg/logger"
)

// Router builds the ops HTTP routes.
type Router struct {
	db          *database.DB
	signals     contracts.SignalStore
	assessments contracts.AssessmentStore
	settings    contracts.SettingsStore
	sched       *scheduler.Scheduler
	policy      *signal.Policy
	logger      *logger.Logger
}

// NewRouter creates a router. The scheduler may be nil when running in
// API-only mode.
func NewRouter(
	db *database.DB,
	signals contracts.SignalStore,
	assessments contracts.AssessmentStore,
	settings contracts.SettingsStore,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) *Router {
	return &Router{
		db:          db,
		signals:     signals,
		assessments: assessments,
		settings:    settings,
		sched:       sched,
		policy:      signal.NewPolicy(),
		logger:      log,
	}
}

// Handler assembles the route table.
func (rt *Router) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(rt.loggingMiddleware, rt.recoveryMiddleware)

	r.HandleFunc("/health", rt.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/signals", rt.handleSignalsByDate).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/signals/{stock}", rt.handleSignal).Methods(http.MethodGet)

	// Signals are engine output only; manual writes are denied for everyone
	r.HandleFunc("/api/v1/signals", rt.handleSignalWriteDenied).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/signals/{stock}", rt.handleSignalWriteDenied).Methods(http.MethodPut, http.MethodDelete)

	r.HandleFunc("/api/v1/quality", rt.handleQualityLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/settings", rt.handleSettingsGet).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/settings", rt.handleSettingsPut).Methods(http.MethodPut)

	if rt.sched != nil {
		r.HandleFunc("/api/v1/jobs", rt.handleJobStats).Methods(http.MethodGet)
	}

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status, err := rt.db.HealthCheck(r.Context())
	code := http.StatusOK
	if err != nil {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (rt *Router) handleSignalsByDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing date parameter")
		return
	}

	signals, err := rt.signals.ListByDate(r.Context(), date)
	if err != nil {
		rt.logger.WithError(err).Error("List signals failed")
		writeError(w, http.StatusInternalServerError, "failed to list signals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"signals": signals, "count": len(signals)})
}

func (rt *Router) handleSignal(w http.ResponseWriter, r *http.Request) {
	stockCode := mux.Vars(r)["stock"]
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing date parameter")
		return
	}

	sig, err := rt.signals.Get(r.Context(), stockCode, date)
	if err != nil {
		rt.logger.WithError(err).Error("Get signal failed")
		writeError(w, http.StatusInternalServerError, "failed to get signal")
		return
	}
	if sig == nil {
		writeError(w, http.StatusNotFound, "no signal for this stock and date")
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

func (rt *Router) handleSignalWriteDenied(w http.ResponseWriter, r *http.Request) {
	actor := signal.Actor{
		ID:   r.Header.Get("X-Actor-ID"),
		Role: r.Header.Get("X-Actor-Role"),
	}

	var err error
	switch r.Method {
	case http.MethodPost:
		err = rt.policy.CanCreate(actor)
	case http.MethodPut:
		err = rt.policy.CanUpdate(actor)
	default:
		err = rt.policy.CanDelete(actor)
	}
	writeError(w, http.StatusForbidden, err.Error())
}

func (rt *Router) handleQualityLatest(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	assessments, err := rt.assessments.Latest(r.Context(), limit)
	if err != nil {
		rt.logger.WithError(err).Error("List quality assessments failed")
		writeError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assessments": assessments, "count": len(assessments)})
}

func (rt *Router) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := rt.settings.Load(r.Context())
	if err != nil {
		rt.logger.WithError(err).Error("Load settings failed")
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (rt *Router) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var cfg contracts.AnalysisConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "malformed configuration body")
		return
	}

	changedBy := r.Header.Get("X-Actor-ID")
	if changedBy == "" {
		changedBy = "unknown"
	}

	if err := rt.settings.Save(r.Context(), cfg, changedBy); err != nil {
		// Validation failures surface as client errors with the reason
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (rt *Router) handleJobStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": rt.sched.Stats()})
}

// loggingMiddleware logs each request with method, path, status and duration.
func (rt *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		rt.logger.WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("HTTP request handled")
	})
}

// recoveryMiddleware converts handler panics into 500 responses.
func (rt *Router) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				rt.logger.WithFields(map[string]interface{}{
					"path":  r.URL.Path,
					"panic": rec,
				}).Error("Handler panicked")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
