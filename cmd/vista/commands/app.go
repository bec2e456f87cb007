package commands

import (
	"fmt"

	"github.com/vistalabs/vista/internal/api"
	"github.com/vistalabs/vista/internal/explain"
	"github.com/vistalabs/vista/internal/external/newswire"
	"github.com/vistalabs/vista/internal/external/provider"
	"github.com/vistalabs/vista/internal/indicator"
	"github.com/vistalabs/vista/internal/market"
	"github.com/vistalabs/vista/internal/market/quality"
	"github.com/vistalabs/vista/internal/notify"
	"github.com/vistalabs/vista/internal/pipeline"
	"github.com/vistalabs/vista/internal/scheduler"
	"github.com/vistalabs/vista/internal/settings"
	"github.com/vistalabs/vista/internal/signal"
	"github.com/vistalabs/vista/pkg/config"
	"github.com/vistalabs/vista/pkg/database"
	"github.com/vistalabs/vista/pkg/logger"
	"github.com/vistalabs/vista/pkg/redis"
)

// app holds the wired application dependencies shared by the commands.
type app struct {
	cfg         *config.Config
	logger      *logger.Logger
	db          *database.DB
	redis       *redis.Client
	candles     *market.Repository
	signals     *signal.Repository
	assessments *quality.Repository
	settings    *settings.Repository
	pipeline    *pipeline.Pipeline
}

// newApp loads configuration and wires every service.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database failed: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect redis failed: %w", err)
	}

	candles := market.NewRepository(db)
	indicators := indicator.NewRepository(db)
	signalRepo := signal.NewRepository(db)
	explanations := explain.NewRepository(db)
	assessments := quality.NewRepository(db)
	newsRepo := newswire.NewRepository(db)
	settingsRepo := settings.NewRepository(db, log)

	gate := quality.NewGate(assessments, log)
	providerClient := provider.NewClient(cfg, log)
	ingestion := market.NewIngestionService(providerClient, gate, candles, log)
	indicatorSvc := indicator.NewService(candles, indicators, log)
	engine := signal.NewEngine(candles, indicators, newsRepo, signalRepo, log)
	explainSvc := explain.NewService(explanations, log)

	scraper := newswire.NewScraper(cfg, redisClient, log)
	newsSvc := newswire.NewService(scraper, newsRepo, log)

	cache := redis.NewCache(redisClient, "vista")
	events := notify.NewRepository(db)
	dispatcher := notify.NewDispatcher(cache, events, cfg.Pipeline.NotifyWindow, log)

	pipe := pipeline.New(
		ingestion, newsSvc, gate, candles, indicatorSvc, engine, explainSvc, dispatcher,
		settingsRepo,
		pipeline.Options{
			Workers:     cfg.Pipeline.Workers,
			HistoryDays: cfg.Pipeline.HistoryDays,
		},
		log,
	)

	return &app{
		cfg:         cfg,
		logger:      log,
		db:          db,
		redis:       redisClient,
		candles:     candles,
		signals:     signalRepo,
		assessments: assessments,
		settings:    settingsRepo,
		pipeline:    pipe,
	}, nil
}

// newRouter builds the ops router; sched may be nil in API-only mode.
func (a *app) newRouter(sched *scheduler.Scheduler) *api.Router {
	return api.NewRouter(a.db, a.signals, a.assessments, a.settings, sched, a.logger)
}

// close releases the app's connections.
func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
