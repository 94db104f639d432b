package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/toeiclab/toeic-backend/internal/data/db"
	apphttp "github.com/toeiclab/toeic-backend/internal/http"
	"github.com/toeiclab/toeic-backend/internal/jobs"
	"github.com/toeiclab/toeic-backend/internal/observability"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"github.com/toeiclab/toeic-backend/internal/realtime/bus"
	"github.com/toeiclab/toeic-backend/internal/services"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Cfg       Config
	Repos     Repos
	Services  Services
	Bus       bus.Bus
	Server    *apphttp.Server
	Scheduler *jobs.Scheduler

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

// New loads configuration from the environment and wires the application.
func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(cfg, log, nil)
}

// NewWithConfig wires every component from cfg. A nil clock uses the
// system clock.
func NewWithConfig(cfg Config, log *logger.Logger, clock services.Clock) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !cfg.Production() && cfg.JWTSecretKey == devJWTSecret {
		log.Warn("using development JWT secret; set JWT_SECRET_KEY")
	}

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)
	metrics := observability.Init(cfg.MetricsEnabled)

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()
	sqlDB, err := theDB.DB()
	if err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("database handle: %w", err)
	}

	eventBus, err := wireBus(log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, eventBus, clock)
	handlerset := wireHandlers(log, serviceset, sqlDB)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Bus:          eventBus,
		Server:       server,
		Scheduler:    jobs.NewScheduler(log, serviceset.Recommendation, cfg.RecommendationRefreshInterval),
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// wireBus connects to Redis when an address is configured. Without one,
// events are dropped.
func wireBus(log *logger.Logger, cfg Config) (bus.Bus, error) {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set; domain events disabled")
		return bus.NewNoopBus(), nil
	}
	b, err := bus.NewRedisBus(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init event bus: %w", err)
	}
	return b, nil
}

// Start launches background work.
func (a *App) Start() error {
	if a == nil || a.Scheduler == nil {
		return nil
	}
	return a.Scheduler.Start()
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Close stops the server, the scheduler, the bus and the database, in that
// order. It is safe to call more than once.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("server shutdown failed", "error", err)
		}
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("event bus close failed", "error", err)
		}
		a.Bus = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		a.otelShutdown = nil
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
		a.dbService = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
