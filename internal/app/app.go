package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	"github.com/yungbote/lms-backend/internal/data/db"
	"github.com/yungbote/lms-backend/internal/http"
	"github.com/yungbote/lms-backend/internal/jobs/orderaudit"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Bus      redis.OrderBus
	Audit    *orderaudit.Auditor

	store        *db.PostgresService
	rdb          *goredis.Client
	otelShutdown func(context.Context) error
	stopAudit    func()
	cancel       context.CancelFunc
}

func New() (*App, error) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("config loaded", "env", cfg.Env, "http_addr", cfg.HTTPAddr, "db_driver", cfg.DB.Driver)

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)
	metrics := observability.Init(cfg.MetricsEnabled, log)

	store, err := db.NewPostgresService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := store.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := metrics.RegisterDBStats(theDB, cfg.DB.Name); err != nil {
		log.Warn("db stats collector not registered", "error", err)
	}

	bus, rdb := wireOrderBus(cfg, log)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, metrics, bus)
	handlerset := wireHandlers(theDB, log, serviceset)
	server := wireServer(cfg, log, metrics, handlerset)

	audit := orderaudit.New(theDB, log, metrics, orderaudit.Config{
		Schedule:        cfg.AuditSchedule,
		Mode:            cfg.AuditMode,
		GroupsPerSecond: cfg.AuditRPS,
	},
		orderaudit.Target{Resource: "module", Store: reposet.CourseModule},
		orderaudit.Target{Resource: "lesson", Store: reposet.Lesson},
	)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Bus:          bus,
		Audit:        audit,
		store:        store,
		rdb:          rdb,
		otelShutdown: otelShutdown,
	}, nil
}

// wireOrderBus falls back to a logging bus when redis is not configured or
// unreachable; order changes are never blocked on the bus.
func wireOrderBus(cfg Config, log *logger.Logger) (redis.OrderBus, *goredis.Client) {
	if cfg.RedisAddr == "" {
		return redis.NewLogOrderBus(log), nil
	}
	bus, rdb, err := redis.NewOrderBus(log, redis.Config{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
	if err != nil {
		log.Warn("redis order bus unavailable, logging order events instead", "error", err)
		return redis.NewLogOrderBus(log), nil
	}
	return bus, rdb
}

// Start launches background work: the order audit schedule and redis
// health collection.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.rdb != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.rdb, 15*time.Second)
		if err := a.Bus.StartForwarder(ctx, func(e redis.OrderEvent) {
			a.Log.Debug("order change", "resource", e.Resource, "op", e.Op, "group_id", e.GroupID, "record_id", e.RecordID)
		}); err != nil {
			a.Log.Warn("order event forwarder not started", "error", err)
		}
	}
	if a.Cfg.AuditSchedule != "" && a.Cfg.AuditSchedule != "off" {
		stop, err := a.Audit.Start(ctx)
		if err != nil {
			return err
		}
		a.stopAudit = stop
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.stopAudit != nil {
		a.stopAudit()
		a.stopAudit = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
