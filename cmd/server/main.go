package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/powertimer/api/handler"
	"github.com/fastygo/powertimer/internal/catalog"
	"github.com/fastygo/powertimer/internal/config"
	"github.com/fastygo/powertimer/internal/countdown"
	"github.com/fastygo/powertimer/internal/infrastructure/boltdb"
	"github.com/fastygo/powertimer/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/powertimer/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/powertimer/internal/infrastructure/redis"
	"github.com/fastygo/powertimer/internal/notify"
	"github.com/fastygo/powertimer/internal/router"
	"github.com/fastygo/powertimer/internal/services"
	"github.com/fastygo/powertimer/internal/services/lifecycle"
	"github.com/fastygo/powertimer/pkg/httpcontext"
	"github.com/fastygo/powertimer/pkg/logger"
	"github.com/fastygo/powertimer/repository"
	boltRepo "github.com/fastygo/powertimer/repository/bolt"
	"github.com/fastygo/powertimer/repository/postgres"
	redisRepo "github.com/fastygo/powertimer/repository/redis"
	"github.com/fastygo/powertimer/usecase"
	"github.com/fastygo/powertimer/usecase/reconcile"
	statsUC "github.com/fastygo/powertimer/usecase/stats"
	templateUC "github.com/fastygo/powertimer/usecase/template"
	timerUC "github.com/fastygo/powertimer/usecase/timer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	loc, err := cfg.Stats.Location()
	if err != nil {
		zapLogger.Fatal("invalid stats timezone", zap.Error(err))
	}

	entries, err := catalog.Load(cfg.Templates.CatalogPath)
	if err != nil {
		zapLogger.Fatal("template catalog", zap.Error(err))
	}

	var (
		timerRepo    repository.TimerRepository
		templateRepo repository.TemplateRepository
		probes       []monitor.Probe
	)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		timerRepo = postgres.NewTimerRepository(pool)
		templateRepo = postgres.NewTemplateRepository(pool)
		probes = append(probes, monitor.PostgresProbe(pool))
	default:
		db, err := boltdb.Open(cfg.Store.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.Error(err), zap.String("path", cfg.Store.BoltPath))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return db.Close()
		})
		timerRepo = boltRepo.NewTimerRepository(db)
		templateRepo = boltRepo.NewTemplateRepository(db)
		probes = append(probes, monitor.BoltProbe(db))
	}
	zapLogger.Info("record store ready", zap.String("driver", cfg.Store.Driver))

	svc := countdown.New(countdown.Config{
		TickInterval:    cfg.Countdown.Tick,
		CompleteTimeout: cfg.Context.RequestTimeout,
	}, zapLogger)
	probes = append(probes, monitor.CountdownProbe(svc.Len))

	publishers := []usecase.TimerPublisher{svc}
	if cfg.Redis.Enabled {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		bus := redisRepo.NewTimerEventBus(redisClient, cfg.Redis.Channel, zapLogger)
		publishers = append(publishers, bus)
		probes = append(probes, monitor.RedisProbe(redisClient))
		manager.Go("timer_events", func(ctx context.Context) error {
			return bus.Listen(ctx, svc)
		})
	}

	timerUseCase := timerUC.New(timerRepo, services.NewFanout(publishers...), zapLogger)
	timerUseCase.SetRemainingSource(svc)
	templateUseCase := templateUC.New(templateRepo, timerUseCase, entries, zapLogger)
	statsUseCase := statsUC.New(timerRepo, loc)

	reconciler := reconcile.New(timerUseCase, svc, zapLogger)
	svc.SetCompleter(reconciler)
	svc.SetNotifier(notify.NewNotifier(cfg.AppName, cfg.Notify.Enabled))

	if created, err := templateUseCase.Seed(appCtx); err != nil {
		zapLogger.Warn("template seeding failed", zap.Error(err))
	} else if created > 0 {
		zapLogger.Info("templates seeded", zap.Int("created", created))
	}

	mon := monitor.New(cfg.Countdown.SyncInterval, zapLogger, probes...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	resync := services.NewResyncProcessor(timerUseCase, svc, mon, zapLogger, services.ResyncConfig{
		Interval: cfg.Countdown.SyncInterval,
	})
	if err := resync.Resync(appCtx); err != nil {
		zapLogger.Warn("initial countdown load failed", zap.Error(err))
	}

	svc.Start()
	manager.Register("countdown", func(ctx context.Context) error {
		svc.Stop()
		return nil
	})

	resync.Start()
	manager.Register("resync_processor", func(ctx context.Context) error {
		resync.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	eventsHandler := apiHandler.NewEventsHandler(timerUseCase, svc, ctxAdapter, zapLogger)
	handlers := router.Handlers{
		Timer:    apiHandler.NewTimerHandler(timerUseCase, templateUseCase, ctxAdapter, zapLogger),
		Template: apiHandler.NewTemplateHandler(templateUseCase, ctxAdapter, zapLogger),
		Stats:    apiHandler.NewStatsHandler(statsUseCase, ctxAdapter, zapLogger),
		Events:   eventsHandler,
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	server := &fasthttp.Server{
		Handler: router.New(handlers, router.Options{
			CORSAllowedOrigin: cfg.HTTP.CORSAllowedOrigin,
			Logger:            zapLogger,
		}),
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		Concurrency:     cfg.HTTP.MaxConn,
		Name:            cfg.AppName,
		CloseOnShutdown: true,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})
	// Registered last so it runs first: open event streams would hold the shutdown.
	manager.Register("event_streams", func(ctx context.Context) error {
		eventsHandler.Close()
		return nil
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
