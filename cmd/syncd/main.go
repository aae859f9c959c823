package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	appintegration "github.com/erp/marketsync/internal/application/integration"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/infrastructure/cache"
	"github.com/erp/marketsync/internal/infrastructure/config"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/persistence"
	"github.com/erp/marketsync/internal/infrastructure/scheduler"
	"github.com/erp/marketsync/internal/infrastructure/telemetry"
	"github.com/erp/marketsync/internal/interfaces/http/handler"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/erp/marketsync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(
		logger.ForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output),
		cfg.App.Name,
	)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OpenTelemetry: logs first so every later component logs through the bridge
	tel := cfg.Telemetry
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tel.LogsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize OTLP logs", zap.Error(err))
	}
	log = logProvider.Bridge(log, logger.ParseLevel(tel.LogsLevel))

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tel.Enabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		SamplingRatio:     tel.SamplingRatio,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log.Named("telemetry"))
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tel.MetricsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ExportInterval:    tel.MetricsInterval,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log.Named("telemetry"))
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tel.ProfilingEnabled,
		ServerAddress:   tel.ProfilingServerAddress,
		ApplicationName: tel.ServiceName,
		ProfileTypes:    tel.ProfileTypes,
	}, log.Named("profiler"))
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting listing sync service",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("marketplace", cfg.Sync.Marketplace),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = tel.Enabled && tel.DBTraceEnabled
	dbTracing.LogFullSQL = tel.DBLogFullSQL
	dbTracing.SlowQueryThresh = tel.DBSlowQueryThresh
	if err := telemetry.NewDBTracingPlugin(dbTracing, log.Named("db_tracing")).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Catalog access and the create transform
	store := persistence.NewGormRecordStore(db.DB)
	classifier := integration.NewProductClassifier(store)
	builder := integration.NewCreatePayloadBuilder(classifier,
		integration.WithBuilderLogger(log.Named("create_payload")),
	)

	// Queue and feed outbox
	operations := persistence.NewGormSyncOperationRepository(db.DB)
	outbox := persistence.NewGormFeedOutbox(db.DB, cfg.Sync.Marketplace)

	syncService := appintegration.NewListingSyncService(classifier, builder, operations, outbox,
		appintegration.WithSyncLogger(log.Named("listing_sync")),
		appintegration.WithMaxRetries(cfg.Sync.MaxRetries),
	)
	previewService := appintegration.NewListingPreviewService(classifier, builder)

	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter("marketsync"), log.Named("metrics"))
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}
	syncMetrics.StartPeriodicCollection(ctx, syncService, cfg.Sync.PollInterval)

	// Batch lease shared between replicas
	leases, err := cache.NewLeaseStoreFactory(cfg.Redis, cache.WithLogger(log.Named("cache"))).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create lease store", zap.Error(err))
	}
	defer func() {
		_ = leases.Close()
	}()

	syncScheduler, err := scheduler.NewListingSyncScheduler(syncService, log.Named("scheduler"), scheduler.ListingSyncSchedulerConfig{
		Enabled:      cfg.Sync.Enabled,
		PollInterval: cfg.Sync.PollInterval,
		BatchSize:    cfg.Sync.BatchSize,
		RunTimeout:   cfg.Sync.RunTimeout,
	},
		scheduler.WithLeaseStore(leases, cfg.Redis.LeaseTTL),
		scheduler.WithBatchRecorder(syncMetrics),
	)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}

	if err := syncScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start listing sync scheduler", zap.Error(err))
	}

	// A nil runner disables manual runs along with the scheduler
	var runner handler.SyncRunner
	if cfg.Sync.Enabled {
		runner = syncScheduler
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.EngineConfig{
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		Tracing: middleware.TracingConfig{
			ServiceName: tel.ServiceName,
			Enabled:     tel.Enabled,
		},
	}, log, handler.NewHealthHandler(db, log))
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}
	listingHandler := handler.NewListingHandler(previewService, syncService, runner, log)
	router.NewRouter(engine).Register(router.ListingRoutes(listingHandler)...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := syncScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Listing sync scheduler did not stop in time", zap.Error(err))
	}
	syncMetrics.Stop()

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Failed to stop profiler", zap.Error(err))
	}

	log.Info("Service exited gracefully")
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush logs", zap.Error(err))
	}
}
