package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	aggCountries "dashboard-aggregates-service/internal/aggregates/adapters/countries"
	aggHttp "dashboard-aggregates-service/internal/aggregates/adapters/http/fiber"
	aggLocations "dashboard-aggregates-service/internal/aggregates/adapters/locations"
	aggRepoPg "dashboard-aggregates-service/internal/aggregates/adapters/postgres"
	aggRedis "dashboard-aggregates-service/internal/aggregates/adapters/redis"
	"dashboard-aggregates-service/internal/aggregates/cache"
	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
	"dashboard-aggregates-service/internal/aggregates/core/privacy"
	aggUsecase "dashboard-aggregates-service/internal/aggregates/core/usecase"

	eventsHttp "dashboard-aggregates-service/internal/events/adapters/http/fiber"
	eventsRepoPg "dashboard-aggregates-service/internal/events/adapters/postgres"
	eventsQueue "dashboard-aggregates-service/internal/events/adapters/queue"
	eventsUsecase "dashboard-aggregates-service/internal/events/core/usecase"

	"dashboard-aggregates-service/internal/platform/config"
	"dashboard-aggregates-service/internal/platform/logger"
	"dashboard-aggregates-service/internal/platform/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "github.com/lib/pq"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "dashboard-aggregates-service/docs"
)

const shutdownTimeout = 10 * time.Second

// @title Dashboard Aggregates API
// @version 0.1.0
// @description Differentially private cohort-retention and geographic aggregates for the dashboard.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Config
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log = log.With(
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
	)

	// DB connection
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	if err := db.PingContext(startCtx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	// Adapter-level DB wrappers
	eventsDB := eventsRepoPg.NewSQLDB(db)
	aggDB := aggRepoPg.NewSQLDB(db)

	if err := eventsRepoPg.EnsureSchema(startCtx, eventsDB); err != nil {
		return err
	}

	metrics := telemetry.NewMetrics()

	// Snapshot caches, optionally shared across replicas through redis.
	cacheOpts := []cache.Option{
		cache.WithTTL(cfg.Aggregation.RefreshInterval),
		cache.WithComputeTimeout(cfg.Aggregation.ComputeTimeout),
		cache.WithMetrics(metrics),
		cache.WithLogger(log),
	}
	if cfg.Cache.RedisAddress != "" {
		client, err := aggRedis.NewClient(aggRedis.Config{
			Address:  cfg.Cache.RedisAddress,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		cacheOpts = append(cacheOpts, cache.WithStore(aggRedis.NewSnapshotStore(client, cfg.Cache.KeyPrefix)))
		log.Info("sharing snapshots through redis", logger.String("address", cfg.Cache.RedisAddress))
	}

	cohortCache := cache.New[*domain.CohortMatrix]("cohort", cacheOpts...)
	geoCache := cache.New[*domain.GeoSnapshot]("geo", cacheOpts...)
	locationsCache := cache.New[*domain.GeoSnapshot]("locations", cacheOpts...)

	// Repositories and sources
	eventRepository := eventsRepoPg.NewEventRepository(eventsDB)
	sessionReader := aggRepoPg.NewSessionEventReader(aggDB)
	lookup := aggCountries.NewStatic(nil)

	var locationSource ports.LocationSourcePort
	switch cfg.Locations.Source {
	case config.LocationSourceEvents:
		locationSource = aggRepoPg.NewLocationCounter(aggDB, cfg.Aggregation.MaxOffset+1)
	default:
		locationSource = aggLocations.NewGenerator(cfg.Locations.MockSeed)
	}

	deps := aggUsecase.Dependencies{
		Budget:  privacy.Budget{Epsilon: cfg.Privacy.Epsilon, Sensitivity: cfg.Privacy.Sensitivity},
		Sources: privacy.CryptoSeededFactory(),
		Metrics: metrics,
		Logger:  log,
	}

	// Usecases
	getCohortUC, err := aggUsecase.NewGetCohortUseCase(sessionReader, cohortCache, deps)
	if err != nil {
		return err
	}
	getGeoTrendsUC, err := aggUsecase.NewGetGeoTrendsUseCase(sessionReader, lookup, geoCache, deps)
	if err != nil {
		return err
	}
	getLocationsUC, err := aggUsecase.NewGetLocationsUseCase(locationSource, lookup, locationsCache, deps)
	if err != nil {
		return err
	}
	refreshUC := aggUsecase.NewRefreshAggregatesUseCase(
		aggUsecase.RefreshConfig{MinInterval: cfg.Aggregation.RefreshInterval},
		log, cohortCache, geoCache, locationsCache,
	)

	// Ingestion pipeline
	buffer := eventsQueue.NewBuffer(cfg.Queue.BufferSize, metrics)
	flusher := eventsQueue.NewFlusher(eventRepository, buffer, log, metrics, cfg.Queue.FlushInterval, cfg.Queue.FlushThreshold)
	flusher.Start()

	storeEventUC := eventsUsecase.NewStoreEventUseCase(buffer)

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{
		AppName:               cfg.Service.Name,
		DisableStartupMessage: !cfg.Service.Debug,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		c.SetUserContext(logger.WithContext(c.UserContext(), log.With(logger.String("request_id", rid))))
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":           "ok",
			"version":          cfg.Service.Version,
			"epsilon":          cfg.Privacy.Epsilon,
			"sensitivity":      cfg.Privacy.Sensitivity,
			"refresh_interval": cfg.Aggregation.RefreshInterval.String(),
			"queue_depth":      buffer.Len(),
		})
	})
	app.Get("/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := eventRepository.Ping(ctx); err != nil {
			logger.FromContext(c.UserContext()).Warn("readiness check failed", logger.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// aggregate endpoints
	aggregatesHandler := aggHttp.NewAggregatesHandler(getCohortUC, getGeoTrendsUC, getLocationsUC, refreshUC, aggHttp.Defaults{
		MaxOffset:  cfg.Aggregation.MaxOffset,
		TopN:       cfg.Aggregation.DefaultTopN,
		RetryAfter: 5 * time.Second,
	})
	aggregatesHandler.Register(app)

	// events endpoints
	eventsHandler := eventsHttp.NewEventHandler(storeEventUC)
	app.Post("/events", eventsHandler.CreateEvent)
	app.Post("/events/bulk", eventsHandler.BulkCreateEvents)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Service.Port)
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Error("fiber stopped", logger.Error(err))
		}
	}()

	log.Info("server started",
		logger.String("addr", addr),
		logger.Float64("epsilon", cfg.Privacy.Epsilon),
		logger.String("locations_source", cfg.Locations.Source),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("fiber shutdown error", logger.Error(err))
	}

	// Drain queued events after HTTP stopped accepting new ones.
	flusher.Stop()

	log.Info("server exiting")
	return nil
}
