package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"gitlab.com/equivcheck-2025.net/internal/adapter/badger/runstore"
	"gitlab.com/equivcheck-2025.net/internal/adapter/crypto"
	"gitlab.com/equivcheck-2025.net/internal/adapter/metrics"
	"gitlab.com/equivcheck-2025.net/internal/adapter/postgres/overriderepository"
	"gitlab.com/equivcheck-2025.net/internal/adapter/postgres/runrepository"
	"gitlab.com/equivcheck-2025.net/internal/adapter/redis/runstatus"
	"gitlab.com/equivcheck-2025.net/internal/app"
	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/run"
	"gitlab.com/equivcheck-2025.net/internal/core/services/testrun"
	logger2 "gitlab.com/equivcheck-2025.net/internal/global/logger"
	"gitlab.com/equivcheck-2025.net/internal/handlers"
	http2 "gitlab.com/equivcheck-2025.net/internal/http"
	"gitlab.com/equivcheck-2025.net/internal/schedulerengine"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sysCfg := config.NewSystemConfig()
	logger2.SetDebug(sysCfg.DebugMode)
	logger := logger2.Logger
	defer logger.Sync()

	if err := sysCfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("Starting equivalence check service")

	ctxBg, stop := context.WithCancel(context.Background())
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheusRecorder("equivcheck", registry)
	if err != nil {
		panic(err)
	}

	fileOverrides, err := config.LoadOverrides(sysCfg.OverridesFile)
	if err != nil {
		panic(err)
	}
	engine, err := app.NewEngine(sysCfg.RunDefaults, fileOverrides, logger,
		testrun.WithMetrics(recorder))
	if err != nil {
		panic(err)
	}

	// SECONDARY PORTS
	var (
		runRepo      secondary.RunRepository
		overrideRepo secondary.ContractOverrideRepository
		statusCache  secondary.RunStatusCache
	)
	if sysCfg.PostgresConfig.Enabled {
		db, err := setupDatabase(sysCfg.PostgresConfig)
		if err != nil {
			panic(err)
		}
		defer db.Close()

		runPort := runrepository.NewRunRepository(db, logger)
		overridePort := overriderepository.NewOverrideRepository(db, logger)
		if err := runPort.EnsureTableExists(ctxBg); err != nil {
			panic(err)
		}
		if err := overridePort.EnsureTableExists(ctxBg); err != nil {
			panic(err)
		}
		runRepo, overrideRepo = runPort, overridePort
	}
	if sysCfg.RedisConfig.Enabled {
		redisClient := setupRedis(sysCfg.RedisConfig)
		defer redisClient.Close()
		statusCache = runstatus.NewStatusCache(redisClient, logger)
	}
	if runRepo == nil || statusCache == nil {
		// Whatever shared storage is missing falls back to the embedded store.
		bdb, err := runstore.Open(runstore.DefaultConfig(sysCfg.BadgerConfig.Path), logger)
		if err != nil {
			panic(err)
		}
		defer bdb.Close()
		store := runstore.NewStore(bdb, logger)
		if runRepo == nil {
			runRepo, overrideRepo = store, store
		}
		if statusCache == nil {
			statusCache = store
		}
	}

	//services
	runSvc := run.NewRunService(engine.Catalog, engine.TestRun, runRepo, overrideRepo, statusCache, logger)
	if err := runSvc.LoadOverrides(ctxBg); err != nil {
		panic(err)
	}

	//primary ports
	var middleware *handlers.MiddlewareProvider
	if sysCfg.JwtConfig.AuthEnabled() {
		jwtProvider := crypto.NewJWTService(sysCfg.JwtConfig)
		middleware = handlers.NewMiddlewareProvider(jwtProvider, sysCfg.JwtConfig.Method, logger)
	} else {
		logger.Warn("JWT_SECRET not set, API is unauthenticated")
	}
	serviceProvider := http2.NewServiceProvider(runSvc, middleware, registry)

	//server
	httpServer := http2.NewServer(sysCfg.HTTPConfig.Port, sysCfg.HTTPConfig.ServiceName, serviceProvider, logger)
	if err := httpServer.Init(); err != nil {
		panic(err)
	}
	httpServer.Start(ctxBg)

	scheduler := schedulerengine.NewSchedulerEngine(sysCfg.EngineCfg, runSvc, logger)
	scheduler.StartRunEngine(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Stop(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	stop()
	scheduler.Wait()

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// InitReader loads <env>.env when an environment name is given, or .env when
// one exists.
func InitReader() {
	if len(os.Args) < 2 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Error loading .env file: %v", err)
		}
		return
	}

	environment := os.Args[1]
	if err := godotenv.Load(environment + ".env"); err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
