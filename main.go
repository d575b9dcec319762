// Package main provides the entry point for the task serial number service
//
// @title Task Serial API
// @version 1.0
// @description Allocates task serial numbers of the form PREFIX-NNNNN and manages category prefixes.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/taskserial/app/handlers"
	"github.com/amirphl/taskserial/app/middleware"
	"github.com/amirphl/taskserial/app/router"
	"github.com/amirphl/taskserial/app/services"
	businessflow "github.com/amirphl/taskserial/business_flow"
	"github.com/amirphl/taskserial/config"
	"github.com/amirphl/taskserial/repository"
	"github.com/amirphl/taskserial/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	logger    *logrus.Logger
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Deployment.Environment,
		"version":     cfg.Deployment.Version,
		"commit":      cfg.Deployment.CommitHash,
	}).Info("Starting task serial service...")

	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-sigChan
	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}

	for _, fn := range app.stopFuncs {
		fn()
	}

	logger.Info("Server stopped")
}

func initializeDatabase(cfg config.DatabaseConfig, logger *logrus.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormLogLevel(cfg.SlowQueryLog),
			IgnoreRecordNotFoundError: true,
		}),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = repository.OpenSQLite(cfg.SQLitePath, utils.SequenceMaxWait, gormConfig)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("SQLite database opened")
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		logger.Infof("Database connection established with %d max open connections, %d max idle connections",
			cfg.MaxOpenConns, cfg.MaxIdleConns)
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("Database schema migrated")
	}

	return db, nil
}

func gormLogLevel(slowQueryLog bool) gormlogger.LogLevel {
	if slowQueryLog {
		return gormlogger.Warn
	}
	return gormlogger.Error
}

func initializeCache(cfg config.CacheConfig, logger *logrus.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Infof("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, logger *logrus.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					logger.WithError(err).Warn("Redis healthcheck failed")
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeSequenceStore picks the allocation backend and wraps it with conflict retries
func initializeSequenceStore(cfg config.SequenceConfig, cacheCfg config.CacheConfig, db *gorm.DB, rc *redis.Client, logger *logrus.Logger) (repository.SequenceCounterRepository, error) {
	var store repository.SequenceCounterRepository
	switch cfg.Backend {
	case config.SequenceBackendRedis:
		if rc == nil {
			return nil, fmt.Errorf("sequence backend %q requires CACHE_ENABLED", cfg.Backend)
		}
		store = repository.NewSequenceCounterRedisRepository(rc, cacheCfg.RedisPrefix, cfg.Timeout)
	default:
		store = repository.NewSequenceCounterRepository(db, repository.SequenceStoreOptions{
			MaxWait: cfg.MaxWait,
			Timeout: cfg.Timeout,
		})
	}

	logger.WithField("backend", cfg.Backend).Info("Sequence store initialized")

	return repository.NewRetryingSequenceCounterRepository(store, repository.RetryPolicy{
		Attempts:        cfg.RetryAttempts,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
	}, logger), nil
}

func initializeApplication(cfg *config.ProductionConfig, logger *logrus.Logger) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	rc, err := initializeCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.HealthCheckInterval, logger)
		stopFuncs = append(stopFuncs, cancel, func() { _ = rc.Close() })
	}

	sequenceRepo, err := initializeSequenceStore(cfg.Sequence, cfg.Cache, db, rc, logger)
	if err != nil {
		return nil, err
	}
	categoryRepo := repository.NewTaskCategoryRepository(db)

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	logger.Infof("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	registry := businessflow.NewPrefixRegistry(categoryRepo)
	serialFlow := businessflow.NewSerialNumberFlow(sequenceRepo, registry, logger)
	categoryFlow := businessflow.NewCategoryFlow(categoryRepo, registry, logger)

	serialHandler := handlers.NewSerialNumberHandler(serialFlow, registry, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryFlow, logger)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	fiberRouter := router.NewFiberRouter(cfg, logger, serialHandler, categoryHandler, authMiddleware)

	return &Application{
		router:    fiberRouter,
		config:    cfg,
		logger:    logger,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
