package setup

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/rueidis"
	"github.com/robalyx/embedder/internal/cache"
	"github.com/robalyx/embedder/internal/database"
	"github.com/robalyx/embedder/internal/database/migrations"
	"github.com/robalyx/embedder/internal/embed"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/robalyx/embedder/internal/integration/catalog"
	"github.com/robalyx/embedder/internal/redis"
	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/robalyx/embedder/internal/setup/telemetry"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// CacheKeyPrefix namespaces every cache key of the application.
const CacheKeyPrefix = "embedder:"

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config        // Application configuration
	Logger       *zap.Logger           // Main application logger
	DBLogger     *zap.Logger           // Database-specific logger
	DB           database.Client       // Database connection pool
	RedisManager *redis.Manager        // Redis connection manager
	StatusClient rueidis.Client        // Redis client for worker status reporting
	Registry     *integration.Registry // Integration handlers by URL
	Service      *embed.Service        // Post admission and administration
	LogManager   *telemetry.Manager    // Log management system
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	// Redis manager provides connection pools for various subsystems
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	// Initialize database with migration check
	db, err := checkAndRunMigrations(ctx, &cfg.Common.PostgreSQL, dbLogger)
	if err != nil {
		redisManager.Close()
		return nil, err
	}

	mainCache, banCache, err := newCaches(&cfg.Common.Cache, redisManager, logger)
	if err != nil {
		db.Close()
		redisManager.Close()
		return nil, err
	}

	statusClient, err := redisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		db.Close()
		redisManager.Close()
		return nil, err
	}

	registry := catalog.NewRegistry(&cfg.Common, logger)

	service := embed.NewService(embed.Options{
		Datastore:    embed.NewDatastore(db.Model()),
		Resolver:     registry,
		Cache:        mainCache,
		BanCache:     banCache,
		ServerTTL:    cfg.Common.Cache.ServerTTLDuration(),
		PostCountTTL: cfg.Common.Cache.PostCountTTLDuration(),
		PostFormats:  catalog.PostFormats(&cfg.Common),
		Logger:       logger,
	})

	logger.Info("Application initialized",
		zap.String("service", serviceType.String()),
		zap.Bool("cache", cfg.Common.Cache.Enabled),
		zap.Int("integrations", len(registry.Integrations())))

	// Bundle all initialized components
	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		StatusClient: statusClient,
		Registry:     registry,
		Service:      service,
		LogManager:   logManager,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup() {
	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	// Close database connections
	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Close Redis connections last as other components might need it during cleanup
	s.RedisManager.Close()
}

// newCaches returns the server and ban caches, or no-op caches when caching is disabled.
func newCaches(cfg *config.Cache, redisManager *redis.Manager, logger *zap.Logger) (cache.Cache, cache.Cache, error) {
	if !cfg.Enabled {
		logger.Warn("Cache disabled, every lookup goes to the database")
		return cache.NewNop(), cache.NewNop(), nil
	}

	cacheClient, err := redisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		return nil, nil, err
	}

	banClient, err := redisManager.GetClient(redis.BanDBIndex)
	if err != nil {
		return nil, nil, err
	}

	return cache.NewRedis(cacheClient, CacheKeyPrefix, logger),
		cache.NewRedis(banClient, CacheKeyPrefix, logger), nil
}

// checkAndRunMigrations runs database migrations if needed.
func checkAndRunMigrations(ctx context.Context, cfg *config.PostgreSQL, dbLogger *zap.Logger) (database.Client, error) {
	tempDB, err := database.NewConnection(ctx, cfg, dbLogger, false)
	if err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(tempDB.DB(), migrations.Migrations)

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		tempDB.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}

	var db database.Client

	unapplied := ms.Unapplied()
	if len(unapplied) > 0 {
		log.Println("Database migrations are pending. Would you like to run them now? (y/N)")

		var response string

		_, _ = fmt.Scanln(&response)

		if response == "y" || response == "Y" {
			tempDB.Close()

			db, err = database.NewConnection(ctx, cfg, dbLogger, true)
		} else {
			log.Fatalf("Closing program due to incomplete migrations")
		}
	} else {
		db = tempDB
	}

	return db, err
}
