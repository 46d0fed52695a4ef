package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/catequesis/internal/app/controllers"
	appMigrations "github.com/yigit/catequesis/internal/app/migrations"
	appRepos "github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/app/repositories/memory"
	"github.com/yigit/catequesis/internal/app/repositories/mongodb"
	"github.com/yigit/catequesis/internal/app/repositories/postgres"
	appRoutes "github.com/yigit/catequesis/internal/app/routes"
	appServices "github.com/yigit/catequesis/internal/app/services"
	"github.com/yigit/catequesis/internal/config"
	"github.com/yigit/catequesis/internal/db"
	appMiddleware "github.com/yigit/catequesis/internal/middleware"
	pkgAuth "github.com/yigit/catequesis/internal/pkg/auth"
	"github.com/yigit/catequesis/internal/pkg/helpers"
	"github.com/yigit/catequesis/internal/pkg/logger"
	"github.com/yigit/catequesis/internal/pkg/sessionstore"
	"github.com/yigit/catequesis/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	Sessions    *appMiddleware.SessionMiddleware
	Controllers appRoutes.Controllers
	Redis       *redis.Client
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage connects the configured storage backend and returns its repositories.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing storage connection...")

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}

		lgr.Info().Str("path", cfg.Database.MigrationsDir).Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(database.Pool)
		if err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			database.Close(ctx)
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
		return postgres.NewRepositories(database), nil

	case config.DriverMongo:
		database, err := db.NewMongoDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to MongoDB")
			return nil, err
		}
		return mongodb.NewRepositories(database), nil

	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return memory.NewRepositories(memory.NewDB()), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// SetupSessionRegistry returns the Redis registry when Redis is configured,
// otherwise an in-process one.
func SetupSessionRegistry(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (sessionstore.Registry, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, sessions kept in process memory")
		return sessionstore.NewMemoryRegistry(), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, helpers.ParseDuration(cfg.Database.ConnectTimeout, 5*time.Second))
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Session registry backed by Redis")
	return sessionstore.NewRedisRegistry(client), client, nil
}

// BuildDependencies initializes services, session handling and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, registry sessionstore.Registry, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	deps.Services = appServices.NewServices(repos, lgr)

	codec := pkgAuth.NewCookieCodec(pkgAuth.CookieConfig{
		SecretKey:  cfg.Session.Secret,
		SessionTTL: helpers.ParseDuration(cfg.Session.MaxAge, 12*time.Hour),
	})
	deps.Sessions = appMiddleware.NewSessionMiddleware(codec, registry, appMiddleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	})

	deps.Controllers = appRoutes.Controllers{
		Auth:     appControllers.NewAuthController(deps.Services.Auth, deps.Sessions, lgr),
		Students: appControllers.NewStudentController(deps.Services.Students, deps.Services.Groups),
		Groups:   appControllers.NewGroupController(deps.Services.Groups),
	}

	return deps
}

// SeedDefaultData creates the configured administrator account
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if err := seed.CreateDefaultData(ctx, cfg, deps.Services.Auth, deps.Logger); err != nil {
		// Log the error but don't fail the startup
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router, deps.Controllers, deps.Sessions, deps.Repos.Store)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
