package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/fahad-nakib/CareerCompass-sub000/internal/app/controllers"
	appMigrations "github.com/fahad-nakib/CareerCompass-sub000/internal/app/migrations"
	appRepos "github.com/fahad-nakib/CareerCompass-sub000/internal/app/repositories"
	appRoutes "github.com/fahad-nakib/CareerCompass-sub000/internal/app/routes"
	appServices "github.com/fahad-nakib/CareerCompass-sub000/internal/app/services"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/config"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/db"
	appMiddleware "github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
	pkgAuth "github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/cache"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/email"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/filestorage"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/helpers"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/websocket"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Database *db.PostgresDB
	Repos    *appRepos.Repositories
	// Redis is nil when the cache is disabled or unreachable
	Redis    *cache.RedisCache
	Cache    cache.Cache
	Registry *prometheus.Registry
	Hub      *websocket.Hub

	JWTService  *pkgAuth.JWTService
	FileStorage *filestorage.LocalStorage
	Mailer      email.EmailService

	AuthService          *appServices.AuthService
	InstitutionService   *appServices.InstitutionService
	ProgramService       *appServices.ProgramService
	ApplicationService   *appServices.ApplicationService
	StudentService       *appServices.StudentService
	ProfessorService     *appServices.ProfessorService
	DocumentService      *appServices.DocumentService
	NotificationService  *appServices.NotificationService
	ClientStorageService *appServices.ClientStorageService
	StatsService         *appServices.StatsService

	Controllers      appRoutes.Controllers
	HealthController *appControllers.HealthController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	AuthLimiter      *appMiddleware.RateLimiter
	HTTPMetrics      *appMiddleware.HTTPMetrics

	Logger zerolog.Logger
}

// Close releases the connections held by the dependencies
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if d.Database != nil {
		d.Database.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
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

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// setupCache connects to Redis when enabled. Any failure degrades to the no-op cache.
func setupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*cache.RedisCache, cache.Cache) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, caching turned off")
		return nil, cache.Nop{}
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unreachable, continuing without cache")
		return nil, cache.Nop{}
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache connected")
	return redisCache, redisCache
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)
	deps.Redis, deps.Cache = setupCache(ctx, cfg, lgr)

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, "")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.PublicBaseURL(),
	}, lgr)

	deps.Hub = websocket.NewHub(lgr)

	// Services
	repos := deps.Repos
	deps.NotificationService = appServices.NewNotificationService(repos.NotificationRepository, deps.Hub, lgr)
	deps.AuthService = appServices.NewAuthService(repos.AccountRepository, repos.TokenRepository, deps.JWTService, lgr)
	deps.InstitutionService = appServices.NewInstitutionService(
		repos.AccountRepository,
		repos.InstitutionRepository,
		deps.NotificationService,
		deps.Mailer,
		lgr,
	)
	deps.ProgramService = appServices.NewProgramService(repos.ProgramRepository, lgr)
	deps.ApplicationService = appServices.NewApplicationService(
		repos.ApplicationRepository,
		repos.AccountRepository,
		deps.NotificationService,
		appServices.NewApplicationMetrics(deps.Registry),
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(repos.StudentRepository, lgr)
	deps.ProfessorService = appServices.NewProfessorService(repos.ProfessorRepository, repos.AccountRepository, lgr)
	deps.DocumentService = appServices.NewDocumentService(
		repos.DocumentRepository,
		repos.ApplicationRepository,
		deps.FileStorage,
		deps.NotificationService,
		int64(cfg.Server.MaxUploadMB)<<20,
		lgr,
	)
	deps.ClientStorageService = appServices.NewClientStorageService(
		repos.ClientStorageRepository,
		deps.Cache,
		helpers.ParseDuration(cfg.Cache.StorageTTL, 5*time.Minute),
		lgr,
	)
	deps.StatsService = appServices.NewStatsService(
		repos.StatsRepository,
		deps.Cache,
		helpers.ParseDuration(cfg.Cache.StatsTTL, time.Minute),
		lgr,
	)

	// Middleware
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthLimiter = appMiddleware.NewRateLimiter(cfg.Server.RateLimitPerMin)
	deps.HTTPMetrics = appMiddleware.NewHTTPMetrics(deps.Registry)

	// Controllers
	wsHandler := websocket.NewHandler(
		deps.Hub,
		websocket.NewCommandDispatcher(deps.Hub, deps.NotificationService, lgr),
		lgr,
	)
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		Institution:  appControllers.NewInstitutionController(deps.InstitutionService, lgr),
		Program:      appControllers.NewProgramController(deps.ProgramService, lgr),
		Application:  appControllers.NewApplicationController(deps.ApplicationService, lgr),
		Student:      appControllers.NewStudentController(deps.StudentService, deps.AuthService, lgr),
		Professor:    appControllers.NewProfessorController(deps.ProfessorService, lgr),
		Document:     appControllers.NewDocumentController(deps.DocumentService, lgr),
		Notification: appControllers.NewNotificationController(deps.NotificationService, lgr),
		CommonInfo:   appControllers.NewCommonInfoController(deps.StatsService, deps.ClientStorageService, lgr),
		WebSocket:    wsHandler.HandleConnection,
	}

	var redisHealth appControllers.HealthChecker
	if deps.Redis != nil {
		redisHealth = deps.Redis
	}
	deps.HealthController = appControllers.NewHealthController(database, redisHealth)

	if err := seed.CreateDefaultData(ctx, deps.AuthService, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, lgr); err != nil {
		// The API is usable without the seed admin
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		deps.HTTPMetrics.Handler(),
		cors.New(corsConfig(cfg)),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.AuthLimiter)

	router.GET("/health", deps.HealthController.Health)
	router.GET("/ping", deps.HealthController.Ping)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders:    []string{appMiddleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}
