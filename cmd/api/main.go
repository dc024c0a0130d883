package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/linkstack/internal/config"
	"github.com/SergeiKhy/linkstack/internal/handler"
	"github.com/SergeiKhy/linkstack/internal/logging"
	"github.com/SergeiKhy/linkstack/internal/media"
	"github.com/SergeiKhy/linkstack/internal/middleware"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/SergeiKhy/linkstack/internal/theme"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Log.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключение к БД (postgres) и миграции
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		cancelMigrate()
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	cancelMigrate()

	// Подключение к Redis
	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	cacheRepo := repository.NewCacheRepository(redis)
	prefRepo := repository.NewPreferenceRepository(redis)

	store, err := media.NewFSStore(cfg.Media)
	if err != nil {
		logger.Fatal("Failed to init media store", zap.Error(err))
	}

	// Инициализация процессора кликов (Worker Pool)
	clickProcessor := service.NewClickProcessor(clickRepo, logger)
	clickProcessor.Start()
	defer clickProcessor.Stop()

	// Инициализация сервисов
	events := service.NewAuthEvents()
	authService := service.NewAuthService(userRepo, service.NewBcryptHasher(0), events, cfg.Auth, logger)
	sessions := service.NewSessionRegistry(
		userRepo, profileRepo, prefRepo, linkRepo, cacheRepo, events,
		service.LinkManagerOptions{RenumberOnDeactivate: cfg.Links.RenumberOnDeactivate},
		logger,
	)
	profileService := service.NewProfileService(profileRepo, cacheRepo, store, logger)
	publicService := service.NewPublicService(profileRepo, linkRepo, visitorRepo, cacheRepo, clickProcessor, cfg.App.PublicCacheTTL, logger)
	analyticsService := service.NewAnalyticsService(clickRepo, visitorRepo)
	generator := theme.NewGenerator(cfg.AI, &http.Client{Timeout: cfg.AI.Timeout + 5*time.Second}, logger)

	if len(cfg.AI.APIKeys) == 0 {
		logger.Warn("AI_API_KEYS is empty, theme generation is disabled")
	}

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))
	defer rateLimiter.Stop()

	// Настройка роутера
	router := handler.NewRouter(handler.RouterDeps{
		Auth:      authService,
		Sessions:  sessions,
		Profiles:  profileService,
		Public:    publicService,
		Analytics: analyticsService,
		Generator: generator,
		Clicks:    clickProcessor,
		Probes: map[string]handler.Pinger{
			"postgres": db,
			"redis":    redis,
		},
		RateLimiter:  rateLimiter,
		MediaDir:     cfg.Media.Dir,
		MediaPrefix:  cfg.Media.URLPrefix,
		SecureCookie: cfg.Auth.SecureCookie,
		Logger:       logger,
	})

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
