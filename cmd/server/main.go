package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "fallen-dragon-server/docs"
	"fallen-dragon-server/internal/bootstrap"
	"fallen-dragon-server/internal/config"
	"fallen-dragon-server/internal/handler"
	"fallen-dragon-server/internal/messaging"
	"fallen-dragon-server/internal/seed"
	"fallen-dragon-server/internal/service"
	"fallen-dragon-server/shared/authutils"
	sharedDatabase "fallen-dragon-server/shared/database"
	"fallen-dragon-server/shared/interfaces"
	sharedLogger "fallen-dragon-server/shared/logger"
	sharedMiddleware "fallen-dragon-server/shared/middleware"
)

// @title The Fallen Dragon API
// @version 1.0
// @description Story sessions, characters and poses of The Fallen Dragon.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("Server exiting")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sqliteStories := sharedDatabase.NewSQLiteStoryRepository(logger)
	var stories interfaces.StoryRepository = sqliteStories
	var storyCache interfaces.StoryCache

	redisClient, err := bootstrap.ConnectRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		cache := sharedDatabase.NewRedisStoryCache(sqliteStories, redisClient, cfg.StoryCacheTTL, logger)
		stories, storyCache = cache, cache
	}

	txManager := sharedDatabase.NewTxManager(db.DB, logger)
	history := sharedDatabase.NewSQLiteChoiceHistoryRepository(logger)

	if cfg.SeedFile != "" {
		loader := seed.NewLoader(sqliteStories, history, txManager, storyCache, logger)
		if _, _, err := loader.LoadFile(ctx, cfg.SeedFile); err != nil {
			return fmt.Errorf("seed %s: %w", cfg.SeedFile, err)
		}
	}

	var publisher interfaces.SessionEventPublisher = messaging.NoopEventPublisher{}
	mqConn, err := bootstrap.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if mqConn != nil {
		defer func() { _ = mqConn.Close() }()
		rabbitPublisher, err := messaging.NewRabbitMQEventPublisher(mqConn, cfg.SessionEventsQueue, logger)
		if err != nil {
			return err
		}
		defer func() { _ = rabbitPublisher.Close() }()
		publisher = rabbitPublisher
	}

	repos := service.StoryRepositories{
		Stories:    stories,
		Characters: sharedDatabase.NewSQLiteCharacterRepository(logger),
		Poses:      sharedDatabase.NewSQLitePoseRepository(logger),
		Sessions:   sharedDatabase.NewSQLitePlayerSessionRepository(logger),
		History:    history,
		Users:      sharedDatabase.NewSQLiteUserRepository(logger),
	}
	storyService := service.NewStoryService(repos, db.DB, txManager, publisher,
		service.StoryServiceConfig{AllowAdvanceAfterCompletion: cfg.AllowAdvanceAfterCompletion}, logger)
	poseService := service.NewPoseService(repos.Poses, db.DB, logger)

	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, cfg.JWTLeeway, logger)
	if err != nil {
		return err
	}

	router, err := newRouter(cfg, logger)
	if err != nil {
		return err
	}
	storyHandler := handler.NewStoryHandler(storyService, poseService, db.DB, logger)
	storyHandler.RegisterRoutes(router, sharedMiddleware.GinAuthMiddleware(verifier.VerifyToken, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})
	return g.Wait()
}

func newRouter(cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		logger.Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", sharedMiddleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{sharedMiddleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Префикс для метрик (gin_requests_total и т.д.), отдаются на /metrics
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router, nil
}
