package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "tasktracker/docs"
	"tasktracker/internal/auth"
	"tasktracker/internal/config"
	"tasktracker/internal/database"
	"tasktracker/internal/handler"
	"tasktracker/internal/logger"
	"tasktracker/internal/middleware"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("❌ invalid configuration: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	logger.Info("✅ Connected to database", "driver", cfg.DBDriver)

	if err := database.Migrate(cfg, db); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}
	logger.Info("✅ Database schema is up to date")

	rdb := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		logger.Info("✅ Connected to Redis", "addr", cfg.RedisAddr)
	}

	r, err := NewEngine(cfg, db, rdb)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine: r,
		DB:     db,
		Redis:  rdb,
		Config: cfg,
	}, nil
}

// NewEngine wires repositories, services and handlers onto a gin engine.
// rdb may be nil, which disables rate limiting.
func NewEngine(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	blacklistRepo := repository.NewTokenBlacklistRepository(db)

	// Initialize services
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, blacklistRepo)
	if err != nil {
		return nil, fmt.Errorf("❌ token service: %w", err)
	}
	creds := service.NewCredentialService(userRepo, auth.NewPasswordHasher(cfg.BcryptCost))
	tasks := service.NewTaskService(taskRepo)
	comments := service.NewCommentService(taskRepo, commentRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(creds, tokens)
	taskHandler := handler.NewTaskHandler(tasks)
	commentHandler := handler.NewCommentHandler(comments)

	var redisPing handler.Pinger
	if rdb != nil {
		redisPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthHandler := handler.NewHealthHandler(
		func(ctx context.Context) error { return database.Ping(ctx, db) },
		redisPing,
	)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	// Operational routes
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	limiter := middleware.NewRateLimiter(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow)
	public := r.Group("/", limiter.Middleware())
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		authorized.POST("/logout", userHandler.Logout)

		// Task routes
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/task/create", taskHandler.Create)
		authorized.GET("/task/detail/:id", taskHandler.GetByID)
		authorized.PATCH("/task/update/:id", taskHandler.Update)
		authorized.DELETE("/task/delete/:id", taskHandler.Delete)

		// Comment routes
		authorized.GET("/tasks/:taskId/comments", commentHandler.List)
		authorized.POST("/tasks/:taskId/comments/create", commentHandler.Create)
	}

	return r, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 Server running", "port", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("❌ Failed to listen", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("❌ Server forced to shutdown", "error", err)
	}

	s.close()
	logger.Info("✅ Server exited properly")
}

func (s *Server) close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Warn("failed to close Redis client", "error", err)
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}
}
