// Package server
//
// @title ban:ban API
// @version 1.0
// @description Daily balance game, feed and notifications API
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/auth"
	"github.com/banban-dev/banban/internal/config"
	"github.com/banban-dev/banban/internal/database"
	"github.com/banban-dev/banban/internal/models"
	"github.com/banban-dev/banban/internal/tasks"
)

const (
	// login and signup attempts allowed per client IP
	authRateLimit = rate.Limit(5.0 / 60.0)
	authBurst     = 5
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	asynqClient tasks.Enqueuer
	clock       clockwork.Clock
	authLimiter *ipRateLimiter
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := database.Open(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	// Initialize Asynq client for enqueueing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	return newServer(db, cfg, asynqClient, clockwork.NewRealClock(), zlog, version)
}

func newServer(db *gorm.DB, cfg *config.Config, enqueuer tasks.Enqueuer, clock clockwork.Clock, zlog zerolog.Logger, version string) (*Server, error) {
	if err := initJWT(db, zlog); err != nil {
		return nil, err
	}

	if err := registerValidations(); err != nil {
		return nil, err
	}

	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		asynqClient: enqueuer,
		clock:       clock,
		authLimiter: newIPRateLimiter(authRateLimit, authBurst),
		version:     version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initJWT loads the JWT secret from the settings row, creating it on first boot
func initJWT(db *gorm.DB, zlog zerolog.Logger) error {
	var setting models.Setting
	err := db.First(&setting).Error
	if err == nil {
		auth.InitializeJWT(setting.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from database")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Generate JWT secret (64 hex characters = 32 bytes of randomness)
	jwtSecretBytes := make([]byte, 32)
	if _, err := rand.Read(jwtSecretBytes); err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	setting.JWTSecret = hex.EncodeToString(jwtSecretBytes)

	if err := db.Create(&setting).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	auth.InitializeJWT(setting.JWTSecret)
	zlog.Info().Msg("Generated JWT secret on first boot")
	return nil
}

// registerValidations adds the custom tags used by request structs to gin's validator
func registerValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// YYYY-MM-DD calendar date
	return v.RegisterValidation("playdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(models.PlayDateLayout, fl.Field().String())
		return err == nil
	})
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(s.config.Server.CORSOrigins) == 1 && s.config.Server.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.config.Server.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	s.router.Use(cors.New(corsConfig))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints (no auth required)
	public := s.router.Group("/api/auth")
	public.Use(RateLimitMiddleware(s.authLimiter, s.logger))
	{
		public.POST("/signup", s.signup)
		public.POST("/login", s.login)
	}

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		// Auth endpoints
		api.GET("/auth/me", s.getCurrentUser)
		api.POST("/auth/logout", s.logout)

		// Balance games
		api.GET("/games/today", s.getTodayGame)
		api.POST("/games/:id/votes", s.vote)
		api.GET("/games/:id/votes", s.getVoteInfo)

		// Feed
		api.GET("/feeds", s.listFeeds)
		api.POST("/feeds", s.createFeed)
		api.GET("/feeds/:id/comments", s.listComments)
		api.POST("/feeds/:id/comments", s.createComment)

		// Notifications
		api.GET("/notifications", s.listNotifications)
		api.PATCH("/notifications/:id/read", s.markNotificationRead)

		// Game scheduling (admin only)
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			adminRoutes.POST("/games", s.createGame)
		}
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.clock.Now().UTC(),
		"service":   "banban-api",
		"version":   s.version,
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Handler returns the HTTP handler, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	port := ":" + s.config.Server.Port

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close Asynq client
	if closer, ok := s.asynqClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Asynq client")
		}
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close database connection to flush WAL writes
	s.logger.Info().Msg("Closing database connection...")
	if err := database.Close(s.db); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
