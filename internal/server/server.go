// Package server renders the CineMatch pages and wires the session
// store, the recommendation backend and the movie catalog together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cinematch-dev/cinematch/internal/auth"
	"github.com/cinematch-dev/cinematch/internal/backend"
	"github.com/cinematch-dev/cinematch/internal/config"
	"github.com/cinematch-dev/cinematch/internal/session"
	"github.com/cinematch-dev/cinematch/internal/tmdb"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	db      *gorm.DB
	config  *config.Config
	logger  zerolog.Logger
	store   *session.Store
	backend *backend.Client
	catalog *tmdb.Client
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	auth.Initialize(cfg.Session.Secret)

	backendClient := backend.New(cfg.Backend.URL)
	catalog := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.ImageBaseURL)

	// The backend client doubles as the logout notifier so clearAuth can
	// invalidate the token server-side before wiping it locally.
	store, err := session.NewStore(db, backendClient, zlog)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:      db,
		config:  cfg,
		logger:  zlog,
		store:   store,
		backend: backendClient,
		catalog: catalog,
	}

	if err := server.setupRouter(); err != nil {
		return nil, err
	}

	return server, nil
}

// initDatabase opens the session database with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL keeps concurrent page loads from tripping over session writes
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	if len(s.config.Server.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Router-level guard runs on the raw cookie, before rehydration;
	// every protected handler re-checks against the rehydrated store.
	s.router.Use(s.routeGuardMiddleware())
	s.router.Use(s.sessionMiddleware())

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("alphanumdash", func(fl validator.FieldLevel) bool {
			for _, char := range fl.Field().String() {
				if !((char >= 'a' && char <= 'z') ||
					(char >= 'A' && char <= 'Z') ||
					(char >= '0' && char <= '9') ||
					char == '-' ||
					char == '_') {
					return false
				}
			}
			return true
		})
	}

	tmpl, err := s.loadTemplates()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	s.router.SetHTMLTemplate(tmpl)

	s.router.GET("/healthz", s.healthCheck)

	// Auth pages
	s.router.GET("/login", s.loginPage)
	s.router.POST("/login", s.login)
	s.router.GET("/signup", s.signupPage)
	s.router.POST("/signup", s.signup)
	s.router.GET("/logout", s.logout)
	s.router.POST("/logout", s.logout)

	// Protected pages
	s.router.GET("/", s.homePage)
	s.router.GET("/search", s.searchPage)
	s.router.GET("/history", s.historyPage)
	s.router.POST("/history/clear", s.clearHistory)
	s.router.GET("/profile", s.profilePage)
	s.router.POST("/profile", s.updateProfile)

	// Movie detail pages are public; their actions require a session
	s.router.GET("/movies/:id", s.moviePage)
	s.router.POST("/movies/:id/rate", s.rateMovie)
	s.router.POST("/movies/:id/history", s.addToHistory)

	return nil
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "cinematch-web",
	})
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	prunerCtx, stopPruner := context.WithCancel(context.Background())
	defer stopPruner()
	go func() {
		err := s.store.StartPruner(prunerCtx, s.config.Session.PruneSchedule, s.config.Session.TTL)
		if err != nil {
			s.logger.Error().Err(err).Msg("Session pruner not running")
		}
	}()

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", s.config.Server.ListenAddr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	stopPruner()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
