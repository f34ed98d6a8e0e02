// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketplace_onboarding/internal/audit"
	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/jobs"
	"marketplace_onboarding/internal/metrics"
	"marketplace_onboarding/internal/middleware"
	"marketplace_onboarding/internal/registration"
	"marketplace_onboarding/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	registrationHandler *registration.Handler
	auditHandler        *audit.Handler

	// Jobs
	documentSweepJob *jobs.DocumentSweepJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	registrationHandler *registration.Handler,
	auditHandler *audit.Handler,
	tokens session.TokenService,
	documentSweepJob *jobs.DocumentSweepJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	metrics.MustRegister()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(metrics.GinMiddleware())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		// Credentialed requests cannot use a literal wildcard origin.
		corsConfig.AllowOrigins = nil
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Accept",
		middleware.RequestIDHeader, middleware.SessionHeader, middleware.AdminAPIKeyHeader,
	}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader, middleware.SessionHeader}
	router.Use(cors.New(corsConfig))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Marketplace onboarding API is healthy!"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.UploadDriver == "local" {
		router.Static("/uploads", cfg.UploadStoragePath)
	}

	v1 := router.Group("/api/v1")

	wizard := v1.Group("", middleware.RegistrationSession(tokens, cfg, logger.Named("SessionMiddleware")))
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	registrationHandler.RegisterRoutes(wizard, limiter.Middleware())

	admin := v1.Group("/admin", middleware.AdminAPIKey(cfg.AdminAPIKey, logger.Named("AdminMiddleware")))
	auditHandler.RegisterRoutes(admin)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.MarketplaceAPITimeout*3 + 15*time.Second, // submit makes up to three upstream calls
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		registrationHandler: registrationHandler,
		auditHandler:        auditHandler,
		documentSweepJob:    documentSweepJob,
	}, nil
}

// Router exposes the gin engine, mostly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	if s.documentSweepJob != nil {
		if err := s.documentSweepJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start document sweep job", zap.Error(err))
		}
	} else {
		s.logger.Info("Document sweep job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.documentSweepJob != nil {
		s.documentSweepJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
