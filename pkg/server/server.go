package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pickupwatch/pkg/config"
	"pickupwatch/pkg/handlers"
	"pickupwatch/pkg/logger"
	"pickupwatch/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server constants
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 120 * time.Second
)

// HTTPServer serves the status API
type HTTPServer struct {
	server     *http.Server
	router     *gin.Engine
	config     *config.ServerConfig
	handlerSvc *handlers.HandlerService
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(cfg *config.ServerConfig, handlerSvc *handlers.HandlerService, development bool) *HTTPServer {
	if development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &HTTPServer{
		router:     gin.New(),
		config:     cfg,
		handlerSvc: handlerSvc,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.router,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	logger.Info("HTTP server initialized", zap.String("listen_addr", s.server.Addr))
	return s
}

// Handler exposes the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *HTTPServer) setupRoutes() {
	s.router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.GinZapLogger(logger.Logger),
		middleware.CORS(),
		middleware.ErrorHandler(),
	)

	s.router.GET("/health", s.handlerSvc.Health)
	s.router.GET("/metrics", s.handlerSvc.Metrics)

	api := s.router.Group("/api/v1")
	api.GET("/status", s.handlerSvc.GetStatus)
	api.GET("/config", s.handlerSvc.GetAppConfig)
	api.GET("/scheduler/jobs", s.handlerSvc.GetScheduledJobs)
	api.POST("/scheduler/jobs/:id/trigger", s.handlerSvc.TriggerJob)
}

// Start starts the HTTP server and blocks until it stops
func (s *HTTPServer) Start() error {
	logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	return nil
}
