// Package api wires the gin HTTP server exposing the ingestion pipeline:
// statement uploads, notification intake, and the review queue.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ErmoGarcia/expense-toolkit/internal/api/handler"
	"github.com/ErmoGarcia/expense-toolkit/internal/config"
	"github.com/ErmoGarcia/expense-toolkit/internal/importer"
	"github.com/ErmoGarcia/expense-toolkit/internal/notifier"
	"github.com/ErmoGarcia/expense-toolkit/internal/queue"
	"github.com/ErmoGarcia/expense-toolkit/internal/rules"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	importService importer.Service,
	notifierService notifier.Service,
	queueService queue.Service,
	ruleEngine rules.Engine,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()
	httpRouter.MaxMultipartMemory = cfg.Import.MaxUploadBytes

	importHandler := handler.NewImportHandler(log, importService)
	notificationHandler := handler.NewNotificationHandler(log, notifierService)
	queueHandler := handler.NewQueueHandler(log, queueService, ruleEngine)

	setupRouter(log, httpRouter, importHandler, notificationHandler, queueHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
