// Package api exposes the HTTP control surface for the daemon.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/filmrelay/filmrelay/internal/config"
	"github.com/filmrelay/filmrelay/internal/history"
	"github.com/filmrelay/filmrelay/internal/pipeline"
	"github.com/filmrelay/filmrelay/internal/scheduler"
	"github.com/filmrelay/filmrelay/internal/seenset"
)

// SyncService is the pipeline surface the API needs.
type SyncService interface {
	Run(ctx context.Context) error
	IsRunning() bool
	LastStatus() pipeline.SyncStatus
}

// Server handles HTTP requests for the FilmRelay API.
type Server struct {
	echo           *echo.Echo
	logger         zerolog.Logger
	syncService    SyncService
	historyService *history.Service
	seen           *seenset.Store
	sched          *scheduler.Scheduler
	startTime      time.Time
}

// NewServer creates a new API server instance.
func NewServer(
	syncService SyncService,
	historyService *history.Service,
	seen *seenset.Store,
	sched *scheduler.Scheduler,
	logger zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:           e,
		logger:         logger,
		syncService:    syncService,
		historyService: historyService,
		seen:           seen,
		sched:          sched,
		startTime:      time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/health", s.healthCheck)
	api.GET("/status", s.getStatus)
	api.POST("/sync", s.triggerSync)
	api.GET("/sync/status", s.getSyncStatus)

	if s.historyService != nil {
		historyHandlers := history.NewHandlers(s.historyService)
		historyHandlers.RegisterRoutes(api.Group("/history"))
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	status := map[string]any{
		"version":      config.Version,
		"startTime":    s.startTime.Format(time.RFC3339),
		"syncRunning":  s.syncService.IsRunning(),
		"lastSync":     s.syncService.LastStatus(),
		"trackedFilms": s.seen.Size(),
	}
	if s.sched != nil {
		status["tasks"] = s.sched.ListTasks()
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) getSyncStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.syncService.LastStatus())
}

// triggerSync starts a sync run in the background. An already-running
// sync yields 409 so callers can distinguish "started" from "busy".
func (s *Server) triggerSync(c echo.Context) error {
	if s.syncService.IsRunning() {
		return c.JSON(http.StatusConflict, map[string]string{"error": pipeline.ErrSyncInProgress.Error()})
	}

	go func() {
		if err := s.syncService.Run(context.Background()); err != nil && err != pipeline.ErrSyncInProgress {
			s.logger.Error().Err(err).Msg("manual sync failed")
		}
	}()

	return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
}
