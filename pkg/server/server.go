package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storybook/pkg/flight"
	"storybook/pkg/ingest"
)

// replayWindow is how long an ingest result stays available to retries that
// carry the same Idempotency-Key.
const replayWindow = 10 * time.Minute

type Server struct {
	Echo     *echo.Echo
	Pipeline *ingest.Pipeline
	Config   Config
	Ctx      context.Context

	ingests *flight.Group[string, ingest.Result]
}

func NewServer(ctx context.Context, p *ingest.Pipeline, cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	s := &Server{
		Echo:     e,
		Pipeline: p,
		Config:   cfg,
		Ctx:      ctx,
		ingests:  flight.NewGroup[string, ingest.Result](replayWindow),
	}
	e.HTTPErrorHandler = s.handleError

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api/v1")
	api.GET("/health", s.handleGetHealth)
	api.GET("/schema/story", s.handleGetStorySchema)

	stories := api.Group("/stories")
	stories.POST("/ingest", s.handlePostIngest)     // generator output -> canonical draft story
	stories.POST("/validate", s.handlePostValidate) // tree -> itemized problems, no rewrite
	stories.GET("/sample", s.handleGetSample)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}
