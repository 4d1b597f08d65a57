package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/triageflow/boardbot/internal/board"
	"github.com/triageflow/boardbot/internal/config"
	"github.com/triageflow/boardbot/internal/engine"
	"github.com/triageflow/boardbot/internal/event"
	"github.com/triageflow/boardbot/internal/journal"
	"github.com/triageflow/boardbot/internal/logger"
)

// Server is the webhook receiver
type Server struct {
	echo    *echo.Echo
	parser  *event.Parser
	engine  *engine.Engine
	journal *journal.Journal
}

// New creates a server wired to the GitHub API and delivery journal
// described by cfg
func New(cfg *config.Config) (*Server, error) {
	client := board.NewClient(cfg.APIBaseURL, cfg.Token)

	jrnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		parser:  event.NewParser(cfg.TargetLabel),
		engine:  engine.New(client, cfg.TargetLabel),
		journal: jrnl,
	}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request/response logging
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/", s.handleHello)
	e.GET("/health", s.handleHealth)
	e.POST("/payload", s.handleWebhook)
	e.GET("/deliveries", s.handleDeliveries)

	s.echo = e
}

// Close closes the delivery journal
func (s *Server) Close() error {
	return s.journal.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHello(c echo.Context) error {
	return c.String(http.StatusOK, fmt.Sprintf("Hello, world (%s)", time.Now().Format(time.RFC3339)))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeliveries(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := s.journal.Recent(c.Request().Context(), limit)
	if err != nil {
		logger.Error("failed to list deliveries", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list deliveries"})
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}
