package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/triageflow/boardbot/internal/board"
	"github.com/triageflow/boardbot/internal/engine"
	"github.com/triageflow/boardbot/internal/event"
	"github.com/triageflow/boardbot/internal/journal"
	"github.com/triageflow/boardbot/internal/logger"
)

// handleWebhook processes one GitHub delivery. Anything that needs the
// sender to redeliver answers non-2xx; irrelevant deliveries answer 200
// without touching the board.
func (s *Server) handleWebhook(c echo.Context) error {
	eventType := c.Request().Header.Get("X-GitHub-Event")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read body"})
	}

	ev, err := s.parser.Parse(eventType, body)
	if errors.Is(err, event.ErrIgnored) {
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}
	if err != nil {
		logger.Warn("rejected delivery",
			logger.F("event", eventType),
			logger.F("error", err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	logger.Info("delivery received",
		logger.F("event", eventType),
		logger.F("action", ev.Action),
		logger.F("repo", ev.Owner+"/"+ev.Repo),
		logger.F("number", ev.Number),
		logger.F("sender", ev.Sender))

	outcome, handleErr := s.engine.Handle(c.Request().Context(), ev)

	entry := journal.Entry{
		Event:   eventType,
		Action:  ev.Action,
		Repo:    ev.Owner + "/" + ev.Repo,
		Subject: ev.Number,
		Outcome: outcome,
	}
	if handleErr != nil {
		entry.Outcome = "failed"
		entry.Error = handleErr.Error()
	}
	if _, err := s.journal.Record(c.Request().Context(), entry); err != nil {
		logger.Warn("failed to journal delivery", logger.F("error", err))
	}

	if handleErr != nil {
		logger.Error("delivery failed",
			logger.F("event", eventType),
			logger.F("action", ev.Action),
			logger.F("repo", ev.Owner+"/"+ev.Repo),
			logger.F("number", ev.Number),
			logger.F("error", handleErr))

		status := http.StatusInternalServerError
		var apiErr *board.APIError
		var colErr *engine.MissingColumnError
		switch {
		case errors.As(handleErr, &apiErr):
			status = http.StatusBadGateway
		case errors.As(handleErr, &colErr):
			status = http.StatusInternalServerError
		}
		return c.JSON(status, map[string]string{"error": handleErr.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": outcome})
}
