package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/plebbitlabs/mintgate/challenge"
	"github.com/plebbitlabs/mintgate/types"
)

// VerifyRequest is the HTTP request body for both verification endpoints.
type VerifyRequest struct {
	Options     map[string]string  `json:"options"`
	Publication *types.Publication `json:"publication"`
	Community   string             `json:"community,omitempty"`
}

// Server is the HTTP face of the verification service.
type Server struct {
	echo      *echo.Echo
	challenge *challenge.Challenge
	queue     *asynq.Client
	log       *slog.Logger
	started   time.Time
}

// NewServer creates the HTTP server around ch, enqueueing async requests on
// queue.
func NewServer(ch *challenge.Challenge, queue *asynq.Client, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		challenge: ch,
		queue:     queue,
		log:       log,
		started:   time.Now(),
	}

	e.POST("/verify", s.handleVerify)
	e.POST("/verify/async", s.handleVerifyAsync)
	e.GET("/health", s.handleHealth)

	return s
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) handleVerify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Publication == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "publication is required"})
	}

	result, err := s.challenge.Verify(c.Request().Context(), req.Options, req.Publication, req.Community)
	if err != nil {
		var cfgErr *types.ConfigError
		if errors.As(err, &cfgErr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": cfgErr.Error()})
		}
		s.log.Error("verification failed unexpectedly", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleVerifyAsync(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Publication == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "publication is required"})
	}

	task, err := NewVerifyTask(VerifyPayload{
		Options:     req.Options,
		Publication: *req.Publication,
		Community:   req.Community,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	info, err := s.queue.EnqueueContext(c.Request().Context(), task)
	if err != nil {
		s.log.Error("enqueue verification", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "queue unavailable"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"task_id": info.ID})
}

func (s *Server) handleHealth(c echo.Context) error {
	deps := map[string]string{"redis": "healthy"}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	probe := asynq.NewTask(TypeHealthCheck, nil)
	if _, err := s.queue.EnqueueContext(ctx, probe,
		asynq.Queue("health"),
		asynq.MaxRetry(0),
		asynq.Retention(time.Second),
	); err != nil {
		deps["redis"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]any{
		"status":       http.StatusText(status),
		"uptime":       time.Since(s.started).String(),
		"dependencies": deps,
	})
}
