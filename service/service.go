package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/plebbitlabs/mintgate/challenge"
	"github.com/plebbitlabs/mintgate/store"
)

// Service bundles the HTTP server, the queue worker and their shared
// challenge instance into one lifecycle.
type Service struct {
	cfg    *Config
	log    *slog.Logger
	server *Server
	queue  *asynq.Client
	worker *asynq.Server
	mux    *asynq.ServeMux
	sigCh  chan os.Signal
}

// NewService wires the service from cfg. Storage initialization failures are
// fatal: without the record store no verification is possible.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	log := newLogger(cfg.LogFormat)

	records, err := store.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("initialize record store: %w", err)
	}

	ch := challenge.New(records, challenge.WithLogger(log))

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	queue := asynq.NewClient(redisOpt)
	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.QueueConcurrency,
		Queues:      map[string]int{"default": 9, "health": 1},
	})

	mux := newMux(ch, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	return &Service{
		cfg:    cfg,
		log:    log,
		server: NewServer(ch, queue, log),
		queue:  queue,
		worker: worker,
		mux:    mux,
		sigCh:  sigCh,
	}, nil
}

// newMux registers a handler for every task type the service enqueues.
// Health probes complete immediately; reaching the handler is the signal.
func newMux(ch *challenge.Challenge, log *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeVerifyPublication, NewProcessor(ch, log))
	mux.HandleFunc(TypeHealthCheck, func(context.Context, *asynq.Task) error {
		return nil
	})
	return mux
}

// Run starts the HTTP server and the queue worker, then blocks until a
// shutdown signal arrives.
func (s *Service) Run() error {
	errCh := make(chan error, 2)

	go func() {
		addr := fmt.Sprintf(":%d", s.cfg.HTTPPort)
		s.log.Info("starting verification API", "addr", addr)
		if err := s.server.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		s.log.Info("starting verification worker", "concurrency", s.cfg.QueueConcurrency)
		if err := s.worker.Run(s.mux); err != nil {
			errCh <- fmt.Errorf("queue worker: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		s.stop()
		return err
	case sig := <-s.sigCh:
		s.log.Info("shutting down", "signal", sig.String())
		s.stop()
		return nil
	}
}

func (s *Service) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Error("http shutdown", "error", err)
	}
	s.worker.Shutdown()
	if err := s.queue.Close(); err != nil {
		s.log.Error("queue close", "error", err)
	}
}

func newLogger(format string) *slog.Logger {
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	return slog.New(handler)
}
