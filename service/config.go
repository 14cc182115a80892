// Package service runs the MintGate verification engine as a standalone
// HTTP service with an asynchronous verification queue, for deployments
// where the host plugin runtime lives in another process.
package service

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the service environment configuration.
type Config struct {
	// HTTPPort is the listen port of the verification API.
	HTTPPort int `env:"MINTGATE_HTTP_PORT" envDefault:"8095"`

	// RedisAddr hosts both the persistent record store and the task queue.
	RedisAddr string `env:"MINTGATE_REDIS_ADDR" envDefault:"127.0.0.1:6379"`

	// QueueConcurrency is the number of concurrent queue workers.
	QueueConcurrency int `env:"MINTGATE_QUEUE_CONCURRENCY" envDefault:"10"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"MINTGATE_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// LogFormat selects "json" or "text" logging.
	LogFormat string `env:"MINTGATE_LOG_FORMAT" envDefault:"json"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid MINTGATE_HTTP_PORT: %d", cfg.HTTPPort)
	}
	return &cfg, nil
}
