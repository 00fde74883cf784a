// Package worker runs promotion model training tasks from the queue
package worker

import (
	"errors"
	"time"
)

var (
	// ErrInvalidConcurrency is returned when concurrency is not positive
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	// ErrRedisRequired is returned when the worker has no redis to consume from
	ErrRedisRequired = errors.New("worker requires redis")
)

// Config contains worker-specific settings
type Config struct {
	Concurrency     int           `yaml:"concurrency" default:"1"`
	Queue           string        `yaml:"queue" default:"training"`
	TaskTimeout     time.Duration `yaml:"taskTimeout" default:"2h"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"30s"`
	HealthCheckAddr string        `yaml:"healthCheckAddr"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	return nil
}
