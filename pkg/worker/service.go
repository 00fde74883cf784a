package worker

import (
	"context"
	"fmt"
	"time"

	r "github.com/ethpandaops/rbi/pkg/redis"
	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service defines the public interface for the worker service
type Service interface {
	// Start initializes and starts the worker service
	Start(ctx context.Context) error

	// Stop gracefully shuts down the worker service
	Stop() error
}

type service struct {
	config *Config
	log    logrus.FieldLogger
	queue  string

	handler  *tasks.TaskHandler
	redisOpt *redis.Options

	server *asynq.Server
}

// NewService creates a worker consuming queue with handler
func NewService(log logrus.FieldLogger, cfg *Config, redisOpt *redis.Options, queue string, handler *tasks.TaskHandler) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if redisOpt == nil {
		return nil, ErrRedisRequired
	}

	return &service{
		log:      log.WithField("service", "worker"),
		config:   cfg,
		queue:    queue,
		handler:  handler,
		redisOpt: redisOpt,
	}, nil
}

// Start initializes and starts the worker service
func (s *service) Start(_ context.Context) error {
	srv := asynq.NewServer(r.NewAsynqRedisOptions(s.redisOpt), asynq.Config{
		Concurrency:     s.config.Concurrency,
		Queues:          map[string]int{s.queue: 1},
		ShutdownTimeout: s.config.ShutdownTimeout,
		Logger:          s.log.WithField("component", "asynq"),
		LogLevel:        asynq.WarnLevel,
	})

	mux := asynq.NewServeMux()
	for taskType, handlerFunc := range s.handler.Routes() {
		mux.HandleFunc(taskType, withTimeout(s.config.TaskTimeout, handlerFunc))
	}

	s.log.WithFields(logrus.Fields{
		"queue":       s.queue,
		"concurrency": s.config.Concurrency,
	}).Info("Starting worker service")

	// Start rather than Run: Run blocks on OS signals, which the CLI owns
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start asynq server: %w", err)
	}

	s.server = srv

	return nil
}

// Stop gracefully shuts down the worker service
func (s *service) Stop() error {
	if s.server != nil {
		s.server.Shutdown()
	}

	s.log.Info("Worker service stopped successfully")

	return nil
}

// withTimeout bounds a handler run; zero leaves it unbounded
func withTimeout(timeout time.Duration, next asynq.HandlerFunc) asynq.HandlerFunc {
	if timeout <= 0 {
		return next
	}

	return func(ctx context.Context, t *asynq.Task) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return next(ctx, t)
	}
}

var _ Service = (*service)(nil)
