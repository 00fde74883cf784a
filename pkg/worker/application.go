package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	r "github.com/ethpandaops/rbi/pkg/redis"
	"github.com/ethpandaops/rbi/pkg/scheduler"
	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/ethpandaops/rbi/pkg/training"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Application runs the training worker and, when configured, the training
// schedule
type Application struct {
	config    *Config
	redis     *r.Config
	schedule  *scheduler.Config
	log       logrus.FieldLogger
	runner    tasks.Runner
	onSuccess func(*training.Report)

	redisClient  *redis.Client
	queue        *tasks.QueueManager
	worker       Service
	scheduler    scheduler.Service
	healthServer *http.Server
}

// NewApplication creates a new worker application. onSuccess runs after every
// successful training run.
func NewApplication(log logrus.FieldLogger, cfg *Config, redisCfg *r.Config, schedCfg *scheduler.Config, runner tasks.Runner, onSuccess func(*training.Report)) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !redisCfg.Enabled() {
		return nil, ErrRedisRequired
	}

	if err := redisCfg.Validate(); err != nil {
		return nil, err
	}

	if err := schedCfg.Validate(); err != nil {
		return nil, err
	}

	return &Application{
		config:    cfg,
		redis:     redisCfg,
		schedule:  schedCfg,
		log:       log.WithField("component", "worker-app"),
		runner:    runner,
		onSuccess: onSuccess,
	}, nil
}

// Queue returns the prefixed queue name the application consumes
func (a *Application) Queue() string {
	return a.redis.PrefixQueue(a.config.Queue)
}

// Start initializes and starts the worker application
func (a *Application) Start(ctx context.Context) error {
	redisOpt, err := a.redis.Options()
	if err != nil {
		return err
	}

	a.redisClient = redis.NewClient(redisOpt)
	a.queue = tasks.NewQueueManager(r.NewAsynqRedisOptions(redisOpt), a.Queue())

	handler := tasks.NewTaskHandler(a.log, a.runner, a.onSuccess)

	a.worker, err = NewService(a.log, a.config, redisOpt, a.Queue(), handler)
	if err != nil {
		return err
	}

	if err := a.worker.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	if a.schedule.Enabled() {
		a.scheduler, err = scheduler.NewService(a.log, a.schedule, a.redisClient, a.redis.Prefix, a.queue)
		if err != nil {
			return err
		}

		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		a.log.WithField("schedule", a.schedule.Schedule).Info("Training schedule enabled")
	}

	if a.config.HealthCheckAddr != "" {
		a.startHealthCheck()
	}

	a.log.Info("Worker started successfully")

	return nil
}

// Stop gracefully shuts down the worker application
func (a *Application) Stop() error {
	a.log.Info("Shutting down worker...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error

	// stop creating tasks before draining the worker
	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Stop())
	}

	if a.worker != nil {
		errs = append(errs, a.worker.Stop())
	}

	if a.queue != nil {
		errs = append(errs, a.queue.Close())
	}

	if a.redisClient != nil {
		errs = append(errs, a.redisClient.Close())
	}

	if a.healthServer != nil {
		errs = append(errs, a.healthServer.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

func (a *Application) startHealthCheck() {
	a.log.WithField("addr", a.config.HealthCheckAddr).Info("Starting health check server")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if a.worker != nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("READY"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
		}
	})

	a.healthServer = &http.Server{
		Addr:              a.config.HealthCheckAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("Health check server failed")
		}
	}()
}
