package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service defines the public interface for the scheduler
type Service interface {
	Start(ctx context.Context) error
	Stop() error
}

type service struct {
	log      logrus.FieldLogger
	interval time.Duration

	done chan struct{}
	wg   sync.WaitGroup

	ticker *ticker
}

// NewService creates a new scheduler service. redisClient is used for the
// last-run timestamp; keyPrefix namespaces it.
func NewService(log logrus.FieldLogger, cfg *Config, redisClient *redis.Client, keyPrefix string, queue Enqueuer) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	schedule, err := parseSchedule(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil || interval <= 0 {
		interval = 10 * time.Second
	}

	log = log.WithField("service", "scheduler")

	return &service{
		log:      log,
		interval: interval,
		done:     make(chan struct{}),
		ticker:   newTicker(log, newScheduleTracker(log, redisClient, keyPrefix), queue, schedule),
	}, nil
}

// Start begins checking the schedule in the background
func (s *service) Start(ctx context.Context) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.ticker.run(ctx, s.interval, s.done)
	}()

	s.log.WithField("interval", s.interval).Info("Scheduler service started")

	return nil
}

// Stop gracefully shuts down the scheduler service
func (s *service) Stop() error {
	close(s.done)
	s.wg.Wait()

	s.log.Info("Scheduler service stopped")

	return nil
}

var _ Service = (*service)(nil)
