package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof is intentionally exposed when pprofAddr is configured
	"time"

	"github.com/ethpandaops/rbi/pkg/api"
	"github.com/ethpandaops/rbi/pkg/api/handlers"
	"github.com/ethpandaops/rbi/pkg/dashboard"
	"github.com/ethpandaops/rbi/pkg/frontend"
	"github.com/ethpandaops/rbi/pkg/modelstore"
	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/ethpandaops/rbi/pkg/planner"
	"github.com/ethpandaops/rbi/pkg/querycache"
	r "github.com/ethpandaops/rbi/pkg/redis"
	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service runs the dashboard: warehouse client, query cache, pages, API
type Service struct {
	config *Config
	log    logrus.FieldLogger

	client    warehouse.Client
	cache     *querycache.Executor
	dashboard *dashboard.Service
	planner   *planner.Planner
	queue     *tasks.QueueManager
	api       api.Service

	redisClient *redis.Client
	pprofServer *http.Server
}

// NewService creates the dashboard service
func NewService(log logrus.FieldLogger, cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := warehouse.NewClient(log, &cfg.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse client: %w", err)
	}

	return newService(log, cfg, client)
}

func newService(log logrus.FieldLogger, cfg *Config, client warehouse.Client) (*Service, error) {
	s := &Service{
		config: cfg,
		log:    log,
		client: client,
	}

	var store querycache.Store

	if cfg.Redis.Enabled() {
		redisOpt, err := cfg.Redis.Options()
		if err != nil {
			return nil, err
		}

		s.redisClient = redis.NewClient(redisOpt)
		s.queue = tasks.NewQueueManager(r.NewAsynqRedisOptions(redisOpt), cfg.Redis.PrefixQueue(cfg.Worker.Queue))

		if cfg.Cache.Store == querycache.StoreRedis {
			store = querycache.NewRedisStore(s.redisClient, cfg.Redis.PrefixKey("query:"))
		}
	}

	s.cache = querycache.NewExecutor(log, client, store, cfg.Cache.TTL)

	dash, err := dashboard.NewService(log, s.cache, templateEngine(&cfg.Warehouse))
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}

	s.dashboard = dash
	s.planner = planner.New(modelstore.NewStore(cfg.Models.Dir))

	var frontendHandler http.Handler
	if cfg.Frontend.Enabled {
		frontendHandler, err = frontend.NewHandler(log, dash)
		if err != nil {
			return nil, fmt.Errorf("failed to create frontend handler: %w", err)
		}
	}

	var queue handlers.TrainingQueue
	if s.queue != nil {
		queue = s.queue
	}

	server := handlers.NewServer(dash, s.cache, s.planner, queue, log)

	s.api, err = api.NewService(&cfg.API, server, frontendHandler, log)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Start opens the warehouse connection and starts serving
func (s *Service) Start(ctx context.Context) error {
	s.log.Info("Starting RBI dashboard...")

	observability.StartMetricsServer(s.config.MetricsAddr)
	s.log.WithField("addr", s.config.MetricsAddr).Info("Started metrics server")

	if s.config.PProfAddr != "" {
		s.startPProf()
	}

	if err := s.client.Start(); err != nil {
		return fmt.Errorf("failed to start warehouse client: %w", err)
	}

	if s.config.WarmCache {
		if err := s.Warm(ctx); err != nil {
			s.log.WithError(err).Warn("Failed to warm query cache")
		}
	}

	if err := s.api.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API and frontend service: %w", err)
	}

	s.log.Info("RBI dashboard started successfully")

	return nil
}

// Warm renders every page concurrently so the first visitors hit the cache
func (s *Service) Warm(ctx context.Context) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	for _, page := range s.dashboard.Navigation() {
		g.Go(func() error {
			_, err := s.dashboard.Render(gctx, page.Slug)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"duration":  time.Since(start),
		"valid_for": s.cache.TTL(),
	}).Info("Warmed query cache")

	return nil
}

// Stop gracefully shuts down the dashboard
func (s *Service) Stop() error {
	s.log.Info("Shutting down dashboard...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopService := func(name string, stopFunc func() error) {
		if err := stopFunc(); err != nil {
			s.log.WithError(err).Errorf("Failed to stop %s", name)
		}
	}

	// 1. Stop serving requests
	if s.api != nil {
		stopService("API and frontend service", s.api.Stop)
	}

	// 2. Close the queue and redis (nothing is using them now)
	if s.queue != nil {
		stopService("queue manager", s.queue.Close)
	}

	if s.redisClient != nil {
		stopService("Redis client", s.redisClient.Close)
	}

	stopService("metrics server", func() error { return observability.StopMetricsServer(ctx) })

	if s.pprofServer != nil {
		stopService("pprof server", func() error { return s.pprofServer.Shutdown(ctx) })
	}

	// Stop warehouse client (critical - return error if fails)
	if err := s.client.Stop(); err != nil {
		s.log.WithError(err).Error("Failed to stop warehouse client")
		return err
	}

	return nil
}

func (s *Service) startPProf() {
	s.log.WithField("addr", s.config.PProfAddr).Info("Starting pprof server")

	s.pprofServer = &http.Server{
		Addr:              s.config.PProfAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	go func() {
		if err := s.pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Pprof server failed")
		}
	}()
}
