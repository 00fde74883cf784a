// Package handlers implements the RBI HTTP API
package handlers

import (
	"context"

	"github.com/ethpandaops/rbi/pkg/dashboard"
	"github.com/ethpandaops/rbi/pkg/modelstore"
	"github.com/ethpandaops/rbi/pkg/planner"
	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Dashboard renders dashboard pages
type Dashboard interface {
	Navigation() []dashboard.PageInfo
	Render(ctx context.Context, slug string) (*dashboard.View, error)
	Refresh(ctx context.Context, slug string) error
}

// Cache drops cached query results
type Cache interface {
	InvalidateAll(ctx context.Context) (int, error)
}

// Predictor scores promotions with the persisted models
type Predictor interface {
	Models() (*modelstore.ModelSet, error)
	Predict(in planner.PromotionInput) (*planner.Prediction, error)
}

// TrainingQueue queues training runs and reports on them
type TrainingQueue interface {
	EnqueueTraining(payload tasks.TrainingPayload, opts ...asynq.Option) (*asynq.TaskInfo, error)
	IsTrainingPendingOrRunning() (bool, error)
	GetQueueStats() (*asynq.QueueInfo, error)
	Queue() string
}

// Server implements ServerInterface. queue may be nil when redis is not configured.
type Server struct {
	dashboard Dashboard
	cache     Cache
	predictor Predictor
	queue     TrainingQueue
	log       logrus.FieldLogger
}

// NewServer creates a new API server instance
func NewServer(dash Dashboard, cache Cache, predictor Predictor, queue TrainingQueue, log logrus.FieldLogger) *Server {
	return &Server{
		dashboard: dash,
		cache:     cache,
		predictor: predictor,
		queue:     queue,
		log:       log.WithField("component", "api.handlers"),
	}
}

var _ ServerInterface = (*Server)(nil)
