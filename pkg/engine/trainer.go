package engine

import (
	"context"
	"fmt"

	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/ml"
	"github.com/ethpandaops/rbi/pkg/modelstore"
	"github.com/ethpandaops/rbi/pkg/rendering"
	"github.com/ethpandaops/rbi/pkg/training"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/sirupsen/logrus"
)

// sessionLoader opens the warehouse connection for a load and closes it
// straight after, so a training run holds no connection while fitting
type sessionLoader struct {
	client warehouse.Client
	loader *features.Loader
}

func (s *sessionLoader) Load(ctx context.Context) ([]features.FeatureRecord, error) {
	if err := s.client.Start(); err != nil {
		return nil, fmt.Errorf("failed to start warehouse client: %w", err)
	}

	defer func() { _ = s.client.Stop() }()

	return s.loader.Load(ctx)
}

// NewTrainer builds the training pipeline on a fresh warehouse client
func NewTrainer(log logrus.FieldLogger, cfg *Config) (*training.Pipeline, error) {
	client, err := warehouse.NewClient(log, &cfg.Warehouse)
	if err != nil {
		return nil, err
	}

	return newTrainer(log, cfg, client)
}

func newTrainer(log logrus.FieldLogger, cfg *Config, client warehouse.Client) (*training.Pipeline, error) {
	loader, err := features.NewLoader(log, client, templateEngine(&cfg.Warehouse))
	if err != nil {
		return nil, err
	}

	return training.NewPipeline(log, &sessionLoader{client: client, loader: loader}, modelstore.NewStore(cfg.Models.Dir), ml.DefaultParams())
}

// CheckPrerequisites counts the feature tables on a short-lived connection
func CheckPrerequisites(ctx context.Context, log logrus.FieldLogger, cfg *Config) ([]training.TableStatus, error) {
	client, err := warehouse.SetupClient(&cfg.Warehouse, log)
	if err != nil {
		return nil, err
	}

	defer func() { _ = client.Stop() }()

	return training.CheckPrerequisites(ctx, client, cfg.Warehouse.Analytics())
}

func templateEngine(cfg *warehouse.Config) *rendering.TemplateEngine {
	return rendering.NewTemplateEngine(rendering.Databases{
		Silver:    cfg.Silver(),
		Analytics: cfg.Analytics(),
	})
}
