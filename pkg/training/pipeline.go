package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/ml"
	"github.com/ethpandaops/rbi/pkg/modelstore"
	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/google/uuid"
	"github.com/heimdalr/dag"
	"github.com/sirupsen/logrus"
)

// Stage names
const (
	StageLoad       = "load"
	StagePrepare    = "prepare"
	StageClassifier = "classifier"
	StageRegressor  = "regressor"
	StagePersist    = "persist"
)

// ErrStageFailed wraps the error of a failing stage
var ErrStageFailed = errors.New("training stage failed")

// Loader supplies feature records
type Loader interface {
	Load(ctx context.Context) ([]features.FeatureRecord, error)
}

// Saver persists a trained model set
type Saver interface {
	Save(set *modelstore.ModelSet) ([]string, error)
}

type stage struct {
	name string
	deps []string
	run  func(ctx context.Context, st *runState) error
}

type runState struct {
	records    []features.FeatureRecord
	dataset    *features.Dataset
	classifier *ml.GradientBoostingClassifier
	regressor  *ml.GradientBoostingRegressor
	report     *Report
}

// Pipeline runs load -> prepare -> classifier, regressor -> persist
type Pipeline struct {
	log    logrus.FieldLogger
	loader Loader
	saver  Saver
	params ml.Params
	order  []stage
	now    func() time.Time
}

// NewPipeline builds the stage graph and resolves its execution order
func NewPipeline(log logrus.FieldLogger, loader Loader, saver Saver, params ml.Params) (*Pipeline, error) {
	p := &Pipeline{
		log:    log.WithField("component", "training"),
		loader: loader,
		saver:  saver,
		params: params,
		now:    time.Now,
	}

	order, err := resolve(p.stages())
	if err != nil {
		return nil, err
	}

	p.order = order

	return p, nil
}

// Stages returns the stage names in execution order
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.order))
	for _, s := range p.order {
		names = append(names, s.name)
	}

	return names
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{name: StageLoad, run: p.load},
		{name: StagePrepare, deps: []string{StageLoad}, run: p.prepare},
		{name: StageClassifier, deps: []string{StagePrepare}, run: p.fitClassifier},
		{name: StageRegressor, deps: []string{StagePrepare}, run: p.fitRegressor},
		{name: StagePersist, deps: []string{StageClassifier, StageRegressor}, run: p.persist},
	}
}

// resolve orders stages so every stage follows its dependencies, keeping
// declaration order between independent stages.
func resolve(stages []stage) ([]stage, error) {
	graph := dag.NewDAG()

	for _, s := range stages {
		if err := graph.AddVertexByID(s.name, s.name); err != nil {
			return nil, fmt.Errorf("failed to add stage %s: %w", s.name, err)
		}
	}

	for _, s := range stages {
		for _, dep := range s.deps {
			if err := graph.AddEdge(dep, s.name); err != nil {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", dep, s.name, err)
			}
		}
	}

	done := make(map[string]bool, len(stages))
	order := make([]stage, 0, len(stages))

	for len(order) < len(stages) {
		progressed := false

		for _, s := range stages {
			if done[s.name] {
				continue
			}

			parents, err := graph.GetParents(s.name)
			if err != nil {
				return nil, err
			}

			ready := true

			for parent := range parents {
				if !done[parent] {
					ready = false
					break
				}
			}

			if ready {
				done[s.name] = true
				order = append(order, s)
				progressed = true
			}
		}

		if !progressed {
			return nil, fmt.Errorf("%w: unresolvable stage order", ErrStageFailed)
		}
	}

	return order, nil
}

// Run executes every stage once. No stage is retried.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := p.now()
	st := &runState{
		report: &Report{
			RunID:     uuid.New().String(),
			StartedAt: start,
		},
	}

	log := p.log.WithField("run_id", st.report.RunID)

	for i, s := range p.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.WithField("stage", s.name).Infof("%d. Running stage", i+1)

		if err := s.run(ctx, st); err != nil {
			observability.RecordTrainingRun("failed", p.now().Sub(start).Seconds())
			return nil, fmt.Errorf("%w: %s: %w", ErrStageFailed, s.name, err)
		}
	}

	st.report.Duration = p.now().Sub(start)
	observability.RecordTrainingRun("success", st.report.Duration.Seconds())

	log.WithField("duration", st.report.Duration).Info("Training complete")

	return st.report, nil
}

func (p *Pipeline) load(ctx context.Context, st *runState) error {
	records, err := p.loader.Load(ctx)
	if err != nil {
		return err
	}

	st.records = records
	st.report.Records = len(records)

	return nil
}

func (p *Pipeline) prepare(_ context.Context, st *runState) error {
	ds, err := features.Prepare(st.records)
	if err != nil {
		return err
	}

	st.dataset = ds
	st.report.Rows = len(ds.X)
	st.report.Dropped = ds.Dropped

	return nil
}

func (p *Pipeline) fitClassifier(_ context.Context, st *runState) error {
	clf, report, err := TrainClassifier(st.dataset, p.params)
	if err != nil {
		return err
	}

	st.classifier = clf
	st.report.Classifier = report

	observability.RecordModelScore("classifier", "test_accuracy", report.TestAccuracy)
	observability.RecordModelScore("classifier", "cv_accuracy", report.CVMean)

	return nil
}

func (p *Pipeline) fitRegressor(_ context.Context, st *runState) error {
	reg, report, err := TrainRegressor(st.dataset, p.params)
	if err != nil {
		return err
	}

	st.regressor = reg
	st.report.Regressor = report

	observability.RecordModelScore("regressor", "test_r2", report.TestR2)
	observability.RecordModelScore("regressor", "mae", report.MAE)

	return nil
}

func (p *Pipeline) persist(_ context.Context, st *runState) error {
	paths, err := p.saver.Save(&modelstore.ModelSet{
		RunID:        st.report.RunID,
		TrainedAt:    p.now(),
		FeatureNames: st.dataset.FeatureNames,
		Classifier:   st.classifier,
		Regressor:    st.regressor,
		Encoders:     st.dataset.Encoders,
	})
	if err != nil {
		return err
	}

	st.report.Paths = paths

	return nil
}
