package planner

import (
	"sync"
	"testing"

	"github.com/ethpandaops/rbi/internal/testutil"
	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/ml"
	"github.com/ethpandaops/rbi/pkg/modelstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	set   *modelstore.ModelSet
	err   error
	loads int
}

func (s *staticLoader) Load() (*modelstore.ModelSet, error) {
	s.loads++
	return s.set, s.err
}

func trainedSet(t *testing.T) *modelstore.ModelSet {
	t.Helper()

	records, err := features.Records(testutil.FeatureTable(30))
	require.NoError(t, err)

	ds, err := features.Prepare(records)
	require.NoError(t, err)

	params := ml.Params{NEstimators: 20, LearningRate: 0.1, MaxDepth: 3, Seed: 42}

	clf := ml.NewGradientBoostingClassifier(params)
	require.NoError(t, clf.Fit(ds.X, ds.Success))

	reg := ml.NewGradientBoostingRegressor(params)
	require.NoError(t, reg.Fit(ds.X, ds.Lift))

	return &modelstore.ModelSet{
		RunID:        "run-7",
		FeatureNames: ds.FeatureNames,
		Classifier:   clf,
		Regressor:    reg,
		Encoders:     ds.Encoders,
	}
}

func validInput() PromotionInput {
	return PromotionInput{
		ProductCategory:           "Toys",
		PromotionType:             "BOGO",
		Region:                    "West",
		DiscountPercentage:        20,
		DurationDays:              14,
		BaselineAvgTransaction:    45,
		BaselineDailyTransactions: 25,
		BaselineDailySales:        1100,
		StartMonth:                11,
		StartQuarter:              4,
		StartDayOfWeek:            6,
		IsHolidaySeason:           true,
	}
}

func TestPredict(t *testing.T) {
	loader := &staticLoader{set: trainedSet(t)}
	p := New(loader)

	pred, err := p.Predict(validInput())
	require.NoError(t, err)

	assert.Equal(t, "run-7", pred.RunID)
	assert.GreaterOrEqual(t, pred.SuccessProbability, 0.0)
	assert.LessOrEqual(t, pred.SuccessProbability, 1.0)
	assert.Equal(t, pred.SuccessProbability > 0.5, pred.Successful)

	_, err = p.Predict(validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, loader.loads)
}

func TestPredictUnseenCategory(t *testing.T) {
	p := New(&staticLoader{set: trainedSet(t)})

	in := validInput()
	in.Region = "Atlantis"

	_, err := p.Predict(in)
	require.ErrorIs(t, err, ml.ErrUnseenCategory)
}

func TestPredictInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PromotionInput)
	}{
		{name: "missing region", mutate: func(in *PromotionInput) { in.Region = "" }},
		{name: "bad month", mutate: func(in *PromotionInput) { in.StartMonth = 13 }},
		{name: "bad quarter", mutate: func(in *PromotionInput) { in.StartQuarter = 0 }},
		{name: "no duration", mutate: func(in *PromotionInput) { in.DurationDays = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := New(&staticLoader{}).Predict(in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestPredictWithoutModels(t *testing.T) {
	p := New(&staticLoader{err: modelstore.ErrModelsNotFound})

	_, err := p.Predict(validInput())
	require.ErrorIs(t, err, modelstore.ErrModelsNotFound)
}

func TestPredictConcurrentWithStoredModels(t *testing.T) {
	store := modelstore.NewStore(t.TempDir())
	_, err := store.Save(trainedSet(t))
	require.NoError(t, err)

	p := New(store)

	var wg sync.WaitGroup
	errs := make([]error, 8)

	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = p.Predict(validInput())
		}()
	}

	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}
