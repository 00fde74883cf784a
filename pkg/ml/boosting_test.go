package ml

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepData has a target driven only by the first feature
func stepData(n int) ([][]float64, []float64, []int) {
	x := make([][]float64, n)
	y := make([]float64, n)
	labels := make([]int, n)

	for i := 0; i < n; i++ {
		signal := float64(i % 10)
		noise := float64((i * 7) % 5)
		x[i] = []float64{signal, noise, 1}

		y[i] = 3 * signal
		if signal >= 5 {
			labels[i] = 1
		}
	}

	return x, y, labels
}

func TestRegressorFitsSignal(t *testing.T) {
	x, y, _ := stepData(60)

	reg := NewGradientBoostingRegressor(DefaultParams())
	require.NoError(t, reg.Fit(x, y))

	score, err := reg.Score(x, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)

	// rows with signal 9 always carry noise 3
	pred, err := reg.Predict([][]float64{x[9]})
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 3, 1}, x[9])
	assert.InDelta(t, 27, pred[0], 0.5)

	importances := reg.FeatureImportances()
	assert.InDelta(t, 1, sumOf(importances), 1e-9)
	assert.Greater(t, importances[0], importances[1])
	assert.Zero(t, importances[2])
}

func TestClassifierSeparatesClasses(t *testing.T) {
	x, _, labels := stepData(40)

	clf := NewGradientBoostingClassifier(DefaultParams())
	require.NoError(t, clf.Fit(x, labels))

	acc, err := clf.Score(x, labels)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, acc, 1e-9)

	proba, err := clf.PredictProba([][]float64{{0, 1, 1}, {9, 1, 1}})
	require.NoError(t, err)
	assert.Less(t, proba[0], 0.5)
	assert.Greater(t, proba[1], 0.5)
}

func TestClassifierSingleClass(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}

	clf := NewGradientBoostingClassifier(DefaultParams())
	require.NoError(t, clf.Fit(x, []int{1, 1, 1}))

	pred, err := clf.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, pred)
}

func TestModelsAreDeterministic(t *testing.T) {
	x, y, _ := stepData(30)

	a := NewGradientBoostingRegressor(DefaultParams())
	b := NewGradientBoostingRegressor(DefaultParams())

	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))

	pa, err := a.Predict(x)
	require.NoError(t, err)
	pb, err := b.Predict(x)
	require.NoError(t, err)

	assert.Equal(t, pa, pb)
}

func TestPredictErrors(t *testing.T) {
	reg := NewGradientBoostingRegressor(DefaultParams())

	_, err := reg.Predict([][]float64{{1, 2, 3}})
	require.ErrorIs(t, err, ErrNotFitted)

	x, y, _ := stepData(20)
	require.NoError(t, reg.Fit(x, y))

	_, err = reg.Predict([][]float64{{1, 2}})
	require.ErrorIs(t, err, ErrFeatureMismatch)
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		x       [][]float64
		y       []float64
		wantErr error
	}{
		{name: "empty", params: DefaultParams(), wantErr: ErrEmptyDataset},
		{name: "length mismatch", params: DefaultParams(), x: [][]float64{{1}}, y: []float64{1, 2}, wantErr: ErrLengthMismatch},
		{name: "ragged rows", params: DefaultParams(), x: [][]float64{{1}, {1, 2}}, y: []float64{1, 2}, wantErr: ErrFeatureMismatch},
		{name: "bad params", params: Params{NEstimators: 0, LearningRate: 0.1, MaxDepth: 1}, x: [][]float64{{1}}, y: []float64{1}, wantErr: ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGradientBoostingRegressor(tt.params).Fit(tt.x, tt.y)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestModelSurvivesJSON(t *testing.T) {
	x, _, labels := stepData(30)

	clf := NewGradientBoostingClassifier(DefaultParams())
	require.NoError(t, clf.Fit(x, labels))

	data, err := json.Marshal(clf)
	require.NoError(t, err)

	var restored GradientBoostingClassifier
	require.NoError(t, json.Unmarshal(data, &restored))

	want, err := clf.PredictProba(x)
	require.NoError(t, err)
	got, err := restored.PredictProba(x)
	require.NoError(t, err)

	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}

	assert.Equal(t, clf.FeatureImportances(), restored.FeatureImportances())
}

func TestSigmoidIsStable(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
	assert.False(t, math.IsNaN(sigmoid(-1000)))
	assert.False(t, math.IsNaN(sigmoid(1000)))
}
