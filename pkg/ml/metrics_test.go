package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	assert.InDelta(t, 0.75, Accuracy([]int{1, 0, 1, 1}, []int{1, 0, 0, 1}), 1e-12)
	assert.Zero(t, Accuracy(nil, nil))
}

func TestR2(t *testing.T) {
	tests := []struct {
		name string
		y    []float64
		pred []float64
		want float64
	}{
		{name: "perfect", y: []float64{1, 2, 3}, pred: []float64{1, 2, 3}, want: 1},
		{name: "mean prediction", y: []float64{1, 2, 3}, pred: []float64{2, 2, 2}, want: 0},
		{name: "worse than mean", y: []float64{1, 2, 3}, pred: []float64{3, 2, 1}, want: -3},
		{name: "constant exact", y: []float64{5, 5}, pred: []float64{5, 5}, want: 1},
		{name: "constant missed", y: []float64{5, 5}, pred: []float64{4, 5}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, R2(tt.y, tt.pred), 1e-12)
		})
	}
}

func TestMAEAndMeanStd(t *testing.T) {
	assert.InDelta(t, 1.0, MAE([]float64{1, 2, 3}, []float64{2, 3, 2}), 1e-12)

	mu, sd := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, mu, 1e-12)
	assert.InDelta(t, 2, sd, 1e-12)
}

func TestClassificationReport(t *testing.T) {
	yTrue := []int{0, 0, 0, 1, 1}
	yPred := []int{0, 0, 1, 1, 0}

	report := NewClassificationReport(yTrue, yPred, []string{"Unsuccessful", "Successful"})

	assert.InDelta(t, 0.6, report.Accuracy, 1e-12)

	unsuccessful := report.Classes[0]
	assert.Equal(t, "Unsuccessful", unsuccessful.Label)
	assert.InDelta(t, 2.0/3, unsuccessful.Precision, 1e-12)
	assert.InDelta(t, 2.0/3, unsuccessful.Recall, 1e-12)
	assert.Equal(t, 3, unsuccessful.Support)

	successful := report.Classes[1]
	assert.InDelta(t, 0.5, successful.Precision, 1e-12)
	assert.InDelta(t, 0.5, successful.Recall, 1e-12)
	assert.Equal(t, 2, successful.Support)

	assert.InDelta(t, (2.0/3+0.5)/2, report.MacroAvg.F1, 1e-12)
	assert.InDelta(t, 0.6*(2.0/3)+0.4*0.5, report.WeightedAvg.F1, 1e-12)

	text := report.String()
	assert.Contains(t, text, "Unsuccessful")
	assert.Contains(t, text, "weighted avg")
}

func TestClassificationReportUndefinedPrecision(t *testing.T) {
	report := NewClassificationReport([]int{0, 1}, []int{0, 0}, []string{"Unsuccessful", "Successful"})

	assert.Zero(t, report.Classes[1].Precision)
	assert.Zero(t, report.Classes[1].F1)
}

func TestTopFeatures(t *testing.T) {
	top := TopFeatures([]string{"a", "b", "c"}, []float64{0.2, 0.5, 0.3}, 2)

	assert.Equal(t, []FeatureImportance{
		{Feature: "b", Importance: 0.5},
		{Feature: "c", Importance: 0.3},
	}, top)
}
