// Package training fits and evaluates the promotion models
package training

import (
	"fmt"

	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/ml"
)

// Evaluation settings
const (
	TestFraction = 0.2
	CVFolds      = 5
	TopK         = 5
)

// TargetNames label the classifier outputs 0 and 1
//
//nolint:gochecknoglobals // fixed report labels
var TargetNames = []string{"Unsuccessful", "Successful"}

// ClassifierReport summarises the success classifier
type ClassifierReport struct {
	TrainSize     int                      `json:"train_size"`
	TestSize      int                      `json:"test_size"`
	Positives     int                      `json:"positives"`
	PositiveRate  float64                  `json:"positive_rate"`
	TrainAccuracy float64                  `json:"train_accuracy"`
	TestAccuracy  float64                  `json:"test_accuracy"`
	CVScores      []float64                `json:"cv_scores"`
	CVMean        float64                  `json:"cv_mean"`
	CVStd         float64                  `json:"cv_std"`
	Report        *ml.ClassificationReport `json:"report"`
	TopFeatures   []ml.FeatureImportance   `json:"top_features"`
}

// RegressorReport summarises the sales lift regressor
type RegressorReport struct {
	TrainSize   int                    `json:"train_size"`
	TestSize    int                    `json:"test_size"`
	MeanLift    float64                `json:"mean_lift"`
	TrainR2     float64                `json:"train_r2"`
	TestR2      float64                `json:"test_r2"`
	MAE         float64                `json:"mae"`
	CVScores    []float64              `json:"cv_scores"`
	CVMean      float64                `json:"cv_mean"`
	CVStd       float64                `json:"cv_std"`
	TopFeatures []ml.FeatureImportance `json:"top_features"`
}

// TrainClassifier fits the success classifier on a stratified split and evaluates it
func TrainClassifier(ds *features.Dataset, params ml.Params) (*ml.GradientBoostingClassifier, *ClassifierReport, error) {
	split, err := ml.StratifiedSplit(ds.Success, TestFraction, params.Seed)
	if err != nil {
		return nil, nil, err
	}

	xTrain, yTrain := ml.Rows(ds.X, split.Train), ml.Ints(ds.Success, split.Train)
	xTest, yTest := ml.Rows(ds.X, split.Test), ml.Ints(ds.Success, split.Test)

	clf := ml.NewGradientBoostingClassifier(params)
	if err := clf.Fit(xTrain, yTrain); err != nil {
		return nil, nil, fmt.Errorf("failed to fit classifier: %w", err)
	}

	report := &ClassifierReport{
		TrainSize: len(split.Train),
		TestSize:  len(split.Test),
	}

	for _, v := range yTrain {
		report.Positives += v
	}

	report.PositiveRate = float64(report.Positives) / float64(len(yTrain))

	if report.TrainAccuracy, err = clf.Score(xTrain, yTrain); err != nil {
		return nil, nil, err
	}

	if report.TestAccuracy, err = clf.Score(xTest, yTest); err != nil {
		return nil, nil, err
	}

	if report.CVScores, err = ml.CrossValClassifier(params, xTrain, yTrain, CVFolds); err != nil {
		return nil, nil, fmt.Errorf("classifier cross-validation failed: %w", err)
	}

	report.CVMean, report.CVStd = ml.MeanStd(report.CVScores)

	pred, err := clf.Predict(xTest)
	if err != nil {
		return nil, nil, err
	}

	report.Report = ml.NewClassificationReport(yTest, pred, TargetNames)
	report.TopFeatures = ml.TopFeatures(ds.FeatureNames, clf.FeatureImportances(), TopK)

	return clf, report, nil
}

// TrainRegressor fits the sales lift regressor on a shuffled split and evaluates it
func TrainRegressor(ds *features.Dataset, params ml.Params) (*ml.GradientBoostingRegressor, *RegressorReport, error) {
	split, err := ml.TrainTestSplit(len(ds.Lift), TestFraction, params.Seed)
	if err != nil {
		return nil, nil, err
	}

	xTrain, yTrain := ml.Rows(ds.X, split.Train), ml.Floats(ds.Lift, split.Train)
	xTest, yTest := ml.Rows(ds.X, split.Test), ml.Floats(ds.Lift, split.Test)

	reg := ml.NewGradientBoostingRegressor(params)
	if err := reg.Fit(xTrain, yTrain); err != nil {
		return nil, nil, fmt.Errorf("failed to fit regressor: %w", err)
	}

	report := &RegressorReport{
		TrainSize: len(split.Train),
		TestSize:  len(split.Test),
	}

	report.MeanLift, _ = ml.MeanStd(yTrain)

	if report.TrainR2, err = reg.Score(xTrain, yTrain); err != nil {
		return nil, nil, err
	}

	pred, err := reg.Predict(xTest)
	if err != nil {
		return nil, nil, err
	}

	report.TestR2 = ml.R2(yTest, pred)
	report.MAE = ml.MAE(yTest, pred)

	if report.CVScores, err = ml.CrossValRegressor(params, xTrain, yTrain, CVFolds); err != nil {
		return nil, nil, fmt.Errorf("regressor cross-validation failed: %w", err)
	}

	report.CVMean, report.CVStd = ml.MeanStd(report.CVScores)
	report.TopFeatures = ml.TopFeatures(ds.FeatureNames, reg.FeatureImportances(), TopK)

	return reg, report, nil
}
