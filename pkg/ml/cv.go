package ml

import "fmt"

// CrossValClassifier returns the accuracy of a fresh classifier on each stratified fold
func CrossValClassifier(params Params, x [][]float64, y []int, k int) ([]float64, error) {
	if _, err := validateXY(x, len(y)); err != nil {
		return nil, err
	}

	folds, err := StratifiedKFold(y, k)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, 0, k)

	for i, fold := range folds {
		clf := NewGradientBoostingClassifier(params)
		if err := clf.Fit(Rows(x, fold.Train), Ints(y, fold.Train)); err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}

		score, err := clf.Score(Rows(x, fold.Test), Ints(y, fold.Test))
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}

		scores = append(scores, score)
	}

	return scores, nil
}

// CrossValRegressor returns the R² of a fresh regressor on each contiguous fold
func CrossValRegressor(params Params, x [][]float64, y []float64, k int) ([]float64, error) {
	if _, err := validateXY(x, len(y)); err != nil {
		return nil, err
	}

	folds, err := KFold(len(y), k)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, 0, k)

	for i, fold := range folds {
		reg := NewGradientBoostingRegressor(params)
		if err := reg.Fit(Rows(x, fold.Train), Floats(y, fold.Train)); err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}

		score, err := reg.Score(Rows(x, fold.Test), Floats(y, fold.Test))
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}

		scores = append(scores, score)
	}

	return scores, nil
}
