package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// Params configures a gradient-boosted ensemble
type Params struct {
	NEstimators  int     `json:"n_estimators"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	Seed         int64   `json:"seed"`
}

// DefaultParams returns 100 depth-4 trees at learning rate 0.1, seed 42
func DefaultParams() Params {
	return Params{
		NEstimators:  100,
		LearningRate: 0.1,
		MaxDepth:     4,
		Seed:         42,
	}
}

// Validate checks the parameters
func (p Params) Validate() error {
	switch {
	case p.NEstimators <= 0:
		return fmt.Errorf("%w: n_estimators must be positive", ErrInvalidParameter)
	case p.LearningRate <= 0:
		return fmt.Errorf("%w: learning_rate must be positive", ErrInvalidParameter)
	case p.MaxDepth <= 0:
		return fmt.Errorf("%w: max_depth must be positive", ErrInvalidParameter)
	}

	return nil
}

type ensemble struct {
	Params      Params    `json:"params"`
	Init        float64   `json:"init"`
	Trees       []*Tree   `json:"trees"`
	NFeatures   int       `json:"n_features"`
	Importances []float64 `json:"importances"`
}

func (e *ensemble) raw(row []float64) float64 {
	score := e.Init
	for _, t := range e.Trees {
		score += e.Params.LearningRate * t.Predict(row)
	}

	return score
}

func (e *ensemble) check(x [][]float64) error {
	if len(e.Trees) == 0 {
		return ErrNotFitted
	}

	for i, row := range x {
		if len(row) != e.NFeatures {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrFeatureMismatch, i, len(row), e.NFeatures)
		}
	}

	return nil
}

// FeatureImportances returns the normalized impurity importances
func (e *ensemble) FeatureImportances() []float64 {
	out := make([]float64, len(e.Importances))
	copy(out, e.Importances)

	return out
}

// boost fits NEstimators trees; step refines leaf values after each tree is grown
// and returns the updated raw scores.
func (e *ensemble) boost(x [][]float64, residual func(raw []float64) []float64, step func(tree *Tree, leafOf []int, samples []int)) {
	n := len(x)
	rng := rand.New(rand.NewSource(e.Params.Seed)) //nolint:gosec // deterministic model fitting

	samples := make([]int, n)
	for i := range samples {
		samples[i] = i
	}

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = e.Init
	}

	total := make([]float64, e.NFeatures)
	e.Trees = make([]*Tree, 0, e.Params.NEstimators)

	for m := 0; m < e.Params.NEstimators; m++ {
		r := residual(raw)

		tree, importance, leafOf := fitTree(x, r, samples, e.Params.MaxDepth, rng)
		if step != nil {
			step(tree, leafOf, samples)
		}

		for i := range raw {
			raw[i] += e.Params.LearningRate * tree.Nodes[leafOf[i]].Value
		}

		e.Trees = append(e.Trees, tree)

		if sum := sumOf(importance); sum > 0 {
			for f := range importance {
				total[f] += importance[f] / sum
			}
		}
	}

	e.Importances = normalize(total)
}

func validateXY(x [][]float64, n int) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyDataset
	}

	if len(x) != n {
		return 0, fmt.Errorf("%w: %d rows, %d targets", ErrLengthMismatch, len(x), n)
	}

	width := len(x[0])
	if width == 0 {
		return 0, fmt.Errorf("%w: no feature columns", ErrEmptyDataset)
	}

	for i, row := range x {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrFeatureMismatch, i, len(row), width)
		}
	}

	return width, nil
}

// GradientBoostingRegressor is a squared-error gradient-boosted tree ensemble
type GradientBoostingRegressor struct {
	ensemble
}

// NewGradientBoostingRegressor creates an unfitted regressor
func NewGradientBoostingRegressor(params Params) *GradientBoostingRegressor {
	return &GradientBoostingRegressor{ensemble{Params: params}}
}

// Fit trains the regressor starting from the target mean
func (g *GradientBoostingRegressor) Fit(x [][]float64, y []float64) error {
	if err := g.Params.Validate(); err != nil {
		return err
	}

	width, err := validateXY(x, len(y))
	if err != nil {
		return err
	}

	g.NFeatures = width
	g.Init = mean(y)

	g.boost(x, func(raw []float64) []float64 {
		r := make([]float64, len(y))
		for i := range y {
			r[i] = y[i] - raw[i]
		}

		return r
	}, nil)

	return nil
}

// Predict returns one prediction per row
func (g *GradientBoostingRegressor) Predict(x [][]float64) ([]float64, error) {
	if err := g.check(x); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = g.raw(row)
	}

	return out, nil
}

// Score returns the coefficient of determination on x, y
func (g *GradientBoostingRegressor) Score(x [][]float64, y []float64) (float64, error) {
	pred, err := g.Predict(x)
	if err != nil {
		return 0, err
	}

	return R2(y, pred), nil
}

// GradientBoostingClassifier is a binary log-loss gradient-boosted tree ensemble
type GradientBoostingClassifier struct {
	ensemble
}

// NewGradientBoostingClassifier creates an unfitted classifier
func NewGradientBoostingClassifier(params Params) *GradientBoostingClassifier {
	return &GradientBoostingClassifier{ensemble{Params: params}}
}

// Fit trains on labels 0/1 starting from the prior log-odds. Leaf values take a
// single Newton step on the log-loss.
func (g *GradientBoostingClassifier) Fit(x [][]float64, y []int) error {
	if err := g.Params.Validate(); err != nil {
		return err
	}

	width, err := validateXY(x, len(y))
	if err != nil {
		return err
	}

	target := make([]float64, len(y))
	for i, v := range y {
		if v != 0 {
			target[i] = 1
		}
	}

	g.NFeatures = width

	prior := clamp(mean(target), 1e-12, 1-1e-12)
	g.Init = math.Log(prior / (1 - prior))

	var prob []float64

	g.boost(x, func(raw []float64) []float64 {
		prob = make([]float64, len(raw))
		r := make([]float64, len(raw))

		for i := range raw {
			prob[i] = sigmoid(raw[i])
			r[i] = target[i] - prob[i]
		}

		return r
	}, func(tree *Tree, leafOf []int, samples []int) {
		num := make([]float64, len(tree.Nodes))
		den := make([]float64, len(tree.Nodes))

		for _, i := range samples {
			leaf := leafOf[i]
			num[leaf] += target[i] - prob[i]
			den[leaf] += prob[i] * (1 - prob[i])
		}

		for id := range tree.Nodes {
			if !tree.Nodes[id].IsLeaf() {
				continue
			}

			if den[id] < 1e-150 {
				tree.Nodes[id].Value = 0
				continue
			}

			tree.Nodes[id].Value = num[id] / den[id]
		}
	})

	return nil
}

// PredictProba returns the probability of the positive class per row
func (g *GradientBoostingClassifier) PredictProba(x [][]float64) ([]float64, error) {
	if err := g.check(x); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = sigmoid(g.raw(row))
	}

	return out, nil
}

// Predict returns class 1 when the positive probability exceeds one half
func (g *GradientBoostingClassifier) Predict(x [][]float64) ([]int, error) {
	proba, err := g.PredictProba(x)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(proba))
	for i, p := range proba {
		if p > 0.5 {
			out[i] = 1
		}
	}

	return out, nil
}

// Score returns the accuracy on x, y
func (g *GradientBoostingClassifier) Score(x [][]float64, y []int) (float64, error) {
	pred, err := g.Predict(x)
	if err != nil {
		return 0, err
	}

	return Accuracy(y, pred), nil
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sumOf(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}

	return s
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return sumOf(values) / float64(len(values))
}

func normalize(values []float64) []float64 {
	out := make([]float64, len(values))

	sum := sumOf(values)
	if sum == 0 {
		return out
	}

	for i, v := range values {
		out[i] = v / sum
	}

	return out
}
