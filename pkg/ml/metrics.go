package ml

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Accuracy returns the share of matching labels
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}

	hits := 0

	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}

	return float64(hits) / float64(len(yTrue))
}

// R2 returns the coefficient of determination. A constant target scores 1 when
// predicted exactly and 0 otherwise.
func R2(yTrue, yPred []float64) float64 {
	mu := mean(yTrue)

	var ssRes, ssTot float64

	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		ssRes += d * d

		t := yTrue[i] - mu
		ssTot += t * t
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}

		return 0
	}

	return 1 - ssRes/ssTot
}

// MAE returns the mean absolute error
func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}

	total := 0.0
	for i := range yTrue {
		total += math.Abs(yTrue[i] - yPred[i])
	}

	return total / float64(len(yTrue))
}

// MeanStd returns the mean and population standard deviation
func MeanStd(values []float64) (float64, float64) {
	mu := mean(values)
	if len(values) == 0 {
		return 0, 0
	}

	variance := 0.0
	for _, v := range values {
		variance += (v - mu) * (v - mu)
	}

	return mu, math.Sqrt(variance / float64(len(values)))
}

// ClassMetrics are per-class precision, recall and F1
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport summarises binary predictions
type ClassificationReport struct {
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
}

// NewClassificationReport computes the report for labels 0..len(names)-1.
// Undefined precision or recall counts as 0.
func NewClassificationReport(yTrue, yPred []int, names []string) *ClassificationReport {
	report := &ClassificationReport{Accuracy: Accuracy(yTrue, yPred)}
	total := len(yTrue)

	var macro, weighted ClassMetrics

	for label, name := range names {
		var tp, fp, fn, support int

		for i := range yTrue {
			switch {
			case yTrue[i] == label && yPred[i] == label:
				tp++
			case yTrue[i] != label && yPred[i] == label:
				fp++
			case yTrue[i] == label && yPred[i] != label:
				fn++
			}

			if yTrue[i] == label {
				support++
			}
		}

		m := ClassMetrics{
			Label:     name,
			Precision: ratio(tp, tp+fp),
			Recall:    ratio(tp, tp+fn),
			Support:   support,
		}

		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}

		report.Classes = append(report.Classes, m)

		macro.Precision += m.Precision / float64(len(names))
		macro.Recall += m.Recall / float64(len(names))
		macro.F1 += m.F1 / float64(len(names))

		if total > 0 {
			w := float64(support) / float64(total)
			weighted.Precision += m.Precision * w
			weighted.Recall += m.Recall * w
			weighted.F1 += m.F1 * w
		}
	}

	macro.Label, macro.Support = "macro avg", total
	weighted.Label, weighted.Support = "weighted avg", total
	report.MacroAvg = macro
	report.WeightedAvg = weighted

	return report
}

// String renders the report as an aligned text table
func (r *ClassificationReport) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%14s %9s %9s %9s %9s\n\n", "", "precision", "recall", "f1-score", "support")

	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}

	fmt.Fprintf(&b, "\n%14s %9s %9s %9.2f %9d\n", "accuracy", "", "", r.Accuracy, r.MacroAvg.Support)

	for _, c := range []ClassMetrics{r.MacroAvg, r.WeightedAvg} {
		fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}

	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}

	return float64(num) / float64(den)
}

// FeatureImportance pairs a feature name with its importance
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// TopFeatures returns the k most important features, most important first
func TopFeatures(names []string, importances []float64, k int) []FeatureImportance {
	out := make([]FeatureImportance, 0, len(names))
	for i, name := range names {
		if i < len(importances) {
			out = append(out, FeatureImportance{Feature: name, Importance: importances[i]})
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Importance > out[b].Importance })

	if k < len(out) {
		out = out[:k]
	}

	return out
}
