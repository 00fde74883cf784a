package training

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/ml"
)

// Report is the outcome of a training run
type Report struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	Duration   time.Duration     `json:"duration"`
	Records    int               `json:"records"`
	Dropped    int               `json:"dropped"`
	Rows       int               `json:"rows"`
	Classifier *ClassifierReport `json:"classifier"`
	Regressor  *RegressorReport  `json:"regressor"`
	Paths      []string          `json:"paths"`
}

const rule = "======================================================================"

// Write prints the run summary in the format operators read after `rbi train`
func (r *Report) Write(w io.Writer) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "PROMO ROI OPTIMIZER - MODEL TRAINING")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	fmt.Fprintf(w, "Initial records: %d\n", r.Records)
	fmt.Fprintf(w, "After removing NaN/inf: %d\n", r.Rows)

	if c := r.Classifier; c != nil {
		fmt.Fprintln(w, "\n=== Classification Model (Success Prediction) ===")
		fmt.Fprintf(w, "Training set: %d samples\n", c.TrainSize)
		fmt.Fprintf(w, "Test set: %d samples\n", c.TestSize)
		fmt.Fprintf(w, "Positive class (successful): %d (%.1f%%)\n", c.Positives, c.PositiveRate*100)
		fmt.Fprintf(w, "\nTrain Accuracy: %.3f\n", c.TrainAccuracy)
		fmt.Fprintf(w, "Test Accuracy: %.3f\n", c.TestAccuracy)
		fmt.Fprintf(w, "Cross-Val Accuracy: %.3f (+/- %.3f)\n", c.CVMean, c.CVStd)
		fmt.Fprintln(w, "\nClassification Report:")
		fmt.Fprint(w, c.Report.String())
		writeTop(w, c.TopFeatures)
	}

	if g := r.Regressor; g != nil {
		fmt.Fprintln(w, "\n=== Regression Model (Sales Lift Prediction) ===")
		fmt.Fprintf(w, "Training set: %d samples\n", g.TrainSize)
		fmt.Fprintf(w, "Test set: %d samples\n", g.TestSize)
		fmt.Fprintf(w, "Mean sales lift: %.3f\n", g.MeanLift)
		fmt.Fprintf(w, "\nTrain R² Score: %.3f\n", g.TrainR2)
		fmt.Fprintf(w, "Test R² Score: %.3f\n", g.TestR2)
		fmt.Fprintf(w, "Mean Absolute Error: %.3f\n", g.MAE)
		fmt.Fprintf(w, "Cross-Val R² Score: %.3f (+/- %.3f)\n", g.CVMean, g.CVStd)
		writeTop(w, g.TopFeatures)
	}

	if len(r.Paths) > 0 {
		fmt.Fprintln(w)

		for _, p := range r.Paths {
			fmt.Fprintf(w, "✓ Saved %s\n", p)
		}
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "TRAINING COMPLETE!")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "1. Start the dashboard: rbi dashboard")
	fmt.Fprintln(w, "2. POST promotion parameters to /api/v1/promotions/predict")
}

func writeTop(w io.Writer, top []ml.FeatureImportance) {
	fmt.Fprintln(w, "\nTop 5 Most Important Features:")

	for _, f := range top {
		fmt.Fprintf(w, "  %-28s %.4f\n", f.Feature, f.Importance)
	}
}

// FeatureTableRemediation tells the operator how to build the missing feature tables
const FeatureTableRemediation = `You need to create the ML feature tables first.

STEP 1: Build the feature tables in ClickHouse
1. Open a clickhouse-client session (or the Play UI) against the warehouse
2. Run the entire contents of:
   sql/phase_3/2_ml_feature_tables.sql
3. Wait for completion
4. Check with: rbi check
5. Run this training command again`

// ExitCode reports err to w and returns the process exit status: 0 on success,
// 1 with remediation text when the feature table is missing, 1 otherwise.
func ExitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, features.ErrFeatureTableMissing) {
		fmt.Fprintln(w, "\n"+rule)
		fmt.Fprintln(w, "ERROR: ML_PROMO_EFFECTIVENESS table not found!")
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, "\n"+FeatureTableRemediation)
		fmt.Fprintln(w, "\n"+rule)

		return 1
	}

	fmt.Fprintf(w, "ERROR: %s\n", strings.TrimSpace(err.Error()))

	return 1
}
