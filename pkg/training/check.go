package training

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ethpandaops/rbi/pkg/warehouse"
)

// ErrPrerequisitesMissing is returned when a feature table is absent
var ErrPrerequisitesMissing = errors.New("feature tables are missing")

// PrerequisiteTables must exist in the analytics database before training
//
//nolint:gochecknoglobals // fixed table list
var PrerequisiteTables = []string{"ML_PROMO_EFFECTIVENESS", "ML_SALES_FORECAST_FEATURES"}

// TableStatus is the row count of one prerequisite table
type TableStatus struct {
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
	Rows   int64  `json:"rows"`
	Error  string `json:"error,omitempty"`
}

// CheckPrerequisites counts the rows of every prerequisite table. It stops at the
// first missing table and returns ErrPrerequisitesMissing.
func CheckPrerequisites(ctx context.Context, client warehouse.Client, database string) ([]TableStatus, error) {
	statuses := make([]TableStatus, 0, len(PrerequisiteTables))

	for _, table := range PrerequisiteTables {
		rows, err := warehouse.CountRows(ctx, client, database, table)
		if err != nil {
			statuses = append(statuses, TableStatus{Table: table, Error: err.Error()})

			if warehouse.IsMissingTable(err) {
				return statuses, fmt.Errorf("%w: %s.%s: %w", ErrPrerequisitesMissing, database, table, err)
			}

			return statuses, err
		}

		statuses = append(statuses, TableStatus{Table: table, Exists: true, Rows: rows})
	}

	return statuses, nil
}

// WriteCheck prints the prerequisite check outcome
func WriteCheck(w io.Writer, statuses []TableStatus, err error) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CHECKING IF SQL TABLES EXIST...")
	fmt.Fprintln(w, rule)

	for _, s := range statuses {
		if s.Exists {
			fmt.Fprintf(w, "\n✅ %s exists with %d records\n", s.Table, s.Rows)
		}
	}

	if err != nil {
		fmt.Fprintln(w, "\n❌ SQL tables not found!")
		fmt.Fprintf(w, "Error: %s\n", err)
		fmt.Fprintln(w, "\n"+rule)
		fmt.Fprintln(w, FeatureTableRemediation)
		fmt.Fprintln(w, rule)

		return
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "✅ SQL TABLES READY - You can now train the models!")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nRun: rbi train")
}
