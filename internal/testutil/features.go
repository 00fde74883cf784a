package testutil

import (
	"math"

	"github.com/ethpandaops/rbi/pkg/warehouse"
)

// FeatureColumns lists the columns of ANALYTICS.ML_PROMO_EFFECTIVENESS the loader selects
//
//nolint:gochecknoglobals // fixed test schema
var FeatureColumns = []string{
	"PRODUCT_CATEGORY", "DISCOUNT_PERCENTAGE", "PROMOTION_TYPE", "REGION",
	"DURATION_DAYS", "BASELINE_AVG_TRANSACTION", "BASELINE_DAILY_TRANSACTIONS",
	"BASELINE_DAILY_SALES", "HAS_CAMPAIGN_OVERLAP", "NUM_OVERLAPPING_CAMPAIGNS",
	"START_MONTH", "START_QUARTER", "START_DAY_OF_WEEK", "IS_HOLIDAY_SEASON",
	"STARTS_ON_WEEKEND", "IS_SUCCESSFUL", "SALES_LIFT_RATIO", "ROI_PROXY",
}

// FeatureTable builds n deterministic rows shaped like the promotion feature table.
// Odd rows are successful promotions with a positive lift, even rows are not.
func FeatureTable(n int) *warehouse.Table {
	categories := []string{"Electronics", "Grocery", "Toys"}
	types := []string{"Percentage", "BOGO"}
	regions := []string{"North", "South", "East", "West"}

	columns := make([]warehouse.Column, len(FeatureColumns))
	for i, name := range FeatureColumns {
		columns[i] = warehouse.Column{Name: name}
	}

	rows := make([][]interface{}, 0, n)

	for i := 0; i < n; i++ {
		success := i % 2
		discount := 5.0 + float64(i%6)*5
		lift := -0.2 + float64(success)*(0.3+discount/50)

		rows = append(rows, []interface{}{
			categories[i%len(categories)],
			discount,
			types[i%len(types)],
			regions[i%len(regions)],
			int64(7 + i%21),
			40.0 + float64(i%9),
			int64(20 + i%13),
			800.0 + float64(i*15),
			uint8(i % 2),
			int64(i % 3),
			int64(1 + i%12),
			int64(1 + (i%12)/3),
			int64(1 + i%7),
			uint8(boolToInt(i%12 >= 10)),
			uint8(boolToInt(i%7 >= 5)),
			uint8(success),
			lift,
			lift * 1.5,
		})
	}

	return warehouse.NewTable(columns, rows)
}

// WithTargetOverride replaces the targets of row idx, e.g. with nil or +Inf
func WithTargetOverride(table *warehouse.Table, idx int, success, lift interface{}) *warehouse.Table {
	successCol := len(FeatureColumns) - 3
	liftCol := len(FeatureColumns) - 2

	table.Rows[idx][successCol] = success
	table.Rows[idx][liftCol] = lift

	return table
}

// Inf is a shorthand for a positive infinity cell
func Inf() float64 {
	return math.Inf(1)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
