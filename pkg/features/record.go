// Package features loads and prepares the promotion feature table for model training
package features

import (
	"math"

	"github.com/ethpandaops/rbi/pkg/convert"
	"github.com/ethpandaops/rbi/pkg/warehouse"
)

// UnknownCategory replaces null categorical cells
const UnknownCategory = "UNKNOWN"

// Categorical feature columns, in encoding order
const (
	ColProductCategory = "PRODUCT_CATEGORY"
	ColPromotionType   = "PROMOTION_TYPE"
	ColRegion          = "REGION"
)

// FeatureNames is the column order of the training matrix
//
//nolint:gochecknoglobals // fixed model schema
var FeatureNames = []string{
	"PRODUCT_CATEGORY_ENCODED",
	"DISCOUNT_PERCENTAGE",
	"PROMOTION_TYPE_ENCODED",
	"REGION_ENCODED",
	"DURATION_DAYS",
	"BASELINE_AVG_TRANSACTION",
	"BASELINE_DAILY_TRANSACTIONS",
	"BASELINE_DAILY_SALES",
	"HAS_CAMPAIGN_OVERLAP",
	"NUM_OVERLAPPING_CAMPAIGNS",
	"START_MONTH",
	"START_QUARTER",
	"START_DAY_OF_WEEK",
	"IS_HOLIDAY_SEASON",
	"STARTS_ON_WEEKEND",
}

// sourceColumns are the columns selected from the feature table
//
//nolint:gochecknoglobals // fixed model schema
var sourceColumns = []string{
	ColProductCategory, "DISCOUNT_PERCENTAGE", ColPromotionType, ColRegion,
	"DURATION_DAYS", "BASELINE_AVG_TRANSACTION", "BASELINE_DAILY_TRANSACTIONS",
	"BASELINE_DAILY_SALES", "HAS_CAMPAIGN_OVERLAP", "NUM_OVERLAPPING_CAMPAIGNS",
	"START_MONTH", "START_QUARTER", "START_DAY_OF_WEEK", "IS_HOLIDAY_SEASON",
	"STARTS_ON_WEEKEND", "IS_SUCCESSFUL", "SALES_LIFT_RATIO", "ROI_PROXY",
}

// FeatureRecord is one promotion with its features and targets.
// IsSuccessful and SalesLiftRatio are NaN when the warehouse value was null or infinite.
type FeatureRecord struct {
	ProductCategory           string  `json:"product_category"`
	DiscountPercentage        float64 `json:"discount_percentage"`
	PromotionType             string  `json:"promotion_type"`
	Region                    string  `json:"region"`
	DurationDays              float64 `json:"duration_days"`
	BaselineAvgTransaction    float64 `json:"baseline_avg_transaction"`
	BaselineDailyTransactions float64 `json:"baseline_daily_transactions"`
	BaselineDailySales        float64 `json:"baseline_daily_sales"`
	HasCampaignOverlap        float64 `json:"has_campaign_overlap"`
	NumOverlappingCampaigns   float64 `json:"num_overlapping_campaigns"`
	StartMonth                float64 `json:"start_month"`
	StartQuarter              float64 `json:"start_quarter"`
	StartDayOfWeek            float64 `json:"start_day_of_week"`
	IsHolidaySeason           float64 `json:"is_holiday_season"`
	StartsOnWeekend           float64 `json:"starts_on_weekend"`

	IsSuccessful   float64 `json:"-"`
	SalesLiftRatio float64 `json:"-"`
	ROIProxy       float64 `json:"-"`
}

// Records converts a feature table result into records
func Records(table *warehouse.Table) ([]FeatureRecord, error) {
	if table.Empty() {
		return []FeatureRecord{}, nil
	}

	if err := table.Require(sourceColumns...); err != nil {
		return nil, err
	}

	records := make([]FeatureRecord, 0, table.Len())

	for i := 0; i < table.Len(); i++ {
		v := func(col string) float64 { return number(table.Value(i, col), 0) }

		records = append(records, FeatureRecord{
			ProductCategory:           category(table.Value(i, ColProductCategory)),
			DiscountPercentage:        v("DISCOUNT_PERCENTAGE"),
			PromotionType:             category(table.Value(i, ColPromotionType)),
			Region:                    category(table.Value(i, ColRegion)),
			DurationDays:              v("DURATION_DAYS"),
			BaselineAvgTransaction:    v("BASELINE_AVG_TRANSACTION"),
			BaselineDailyTransactions: v("BASELINE_DAILY_TRANSACTIONS"),
			BaselineDailySales:        v("BASELINE_DAILY_SALES"),
			HasCampaignOverlap:        v("HAS_CAMPAIGN_OVERLAP"),
			NumOverlappingCampaigns:   v("NUM_OVERLAPPING_CAMPAIGNS"),
			StartMonth:                v("START_MONTH"),
			StartQuarter:              v("START_QUARTER"),
			StartDayOfWeek:            v("START_DAY_OF_WEEK"),
			IsHolidaySeason:           v("IS_HOLIDAY_SEASON"),
			StartsOnWeekend:           v("STARTS_ON_WEEKEND"),
			IsSuccessful:              target(table.Value(i, "IS_SUCCESSFUL")),
			SalesLiftRatio:            target(table.Value(i, "SALES_LIFT_RATIO")),
			ROIProxy:                  target(table.Value(i, "ROI_PROXY")),
		})
	}

	return records, nil
}

// number is SafeFloat with infinities treated as missing
func number(value interface{}, def float64) float64 {
	f := convert.SafeFloat(value, def)
	if math.IsInf(f, 0) {
		return def
	}

	return f
}

func target(value interface{}) float64 {
	return number(value, math.NaN())
}

func category(value interface{}) string {
	s := convert.Label(value)
	if s == "" {
		return UnknownCategory
	}

	return s
}
