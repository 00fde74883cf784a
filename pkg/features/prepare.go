package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/ethpandaops/rbi/pkg/ml"
)

// Preparation constants
const (
	MinRows = 10
	LiftMin = -10.0
	LiftMax = 100.0
)

// ErrInsufficientData is returned when too few rows survive cleaning
var ErrInsufficientData = errors.New("not enough data after cleaning")

// Encoders holds one fitted encoder per categorical column
type Encoders map[string]*ml.LabelEncoder

// Dataset is the cleaned, encoded training data
type Dataset struct {
	X            [][]float64
	Success      []int
	Lift         []float64
	Encoders     Encoders
	FeatureNames []string
	// Initial and Dropped count rows before cleaning and rows removed
	Initial int
	Dropped int
}

// Prepare drops rows with a missing target, fits the encoders and builds the
// 15-column matrix with the success label and the clipped sales lift.
func Prepare(records []FeatureRecord) (*Dataset, error) {
	clean := make([]FeatureRecord, 0, len(records))

	for _, r := range records {
		if isMissing(r.IsSuccessful) || isMissing(r.SalesLiftRatio) {
			continue
		}

		clean = append(clean, r)
	}

	if len(clean) < MinRows {
		return nil, fmt.Errorf("%w: only %d records remaining", ErrInsufficientData, len(clean))
	}

	encoders := FitEncoders(clean)

	ds := &Dataset{
		X:            make([][]float64, 0, len(clean)),
		Success:      make([]int, 0, len(clean)),
		Lift:         make([]float64, 0, len(clean)),
		Encoders:     encoders,
		FeatureNames: append([]string(nil), FeatureNames...),
		Initial:      len(records),
		Dropped:      len(records) - len(clean),
	}

	for _, r := range clean {
		row, err := Vectorize(r, encoders)
		if err != nil {
			return nil, err
		}

		label := 0
		if r.IsSuccessful != 0 {
			label = 1
		}

		ds.X = append(ds.X, row)
		ds.Success = append(ds.Success, label)
		ds.Lift = append(ds.Lift, Clip(r.SalesLiftRatio))
	}

	return ds, nil
}

// FitEncoders fits an encoder per categorical column
func FitEncoders(records []FeatureRecord) Encoders {
	products := make([]string, len(records))
	types := make([]string, len(records))
	regions := make([]string, len(records))

	for i, r := range records {
		products[i] = r.ProductCategory
		types[i] = r.PromotionType
		regions[i] = r.Region
	}

	return Encoders{
		ColProductCategory: ml.NewLabelEncoder(products),
		ColPromotionType:   ml.NewLabelEncoder(types),
		ColRegion:          ml.NewLabelEncoder(regions),
	}
}

// Vectorize encodes one record in FeatureNames order
func Vectorize(r FeatureRecord, encoders Encoders) ([]float64, error) {
	encode := func(col, value string) (float64, error) {
		enc, ok := encoders[col]
		if !ok {
			return 0, fmt.Errorf("%w: no encoder for %s", ml.ErrUnseenCategory, col)
		}

		code, err := enc.Transform(value)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", col, err)
		}

		return float64(code), nil
	}

	product, err := encode(ColProductCategory, r.ProductCategory)
	if err != nil {
		return nil, err
	}

	promoType, err := encode(ColPromotionType, r.PromotionType)
	if err != nil {
		return nil, err
	}

	region, err := encode(ColRegion, r.Region)
	if err != nil {
		return nil, err
	}

	return []float64{
		product,
		r.DiscountPercentage,
		promoType,
		region,
		r.DurationDays,
		r.BaselineAvgTransaction,
		r.BaselineDailyTransactions,
		r.BaselineDailySales,
		r.HasCampaignOverlap,
		r.NumOverlappingCampaigns,
		r.StartMonth,
		r.StartQuarter,
		r.StartDayOfWeek,
		r.IsHolidaySeason,
		r.StartsOnWeekend,
	}, nil
}

// Clip bounds a sales lift ratio to [LiftMin, LiftMax]
func Clip(v float64) float64 {
	return math.Max(LiftMin, math.Min(LiftMax, v))
}

func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
