// Package planner scores a proposed promotion with the persisted models
package planner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/modelstore"
)

// ErrInvalidInput is returned for a promotion that cannot be scored
var ErrInvalidInput = errors.New("invalid promotion input")

// PromotionInput describes a promotion to evaluate
type PromotionInput struct {
	ProductCategory           string  `json:"product_category"`
	PromotionType             string  `json:"promotion_type"`
	Region                    string  `json:"region"`
	DiscountPercentage        float64 `json:"discount_percentage"`
	DurationDays              float64 `json:"duration_days"`
	BaselineAvgTransaction    float64 `json:"baseline_avg_transaction"`
	BaselineDailyTransactions float64 `json:"baseline_daily_transactions"`
	BaselineDailySales        float64 `json:"baseline_daily_sales"`
	HasCampaignOverlap        bool    `json:"has_campaign_overlap"`
	NumOverlappingCampaigns   float64 `json:"num_overlapping_campaigns"`
	StartMonth                int     `json:"start_month"`
	StartQuarter              int     `json:"start_quarter"`
	StartDayOfWeek            int     `json:"start_day_of_week"`
	IsHolidaySeason           bool    `json:"is_holiday_season"`
	StartsOnWeekend           bool    `json:"starts_on_weekend"`
}

// Validate checks the ranges the feature table guarantees
func (in *PromotionInput) Validate() error {
	switch {
	case in.ProductCategory == "" || in.PromotionType == "" || in.Region == "":
		return fmt.Errorf("%w: product_category, promotion_type and region are required", ErrInvalidInput)
	case in.StartMonth < 1 || in.StartMonth > 12:
		return fmt.Errorf("%w: start_month must be 1-12", ErrInvalidInput)
	case in.StartQuarter < 1 || in.StartQuarter > 4:
		return fmt.Errorf("%w: start_quarter must be 1-4", ErrInvalidInput)
	case in.DurationDays <= 0:
		return fmt.Errorf("%w: duration_days must be positive", ErrInvalidInput)
	}

	return nil
}

func (in *PromotionInput) record() features.FeatureRecord {
	return features.FeatureRecord{
		ProductCategory:           in.ProductCategory,
		DiscountPercentage:        in.DiscountPercentage,
		PromotionType:             in.PromotionType,
		Region:                    in.Region,
		DurationDays:              in.DurationDays,
		BaselineAvgTransaction:    in.BaselineAvgTransaction,
		BaselineDailyTransactions: in.BaselineDailyTransactions,
		BaselineDailySales:        in.BaselineDailySales,
		HasCampaignOverlap:        flag(in.HasCampaignOverlap),
		NumOverlappingCampaigns:   in.NumOverlappingCampaigns,
		StartMonth:                float64(in.StartMonth),
		StartQuarter:              float64(in.StartQuarter),
		StartDayOfWeek:            float64(in.StartDayOfWeek),
		IsHolidaySeason:           flag(in.IsHolidaySeason),
		StartsOnWeekend:           flag(in.StartsOnWeekend),
	}
}

// Prediction is the model output for one promotion
type Prediction struct {
	RunID              string  `json:"run_id"`
	SuccessProbability float64 `json:"success_probability"`
	Successful         bool    `json:"successful"`
	SalesLiftRatio     float64 `json:"sales_lift_ratio"`
}

// Loader supplies the persisted model set
type Loader interface {
	Load() (*modelstore.ModelSet, error)
}

// Planner lazily loads the model set and caches it until Reload
type Planner struct {
	loader Loader

	mu  sync.RWMutex
	set *modelstore.ModelSet
}

// New creates a planner over the model store
func New(loader Loader) *Planner {
	return &Planner{loader: loader}
}

// Models returns the loaded model set, reading it on first use
func (p *Planner) Models() (*modelstore.ModelSet, error) {
	p.mu.RLock()
	set := p.set
	p.mu.RUnlock()

	if set != nil {
		return set, nil
	}

	return p.Reload()
}

// Reload reads the model set again, e.g. after a training run
func (p *Planner) Reload() (*modelstore.ModelSet, error) {
	set, err := p.loader.Load()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.set = set
	p.mu.Unlock()

	return set, nil
}

// Predict scores a promotion. Categories unknown to the encoders fail with ml.ErrUnseenCategory.
func (p *Planner) Predict(in PromotionInput) (*Prediction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	set, err := p.Models()
	if err != nil {
		return nil, err
	}

	row, err := features.Vectorize(in.record(), set.Encoders)
	if err != nil {
		return nil, err
	}

	x := [][]float64{row}

	proba, err := set.Classifier.PredictProba(x)
	if err != nil {
		return nil, err
	}

	lift, err := set.Regressor.Predict(x)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		RunID:              set.RunID,
		SuccessProbability: proba[0],
		Successful:         proba[0] > 0.5,
		SalesLiftRatio:     lift[0],
	}, nil
}

func flag(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
