package handlers

import (
	"encoding/json"
	"time"

	"github.com/ethpandaops/rbi/pkg/planner"
	"github.com/gofiber/fiber/v3"
)

// ModelInfo describes the persisted model set
type ModelInfo struct {
	RunID                 string              `json:"run_id"`
	TrainedAt             time.Time           `json:"trained_at"`
	FeatureNames          []string            `json:"feature_names"`
	Encoders              map[string][]string `json:"encoders"`
	ClassifierImportances map[string]float64  `json:"classifier_importances"`
	RegressorImportances  map[string]float64  `json:"regressor_importances"`
}

// GetModels handles GET /api/v1/models
func (s *Server) GetModels(c fiber.Ctx) error {
	set, err := s.predictor.Models()
	if err != nil {
		return apiError(err)
	}

	info := ModelInfo{
		RunID:                 set.RunID,
		TrainedAt:             set.TrainedAt,
		FeatureNames:          set.FeatureNames,
		Encoders:              make(map[string][]string, len(set.Encoders)),
		ClassifierImportances: named(set.FeatureNames, set.Classifier.FeatureImportances()),
		RegressorImportances:  named(set.FeatureNames, set.Regressor.FeatureImportances()),
	}

	for column, enc := range set.Encoders {
		info.Encoders[column] = enc.Classes
	}

	return c.Status(fiber.StatusOK).JSON(info)
}

// PredictPromotion handles POST /api/v1/promotions/predict
func (s *Server) PredictPromotion(c fiber.Ctx) error {
	var in planner.PromotionInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return ErrInvalidBody
	}

	prediction, err := s.predictor.Predict(in)
	if err != nil {
		return apiError(err)
	}

	return c.Status(fiber.StatusOK).JSON(prediction)
}

func named(names []string, values []float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for i, v := range values {
		if i < len(names) {
			out[names[i]] = v
		}
	}

	return out
}
