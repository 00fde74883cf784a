package handlers

import (
	"errors"

	"github.com/ethpandaops/rbi/pkg/dashboard"
	"github.com/ethpandaops/rbi/pkg/ml"
	"github.com/ethpandaops/rbi/pkg/modelstore"
	"github.com/ethpandaops/rbi/pkg/planner"
	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/gofiber/fiber/v3"
)

var (
	// ErrPageNotFound is returned for an unknown page slug
	ErrPageNotFound = fiber.NewError(fiber.StatusNotFound, "page not found")
	// ErrModelsNotFound is returned before the first training run
	ErrModelsNotFound = fiber.NewError(fiber.StatusNotFound, "no trained models found, run `rbi train` first")
	// ErrInvalidBody is returned for a request body that is not valid JSON
	ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	// ErrTrainingInFlight is returned when a training run is already queued
	ErrTrainingInFlight = fiber.NewError(fiber.StatusConflict, "training run already queued or running")
	// ErrTrainingUnavailable is returned when no queue is configured
	ErrTrainingUnavailable = fiber.NewError(fiber.StatusServiceUnavailable, "training queue is not configured")
)

// apiError maps domain errors to HTTP errors. Anything unknown is left for
// the error handler to report as a 500.
func apiError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrPageNotFound):
		return ErrPageNotFound
	case errors.Is(err, modelstore.ErrModelsNotFound), errors.Is(err, modelstore.ErrIncompleteSet):
		return ErrModelsNotFound
	case errors.Is(err, planner.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ml.ErrUnseenCategory):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, tasks.ErrTrainingInFlight):
		return ErrTrainingInFlight
	default:
		return err
	}
}
