package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/training"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Runner executes one training run
type Runner interface {
	Run(ctx context.Context) (*training.Report, error)
}

// TaskHandler handles task execution
type TaskHandler struct {
	log       logrus.FieldLogger
	runner    Runner
	onSuccess func(*training.Report)
	now       func() time.Time
}

// NewTaskHandler creates a new task handler. onSuccess, when set, runs after
// every successful training run.
func NewTaskHandler(log logrus.FieldLogger, runner Runner, onSuccess func(*training.Report)) *TaskHandler {
	return &TaskHandler{
		log:       log.WithField("component", "task-handler"),
		runner:    runner,
		onSuccess: onSuccess,
		now:       time.Now,
	}
}

// Routes returns the task type to handler mapping
func (h *TaskHandler) Routes() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeTrainingPromo: h.HandleTraining,
	}
}

// HandleTraining runs the training pipeline. Data problems are not retryable.
func (h *TaskHandler) HandleTraining(ctx context.Context, t *asynq.Task) error {
	var payload TrainingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log := h.log.WithFields(logrus.Fields{
		"trigger":      payload.Trigger,
		"requested_at": payload.RequestedAt,
	})

	log.Info("Starting training task")

	start := h.now()
	report, err := h.runner.Run(ctx)

	result := TaskResult{
		Duration:    h.now().Sub(start),
		Success:     err == nil,
		CompletedAt: h.now(),
	}

	if err != nil {
		result.Error = err.Error()
		log.WithError(err).Error("Training task failed")

		if errors.Is(err, features.ErrFeatureTableMissing) || errors.Is(err, features.ErrInsufficientData) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}

		return err
	}

	result.RunID = report.RunID

	if w := t.ResultWriter(); w != nil {
		if data, marshalErr := json.Marshal(result); marshalErr == nil {
			if _, writeErr := w.Write(data); writeErr != nil {
				log.WithError(writeErr).Debug("Failed to write task result")
			}
		}
	}

	if h.onSuccess != nil {
		h.onSuccess(report)
	}

	log.WithFields(logrus.Fields{
		"run_id":   result.RunID,
		"duration": result.Duration,
	}).Info("Training task completed")

	return nil
}
