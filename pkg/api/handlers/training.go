package handlers

import (
	"errors"
	"time"

	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/gofiber/fiber/v3"
	"github.com/hibiken/asynq"
)

// CreateTrainingRun handles POST /api/v1/training/runs
func (s *Server) CreateTrainingRun(c fiber.Ctx) error {
	if s.queue == nil {
		return ErrTrainingUnavailable
	}

	info, err := s.queue.EnqueueTraining(tasks.TrainingPayload{
		Trigger:     tasks.TriggerAPI,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return apiError(err)
	}

	s.log.WithField("task_id", info.ID).Info("Queued training run")

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}

// TrainingStatus reports whether a run is queued or active and the queue counters
type TrainingStatus struct {
	Queue    string              `json:"queue"`
	InFlight bool                `json:"in_flight"`
	Stats    *TrainingQueueStats `json:"stats,omitempty"`
}

// TrainingQueueStats are the task counters of the training queue
type TrainingQueueStats struct {
	Pending   int  `json:"pending"`
	Active    int  `json:"active"`
	Scheduled int  `json:"scheduled"`
	Retry     int  `json:"retry"`
	Archived  int  `json:"archived"`
	Completed int  `json:"completed"`
	Processed int  `json:"processed_today"`
	Failed    int  `json:"failed_today"`
	Paused    bool `json:"paused"`
}

// GetTrainingStatus handles GET /api/v1/training/status
func (s *Server) GetTrainingStatus(c fiber.Ctx) error {
	if s.queue == nil {
		return ErrTrainingUnavailable
	}

	inFlight, err := s.queue.IsTrainingPendingOrRunning()
	if err != nil {
		return err
	}

	status := TrainingStatus{
		Queue:    s.queue.Queue(),
		InFlight: inFlight,
	}

	info, err := s.queue.GetQueueStats()
	switch {
	case err == nil:
		status.Stats = &TrainingQueueStats{
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
			Completed: info.Completed,
			Processed: info.Processed,
			Failed:    info.Failed,
			Paused:    info.Paused,
		}
	case errors.Is(err, asynq.ErrQueueNotFound):
		// nothing was ever queued
	default:
		s.log.WithError(err).Debug("Failed to read training queue stats")
	}

	return c.Status(fiber.StatusOK).JSON(status)
}
