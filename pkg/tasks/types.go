// Package tasks provides the retraining task queue using Asynq
package tasks

import (
	"time"
)

const (
	// TypeTrainingPromo is the task type for a promotion model training run
	TypeTrainingPromo = "training:promo"
	// TrainingTaskID is fixed so at most one training run is queued or active
	TrainingTaskID = "training:promo"
	// DefaultQueue is the queue training tasks are placed on
	DefaultQueue = "training"
)

// Triggers record who asked for a run
const (
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

// TrainingPayload is the payload of a training task
type TrainingPayload struct {
	Trigger     string    `json:"trigger"`
	RequestedAt time.Time `json:"requested_at"`
}

// TaskResult summarises a finished training task
type TaskResult struct {
	RunID       string        `json:"run_id"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	CompletedAt time.Time     `json:"completed_at"`
}
