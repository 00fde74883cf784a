package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/hibiken/asynq"
)

// ErrTrainingInFlight is returned when a training run is already queued or active
var ErrTrainingInFlight = errors.New("training run already queued or running")

// QueueManager manages task queuing
type QueueManager struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

// NewQueueManager creates a new queue manager
func NewQueueManager(redisOpt *asynq.RedisClientOpt, queue string) *QueueManager {
	if queue == "" {
		queue = DefaultQueue
	}

	return &QueueManager{
		client:    asynq.NewClient(*redisOpt),
		inspector: asynq.NewInspector(*redisOpt),
		queue:     queue,
	}
}

// Queue returns the queue name training tasks use
func (q *QueueManager) Queue() string {
	return q.queue
}

// EnqueueTraining enqueues a training run. Training is never retried.
func (q *QueueManager) EnqueueTraining(payload TrainingPayload, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if payload.RequestedAt.IsZero() {
		payload.RequestedAt = time.Now().UTC()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	task := asynq.NewTask(TypeTrainingPromo, data)

	// Default options
	defaultOpts := []asynq.Option{
		asynq.TaskID(TrainingTaskID),
		asynq.Queue(q.queue),
		asynq.MaxRetry(0),
		asynq.Timeout(2 * time.Hour),
	}

	allOpts := defaultOpts
	allOpts = append(allOpts, opts...)

	info, err := q.client.Enqueue(task, allOpts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// a finished run keeps its ID in the archive; clear it and try once more
		if !q.clearFinished() {
			return nil, ErrTrainingInFlight
		}

		info, err = q.client.Enqueue(task, allOpts...)
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil, ErrTrainingInFlight
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to enqueue training: %w", err)
	}

	observability.RecordTrainingEnqueued(payload.Trigger)

	return info, nil
}

func (q *QueueManager) clearFinished() bool {
	info, err := q.inspector.GetTaskInfo(q.queue, TrainingTaskID)
	if err != nil {
		return false
	}

	if info.State != asynq.TaskStateArchived && info.State != asynq.TaskStateCompleted {
		return false
	}

	return q.inspector.DeleteTask(q.queue, TrainingTaskID) == nil
}

// IsTrainingPendingOrRunning checks if a training task is pending or running
func (q *QueueManager) IsTrainingPendingOrRunning() (bool, error) {
	info, err := q.inspector.GetTaskInfo(q.queue, TrainingTaskID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return info.State == asynq.TaskStatePending ||
		info.State == asynq.TaskStateActive ||
		info.State == asynq.TaskStateScheduled, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, asynq.ErrTaskNotFound) ||
		errors.Is(err, asynq.ErrQueueNotFound) ||
		strings.Contains(err.Error(), "NOT FOUND")
}

// GetQueueStats returns queue statistics
func (q *QueueManager) GetQueueStats() (*asynq.QueueInfo, error) {
	return q.inspector.GetQueueInfo(q.queue)
}

// Close closes the queue manager
func (q *QueueManager) Close() error {
	if err := q.inspector.Close(); err != nil {
		return err
	}

	return q.client.Close()
}
