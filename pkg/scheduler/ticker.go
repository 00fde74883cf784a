package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Enqueuer queues a training run
type Enqueuer interface {
	EnqueueTraining(payload tasks.TrainingPayload, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ticker struct {
	log      logrus.FieldLogger
	tracker  scheduleTracker
	queue    Enqueuer
	schedule cron.Schedule
	now      func() time.Time
}

func newTicker(log logrus.FieldLogger, tracker scheduleTracker, queue Enqueuer, schedule cron.Schedule) *ticker {
	return &ticker{
		log:      log.WithField("component", "ticker"),
		tracker:  tracker,
		queue:    queue,
		schedule: schedule,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// run checks the schedule every interval until ctx is canceled or done closes
func (t *ticker) run(ctx context.Context, interval time.Duration, done <-chan struct{}) {
	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-tk.C:
			if _, err := t.check(ctx); err != nil {
				t.log.WithError(err).Warn("Schedule check failed, will retry next tick")
			}
		}
	}
}

// check enqueues a run when the schedule is due and reports whether it did.
// The first check only anchors the schedule.
func (t *ticker) check(ctx context.Context) (bool, error) {
	now := t.now()

	lastRun, err := t.tracker.GetLastRun(ctx)
	if err != nil {
		return false, err
	}

	if lastRun.IsZero() {
		return false, t.tracker.SetLastRun(ctx, now)
	}

	if now.Before(t.schedule.Next(lastRun)) {
		return false, nil
	}

	_, err = t.queue.EnqueueTraining(tasks.TrainingPayload{
		Trigger:     tasks.TriggerSchedule,
		RequestedAt: now,
	})

	switch {
	case errors.Is(err, tasks.ErrTrainingInFlight):
		t.log.Debug("Training already queued, skipping")
	case err != nil:
		return false, err
	default:
		t.log.WithField("next_run", t.schedule.Next(now)).Info("Enqueued scheduled training run")
	}

	return err == nil, t.tracker.SetLastRun(ctx, now)
}
