package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethpandaops/rbi/internal/testutil"
	"github.com/ethpandaops/rbi/pkg/tasks"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTracker struct {
	lastRun time.Time
	getErr  error
}

func (m *mockTracker) GetLastRun(context.Context) (time.Time, error) {
	return m.lastRun, m.getErr
}

func (m *mockTracker) SetLastRun(_ context.Context, timestamp time.Time) error {
	m.lastRun = timestamp
	return nil
}

type mockQueue struct {
	payloads []tasks.TrainingPayload
	err      error
}

func (m *mockQueue) EnqueueTraining(payload tasks.TrainingPayload, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	m.payloads = append(m.payloads, payload)
	if m.err != nil {
		return nil, m.err
	}
	return &asynq.TaskInfo{ID: tasks.TrainingTaskID}, nil
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "disabled", schedule: ""},
		{name: "standard cron", schedule: "0 3 * * *"},
		{name: "descriptor", schedule: "@daily"},
		{name: "every", schedule: "@every 6h"},
		{name: "garbage", schedule: "every night", wantErr: true},
		{name: "too many fields", schedule: "0 0 3 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Schedule: tt.schedule}
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.schedule != "", cfg.Enabled())
		})
	}
}

func TestTickerCheck(t *testing.T) {
	base := time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)
	schedule, err := parseSchedule("0 3 * * *")
	require.NoError(t, err)

	tests := []struct {
		name        string
		lastRun     time.Time
		now         time.Time
		queueErr    error
		wantFired   bool
		wantErr     bool
		wantCalls   int
		wantLastRun time.Time
	}{
		{
			name:        "first check anchors",
			now:         base,
			wantLastRun: base,
		},
		{
			name:        "not due",
			lastRun:     base,
			now:         base.Add(30 * time.Minute),
			wantLastRun: base,
		},
		{
			name:        "due",
			lastRun:     base,
			now:         base.Add(time.Hour),
			wantFired:   true,
			wantCalls:   1,
			wantLastRun: base.Add(time.Hour),
		},
		{
			name:        "already in flight still advances",
			lastRun:     base,
			now:         base.Add(2 * time.Hour),
			queueErr:    tasks.ErrTrainingInFlight,
			wantCalls:   1,
			wantLastRun: base.Add(2 * time.Hour),
		},
		{
			name:        "enqueue failure retries next tick",
			lastRun:     base,
			now:         base.Add(2 * time.Hour),
			queueErr:    errors.New("redis down"),
			wantErr:     true,
			wantCalls:   1,
			wantLastRun: base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &mockTracker{lastRun: tt.lastRun}
			queue := &mockQueue{err: tt.queueErr}

			tk := newTicker(logrus.New(), tracker, queue, schedule)
			tk.now = func() time.Time { return tt.now }

			fired, err := tk.check(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantFired, fired)
			assert.Len(t, queue.payloads, tt.wantCalls)
			assert.Equal(t, tt.wantLastRun, tracker.lastRun)

			for _, p := range queue.payloads {
				assert.Equal(t, tasks.TriggerSchedule, p.Trigger)
			}
		})
	}
}

func TestRedisTracker(t *testing.T) {
	mr, client := testutil.NewMiniredisClient(t)
	ctx := context.Background()

	tracker := newScheduleTracker(logrus.New(), client, "rbi")

	lastRun, err := tracker.GetLastRun(ctx)
	require.NoError(t, err)
	assert.True(t, lastRun.IsZero())

	now := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
	require.NoError(t, tracker.SetLastRun(ctx, now))

	lastRun, err = tracker.GetLastRun(ctx)
	require.NoError(t, err)
	assert.True(t, now.Equal(lastRun))
	assert.True(t, mr.Exists("rbi:"+lastRunKey))

	require.NoError(t, mr.Set("rbi:"+lastRunKey, "yesterday"))
	_, err = tracker.GetLastRun(ctx)
	require.Error(t, err)
}

func TestServiceLifecycle(t *testing.T) {
	_, client := testutil.NewMiniredisClient(t)

	svc, err := NewService(logrus.New(), &Config{Schedule: "@hourly", Interval: "5ms"}, client, "rbi", &mockQueue{})
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, svc.Stop())

	_, err = NewService(logrus.New(), &Config{Schedule: "nope"}, client, "rbi", &mockQueue{})
	require.ErrorIs(t, err, ErrInvalidSchedule)
}
