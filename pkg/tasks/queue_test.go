package tasks

import (
	"encoding/json"
	"testing"

	"github.com/ethpandaops/rbi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueTraining(t *testing.T) {
	mr := testutil.NewMiniredis(t)

	qm := NewQueueManager(testutil.AsynqOptions(mr), "")
	defer qm.Close()

	assert.Equal(t, DefaultQueue, qm.Queue())

	info, err := qm.EnqueueTraining(TrainingPayload{Trigger: TriggerCLI})
	require.NoError(t, err)

	assert.Equal(t, TrainingTaskID, info.ID)
	assert.Equal(t, DefaultQueue, info.Queue)
	assert.Equal(t, TypeTrainingPromo, info.Type)
	assert.Equal(t, 0, info.MaxRetry)

	var payload TrainingPayload
	require.NoError(t, json.Unmarshal(info.Payload, &payload))
	assert.Equal(t, TriggerCLI, payload.Trigger)
	assert.False(t, payload.RequestedAt.IsZero())
}

func TestEnqueueTrainingOneInFlight(t *testing.T) {
	mr := testutil.NewMiniredis(t)

	qm := NewQueueManager(testutil.AsynqOptions(mr), "rbi:training")
	defer qm.Close()

	_, err := qm.EnqueueTraining(TrainingPayload{Trigger: TriggerAPI})
	require.NoError(t, err)

	_, err = qm.EnqueueTraining(TrainingPayload{Trigger: TriggerSchedule})
	require.ErrorIs(t, err, ErrTrainingInFlight)
}

func TestIsTrainingPendingOrRunning(t *testing.T) {
	mr := testutil.NewMiniredis(t)

	qm := NewQueueManager(testutil.AsynqOptions(mr), "rbi:training")
	defer qm.Close()

	inFlight, err := qm.IsTrainingPendingOrRunning()
	require.NoError(t, err)
	assert.False(t, inFlight)

	_, err = qm.EnqueueTraining(TrainingPayload{Trigger: TriggerAPI})
	require.NoError(t, err)

	inFlight, err = qm.IsTrainingPendingOrRunning()
	require.NoError(t, err)
	assert.True(t, inFlight)
}
