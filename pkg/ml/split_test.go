package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestSize(t *testing.T) {
	assert.Equal(t, 4, TestSize(20, 0.2))
	assert.Equal(t, 3, TestSize(11, 0.2))
	assert.Equal(t, 2, TestSize(10, 0.2))
}

func TestTrainTestSplit(t *testing.T) {
	split, err := TrainTestSplit(23, 0.2, 42)
	require.NoError(t, err)

	assert.Len(t, split.Test, 5)
	assert.Len(t, split.Train, 18)
	assertPartition(t, 23, split)

	again, err := TrainTestSplit(23, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, split, again)

	_, err = TrainTestSplit(1, 0.2, 42)
	require.ErrorIs(t, err, ErrTooFewSamples)
}

func TestStratifiedSplit(t *testing.T) {
	y := make([]int, 20)
	for i := 0; i < 8; i++ {
		y[i] = 1
	}

	split, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)

	require.Len(t, split.Test, 4)
	assertPartition(t, 20, split)

	positives := 0
	for _, i := range split.Test {
		positives += y[i]
	}

	// 8 of 20 positive -> 1.6 of 4 test rows, rounded by largest remainder
	assert.Equal(t, 2, positives)
}

func TestKFold(t *testing.T) {
	folds, err := KFold(12, 5)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	sizes := make([]int, 0, 5)
	for _, f := range folds {
		sizes = append(sizes, len(f.Test))
		assertPartition(t, 12, &f)
	}

	assert.Equal(t, []int{3, 3, 2, 2, 2}, sizes)
	assert.Equal(t, []int{0, 1, 2}, folds[0].Test)

	_, err = KFold(3, 5)
	require.ErrorIs(t, err, ErrTooFewSamples)
}

func TestStratifiedKFold(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	folds, err := StratifiedKFold(y, 5)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	for _, f := range folds {
		assertPartition(t, len(y), &f)

		positives := 0
		for _, i := range f.Test {
			positives += y[i]
		}

		assert.Equal(t, 2, positives)
	}
}

func assertPartition(t *testing.T, n int, split *Split) {
	t.Helper()

	seen := make(map[int]bool, n)
	for _, i := range append(append([]int(nil), split.Train...), split.Test...) {
		assert.False(t, seen[i], "index %d repeated", i)
		seen[i] = true
	}

	assert.Len(t, seen, n)
}
