package ml

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder(t *testing.T) {
	enc := NewLabelEncoder([]string{"Toys", "Grocery", "Toys", "Electronics"})

	assert.Equal(t, []string{"Electronics", "Grocery", "Toys"}, enc.Classes)

	codes, err := enc.TransformAll([]string{"Toys", "Electronics", "Grocery"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, codes)

	_, err = enc.Transform("Garden")
	require.ErrorIs(t, err, ErrUnseenCategory)

	name, err := enc.Inverse(1)
	require.NoError(t, err)
	assert.Equal(t, "Grocery", name)

	_, err = enc.Inverse(3)
	require.ErrorIs(t, err, ErrUnseenCategory)
}

func TestLabelEncoderSurvivesJSON(t *testing.T) {
	data, err := json.Marshal(NewLabelEncoder([]string{"b", "a"}))
	require.NoError(t, err)

	var restored LabelEncoder
	require.NoError(t, json.Unmarshal(data, &restored))

	code, err := restored.Transform("b")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestLabelEncoderConcurrentTransformAfterJSON(t *testing.T) {
	data, err := json.Marshal(NewLabelEncoder([]string{"c", "b", "a"}))
	require.NoError(t, err)

	var restored LabelEncoder
	require.NoError(t, json.Unmarshal(data, &restored))

	var wg sync.WaitGroup
	codes := make([]int, 8)
	errs := make([]error, 8)

	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i], errs[i] = restored.Transform("b")
		}()
	}

	wg.Wait()

	for i := range codes {
		require.NoError(t, errs[i])
		assert.Equal(t, 1, codes[i])
	}
}

func TestLabelEncoderWithoutIndex(t *testing.T) {
	enc := &LabelEncoder{Classes: []string{"North", "South"}}

	code, err := enc.Transform("South")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	_, err = enc.Transform("West")
	require.ErrorIs(t, err, ErrUnseenCategory)
}
