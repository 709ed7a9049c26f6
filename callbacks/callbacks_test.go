package callbacks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarlyStoppingWaitsForMinSteps(t *testing.T) {
	cb := NewEarlyStopping(100, 50, nil)
	ctx := context.Background()

	cont, err := cb.OnStep(ctx, &TrainState{Step: 10, SmoothedReward: 500})
	require.NoError(t, err)
	assert.True(t, cont, "threshold must not trigger before MinSteps")

	cont, err = cb.OnStep(ctx, &TrainState{Step: 50, SmoothedReward: 500})
	require.NoError(t, err)
	assert.False(t, cont)

	cont, err = cb.OnStep(ctx, &TrainState{Step: 50, SmoothedReward: 99})
	require.NoError(t, err)
	assert.True(t, cont)
}

type countingRecorder struct {
	steps []int
}

func (r *countingRecorder) RecordStep(state *TrainState) {
	r.steps = append(r.steps, state.Step)
}

func TestMetricsForwardsEveryStep(t *testing.T) {
	rec := &countingRecorder{}
	cb := NewMetrics(rec)
	ctx := context.Background()

	for step := 0; step < 3; step++ {
		cont, err := cb.OnStep(ctx, &TrainState{Step: step})
		require.NoError(t, err)
		assert.True(t, cont)
	}
	assert.Equal(t, []int{0, 1, 2}, rec.steps)
}

func TestMetricsNilRecorderIsSafe(t *testing.T) {
	cb := NewMetrics(nil)
	cont, err := cb.OnStep(context.Background(), &TrainState{})
	require.NoError(t, err)
	assert.True(t, cont)
}
