package buffers

import (
	"context"
	"math/rand"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pearll/pearll/types"
)

func newTestRedisBuffer(t *testing.T, capacity int) *RedisReplayBuffer {
	t.Helper()
	srv := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = srv.Addr()
	cfg.Capacity = capacity
	cfg.Key = "test:replay"

	b, err := NewRedisReplayBuffer(cfg, rand.New(rand.NewSource(1)), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestRedisReplayBufferRoundTrip(t *testing.T) {
	b := newTestRedisBuffer(t, 100)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		tr := seqTransition(i)
		tr.Done = i == 9
		require.NoError(t, b.AddCtx(ctx, tr))
	}
	assert.Equal(t, 10, b.Size())

	batch, err := b.LastCtx(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8, 9}, batch.Rewards)
	assert.Equal(t, []float64{0, 0, 1}, batch.Dones)
	assert.Equal(t, []float64{8}, batch.Observations[1])
	assert.Equal(t, []float64{9}, batch.NextObservations[1])

	sampled, err := b.SampleCtx(ctx, 32)
	require.NoError(t, err)
	require.Equal(t, 32, sampled.Len())
	for _, r := range sampled.Rewards {
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 10.0)
	}
}

func TestRedisReplayBufferCapacityTrim(t *testing.T) {
	b := newTestRedisBuffer(t, 5)
	for i := 0; i < 12; i++ {
		require.NoError(t, b.Add(seqTransition(i)))
	}
	assert.Equal(t, 5, b.Size())

	batch, err := b.Last(5)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8, 9, 10, 11}, batch.Rewards)
}

func TestRedisReplayBufferEmptyAndReset(t *testing.T) {
	b := newTestRedisBuffer(t, 10)

	_, err := b.Sample(1)
	require.Error(t, err)
	assert.Equal(t, types.ErrEmptyBuffer, types.GetErrorCode(err))

	require.NoError(t, b.Add(seqTransition(0)))
	b.Reset()
	assert.Equal(t, 0, b.Size())
}

func TestRedisReplayBufferConnectFailure(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1" // nothing listens here
	_, err := NewRedisReplayBuffer(cfg, rand.New(rand.NewSource(1)), nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrStoreUnavailable, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}
