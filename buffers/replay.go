package buffers

import (
	"math/rand"
	"sync"

	"github.com/pearll/pearll/types"
)

// ReplayBuffer is a fixed-capacity ring buffer for off-policy learning.
//
// Observations are stored once: the next observation of the transition at
// slot i lives at slot (i+1) % size, which halves observation memory for
// sequentially collected experience. Sampling therefore skips the write
// head when the buffer is full, since its successor slot is about to be
// overwritten.
type ReplayBuffer struct {
	size int

	observations [][]float64
	actions      [][]float64
	rewards      []float64
	dones        []float64
	logProbs     []float64
	values       []float64

	pos  int
	full bool

	rng *rand.Rand
	mu  sync.Mutex
}

// NewReplayBuffer creates a replay buffer with the configured capacity.
func NewReplayBuffer(cfg types.BufferSettings, rng *rand.Rand) *ReplayBuffer {
	size := cfg.Size
	if size < 2 {
		size = 2
	}
	return &ReplayBuffer{
		size:         size,
		observations: make([][]float64, size),
		actions:      make([][]float64, size),
		rewards:      make([]float64, size),
		dones:        make([]float64, size),
		logProbs:     make([]float64, size),
		values:       make([]float64, size),
		rng:          rng,
	}
}

// Add implements Buffer.
func (b *ReplayBuffer) Add(t types.Transition) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.observations[b.pos] = t.Observation
	b.observations[(b.pos+1)%b.size] = t.NextObservation
	b.actions[b.pos] = t.Action
	b.rewards[b.pos] = t.Reward
	b.dones[b.pos] = types.DoneFlag(t.Done)
	b.logProbs[b.pos] = t.LogProb
	b.values[b.pos] = t.Value

	b.pos++
	if b.pos == b.size {
		b.full = true
		b.pos = 0
	}
	return nil
}

// Sample implements Buffer.
func (b *ReplayBuffer) Sample(batchSize int) (*types.Batch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sizeLocked() == 0 {
		return nil, types.NewError(types.ErrEmptyBuffer, "cannot sample from empty replay buffer")
	}

	indices := make([]int, batchSize)
	for i := range indices {
		if b.full {
			indices[i] = (1 + b.rng.Intn(b.size-1) + b.pos) % b.size
		} else {
			indices[i] = b.rng.Intn(b.pos)
		}
	}
	return b.gatherLocked(indices), nil
}

// Last implements Buffer.
func (b *ReplayBuffer) Last(batchSize int) (*types.Batch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.sizeLocked()
	if batchSize > n {
		return nil, types.NewErrorf(types.ErrBufferExhausted,
			"requested %d transitions but buffer holds %d", batchSize, n)
	}

	indices := make([]int, batchSize)
	for i := range indices {
		indices[i] = ((b.pos-batchSize+i)%b.size + b.size) % b.size
	}
	return b.gatherLocked(indices), nil
}

// Size implements Buffer.
func (b *ReplayBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sizeLocked()
}

// Reset implements Buffer.
func (b *ReplayBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pos = 0
	b.full = false
}

func (b *ReplayBuffer) sizeLocked() int {
	if b.full {
		return b.size
	}
	return b.pos
}

func (b *ReplayBuffer) gatherLocked(indices []int) *types.Batch {
	batch := &types.Batch{
		Observations:     make([][]float64, len(indices)),
		Actions:          make([][]float64, len(indices)),
		Rewards:          make([]float64, len(indices)),
		NextObservations: make([][]float64, len(indices)),
		Dones:            make([]float64, len(indices)),
		LogProbs:         make([]float64, len(indices)),
		Values:           make([]float64, len(indices)),
	}
	for i, idx := range indices {
		batch.Observations[i] = b.observations[idx]
		batch.Actions[i] = b.actions[idx]
		batch.Rewards[i] = b.rewards[idx]
		batch.NextObservations[i] = b.observations[(idx+1)%b.size]
		batch.Dones[i] = b.dones[idx]
		batch.LogProbs[i] = b.logProbs[idx]
		batch.Values[i] = b.values[idx]
	}
	return batch
}
