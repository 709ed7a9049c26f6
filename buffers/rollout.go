package buffers

import (
	"math/rand"
	"sync"

	"github.com/pearll/pearll/types"
)

// RolloutBuffer stores full transitions for on-policy learning. Collection
// fills it, the updater consumes the most recent rollout via Last, and the
// agent resets it after every fit so stale experience never leaks into the
// next update.
type RolloutBuffer struct {
	size int

	rows []types.Transition
	pos  int
	full bool

	rng *rand.Rand
	mu  sync.Mutex
}

// NewRolloutBuffer creates a rollout buffer with the configured capacity.
func NewRolloutBuffer(cfg types.BufferSettings, rng *rand.Rand) *RolloutBuffer {
	size := cfg.Size
	if size < 1 {
		size = 1
	}
	return &RolloutBuffer{
		size: size,
		rows: make([]types.Transition, size),
		rng:  rng,
	}
}

// Add implements Buffer.
func (b *RolloutBuffer) Add(t types.Transition) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rows[b.pos] = t
	b.pos++
	if b.pos == b.size {
		b.full = true
		b.pos = 0
	}
	return nil
}

// Sample implements Buffer.
func (b *RolloutBuffer) Sample(batchSize int) (*types.Batch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.sizeLocked()
	if n == 0 {
		return nil, types.NewError(types.ErrEmptyBuffer, "cannot sample from empty rollout buffer")
	}
	rows := make([]types.Transition, batchSize)
	for i := range rows {
		idx := b.rng.Intn(n)
		if b.full {
			idx = (idx + b.pos) % b.size
		}
		rows[i] = b.rows[idx]
	}
	return batchFrom(rows), nil
}

// Last implements Buffer.
func (b *RolloutBuffer) Last(batchSize int) (*types.Batch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.sizeLocked()
	if batchSize > n {
		return nil, types.NewErrorf(types.ErrBufferExhausted,
			"requested %d transitions but buffer holds %d", batchSize, n)
	}
	rows := make([]types.Transition, batchSize)
	for i := range rows {
		idx := ((b.pos-batchSize+i)%b.size + b.size) % b.size
		rows[i] = b.rows[idx]
	}
	return batchFrom(rows), nil
}

// Size implements Buffer.
func (b *RolloutBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sizeLocked()
}

// Reset implements Buffer.
func (b *RolloutBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pos = 0
	b.full = false
}

func (b *RolloutBuffer) sizeLocked() int {
	if b.full {
		return b.size
	}
	return b.pos
}
