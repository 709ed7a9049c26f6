package buffers

import (
	"github.com/pearll/pearll/types"
)

// Buffer is the storage interface agents collect experience into and
// updaters sample from.
type Buffer interface {
	// Add appends one transition.
	Add(t types.Transition) error
	// Sample returns batchSize transitions drawn uniformly at random.
	Sample(batchSize int) (*types.Batch, error)
	// Last returns the most recent batchSize transitions in insertion order.
	Last(batchSize int) (*types.Batch, error)
	// Size is the number of stored transitions.
	Size() int
	// Reset discards all stored transitions.
	Reset()
}

// AddBatch appends every transition of a batch, e.g. when merging
// vectorized-environment steps into one buffer.
func AddBatch(b Buffer, batch *types.Batch) error {
	for i := 0; i < batch.Len(); i++ {
		if err := b.Add(batch.Transition(i)); err != nil {
			return err
		}
	}
	return nil
}

// batchFrom assembles a column-oriented batch from transition rows.
func batchFrom(rows []types.Transition) *types.Batch {
	b := &types.Batch{
		Observations:     make([][]float64, len(rows)),
		Actions:          make([][]float64, len(rows)),
		Rewards:          make([]float64, len(rows)),
		NextObservations: make([][]float64, len(rows)),
		Dones:            make([]float64, len(rows)),
		LogProbs:         make([]float64, len(rows)),
		Values:           make([]float64, len(rows)),
	}
	for i, tr := range rows {
		b.Observations[i] = tr.Observation
		b.Actions[i] = tr.Action
		b.Rewards[i] = tr.Reward
		b.NextObservations[i] = tr.NextObservation
		b.Dones[i] = types.DoneFlag(tr.Done)
		b.LogProbs[i] = tr.LogProb
		b.Values[i] = tr.Value
	}
	return b
}
