package types

// Transition is a single environment step: the agent saw Observation, took
// Action, received Reward and ended up in NextObservation. Done marks the
// end of an episode. LogProb and Value are only populated by on-policy
// collectors that need them for advantage estimation.
type Transition struct {
	Observation     []float64 `json:"obs"`
	Action          []float64 `json:"action"`
	Reward          float64   `json:"reward"`
	NextObservation []float64 `json:"next_obs"`
	Done            bool      `json:"done"`
	LogProb         float64   `json:"log_prob,omitempty"`
	Value           float64   `json:"value,omitempty"`
}

// Batch is a column-oriented batch of transitions as sampled from a buffer.
// All slices share the same leading dimension.
type Batch struct {
	Observations     [][]float64
	Actions          [][]float64
	Rewards          []float64
	NextObservations [][]float64
	Dones            []float64
	LogProbs         []float64
	Values           []float64
}

// Len returns the number of transitions in the batch.
func (b *Batch) Len() int {
	return len(b.Rewards)
}

// DoneFlag converts an episode-termination bool to the 0/1 float used by
// return estimators.
func DoneFlag(done bool) float64 {
	if done {
		return 1
	}
	return 0
}

// Transition reassembles row i of the batch.
func (b *Batch) Transition(i int) Transition {
	return Transition{
		Observation:     b.Observations[i],
		Action:          b.Actions[i],
		Reward:          b.Rewards[i],
		NextObservation: b.NextObservations[i],
		Done:            b.Dones[i] != 0,
		LogProb:         b.LogProbs[i],
		Value:           b.Values[i],
	}
}

// DiscreteActions interprets the action column as discrete action indices.
// Discrete actions are stored as single-element float vectors.
func (b *Batch) DiscreteActions() []int {
	out := make([]int, len(b.Actions))
	for i, a := range b.Actions {
		if len(a) > 0 {
			out[i] = int(a[0])
		}
	}
	return out
}
