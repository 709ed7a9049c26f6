// Package explorers decides which action is actually executed in the
// environment given the action the policy proposed. Exploration is a
// per-step transformation: warmup phases return uniform random actions,
// afterwards noise or epsilon-greedy switching is applied on top of the
// policy output.
package explorers

import (
	"math/rand"

	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/types"
)

// Explorer transforms a policy action into the executed action.
type Explorer interface {
	// Act returns the action to execute at the given global step.
	Act(policyAction []float64, step int) []float64
}

// Base explores by acting uniformly at random for the first StartSteps
// steps and passing the (clipped) policy action through afterwards.
type Base struct {
	space      env.Space
	startSteps int
	rng        *rand.Rand
}

// NewBase creates the warmup-only explorer.
func NewBase(space env.Space, settings types.ExplorerSettings, rng *rand.Rand) *Base {
	return &Base{space: space, startSteps: settings.StartSteps, rng: rng}
}

// Act implements Explorer.
func (e *Base) Act(policyAction []float64, step int) []float64 {
	if step < e.startSteps {
		return e.space.Sample(e.rng)
	}
	return e.space.Clip(policyAction)
}

// Gaussian adds zero-mean Gaussian noise to continuous policy actions
// after the warmup phase, clipping back onto the action space.
type Gaussian struct {
	space      env.Space
	startSteps int
	scale      float64
	rng        *rand.Rand
}

// NewGaussian creates a Gaussian-noise explorer for Box action spaces.
func NewGaussian(space env.Space, settings types.ExplorerSettings, rng *rand.Rand) *Gaussian {
	return &Gaussian{
		space:      space,
		startSteps: settings.StartSteps,
		scale:      settings.Scale,
		rng:        rng,
	}
}

// Act implements Explorer.
func (e *Gaussian) Act(policyAction []float64, step int) []float64 {
	if step < e.startSteps {
		return e.space.Sample(e.rng)
	}
	noisy := make([]float64, len(policyAction))
	for i, a := range policyAction {
		noisy[i] = a + e.rng.NormFloat64()*e.scale
	}
	return e.space.Clip(noisy)
}

// EpsilonGreedy switches to a uniform random discrete action with a
// probability that decays linearly from Epsilon to EpsilonFloor over
// EpsilonDecaySteps steps.
type EpsilonGreedy struct {
	space      env.Space
	startSteps int
	epsilon    float64
	floor      float64
	decaySteps int
	rng        *rand.Rand
}

// NewEpsilonGreedy creates an epsilon-greedy explorer for Discrete action
// spaces.
func NewEpsilonGreedy(space env.Space, settings types.ExplorerSettings, rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{
		space:      space,
		startSteps: settings.StartSteps,
		epsilon:    settings.Epsilon,
		floor:      settings.EpsilonFloor,
		decaySteps: settings.EpsilonDecaySteps,
		rng:        rng,
	}
}

// Epsilon returns the exploration probability at the given step.
func (e *EpsilonGreedy) Epsilon(step int) float64 {
	if e.decaySteps <= 0 || step >= e.decaySteps {
		return e.floor
	}
	frac := float64(step) / float64(e.decaySteps)
	return e.epsilon + frac*(e.floor-e.epsilon)
}

// Act implements Explorer.
func (e *EpsilonGreedy) Act(policyAction []float64, step int) []float64 {
	if step < e.startSteps {
		return e.space.Sample(e.rng)
	}
	if e.rng.Float64() < e.Epsilon(step) {
		return e.space.Sample(e.rng)
	}
	return e.space.Clip(policyAction)
}
