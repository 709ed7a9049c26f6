package explorers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/types"
)

func TestBaseWarmupThenPassthrough(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.UniformBox(-1, 1, 2)
	e := NewBase(space, types.ExplorerSettings{StartSteps: 10}, rng)

	for step := 0; step < 10; step++ {
		a := e.Act([]float64{0, 0}, step)
		assert.True(t, space.Contains(a))
	}

	// After warmup the policy action passes through, clipped.
	assert.Equal(t, []float64{0.3, -0.2}, e.Act([]float64{0.3, -0.2}, 10))
	assert.Equal(t, []float64{1, -1}, e.Act([]float64{4, -4}, 11))
}

func TestGaussianNoiseStaysInSpace(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.UniformBox(-2, 2, 1)
	e := NewGaussian(space, types.ExplorerSettings{StartSteps: 0, Scale: 0.5}, rng)

	differs := false
	for i := 0; i < 100; i++ {
		a := e.Act([]float64{0.5}, i)
		assert.True(t, space.Contains(a))
		if a[0] != 0.5 {
			differs = true
		}
	}
	assert.True(t, differs, "noise must actually perturb the action")
}

func TestGaussianZeroScaleIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.UniformBox(-2, 2, 1)
	e := NewGaussian(space, types.ExplorerSettings{StartSteps: 0, Scale: 0}, rng)
	assert.Equal(t, []float64{0.5}, e.Act([]float64{0.5}, 5))
}

func TestEpsilonGreedySchedule(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.NewDiscrete(4)
	e := NewEpsilonGreedy(space, types.ExplorerSettings{
		Epsilon:           1.0,
		EpsilonFloor:      0.1,
		EpsilonDecaySteps: 100,
	}, rng)

	assert.InDelta(t, 1.0, e.Epsilon(0), 1e-12)
	assert.InDelta(t, 0.55, e.Epsilon(50), 1e-12)
	assert.InDelta(t, 0.1, e.Epsilon(100), 1e-12)
	assert.InDelta(t, 0.1, e.Epsilon(100000), 1e-12)
}

func TestEpsilonGreedyExploitsWhenEpsilonZero(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.NewDiscrete(4)
	e := NewEpsilonGreedy(space, types.ExplorerSettings{
		Epsilon:      0,
		EpsilonFloor: 0,
	}, rng)

	for step := 0; step < 50; step++ {
		assert.Equal(t, []float64{2}, e.Act([]float64{2}, step))
	}
}

func TestEpsilonGreedyExploresAtFullEpsilon(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.NewDiscrete(10)
	e := NewEpsilonGreedy(space, types.ExplorerSettings{
		Epsilon:           1,
		EpsilonFloor:      1,
		EpsilonDecaySteps: 1,
	}, rng)

	seen := map[float64]bool{}
	for step := 0; step < 200; step++ {
		a := e.Act([]float64{3}, step)
		assert.True(t, space.Contains(a))
		seen[a[0]] = true
	}
	assert.Greater(t, len(seen), 3, "full epsilon must visit many actions")
}
