package env

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxSampleAndClip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	box := UniformBox(-1, 1, 3)

	for i := 0; i < 100; i++ {
		x := box.Sample(rng)
		assert.True(t, box.Contains(x), "sample %v outside box", x)
	}

	clipped := box.Clip([]float64{-5, 0.5, 5})
	assert.Equal(t, []float64{-1, 0.5, 1}, clipped)
	assert.False(t, box.Contains([]float64{0, 0}))
}

func TestDiscreteSpace(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewDiscrete(4)

	assert.Equal(t, 1, d.FlatDim())
	for i := 0; i < 100; i++ {
		x := d.Sample(rng)
		assert.True(t, d.Contains(x))
	}
	assert.Equal(t, []float64{3}, d.Clip([]float64{7.2}))
	assert.Equal(t, []float64{0}, d.Clip([]float64{-2}))
	assert.False(t, d.Contains([]float64{1.5}))
}

func TestCartPoleEpisode(t *testing.T) {
	e := NewCartPole()
	e.Seed(8)
	obs := e.Reset()
	require.Len(t, obs, 4)

	rng := rand.New(rand.NewSource(8))
	total := 0.0
	steps := 0
	for {
		obs, reward, done, _ := e.Step(e.ActionSpace().Sample(rng))
		require.Len(t, obs, 4)
		total += reward
		steps++
		if done {
			break
		}
		require.Less(t, steps, cartPoleEpisodeSteps+1)
	}
	assert.Equal(t, float64(steps), total, "cartpole pays one reward per step")
	assert.Greater(t, steps, 1)
}

func TestCartPoleSeedDeterminism(t *testing.T) {
	a, b := NewCartPole(), NewCartPole()
	a.Seed(42)
	b.Seed(42)
	assert.Equal(t, a.Reset(), b.Reset())
}

func TestPendulumBoundsAndTermination(t *testing.T) {
	e := NewPendulum()
	e.Seed(3)
	obs := e.Reset()
	require.Len(t, obs, 3)
	assert.InDelta(t, 1.0, obs[0]*obs[0]+obs[1]*obs[1], 1e-9, "cos/sin must lie on unit circle")

	var done bool
	steps := 0
	for !done {
		var reward float64
		obs, reward, done, _ = e.Step([]float64{5}) // torque is clamped internally
		assert.LessOrEqual(t, reward, 0.0)
		assert.LessOrEqual(t, math.Abs(obs[2]), pendulumMaxSpeed)
		steps++
	}
	assert.Equal(t, pendulumEpisodeSteps, steps)
}

func TestAngleNormalize(t *testing.T) {
	assert.InDelta(t, 0, angleNormalize(2*math.Pi), 1e-9)
	assert.InDelta(t, math.Pi/2, angleNormalize(math.Pi/2+4*math.Pi), 1e-9)
	assert.InDelta(t, math.Pi/2, angleNormalize(-3*math.Pi/2), 1e-9)
}

func TestMakeRegistry(t *testing.T) {
	e, err := Make("CartPole", 7)
	require.NoError(t, err)
	assert.IsType(t, &CartPole{}, e)

	_, err = Make("DoesNotExist", 0)
	assert.Error(t, err)

	assert.Contains(t, Names(), "CartPole")
	assert.Contains(t, Names(), "Pendulum")
}

func TestVecEnvAutoReset(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		v := NewVecEnv(func() Env { return NewCartPole() }, 4, 11, parallel)
		obs := v.Reset()
		require.Len(t, obs, 4)

		rng := rand.New(rand.NewSource(11))
		sawDone := false
		for step := 0; step < 2000 && !sawDone; step++ {
			actions := make([][]float64, v.N())
			for i := range actions {
				actions[i] = v.ActionSpace().Sample(rng)
			}
			next, rewards, dones, infos := v.Step(actions)
			require.Len(t, next, 4)
			require.Len(t, rewards, 4)
			for i, d := range dones {
				if d {
					sawDone = true
					assert.Contains(t, infos[i], "terminal_observation")
				}
			}
		}
		assert.True(t, sawDone, "random cartpole policy must eventually fail (parallel=%v)", parallel)
		assert.NoError(t, v.Close())
	}
}
