package signalprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestTDZero(t *testing.T) {
	rewards := []float64{1, 1, 1}
	nextValues := []float64{1, 1, 1}
	dones := []float64{0, 0, 0}

	got := TDZero(rewards, nextValues, dones, 1)
	assert.Equal(t, []float64{2, 2, 2}, got)

	// A terminal transition must not bootstrap.
	got = TDZero([]float64{1}, []float64{10}, []float64{1}, 0.99)
	assert.Equal(t, []float64{1}, got)
}

func TestTDLambda(t *testing.T) {
	rewards := [][]float64{{1, 1, 1}, {1, 1, 1}}
	lastValues := []float64{1, 1}
	lastDones := []float64{0, 0}

	got := TDLambda(rewards, lastValues, lastDones, 1)
	assert.Equal(t, []float64{4, 4}, got)

	// Finished envs drop the bootstrap value.
	got = TDLambda(rewards, lastValues, []float64{1, 0}, 1)
	assert.Equal(t, []float64{3, 4}, got)

	got = TDLambda([][]float64{{1, 1}}, []float64{2}, []float64{0}, 0.5)
	assert.InDelta(t, 1+0.5+0.25*2, got[0], 1e-12)
}

func TestSoftQTarget(t *testing.T) {
	rewards := []float64{1, 1, 1}
	dones := []float64{0, 0, 0}
	qValues := []float64{1, 1, 1}
	logProbs := []float64{-1, -1, -1}

	got := SoftQTarget(rewards, dones, qValues, logProbs, 1, 1)
	assert.Equal(t, []float64{3, 3, 3}, got)
}

func TestGAE(t *testing.T) {
	rewards := []float64{1, 1, 1}
	oldValues := []float64{1, 1, 1}
	newValues := []float64{1, 1, 1}
	dones := []float64{0, 0, 0}

	adv, ret := GAE(rewards, oldValues, newValues, dones, 1, 1)
	assert.Equal(t, []float64{3, 2, 1}, adv)
	assert.Equal(t, []float64{4, 3, 2}, ret)
}

func TestGAEResetsAtEpisodeBoundary(t *testing.T) {
	rewards := []float64{1, 1, 1}
	oldValues := []float64{0, 0, 0}
	newValues := []float64{5, 5, 5}
	dones := []float64{0, 1, 0}

	adv, _ := GAE(rewards, oldValues, newValues, dones, 0.9, 0.95)
	// The middle transition is terminal: no bootstrap, no advantage flow
	// from t=2 back into t=1.
	assert.InDelta(t, 1.0, adv[1], 1e-12)
	assert.InDelta(t, 1+0.9*5, adv[2], 1e-12)
}

func TestProperty_ReturnsInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		rewards := make([]float64, n)
		oldValues := make([]float64, n)
		newValues := make([]float64, n)
		dones := make([]float64, n)
		for i := 0; i < n; i++ {
			rewards[i] = rapid.Float64Range(-10, 10).Draw(t, "r")
			oldValues[i] = rapid.Float64Range(-10, 10).Draw(t, "ov")
			newValues[i] = rapid.Float64Range(-10, 10).Draw(t, "nv")
			if rapid.Bool().Draw(t, "d") {
				dones[i] = 1
			}
		}

		// gamma = 0 makes TD(0) degenerate to the immediate reward.
		got := TDZero(rewards, newValues, dones, 0)
		for i := range got {
			if got[i] != rewards[i] {
				t.Fatalf("TDZero with gamma=0 must return rewards: %v != %v", got[i], rewards[i])
			}
		}

		// GAE returns are advantages shifted by the old value estimates.
		adv, ret := GAE(rewards, oldValues, newValues, dones, 0.99, 0.95)
		for i := range adv {
			diff := ret[i] - (adv[i] + oldValues[i])
			if diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("returns must equal advantages + values, diff=%v", diff)
			}
		}
	})
}
