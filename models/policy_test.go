package models

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearll/pearll/env"
)

func TestSoftmaxNormalizesAndOrders(t *testing.T) {
	probs := Softmax([]float64{1, 2, 3})
	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Less(t, probs[0], probs[1])
	assert.Less(t, probs[1], probs[2])

	// Large logits must not overflow.
	probs = Softmax([]float64{1000, 1000})
	assert.InDelta(t, 0.5, probs[0], 1e-12)
}

func TestGradLogProbLogitsSumsToZero(t *testing.T) {
	probs := Softmax([]float64{0.3, -1, 2})
	g := GradLogProbLogits(probs, 1, 2.5)
	var sum float64
	for _, gi := range g {
		sum += gi
	}
	assert.InDelta(t, 0.0, sum, 1e-12)
	assert.InDelta(t, 2.5*(1-probs[1]), g[1], 1e-12)
}

func TestGradEntropyLogitsFiniteDifferences(t *testing.T) {
	logits := []float64{0.5, -0.3, 1.2}
	g := GradEntropyLogits(Softmax(logits), 1)

	const eps = 1e-6
	for i := range logits {
		logits[i] += eps
		up := Entropy(Softmax(logits))
		logits[i] -= 2 * eps
		down := Entropy(Softmax(logits))
		logits[i] += eps
		assert.InDelta(t, (up-down)/(2*eps), g[i], 1e-6, "logit %d", i)
	}
}

func TestCategoricalPolicySamplingMatchesProbs(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	net := NewNetwork(Arch{Hidden: []int{8}, Activation: Tanh, OutDim: 3}, 2, 1, rng)
	p := NewCategoricalPolicy(net)

	obs := []float64{0.5, -0.5}
	probs := p.Probs(obs)

	counts := make([]float64, 3)
	const n = 20000
	for i := 0; i < n; i++ {
		a, lp := p.SelectAction(obs, rng)
		idx := int(a[0])
		counts[idx]++
		assert.InDelta(t, math.Log(probs[idx]), lp, 1e-12)
	}
	for i := range probs {
		assert.InDelta(t, probs[i], counts[i]/n, 0.02, "action %d", i)
	}

	best := p.BestAction(obs)
	maxI := 0
	for i, pr := range probs {
		if pr > probs[maxI] {
			maxI = i
		}
	}
	assert.Equal(t, []float64{float64(maxI)}, best)
}

func TestGaussianPolicyLogProb(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	net := NewNetwork(Arch{
		Hidden:      []int{4},
		Activation:  Tanh,
		OutDim:      2,
		ExtraParams: 2,
	}, 3, 2, rng)
	net.Extra[0] = math.Log(0.5)
	net.Extra[1] = math.Log(2.0)
	p := NewGaussianPolicy(net)

	obs := []float64{0.1, 0.2, 0.3}
	mean := p.Mean(obs)
	assert.Equal(t, []float64{0.5, 2.0}, p.Std())

	// At the mean the density is the product of peak heights.
	want := -math.Log(0.5*math.Sqrt(2*math.Pi)) - math.Log(2.0*math.Sqrt(2*math.Pi))
	assert.InDelta(t, want, p.LogProb(obs, mean), 1e-12)

	action, lp := p.SelectAction(obs, rng)
	assert.InDelta(t, p.LogProb(obs, action), lp, 1e-12)
	assert.Equal(t, mean, p.BestAction(obs))

	// Entropy of independent Gaussians adds per-dimension terms.
	want = 0.5*math.Log(2*math.Pi*math.E) + math.Log(0.5) +
		0.5*math.Log(2*math.Pi*math.E) + math.Log(2.0)
	assert.InDelta(t, want, p.Entropy(), 1e-12)
}

func TestGreedyQPolicyPicksArgmax(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	net := NewNetwork(Arch{Hidden: []int{4}, Activation: ReLU, OutDim: 3}, 2, 1, rng)
	p := NewGreedyQPolicy(net)

	obs := []float64{1, -1}
	qs := net.Forward(obs, nil)
	maxI := 0
	for i, q := range qs {
		if q > qs[maxI] {
			maxI = i
		}
	}
	a, lp := p.SelectAction(obs, rng)
	assert.Equal(t, []float64{float64(maxI)}, a)
	assert.Equal(t, 0.0, lp)
}

func TestDefaultActorCriticSpaces(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	obs := env.UniformBox(-1, 1, 3)

	ac, err := DefaultActorCritic(obs, env.NewDiscrete(4), rng)
	require.NoError(t, err)
	_, ok := ac.Policy.(*CategoricalPolicy)
	assert.True(t, ok)
	assert.Equal(t, 4, ac.ActorNet.OutDim())
	assert.Equal(t, 1, ac.Critic.OutDim())

	ac, err = DefaultActorCritic(obs, env.UniformBox(-2, 2, 2), rng)
	require.NoError(t, err)
	gp, ok := ac.Policy.(*GaussianPolicy)
	require.True(t, ok)
	assert.Len(t, gp.Net.Extra, 2)
	assert.Equal(t, []float64{1, 1}, gp.Std())
}

func TestDefaultDeterministicActorCritic(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	obs := env.UniformBox(-1, 1, 3)
	act := env.UniformBox(-2, 2, 1)

	ac, err := DefaultDeterministicActorCritic(obs, act, rng)
	require.NoError(t, err)
	require.NotNil(t, ac.TargetActor)
	require.NotNil(t, ac.TargetCritic)

	// Tanh output layer keeps raw actions bounded.
	a := ac.Policy.BestAction([]float64{0.9, -0.9, 0.1})
	require.Len(t, a, 1)
	assert.LessOrEqual(t, math.Abs(a[0]), 1.0)

	// Concat critic consumes observation plus action.
	q := ac.Critic.Forward([]float64{0.1, 0.2, 0.3}, a)
	require.Len(t, q, 1)
}
