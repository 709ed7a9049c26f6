package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/types"
)

func testNet(t *testing.T) *Network {
	t.Helper()
	rng := rand.New(rand.NewSource(3))
	return NewNetwork(Arch{
		Hidden:     []int{5, 4},
		Activation: Tanh,
		OutDim:     3,
	}, 2, 1, rng)
}

func TestDenseForwardKnownWeights(t *testing.T) {
	d := &Dense{
		In:  2,
		Out: 2,
		W:   []float64{1, 2, -1, 0.5},
		B:   []float64{0.1, -0.1},
		Act: Linear,
	}
	_, out := d.forward([]float64{3, 4})
	assert.InDelta(t, 1*3+2*4+0.1, out[0], 1e-12)
	assert.InDelta(t, -1*3+0.5*4-0.1, out[1], 1e-12)
}

func TestActivations(t *testing.T) {
	assert.Equal(t, 0.0, ReLU.apply(-2))
	assert.Equal(t, 2.0, ReLU.apply(2))
	assert.Equal(t, 0.0, ReLU.grad(-2, 0))
	assert.Equal(t, 1.0, ReLU.grad(2, 2))
	assert.InDelta(t, 0.7615941559557649, Tanh.apply(1), 1e-12)
	assert.Equal(t, -3.0, Linear.apply(-3))
}

func TestParametersRoundTrip(t *testing.T) {
	n := testNet(t)
	p := n.Parameters()
	require.Len(t, p, n.NumParams())

	for i := range p {
		p[i] = float64(i) * 0.01
	}
	require.NoError(t, n.SetParameters(p))
	assert.Equal(t, p, n.Parameters())

	err := n.SetParameters(p[:len(p)-1])
	require.Error(t, err)
	assert.Equal(t, types.ErrShapeMismatch, types.GetErrorCode(err))
}

func TestCloneIsIndependent(t *testing.T) {
	n := testNet(t)
	c := n.Clone()
	assert.Equal(t, n.Parameters(), c.Parameters())

	p := n.Parameters()
	p[0] += 1
	require.NoError(t, n.SetParameters(p))
	assert.NotEqual(t, n.Parameters(), c.Parameters())
}

// lossAt evaluates dot(weights, Forward(obs, action)) so that the exact
// parameter gradient is what Accumulate computes for gradOut = weights.
func lossAt(n *Network, obs, action, weights []float64) float64 {
	out := n.Forward(obs, action)
	var l float64
	for i, w := range weights {
		l += w * out[i]
	}
	return l
}

func TestAccumulateMatchesFiniteDifferences(t *testing.T) {
	n := testNet(t)
	obs := []float64{0.4, -0.7}
	weights := []float64{1.0, -2.0, 0.5}

	grad := n.NewGrad()
	n.Accumulate(obs, nil, weights, grad)

	const eps = 1e-6
	p := n.Parameters()
	for i := 0; i < n.ExtraOffset(); i++ {
		orig := p[i]
		p[i] = orig + eps
		require.NoError(t, n.SetParameters(p))
		up := lossAt(n, obs, nil, weights)
		p[i] = orig - eps
		require.NoError(t, n.SetParameters(p))
		down := lossAt(n, obs, nil, weights)
		p[i] = orig
		require.NoError(t, n.SetParameters(p))

		numeric := (up - down) / (2 * eps)
		assert.InDelta(t, numeric, grad[i], 1e-5, "parameter %d", i)
	}
}

func TestAccumulateInputMatchesFiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n := NewNetwork(Arch{
		Encoder:    ConcatEncoder{},
		Hidden:     []int{6},
		Activation: ReLU,
		OutDim:     1,
	}, 3, 2, rng)

	obs := []float64{0.2, -0.4, 0.9}
	action := []float64{0.1, -0.3}
	weights := []float64{1}

	grad := n.NewGrad()
	obsGrad, actGrad := n.AccumulateInput(obs, action, weights, grad)
	require.Len(t, obsGrad, 3)
	require.Len(t, actGrad, 2)

	const eps = 1e-6
	for i := range action {
		orig := action[i]
		action[i] = orig + eps
		up := lossAt(n, obs, action, weights)
		action[i] = orig - eps
		down := lossAt(n, obs, action, weights)
		action[i] = orig

		assert.InDelta(t, (up-down)/(2*eps), actGrad[i], 1e-5, "action dim %d", i)
	}
}

func TestAccumulateSumsOverCalls(t *testing.T) {
	n := testNet(t)
	weights := []float64{1, 0, 0}

	single := n.NewGrad()
	n.Accumulate([]float64{1, 1}, nil, weights, single)

	double := n.NewGrad()
	n.Accumulate([]float64{1, 1}, nil, weights, double)
	n.Accumulate([]float64{1, 1}, nil, weights, double)

	for i := range single {
		assert.InDelta(t, 2*single[i], double[i], 1e-12)
	}
}

func TestExtraParametersLiveAtTail(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	n := NewNetwork(Arch{
		Hidden:      []int{3},
		Activation:  Tanh,
		OutDim:      2,
		ExtraParams: 2,
	}, 2, 2, rng)

	n.Extra[0] = 7
	n.Extra[1] = -7
	p := n.Parameters()
	assert.Equal(t, []float64{7, -7}, p[n.ExtraOffset():])

	p[n.ExtraOffset()] = 1.5
	require.NoError(t, n.SetParameters(p))
	assert.Equal(t, 1.5, n.Extra[0])
}

func TestDefaultDQNShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e, err := env.Make("CartPole", 7)
	require.NoError(t, err)
	defer e.Close()

	ac, err := DefaultDQN(e.ObservationSpace(), e.ActionSpace(), rng)
	require.NoError(t, err)
	require.NotNil(t, ac.Critic)
	require.NotNil(t, ac.TargetCritic)
	assert.Nil(t, ac.ActorNet)

	require.Len(t, ac.Critic.Layers, 3)
	assert.Equal(t, 16, ac.Critic.Layers[0].Out)
	assert.Equal(t, 16, ac.Critic.Layers[1].Out)
	assert.Equal(t, 2, ac.Critic.OutDim())

	obs := e.Reset()
	action := ac.Policy.BestAction(obs)
	assert.True(t, e.ActionSpace().Contains(action))

	_, err = DefaultDQN(e.ObservationSpace(), env.UniformBox(-1, 1, 1), rng)
	require.Error(t, err)
	assert.Equal(t, types.ErrSpaceMismatch, types.GetErrorCode(err))
}

func TestPolyakUpdate(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	disc := env.NewDiscrete(2)
	box := env.UniformBox(-1, 1, 4)

	ac, err := DefaultDQN(box, disc, rng)
	require.NoError(t, err)

	// Drift the online critic away from the target.
	p := ac.Critic.Parameters()
	for i := range p {
		p[i] += 1
	}
	require.NoError(t, ac.Critic.SetParameters(p))

	before := ac.TargetCritic.Parameters()
	ac.PolyakUpdate(0.5)
	after := ac.TargetCritic.Parameters()
	online := ac.Critic.Parameters()
	for i := range after {
		assert.InDelta(t, 0.5*before[i]+0.5*online[i], after[i], 1e-12)
	}

	ac.AssignTargets()
	assert.Equal(t, ac.Critic.Parameters(), ac.TargetCritic.Parameters())
}
