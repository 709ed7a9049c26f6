package models

import (
	"math/rand"

	"github.com/pearll/pearll/types"
)

// Arch describes a network before it is instantiated.
type Arch struct {
	Encoder       Encoder
	Hidden        []int
	Activation    Activation
	OutDim        int
	OutActivation Activation
	// ExtraParams allocates trainable parameters outside the layer stack,
	// appended at the tail of the flat vector. A diagonal-Gaussian policy
	// keeps its log standard deviations there.
	ExtraParams int
}

// Network is an encoder, an MLP torso and an output layer operating on
// single vectors. All weights are reachable through a flat parameter
// vector so gradient and evolutionary updaters share one representation.
type Network struct {
	Enc    Encoder
	ObsDim int
	ActDim int
	Layers []*Dense
	Extra  []float64
}

// NewNetwork instantiates arch for the given observation and action
// dimensions. Weights are drawn from rng.
func NewNetwork(arch Arch, obsDim, actDim int, rng *rand.Rand) *Network {
	enc := arch.Encoder
	if enc == nil {
		enc = IdentityEncoder{}
	}
	n := &Network{
		Enc:    enc,
		ObsDim: obsDim,
		ActDim: actDim,
		Extra:  make([]float64, arch.ExtraParams),
	}
	in := enc.OutDim(obsDim, actDim)
	for _, h := range arch.Hidden {
		n.Layers = append(n.Layers, newDense(in, h, arch.Activation, rng))
		in = h
	}
	n.Layers = append(n.Layers, newDense(in, arch.OutDim, arch.OutActivation, rng))
	return n
}

// OutDim reports the output dimensionality.
func (n *Network) OutDim() int { return n.Layers[len(n.Layers)-1].Out }

// NumParams reports the flat parameter count, Extra included.
func (n *Network) NumParams() int {
	total := len(n.Extra)
	for _, l := range n.Layers {
		total += l.numParams()
	}
	return total
}

// ExtraOffset reports where Extra begins in the flat vector.
func (n *Network) ExtraOffset() int { return n.NumParams() - len(n.Extra) }

// Forward runs the network on one observation (and optional action) and
// returns its raw outputs.
func (n *Network) Forward(obs, action []float64) []float64 {
	x := n.Enc.Encode(obs, action)
	for _, l := range n.Layers {
		_, x = l.forward(x)
	}
	return x
}

// trace keeps per-layer inputs, pre-activations and outputs of one
// forward pass for use by the backward pass.
type trace struct {
	inputs   [][]float64
	preacts  [][]float64
	outputs  [][]float64
	finalOut []float64
}

func (n *Network) forwardTrace(obs, action []float64) *trace {
	tr := &trace{}
	x := n.Enc.Encode(obs, action)
	for _, l := range n.Layers {
		tr.inputs = append(tr.inputs, x)
		pre, out := l.forward(x)
		tr.preacts = append(tr.preacts, pre)
		tr.outputs = append(tr.outputs, out)
		x = out
	}
	tr.finalOut = x
	return tr
}

// Parameters returns a copy of the flat parameter vector, layer weights
// and biases in order followed by Extra.
func (n *Network) Parameters() []float64 {
	p := make([]float64, 0, n.NumParams())
	for _, l := range n.Layers {
		p = append(p, l.W...)
		p = append(p, l.B...)
	}
	return append(p, n.Extra...)
}

// SetParameters overwrites all weights from a flat vector of the exact
// length NumParams.
func (n *Network) SetParameters(p []float64) error {
	if len(p) != n.NumParams() {
		return types.NewErrorf(types.ErrShapeMismatch,
			"parameter vector has %d elements, network needs %d", len(p), n.NumParams())
	}
	off := 0
	for _, l := range n.Layers {
		off += copy(l.W, p[off:])
		off += copy(l.B, p[off:])
	}
	copy(n.Extra, p[off:])
	return nil
}

// NewGrad returns a zero gradient vector aligned with Parameters.
func (n *Network) NewGrad() []float64 { return make([]float64, n.NumParams()) }

// Accumulate runs forward on (obs, action), backpropagates gradOut (the
// loss gradient with respect to the network outputs) and adds the
// parameter gradients into grad. Extra parameters are not touched; heads
// owning them accumulate those terms themselves.
func (n *Network) Accumulate(obs, action, gradOut, grad []float64) {
	n.accumulate(obs, action, gradOut, grad)
}

// AccumulateInput is Accumulate but additionally returns the gradient
// with respect to the observation and action inputs, which deterministic
// policy gradients chain through the critic.
func (n *Network) AccumulateInput(obs, action, gradOut, grad []float64) (obsGrad, actGrad []float64) {
	encGrad := n.accumulate(obs, action, gradOut, grad)
	return n.Enc.Split(encGrad, n.ObsDim, n.ActDim)
}

func (n *Network) accumulate(obs, action, gradOut, grad []float64) []float64 {
	tr := n.forwardTrace(obs, action)
	g := gradOut
	off := n.ExtraOffset()
	for li := len(n.Layers) - 1; li >= 0; li-- {
		l := n.Layers[li]
		off -= l.numParams()
		gradW := grad[off : off+l.In*l.Out]
		gradB := grad[off+l.In*l.Out : off+l.numParams()]
		g = l.backward(tr.inputs[li], tr.preacts[li], tr.outputs[li], g, gradW, gradB)
	}
	return g
}

// Clone deep-copies the network, target networks are born this way.
func (n *Network) Clone() *Network {
	c := &Network{
		Enc:    n.Enc,
		ObsDim: n.ObsDim,
		ActDim: n.ActDim,
		Extra:  append([]float64(nil), n.Extra...),
	}
	for _, l := range n.Layers {
		c.Layers = append(c.Layers, l.clone())
	}
	return c
}
