package models

import (
	"math"
	"math/rand"
)

// Activation selects the nonlinearity of a dense layer.
type Activation int

const (
	// Linear applies no nonlinearity.
	Linear Activation = iota
	// ReLU clamps negative pre-activations to zero.
	ReLU
	// Tanh squashes pre-activations into (-1, 1).
	Tanh
)

func (a Activation) apply(z float64) float64 {
	switch a {
	case ReLU:
		if z < 0 {
			return 0
		}
		return z
	case Tanh:
		return math.Tanh(z)
	default:
		return z
	}
}

// grad returns d(activation)/dz given the pre-activation z and the
// activation output out.
func (a Activation) grad(z, out float64) float64 {
	switch a {
	case ReLU:
		if z > 0 {
			return 1
		}
		return 0
	case Tanh:
		return 1 - out*out
	default:
		return 1
	}
}

// Dense is a fully connected layer. Weights are stored row-major:
// W[o*In+i] connects input i to output o.
type Dense struct {
	In  int
	Out int
	W   []float64
	B   []float64
	Act Activation
}

// newDense creates a dense layer with Xavier-uniform initialized weights.
func newDense(in, out int, act Activation, rng *rand.Rand) *Dense {
	d := &Dense{
		In:  in,
		Out: out,
		W:   make([]float64, in*out),
		B:   make([]float64, out),
		Act: act,
	}
	limit := math.Sqrt(6.0 / float64(in+out))
	for i := range d.W {
		d.W[i] = (rng.Float64()*2 - 1) * limit
	}
	return d
}

func (d *Dense) numParams() int { return d.In*d.Out + d.Out }

// forward computes pre-activations and outputs for one input vector.
func (d *Dense) forward(x []float64) (preact, out []float64) {
	preact = make([]float64, d.Out)
	out = make([]float64, d.Out)
	for o := 0; o < d.Out; o++ {
		sum := d.B[o]
		row := d.W[o*d.In : (o+1)*d.In]
		for i, xi := range x {
			sum += row[i] * xi
		}
		preact[o] = sum
		out[o] = d.Act.apply(sum)
	}
	return preact, out
}

// backward accumulates parameter gradients into gradW/gradB and returns the
// gradient with respect to the layer input.
func (d *Dense) backward(x, preact, out, gradOut, gradW, gradB []float64) []float64 {
	gradIn := make([]float64, d.In)
	for o := 0; o < d.Out; o++ {
		gz := gradOut[o] * d.Act.grad(preact[o], out[o])
		if gz == 0 {
			continue
		}
		gradB[o] += gz
		row := d.W[o*d.In : (o+1)*d.In]
		gwRow := gradW[o*d.In : (o+1)*d.In]
		for i, xi := range x {
			gwRow[i] += gz * xi
			gradIn[i] += gz * row[i]
		}
	}
	return gradIn
}

func (d *Dense) clone() *Dense {
	return &Dense{
		In:  d.In,
		Out: d.Out,
		W:   append([]float64(nil), d.W...),
		B:   append([]float64(nil), d.B...),
		Act: d.Act,
	}
}
