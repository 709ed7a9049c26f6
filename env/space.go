package env

import (
	"math"
	"math/rand"
)

// Space describes the set of valid observations or actions.
type Space interface {
	// FlatDim is the dimensionality of the flattened vector representation.
	FlatDim() int
	// Sample draws a uniform random element of the space.
	Sample(rng *rand.Rand) []float64
	// Contains reports whether x is a valid element.
	Contains(x []float64) bool
	// Clip projects x onto the space. The input is not modified.
	Clip(x []float64) []float64
}

// Box is a bounded (possibly unbounded) continuous space.
type Box struct {
	Low  []float64
	High []float64
}

// NewBox creates a Box from explicit per-dimension bounds.
func NewBox(low, high []float64) *Box {
	if len(low) != len(high) {
		panic("env: box bounds must have equal length")
	}
	return &Box{Low: low, High: high}
}

// UniformBox creates a Box with the same bounds in every dimension.
func UniformBox(low, high float64, dim int) *Box {
	b := &Box{Low: make([]float64, dim), High: make([]float64, dim)}
	for i := 0; i < dim; i++ {
		b.Low[i] = low
		b.High[i] = high
	}
	return b
}

// FlatDim implements Space.
func (b *Box) FlatDim() int { return len(b.Low) }

// Sample implements Space. Unbounded dimensions are sampled from a standard
// normal, bounded ones uniformly between their bounds.
func (b *Box) Sample(rng *rand.Rand) []float64 {
	out := make([]float64, len(b.Low))
	for i := range out {
		lo, hi := b.Low[i], b.High[i]
		if math.IsInf(lo, -1) || math.IsInf(hi, 1) {
			out[i] = rng.NormFloat64()
			continue
		}
		out[i] = lo + rng.Float64()*(hi-lo)
	}
	return out
}

// Contains implements Space.
func (b *Box) Contains(x []float64) bool {
	if len(x) != len(b.Low) {
		return false
	}
	for i := range x {
		if x[i] < b.Low[i] || x[i] > b.High[i] {
			return false
		}
	}
	return true
}

// Clip implements Space.
func (b *Box) Clip(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = math.Max(b.Low[i], math.Min(b.High[i], x[i]))
	}
	return out
}

// Discrete is a space of n distinct actions, encoded as a single-element
// vector holding the action index.
type Discrete struct {
	N int
}

// NewDiscrete creates a Discrete space with n actions.
func NewDiscrete(n int) *Discrete {
	if n <= 0 {
		panic("env: discrete space needs at least one action")
	}
	return &Discrete{N: n}
}

// FlatDim implements Space.
func (d *Discrete) FlatDim() int { return 1 }

// Sample implements Space.
func (d *Discrete) Sample(rng *rand.Rand) []float64 {
	return []float64{float64(rng.Intn(d.N))}
}

// Contains implements Space.
func (d *Discrete) Contains(x []float64) bool {
	if len(x) != 1 {
		return false
	}
	i := x[0]
	return i == math.Trunc(i) && i >= 0 && int(i) < d.N
}

// Clip implements Space. Values are rounded to the nearest valid index.
func (d *Discrete) Clip(x []float64) []float64 {
	i := math.Round(x[0])
	if i < 0 {
		i = 0
	}
	if i > float64(d.N-1) {
		i = float64(d.N - 1)
	}
	return []float64{i}
}
