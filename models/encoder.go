package models

// Encoder maps raw observation (and optionally action) vectors into the
// input of the torso.
type Encoder interface {
	// Encode builds the torso input. action may be nil.
	Encode(obs, action []float64) []float64
	// OutDim reports the encoded dimensionality.
	OutDim(obsDim, actDim int) int
	// Split separates an encoded-input gradient back into observation and
	// action components. Either result may be nil.
	Split(grad []float64, obsDim, actDim int) (obsGrad, actGrad []float64)
}

// IdentityEncoder passes the observation through untouched.
type IdentityEncoder struct{}

// Encode implements Encoder.
func (IdentityEncoder) Encode(obs, _ []float64) []float64 { return obs }

// OutDim implements Encoder.
func (IdentityEncoder) OutDim(obsDim, _ int) int { return obsDim }

// Split implements Encoder.
func (IdentityEncoder) Split(grad []float64, _, _ int) ([]float64, []float64) {
	return grad, nil
}

// ConcatEncoder concatenates observation and action, the usual input of a
// continuous Q-function.
type ConcatEncoder struct{}

// Encode implements Encoder.
func (ConcatEncoder) Encode(obs, action []float64) []float64 {
	out := make([]float64, 0, len(obs)+len(action))
	out = append(out, obs...)
	return append(out, action...)
}

// OutDim implements Encoder.
func (ConcatEncoder) OutDim(obsDim, actDim int) int { return obsDim + actDim }

// Split implements Encoder.
func (ConcatEncoder) Split(grad []float64, obsDim, actDim int) ([]float64, []float64) {
	obsGrad := append([]float64(nil), grad[:obsDim]...)
	actGrad := append([]float64(nil), grad[obsDim:obsDim+actDim]...)
	return obsGrad, actGrad
}
