package updaters

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/types"
)

// Optimizer applies a gradient step to a flat parameter vector in place.
type Optimizer interface {
	Step(params, grad []float64)
}

// clipGrad rescales grad in place when its L2 norm exceeds maxGrad.
// maxGrad <= 0 disables clipping.
func clipGrad(grad []float64, maxGrad float64) {
	if maxGrad <= 0 {
		return
	}
	norm := floats.Norm(grad, 2)
	if norm > maxGrad {
		floats.Scale(maxGrad/norm, grad)
	}
}

// SGD is plain gradient descent with optional global-norm clipping.
type SGD struct {
	LR      float64
	MaxGrad float64
}

// NewSGD creates an SGD optimizer from settings.
func NewSGD(settings types.OptimizerSettings) *SGD {
	return &SGD{LR: settings.LearningRate, MaxGrad: settings.MaxGrad}
}

// Step implements Optimizer.
func (o *SGD) Step(params, grad []float64) {
	clipGrad(grad, o.MaxGrad)
	floats.AddScaled(params, -o.LR, grad)
}

// Adam keeps per-parameter first and second moment estimates. State is
// sized lazily on the first step and belongs to one parameter vector.
type Adam struct {
	LR      float64
	Beta1   float64
	Beta2   float64
	Eps     float64
	MaxGrad float64

	m []float64
	v []float64
	t int
}

// NewAdam creates an Adam optimizer with the usual moment defaults.
func NewAdam(settings types.OptimizerSettings) *Adam {
	return &Adam{
		LR:      settings.LearningRate,
		Beta1:   0.9,
		Beta2:   0.999,
		Eps:     1e-8,
		MaxGrad: settings.MaxGrad,
	}
}

// Step implements Optimizer.
func (o *Adam) Step(params, grad []float64) {
	if o.m == nil {
		o.m = make([]float64, len(params))
		o.v = make([]float64, len(params))
	}
	clipGrad(grad, o.MaxGrad)
	o.t++
	c1 := 1 - math.Pow(o.Beta1, float64(o.t))
	c2 := 1 - math.Pow(o.Beta2, float64(o.t))
	for i, g := range grad {
		o.m[i] = o.Beta1*o.m[i] + (1-o.Beta1)*g
		o.v[i] = o.Beta2*o.v[i] + (1-o.Beta2)*g*g
		params[i] -= o.LR * (o.m[i] / c1) / (math.Sqrt(o.v[i]/c2) + o.Eps)
	}
}

// applyStep pulls the network's flat parameters, steps them and writes
// them back.
func applyStep(net *models.Network, grad []float64, opt Optimizer) error {
	p := net.Parameters()
	opt.Step(p, grad)
	return net.SetParameters(p)
}
