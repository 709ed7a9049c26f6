package updaters

import (
	"math"

	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/types"
)

// logProbGrad accumulates coeff * d(log pi(action|obs))/d(params) into
// grad and returns log pi(action|obs). Categorical and diagonal-Gaussian
// policies are supported.
func logProbGrad(policy models.Policy, obs, action []float64, coeff float64, grad []float64) (float64, error) {
	switch p := policy.(type) {
	case *models.CategoricalPolicy:
		probs := p.Probs(obs)
		a := int(action[0])
		if coeff != 0 {
			p.Net.Accumulate(obs, nil, models.GradLogProbLogits(probs, a, coeff), grad)
		}
		return math.Log(probs[a]), nil
	case *models.GaussianPolicy:
		mean := p.Mean(obs)
		std := p.Std()
		off := p.Net.ExtraOffset()
		gradMean := make([]float64, len(mean))
		var lp float64
		for k := range mean {
			z := (action[k] - mean[k]) / std[k]
			lp += -0.5*z*z - math.Log(std[k]) - 0.5*math.Log(2*math.Pi)
			// d logpi / d mean = z/std, d logpi / d logstd = z^2 - 1.
			gradMean[k] = coeff * z / std[k]
			grad[off+k] += coeff * (z*z - 1)
		}
		if coeff != 0 {
			p.Net.Accumulate(obs, nil, gradMean, grad)
		}
		return lp, nil
	default:
		return 0, types.NewError(types.ErrModelNotBuilt, "policy has no differentiable log-probability")
	}
}

// entropyGrad accumulates coeff * dH/d(params) into grad and returns the
// policy entropy at obs.
func entropyGrad(policy models.Policy, obs []float64, coeff float64, grad []float64) float64 {
	switch p := policy.(type) {
	case *models.CategoricalPolicy:
		probs := p.Probs(obs)
		if coeff != 0 {
			p.Net.Accumulate(obs, nil, models.GradEntropyLogits(probs, coeff), grad)
		}
		return models.Entropy(probs)
	case *models.GaussianPolicy:
		off := p.Net.ExtraOffset()
		for k := 0; k < len(p.Net.Extra); k++ {
			grad[off+k] += coeff // dH/dlogstd = 1 per dimension
		}
		return p.Entropy()
	default:
		return 0
	}
}

func policyNet(policy models.Policy) (*models.Network, error) {
	switch p := policy.(type) {
	case *models.CategoricalPolicy:
		return p.Net, nil
	case *models.GaussianPolicy:
		return p.Net, nil
	default:
		return nil, types.NewError(types.ErrModelNotBuilt, "policy has no trainable network")
	}
}

// PolicyGradient is the vanilla score-function actor update: maximize
// advantage-weighted log-probability plus an entropy bonus.
type PolicyGradient struct {
	EntropyCoeff float64
}

// NewPolicyGradient creates the A2C-style actor updater.
func NewPolicyGradient(entropyCoeff float64) *PolicyGradient {
	return &PolicyGradient{EntropyCoeff: entropyCoeff}
}

// Update performs one gradient step on the policy network.
func (u *PolicyGradient) Update(policy models.Policy, batch *types.Batch, advantages []float64, opt Optimizer) (types.UpdateLog, error) {
	n := batch.Len()
	if n == 0 {
		return types.UpdateLog{}, types.NewError(types.ErrEmptyBuffer, "policy gradient on empty batch")
	}
	net, err := policyNet(policy)
	if err != nil {
		return types.UpdateLog{}, err
	}

	grad := net.NewGrad()
	var loss, entSum float64
	for i, obs := range batch.Observations {
		lp, err := logProbGrad(policy, obs, batch.Actions[i], -advantages[i]/float64(n), grad)
		if err != nil {
			return types.UpdateLog{}, err
		}
		entSum += entropyGrad(policy, obs, -u.EntropyCoeff/float64(n), grad)
		loss -= advantages[i] * lp
	}
	if err := applyStep(net, grad, opt); err != nil {
		return types.UpdateLog{}, err
	}
	return types.UpdateLog{
		Loss:    loss / float64(n),
		Entropy: entSum / float64(n),
	}, nil
}

// ProximalUpdate is the clipped-surrogate actor update. Batch LogProbs
// must hold the log-probabilities recorded at collection time.
type ProximalUpdate struct {
	ClipRange    float64
	EntropyCoeff float64
}

// NewProximalUpdate creates a PPO-style actor updater.
func NewProximalUpdate(clipRange, entropyCoeff float64) *ProximalUpdate {
	return &ProximalUpdate{ClipRange: clipRange, EntropyCoeff: entropyCoeff}
}

// Update performs one clipped-surrogate step and reports the approximate
// KL divergence from the collection policy.
func (u *ProximalUpdate) Update(policy models.Policy, batch *types.Batch, advantages []float64, opt Optimizer) (types.UpdateLog, error) {
	n := batch.Len()
	if n == 0 {
		return types.UpdateLog{}, types.NewError(types.ErrEmptyBuffer, "proximal update on empty batch")
	}
	if len(batch.LogProbs) != n {
		return types.UpdateLog{}, types.NewError(types.ErrShapeMismatch,
			"proximal update needs collection-time log-probabilities")
	}
	net, err := policyNet(policy)
	if err != nil {
		return types.UpdateLog{}, err
	}

	grad := net.NewGrad()
	var loss, klSum, entSum float64
	for i, obs := range batch.Observations {
		// First pass to read the current log-probability without touching
		// the gradient.
		lp, err := logProbGrad(policy, obs, batch.Actions[i], 0, grad)
		if err != nil {
			return types.UpdateLog{}, err
		}
		ratio := math.Exp(lp - batch.LogProbs[i])
		clipped := math.Max(1-u.ClipRange, math.Min(1+u.ClipRange, ratio))
		adv := advantages[i]

		if ratio*adv <= clipped*adv {
			// Unclipped branch is active: d(ratio)/dparams = ratio * dlogpi.
			if _, err := logProbGrad(policy, obs, batch.Actions[i], -adv*ratio/float64(n), grad); err != nil {
				return types.UpdateLog{}, err
			}
			loss -= ratio * adv
		} else {
			loss -= clipped * adv
		}
		entSum += entropyGrad(policy, obs, -u.EntropyCoeff/float64(n), grad)
		klSum += batch.LogProbs[i] - lp
	}
	if err := applyStep(net, grad, opt); err != nil {
		return types.UpdateLog{}, err
	}
	return types.UpdateLog{
		Loss:    loss / float64(n),
		KL:      klSum / float64(n),
		Entropy: entSum / float64(n),
	}, nil
}

// DeterministicPolicyGradient pushes a deterministic actor uphill on the
// critic: maximize Q(s, pi(s)) by chaining dQ/da through the actor.
type DeterministicPolicyGradient struct{}

// NewDeterministicPolicyGradient creates the DDPG-style actor updater.
func NewDeterministicPolicyGradient() *DeterministicPolicyGradient {
	return &DeterministicPolicyGradient{}
}

// Update steps the actor; the critic is read-only here.
func (u *DeterministicPolicyGradient) Update(actor, critic *models.Network, batch *types.Batch, opt Optimizer) (types.UpdateLog, error) {
	n := batch.Len()
	if n == 0 {
		return types.UpdateLog{}, types.NewError(types.ErrEmptyBuffer, "deterministic policy gradient on empty batch")
	}

	grad := actor.NewGrad()
	scratch := critic.NewGrad() // critic gradients are discarded
	var loss float64
	for _, obs := range batch.Observations {
		action := actor.Forward(obs, nil)
		loss -= critic.Forward(obs, action)[0] / float64(n)
		_, actGrad := critic.AccumulateInput(obs, action, []float64{-1 / float64(n)}, scratch)
		actor.Accumulate(obs, nil, actGrad, grad)
	}
	if err := applyStep(actor, grad, opt); err != nil {
		return types.UpdateLog{}, err
	}
	return types.UpdateLog{Loss: loss}, nil
}
