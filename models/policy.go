package models

import (
	"math"
	"math/rand"
)

// Policy turns observations into actions. Actions are always encoded as
// float64 vectors, discrete actions as a single index element.
type Policy interface {
	// SelectAction samples an action and returns its log-probability.
	// Deterministic policies report a log-probability of zero.
	SelectAction(obs []float64, rng *rand.Rand) (action []float64, logProb float64)
	// BestAction returns the greedy (mode) action.
	BestAction(obs []float64) []float64
}

// Softmax converts logits into probabilities, stabilized by subtracting
// the max logit.
func Softmax(logits []float64) []float64 {
	maxL := math.Inf(-1)
	for _, l := range logits {
		if l > maxL {
			maxL = l
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxL)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// CategoricalPolicy samples discrete actions from softmax-normalized
// network logits.
type CategoricalPolicy struct {
	Net *Network
}

// NewCategoricalPolicy wraps a logits network.
func NewCategoricalPolicy(net *Network) *CategoricalPolicy {
	return &CategoricalPolicy{Net: net}
}

// Probs returns the action distribution at obs.
func (p *CategoricalPolicy) Probs(obs []float64) []float64 {
	return Softmax(p.Net.Forward(obs, nil))
}

// SelectAction implements Policy.
func (p *CategoricalPolicy) SelectAction(obs []float64, rng *rand.Rand) ([]float64, float64) {
	probs := p.Probs(obs)
	u := rng.Float64()
	var cum float64
	action := len(probs) - 1
	for i, pr := range probs {
		cum += pr
		if u < cum {
			action = i
			break
		}
	}
	return []float64{float64(action)}, math.Log(probs[action])
}

// BestAction implements Policy.
func (p *CategoricalPolicy) BestAction(obs []float64) []float64 {
	probs := p.Probs(obs)
	best := 0
	for i, pr := range probs {
		if pr > probs[best] {
			best = i
		}
	}
	return []float64{float64(best)}
}

// LogProb returns log pi(action | obs) for a discrete action index.
func (p *CategoricalPolicy) LogProb(obs []float64, action int) float64 {
	return math.Log(p.Probs(obs)[action])
}

// Entropy returns the entropy of a probability vector.
func Entropy(probs []float64) float64 {
	var h float64
	for _, pr := range probs {
		if pr > 0 {
			h -= pr * math.Log(pr)
		}
	}
	return h
}

// GradLogProbLogits returns d(log pi(action))/d(logits) scaled by coeff:
// coeff * (onehot(action) - probs).
func GradLogProbLogits(probs []float64, action int, coeff float64) []float64 {
	g := make([]float64, len(probs))
	for i, pr := range probs {
		g[i] = -coeff * pr
	}
	g[action] += coeff
	return g
}

// GradEntropyLogits returns dH/d(logits) scaled by coeff. With
// H = -sum p log p over a softmax, dH/dl_k = -p_k*(log p_k + H).
func GradEntropyLogits(probs []float64, coeff float64) []float64 {
	h := Entropy(probs)
	g := make([]float64, len(probs))
	for i, pr := range probs {
		if pr > 0 {
			g[i] = -coeff * pr * (math.Log(pr) + h)
		}
	}
	return g
}

// GaussianPolicy samples continuous actions from a diagonal Gaussian
// whose mean is the network output and whose log standard deviations are
// the network's Extra parameters (state independent).
type GaussianPolicy struct {
	Net *Network
}

// NewGaussianPolicy wraps a mean network whose Extra vector holds one
// log-std per action dimension.
func NewGaussianPolicy(net *Network) *GaussianPolicy {
	return &GaussianPolicy{Net: net}
}

// Mean returns the distribution mean at obs.
func (p *GaussianPolicy) Mean(obs []float64) []float64 {
	return p.Net.Forward(obs, nil)
}

// Std returns the current standard deviations.
func (p *GaussianPolicy) Std() []float64 {
	std := make([]float64, len(p.Net.Extra))
	for i, ls := range p.Net.Extra {
		std[i] = math.Exp(ls)
	}
	return std
}

// SelectAction implements Policy.
func (p *GaussianPolicy) SelectAction(obs []float64, rng *rand.Rand) ([]float64, float64) {
	mean := p.Mean(obs)
	std := p.Std()
	action := make([]float64, len(mean))
	for i := range action {
		action[i] = mean[i] + rng.NormFloat64()*std[i]
	}
	return action, gaussianLogProb(action, mean, std)
}

// BestAction implements Policy.
func (p *GaussianPolicy) BestAction(obs []float64) []float64 {
	return p.Mean(obs)
}

// LogProb returns log pi(action | obs).
func (p *GaussianPolicy) LogProb(obs, action []float64) float64 {
	return gaussianLogProb(action, p.Mean(obs), p.Std())
}

// Entropy returns the (state independent) differential entropy.
func (p *GaussianPolicy) Entropy() float64 {
	var h float64
	for _, ls := range p.Net.Extra {
		h += 0.5*math.Log(2*math.Pi*math.E) + ls
	}
	return h
}

func gaussianLogProb(action, mean, std []float64) float64 {
	var lp float64
	for i := range action {
		z := (action[i] - mean[i]) / std[i]
		lp += -0.5*z*z - math.Log(std[i]) - 0.5*math.Log(2*math.Pi)
	}
	return lp
}

// Rebind builds a policy of the same kind as p over a different network,
// used when evaluating cloned candidate parameter vectors.
func Rebind(p Policy, net *Network) Policy {
	switch p.(type) {
	case *CategoricalPolicy:
		return NewCategoricalPolicy(net)
	case *GaussianPolicy:
		return NewGaussianPolicy(net)
	case *GreedyQPolicy:
		return NewGreedyQPolicy(net)
	default:
		return NewDeterministicPolicy(net)
	}
}

// GreedyQPolicy acts by maximizing a discrete Q-network, the actor of a
// DQN sharing all weights with its critic.
type GreedyQPolicy struct {
	Q *Network
}

// NewGreedyQPolicy wraps a discrete Q-network.
func NewGreedyQPolicy(q *Network) *GreedyQPolicy { return &GreedyQPolicy{Q: q} }

// SelectAction implements Policy.
func (p *GreedyQPolicy) SelectAction(obs []float64, _ *rand.Rand) ([]float64, float64) {
	return p.BestAction(obs), 0
}

// BestAction implements Policy.
func (p *GreedyQPolicy) BestAction(obs []float64) []float64 {
	qs := p.Q.Forward(obs, nil)
	best := 0
	for i, q := range qs {
		if q > qs[best] {
			best = i
		}
	}
	return []float64{float64(best)}
}

// DeterministicPolicy emits the network output directly, the actor of
// DDPG-style agents. Exploration noise is the explorer's job.
type DeterministicPolicy struct {
	Net *Network
}

// NewDeterministicPolicy wraps a mean network.
func NewDeterministicPolicy(net *Network) *DeterministicPolicy {
	return &DeterministicPolicy{Net: net}
}

// SelectAction implements Policy.
func (p *DeterministicPolicy) SelectAction(obs []float64, _ *rand.Rand) ([]float64, float64) {
	return p.Net.Forward(obs, nil), 0
}

// BestAction implements Policy.
func (p *DeterministicPolicy) BestAction(obs []float64) []float64 {
	return p.Net.Forward(obs, nil)
}
