package models

import (
	"math/rand"

	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/types"
)

// ActorCritic bundles the policy, the critic network and their target
// copies. Agents that need no critic (pure evolutionary ones) leave it
// nil, value-based agents derive the actor from the critic.
type ActorCritic struct {
	Policy Policy
	// ActorNet is the trainable network behind Policy, nil when the actor
	// is derived from the critic as in DQN.
	ActorNet *Network
	Critic   *Network

	TargetActor  *Network
	TargetCritic *Network
}

// AssignTargets hard-copies online weights into the target networks.
func (ac *ActorCritic) AssignTargets() {
	if ac.Critic != nil && ac.TargetCritic != nil {
		_ = ac.TargetCritic.SetParameters(ac.Critic.Parameters())
	}
	if ac.ActorNet != nil && ac.TargetActor != nil {
		_ = ac.TargetActor.SetParameters(ac.ActorNet.Parameters())
	}
}

// PolyakUpdate moves the target networks toward the online ones:
// target = (1-tau)*target + tau*online.
func (ac *ActorCritic) PolyakUpdate(tau float64) {
	polyak(ac.TargetCritic, ac.Critic, tau)
	polyak(ac.TargetActor, ac.ActorNet, tau)
}

func polyak(target, online *Network, tau float64) {
	if target == nil || online == nil {
		return
	}
	tp := target.Parameters()
	op := online.Parameters()
	for i := range tp {
		tp[i] = (1-tau)*tp[i] + tau*op[i]
	}
	_ = target.SetParameters(tp)
}

// DefaultDQN builds the stock DQN model: an identity-encoded MLP with
// two hidden layers of 16 ReLU units producing one Q-value per action,
// a greedy actor sharing the critic's weights, and a target critic.
func DefaultDQN(obsSpace, actionSpace env.Space, rng *rand.Rand) (*ActorCritic, error) {
	disc, ok := actionSpace.(*env.Discrete)
	if !ok {
		return nil, types.NewError(types.ErrSpaceMismatch, "DQN needs a discrete action space")
	}
	critic := NewNetwork(Arch{
		Hidden:     []int{16, 16},
		Activation: ReLU,
		OutDim:     disc.N,
	}, obsSpace.FlatDim(), 1, rng)
	return &ActorCritic{
		Policy:       NewGreedyQPolicy(critic),
		Critic:       critic,
		TargetCritic: critic.Clone(),
	}, nil
}

// DefaultActorCritic builds the stock A2C model: separate policy and
// value networks with two hidden layers of 64 Tanh units. Discrete
// action spaces get a categorical policy, Box spaces a diagonal
// Gaussian with trainable state-independent log-stds.
func DefaultActorCritic(obsSpace, actionSpace env.Space, rng *rand.Rand) (*ActorCritic, error) {
	obsDim := obsSpace.FlatDim()
	critic := NewNetwork(Arch{
		Hidden:     []int{64, 64},
		Activation: Tanh,
		OutDim:     1,
	}, obsDim, 1, rng)

	switch sp := actionSpace.(type) {
	case *env.Discrete:
		actor := NewNetwork(Arch{
			Hidden:     []int{64, 64},
			Activation: Tanh,
			OutDim:     sp.N,
		}, obsDim, 1, rng)
		return &ActorCritic{
			Policy:   NewCategoricalPolicy(actor),
			ActorNet: actor,
			Critic:   critic,
		}, nil
	case *env.Box:
		actDim := sp.FlatDim()
		actor := NewNetwork(Arch{
			Hidden:      []int{64, 64},
			Activation:  Tanh,
			OutDim:      actDim,
			ExtraParams: actDim, // log-std per action dimension
		}, obsDim, actDim, rng)
		return &ActorCritic{
			Policy:   NewGaussianPolicy(actor),
			ActorNet: actor,
			Critic:   critic,
		}, nil
	default:
		return nil, types.NewError(types.ErrSpaceMismatch, "unsupported action space")
	}
}

// DefaultDeterministicActorCritic builds a DDPG-style pair: a Tanh
// policy network emitting actions directly and a concat-encoded Q
// critic, both with target copies.
func DefaultDeterministicActorCritic(obsSpace, actionSpace env.Space, rng *rand.Rand) (*ActorCritic, error) {
	box, ok := actionSpace.(*env.Box)
	if !ok {
		return nil, types.NewError(types.ErrSpaceMismatch,
			"deterministic policies need a Box action space")
	}
	obsDim := obsSpace.FlatDim()
	actDim := box.FlatDim()
	actor := NewNetwork(Arch{
		Hidden:        []int{64, 64},
		Activation:    ReLU,
		OutDim:        actDim,
		OutActivation: Tanh,
	}, obsDim, actDim, rng)
	critic := NewNetwork(Arch{
		Encoder:    ConcatEncoder{},
		Hidden:     []int{64, 64},
		Activation: ReLU,
		OutDim:     1,
	}, obsDim, actDim, rng)
	return &ActorCritic{
		Policy:       NewDeterministicPolicy(actor),
		ActorNet:     actor,
		Critic:       critic,
		TargetActor:  actor.Clone(),
		TargetCritic: critic.Clone(),
	}, nil
}
