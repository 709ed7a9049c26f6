package agents

import (
	"context"
	"math"
	"math/rand"

	"github.com/pearll/pearll/buffers"
	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/explorers"
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/signalprocessing"
	"github.com/pearll/pearll/types"
	"github.com/pearll/pearll/updaters"
)

// DQNConfig collects every knob of the DQN agent.
type DQNConfig struct {
	Train     types.TrainSettings
	Optimizer types.OptimizerSettings
	Explorer  types.ExplorerSettings
	Buffer    types.BufferSettings
	// Gamma is the discount factor of the TD target.
	Gamma float64
	Seed  int64
}

// DefaultDQNConfig returns the stock DQN hyperparameters.
func DefaultDQNConfig() DQNConfig {
	return DQNConfig{
		Train:     types.DefaultTrainSettings(),
		Optimizer: types.DefaultOptimizerSettings(),
		Explorer:  types.DefaultExplorerSettings(),
		Buffer:    types.DefaultBufferSettings(),
		Gamma:     0.99,
	}
}

// DQN learns a discrete Q-function off-policy: epsilon-greedy
// collection into a replay buffer, TD-zero regression against a target
// critic, hard target assignment after every fit.
type DQN struct {
	*Base
	updater *updaters.QRegression
	opt     updaters.Optimizer
	gamma   float64
}

// NewDQN builds a DQN on an environment with a discrete action space.
// envName labels artifacts and metrics.
func NewDQN(e env.Env, envName string, cfg DQNConfig, deps Deps) (*DQN, error) {
	rng := deps.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
		deps.RNG = rng
	}
	model, err := models.DefaultDQN(e.ObservationSpace(), e.ActionSpace(), rng)
	if err != nil {
		return nil, err
	}
	buffer := buffers.NewReplayBuffer(cfg.Buffer, rng)
	explorer := explorers.NewEpsilonGreedy(e.ActionSpace(), cfg.Explorer, rng)

	a := &DQN{
		Base:    newBase("dqn", envName, e, model, buffer, explorer, cfg.Train, cfg.Seed, deps),
		updater: updaters.NewQRegression(),
		opt:     updaters.NewAdam(cfg.Optimizer),
		gamma:   cfg.Gamma,
	}
	return a, nil
}

// Learn runs the training loop until NumSteps or a callback stops it.
func (a *DQN) Learn(ctx context.Context) error {
	return a.learn(ctx, a)
}

func (a *DQN) selectAction(obs []float64) ([]float64, float64, float64) {
	return a.model.Policy.BestAction(obs), 0, 0
}

func (a *DQN) fitDue(step int) bool {
	return step >= a.train.WarmupSteps && step%a.train.TrainFrequency == 0 && a.buffer.Size() > 0
}

func (a *DQN) fit() (types.TrainLog, error) {
	var lossSum float64
	for epoch := 0; epoch < a.train.CriticEpochs; epoch++ {
		batch, err := a.buffer.Sample(a.train.BatchSize)
		if err != nil {
			return types.TrainLog{}, err
		}

		// Bootstrap from the frozen critic: max_a' Q_target(s', a').
		maxNextQ := make([]float64, batch.Len())
		for i, next := range batch.NextObservations {
			qs := a.model.TargetCritic.Forward(next, nil)
			best := math.Inf(-1)
			for _, q := range qs {
				if q > best {
					best = q
				}
			}
			maxNextQ[i] = best
		}
		targets := signalprocessing.TDZero(batch.Rewards, maxNextQ, batch.Dones, a.gamma)

		log, err := a.updater.Update(a.model.Critic, batch, targets, a.opt)
		if err != nil {
			return types.TrainLog{}, err
		}
		lossSum += log.Loss
	}
	a.model.AssignTargets()
	return types.TrainLog{CriticLoss: lossSum / float64(a.train.CriticEpochs)}, nil
}
