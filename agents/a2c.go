package agents

import (
	"context"
	"math/rand"

	"github.com/pearll/pearll/buffers"
	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/explorers"
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/signalprocessing"
	"github.com/pearll/pearll/types"
	"github.com/pearll/pearll/updaters"
)

// A2CConfig collects every knob of the A2C agent.
type A2CConfig struct {
	Train     types.TrainSettings
	Optimizer types.OptimizerSettings
	// Gamma is the discount factor, Lambda the GAE mixing factor.
	Gamma  float64
	Lambda float64
	// EntropyCoeff weights the exploration bonus of the actor update.
	EntropyCoeff float64
	Seed         int64
}

// DefaultA2CConfig returns the stock A2C hyperparameters. The rollout
// length is TrainFrequency; there is no warmup phase.
func DefaultA2CConfig() A2CConfig {
	train := types.DefaultTrainSettings()
	train.TrainFrequency = 16
	train.WarmupSteps = 0
	return A2CConfig{
		Train:        train,
		Optimizer:    types.DefaultOptimizerSettings(),
		Gamma:        0.99,
		Lambda:       0.95,
		EntropyCoeff: 0.01,
	}
}

// A2C is the on-policy advantage actor-critic: collect a short rollout,
// estimate advantages with GAE, update the actor by policy gradient and
// the critic by value regression, then discard the rollout.
type A2C struct {
	*Base
	policyUpdater *updaters.PolicyGradient
	valueUpdater  *updaters.ValueRegression
	actorOpt      updaters.Optimizer
	criticOpt     updaters.Optimizer
	gamma         float64
	lambda        float64
}

// NewA2C builds an A2C agent; discrete action spaces get a categorical
// policy, Box spaces a diagonal Gaussian.
func NewA2C(e env.Env, envName string, cfg A2CConfig, deps Deps) (*A2C, error) {
	rng := deps.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
		deps.RNG = rng
	}
	model, err := models.DefaultActorCritic(e.ObservationSpace(), e.ActionSpace(), rng)
	if err != nil {
		return nil, err
	}
	buffer := buffers.NewRolloutBuffer(types.BufferSettings{Size: cfg.Train.TrainFrequency}, rng)
	explorer := explorers.NewBase(e.ActionSpace(), types.ExplorerSettings{StartSteps: 0}, rng)

	a := &A2C{
		Base:          newBase("a2c", envName, e, model, buffer, explorer, cfg.Train, cfg.Seed, deps),
		policyUpdater: updaters.NewPolicyGradient(cfg.EntropyCoeff),
		valueUpdater:  updaters.NewValueRegression(),
		actorOpt:      updaters.NewAdam(cfg.Optimizer),
		criticOpt:     updaters.NewAdam(cfg.Optimizer),
		gamma:         cfg.Gamma,
		lambda:        cfg.Lambda,
	}
	return a, nil
}

// Learn runs the training loop until NumSteps or a callback stops it.
func (a *A2C) Learn(ctx context.Context) error {
	return a.learn(ctx, a)
}

func (a *A2C) selectAction(obs []float64) ([]float64, float64, float64) {
	action, logProb := a.model.Policy.SelectAction(obs, a.rng)
	value := a.model.Critic.Forward(obs, nil)[0]
	return action, logProb, value
}

func (a *A2C) fitDue(step int) bool {
	return a.buffer.Size() >= a.train.TrainFrequency
}

func (a *A2C) fit() (types.TrainLog, error) {
	batch, err := a.buffer.Last(a.train.TrainFrequency)
	if err != nil {
		return types.TrainLog{}, err
	}

	// Bootstrap values of the successor states for the GAE deltas.
	nextValues := make([]float64, batch.Len())
	for i, next := range batch.NextObservations {
		nextValues[i] = a.model.Critic.Forward(next, nil)[0]
	}
	advantages, returns := signalprocessing.GAE(
		batch.Rewards, batch.Values, nextValues, batch.Dones, a.gamma, a.lambda)

	var trainLog types.TrainLog
	for epoch := 0; epoch < a.train.ActorEpochs; epoch++ {
		log, err := a.policyUpdater.Update(a.model.Policy, batch, advantages, a.actorOpt)
		if err != nil {
			return types.TrainLog{}, err
		}
		trainLog.ActorLoss = log.Loss
		trainLog.Entropy = log.Entropy
	}
	for epoch := 0; epoch < a.train.CriticEpochs; epoch++ {
		log, err := a.valueUpdater.Update(a.model.Critic, batch, returns, a.criticOpt)
		if err != nil {
			return types.TrainLog{}, err
		}
		trainLog.CriticLoss = log.Loss
	}

	a.buffer.Reset()
	return trainLog, nil
}
