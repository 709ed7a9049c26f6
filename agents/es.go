package agents

import (
	"context"
	"math/rand"

	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/types"
	"github.com/pearll/pearll/updaters"
)

// ESConfig collects every knob of the evolution-strategies agent.
type ESConfig struct {
	Population types.PopulationSettings
	// LearningRate scales the fitness-weighted mean update.
	LearningRate float64
	// Parallel evaluates the population across goroutines.
	Parallel bool
	Seed     int64
}

// DefaultESConfig returns the stock ES hyperparameters.
func DefaultESConfig() ESConfig {
	return ESConfig{
		Population:   types.DefaultPopulationSettings(),
		LearningRate: 0.1,
		Parallel:     true,
	}
}

// ES trains a policy with natural-evolution-strategies style search:
// perturb the parameter mean with Gaussian noise, score each perturbed
// candidate on full episodes, and move the mean along the
// fitness-weighted noise directions. No gradients flow through the
// policy.
type ES struct {
	loop    *generationLoop
	eval    *evaluator
	net     *models.Network
	updater *updaters.NoisyPopulationUpdater
	cfg     ESConfig
	rng     *rand.Rand
}

// NewES builds an ES agent over a registered environment maker.
func NewES(maker env.Maker, envName string, cfg ESConfig, deps Deps) (*ES, error) {
	rng := deps.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	probe := maker()
	model, err := models.DefaultActorCritic(probe.ObservationSpace(), probe.ActionSpace(), rng)
	probe.Close()
	if err != nil {
		return nil, err
	}

	return &ES{
		loop: newGenerationLoop("es", envName, deps),
		eval: &evaluator{
			maker:    maker,
			policy:   model.Policy,
			net:      model.ActorNet,
			episodes: cfg.Population.EpisodesPerEval,
			parallel: cfg.Parallel,
			baseSeed: cfg.Seed,
		},
		net:     model.ActorNet,
		updater: updaters.NewNoisyPopulationUpdater(cfg.LearningRate, cfg.Population.Std),
		cfg:     cfg,
		rng:     rng,
	}, nil
}

// Learn runs the generation loop.
func (a *ES) Learn(ctx context.Context) error {
	dim := a.net.NumParams()
	for gen := 0; gen < a.cfg.Population.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return types.NewError(types.ErrRunAborted, "training cancelled").WithCause(err)
		}

		noise := sampleNoise(a.cfg.Population.Size, dim, a.cfg.Population.Std, a.rng)
		mean := a.net.Parameters()
		candidates := make([][]float64, len(noise))
		for i, eps := range noise {
			c := make([]float64, dim)
			for j := range c {
				c[j] = mean[j] + eps[j]
			}
			candidates[i] = c
		}

		fitness, err := a.eval.scoreAll(ctx, candidates, gen)
		if err != nil {
			return err
		}
		trainLog, err := a.updater.Update(a.net, noise, fitness)
		if err != nil {
			return err
		}

		cont, err := a.loop.afterGeneration(ctx, gen, trainLog, a.net)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// RunID identifies this training run.
func (a *ES) RunID() string { return a.loop.runID }

// Net exposes the trained parameter mean.
func (a *ES) Net() *models.Network { return a.net }

// BestFitness is the best candidate score seen so far.
func (a *ES) BestFitness() float64 { return a.loop.bestFitness }
