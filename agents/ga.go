package agents

import (
	"context"
	"math/rand"

	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/signalprocessing"
	"github.com/pearll/pearll/types"
	"github.com/pearll/pearll/updaters"
)

// GAConfig collects every knob of the genetic-algorithm agent.
type GAConfig struct {
	Population types.PopulationSettings
	// SelectionRatio is the surviving fraction per generation.
	SelectionRatio float64
	// MutationRate is the per-gene mutation probability.
	MutationRate float64
	// Parallel evaluates the population across goroutines.
	Parallel bool
	Seed     int64
}

// DefaultGAConfig returns the stock GA hyperparameters.
func DefaultGAConfig() GAConfig {
	return GAConfig{
		Population:     types.DefaultPopulationSettings(),
		SelectionRatio: signalprocessing.DefaultSelectionRatio,
		MutationRate:   0.1,
		Parallel:       true,
	}
}

// GA evolves a population of whole policy genomes: truncation
// selection, one-point crossover, Gaussian mutation. The best genome
// ever seen ends up in the agent's network.
type GA struct {
	loop    *generationLoop
	eval    *evaluator
	net     *models.Network
	updater *updaters.GeneticUpdater
	cfg     GAConfig
	rng     *rand.Rand

	population [][]float64
	bestGenome []float64
}

// NewGA builds a GA agent over a registered environment maker.
func NewGA(maker env.Maker, envName string, cfg GAConfig, deps Deps) (*GA, error) {
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

	return &GA{
		loop: newGenerationLoop("ga", envName, deps),
		eval: &evaluator{
			maker:    maker,
			policy:   model.Policy,
			net:      model.ActorNet,
			episodes: cfg.Population.EpisodesPerEval,
			parallel: cfg.Parallel,
			baseSeed: cfg.Seed,
		},
		net:     model.ActorNet,
		updater: updaters.NewGeneticUpdater(cfg.SelectionRatio, cfg.MutationRate, cfg.Population.Std),
		cfg:     cfg,
		rng:     rng,
	}, nil
}

// Learn runs the generation loop and leaves the best genome in Net.
func (a *GA) Learn(ctx context.Context) error {
	dim := a.net.NumParams()
	base := a.net.Parameters()

	// Initial population: Gaussian perturbations of the fresh network.
	a.population = make([][]float64, a.cfg.Population.Size)
	for i := range a.population {
		g := make([]float64, dim)
		for j := range g {
			g[j] = base[j] + a.rng.NormFloat64()*a.cfg.Population.Std
		}
		a.population[i] = g
	}

	for gen := 0; gen < a.cfg.Population.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return types.NewError(types.ErrRunAborted, "training cancelled").WithCause(err)
		}

		fitness, err := a.eval.scoreAll(ctx, a.population, gen)
		if err != nil {
			return err
		}
		for i, f := range fitness {
			if a.bestGenome == nil || f > a.loop.bestFitness {
				a.bestGenome = append([]float64(nil), a.population[i]...)
				a.loop.bestFitness = f
				a.loop.haveBest = true
			}
		}
		if err := a.net.SetParameters(a.bestGenome); err != nil {
			return err
		}

		next, trainLog, err := a.updater.Update(a.population, fitness, nil, a.rng)
		if err != nil {
			return err
		}
		a.population = next

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
func (a *GA) RunID() string { return a.loop.runID }

// Net holds the best genome found so far.
func (a *GA) Net() *models.Network { return a.net }

// BestFitness is the best genome score seen so far.
func (a *GA) BestFitness() float64 { return a.loop.bestFitness }
