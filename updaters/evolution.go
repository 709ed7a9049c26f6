package updaters

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/signalprocessing"
	"github.com/pearll/pearll/types"
)

// NoisyPopulationUpdater is the evolution-strategies mean update: move
// the parameter mean along the fitness-weighted average of the sampled
// noise directions.
type NoisyPopulationUpdater struct {
	LearningRate float64
	Std          float64
}

// NewNoisyPopulationUpdater creates an ES mean updater. std must match
// the scale the population noise was drawn with.
func NewNoisyPopulationUpdater(learningRate, std float64) *NoisyPopulationUpdater {
	return &NoisyPopulationUpdater{LearningRate: learningRate, Std: std}
}

// Update shifts net's flat parameters by
// lr/(n*std) * sum_i standardized(fitness_i) * noise_i and returns the
// population fitness statistics.
func (u *NoisyPopulationUpdater) Update(net *models.Network, noise [][]float64, fitness []float64) (types.TrainLog, error) {
	n := len(noise)
	if n == 0 {
		return types.TrainLog{}, types.NewError(types.ErrEmptyBuffer, "ES update with empty population")
	}
	if len(fitness) != n {
		return types.TrainLog{}, types.NewErrorf(types.ErrShapeMismatch,
			"got %d fitness values for %d population members", len(fitness), n)
	}

	mean, std := stat.MeanStdDev(fitness, nil)
	if n == 1 || std == 0 {
		std = 1
	}
	scaled := make([]float64, n)
	best := fitness[0]
	for i, f := range fitness {
		scaled[i] = (f - mean) / std
		if f > best {
			best = f
		}
	}

	params := net.Parameters()
	step := u.LearningRate / (float64(n) * u.Std)
	for i, eps := range noise {
		if len(eps) != len(params) {
			return types.TrainLog{}, types.NewErrorf(types.ErrShapeMismatch,
				"noise vector %d has %d elements, network needs %d", i, len(eps), len(params))
		}
		for j, e := range eps {
			params[j] += step * scaled[i] * e
		}
	}
	if err := net.SetParameters(params); err != nil {
		return types.TrainLog{}, err
	}
	return types.TrainLog{BestFitness: best, MeanFitness: mean}, nil
}

// GeneticUpdater evolves a population of flat genomes through a
// selection, crossover, mutation pipeline built from the
// signalprocessing operators.
type GeneticUpdater struct {
	SelectionRatio float64
	MutationRate   float64
	MutationStd    float64
}

// NewGeneticUpdater creates a GA updater with truncation selection,
// one-point crossover and Gaussian mutation.
func NewGeneticUpdater(selectionRatio, mutationRate, mutationStd float64) *GeneticUpdater {
	return &GeneticUpdater{
		SelectionRatio: selectionRatio,
		MutationRate:   mutationRate,
		MutationStd:    mutationStd,
	}
}

// Update produces the next generation from population and its fitness.
// The returned population has the same size; space (optional) bounds the
// mutated genomes.
func (u *GeneticUpdater) Update(population [][]float64, fitness []float64, space env.Space, rng *rand.Rand) ([][]float64, types.TrainLog, error) {
	n := len(population)
	if n == 0 {
		return nil, types.TrainLog{}, types.NewError(types.ErrEmptyBuffer, "GA update with empty population")
	}
	if len(fitness) != n {
		return nil, types.TrainLog{}, types.NewErrorf(types.ErrShapeMismatch,
			"got %d fitness values for %d population members", len(fitness), n)
	}

	mean, _ := stat.MeanStdDev(fitness, nil)
	best := fitness[0]
	for _, f := range fitness {
		if f > best {
			best = f
		}
	}

	parents := signalprocessing.NaiveSelection(population, fitness, u.SelectionRatio)
	next := make([][]float64, 0, n)
	for len(next) < n {
		children := signalprocessing.OnePointCrossover(parents, -1, rng)
		children = signalprocessing.GaussianMutation(children, space, u.MutationRate, u.MutationStd, rng)
		for _, c := range children {
			if len(next) == n {
				break
			}
			next = append(next, c)
		}
	}
	return next, types.TrainLog{BestFitness: best, MeanFitness: mean}, nil
}
