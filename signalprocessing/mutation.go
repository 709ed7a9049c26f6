package signalprocessing

import (
	"math"
	"math/rand"

	"github.com/pearll/pearll/env"
)

// GaussianMutation perturbs each gene with probability rate by additive
// Gaussian noise of the given standard deviation. When space is non-nil the
// mutated individuals are projected back onto it; discrete spaces round to
// integer actions, so integer-valued populations stay integer-valued. A
// rate of 0 returns an unchanged copy.
func GaussianMutation(population [][]float64, space env.Space, rate, std float64, rng *rand.Rand) [][]float64 {
	return mutate(population, space, rate, rng, func() float64 {
		return rng.NormFloat64() * std
	})
}

// UniformMutation perturbs each gene with probability rate by additive
// uniform noise in [-scale, scale], then projects back onto the space like
// GaussianMutation.
func UniformMutation(population [][]float64, space env.Space, rate, scale float64, rng *rand.Rand) [][]float64 {
	return mutate(population, space, rate, rng, func() float64 {
		return (rng.Float64()*2 - 1) * scale
	})
}

func mutate(population [][]float64, space env.Space, rate float64, rng *rand.Rand, noise func() float64) [][]float64 {
	_, discrete := space.(*env.Discrete)

	out := make([][]float64, len(population))
	for i, row := range population {
		mutated := append([]float64(nil), row...)
		for g := range mutated {
			if rng.Float64() < rate {
				mutated[g] += noise()
				if discrete {
					mutated[g] = math.Round(mutated[g])
				}
			}
		}
		if space != nil {
			mutated = space.Clip(mutated)
		}
		out[i] = mutated
	}
	return out
}
