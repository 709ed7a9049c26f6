package signalprocessing

import (
	"math"
	"math/rand"
)

// OnePointCrossover mates consecutive pairs of the population by swapping
// every gene from the crossover point onward. A negative point draws the
// point uniformly at random per pair. With an odd population the last
// individual is carried over unchanged.
func OnePointCrossover(population [][]float64, point int, rng *rand.Rand) [][]float64 {
	out := make([][]float64, len(population))
	for i := range population {
		out[i] = append([]float64(nil), population[i]...)
	}
	if len(population) == 0 {
		return out
	}

	genes := len(population[0])
	for i := 0; i+1 < len(out); i += 2 {
		p := point
		if p < 0 {
			p = rng.Intn(genes)
		}
		for g := p; g < genes; g++ {
			out[i][g], out[i+1][g] = out[i+1][g], out[i][g]
		}
	}
	return out
}

// FitGaussian fits an independent Gaussian to each gene of the parent pool
// (mean and population standard deviation per column) and samples a fresh
// population of popSize individuals from it. This is the estimation-of-
// distribution crossover used by CEM-style agents.
func FitGaussian(parents [][]float64, popSize int, rng *rand.Rand) [][]float64 {
	if len(parents) == 0 || popSize <= 0 {
		return nil
	}
	genes := len(parents[0])
	mean := make([]float64, genes)
	std := make([]float64, genes)

	for g := 0; g < genes; g++ {
		sum := 0.0
		for _, p := range parents {
			sum += p[g]
		}
		mean[g] = sum / float64(len(parents))

		varSum := 0.0
		for _, p := range parents {
			d := p[g] - mean[g]
			varSum += d * d
		}
		std[g] = math.Sqrt(varSum / float64(len(parents)))
	}

	out := make([][]float64, popSize)
	for i := range out {
		row := make([]float64, genes)
		for g := 0; g < genes; g++ {
			row[g] = mean[g] + rng.NormFloat64()*std[g]
		}
		out[i] = row
	}
	return out
}
