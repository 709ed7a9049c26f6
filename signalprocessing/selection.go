package signalprocessing

import (
	"math/rand"
	"sort"
)

// DefaultSelectionRatio is the survivor fraction used by NaiveSelection when
// no ratio is given.
const DefaultSelectionRatio = 1.0 / 3.0

// NaiveSelection keeps the top fraction of the population by fitness,
// preserving the original ordering of the survivors. Ties are broken by
// population index, later individuals winning, which matches a stable
// ascending argsort. A ratio <= 0 selects with DefaultSelectionRatio; at
// least one individual always survives.
func NaiveSelection(population [][]float64, fitness []float64, ratio float64) [][]float64 {
	if ratio <= 0 {
		ratio = DefaultSelectionRatio
	}
	n := len(population)
	k := int(float64(n) * ratio)
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitness[order[a]] < fitness[order[b]]
	})

	survivors := append([]int(nil), order[n-k:]...)
	sort.Ints(survivors)

	out := make([][]float64, k)
	for i, idx := range survivors {
		out[i] = append([]float64(nil), population[idx]...)
	}
	return out
}

// TournamentSelection fills a new population of the same size by repeatedly
// holding tournaments: tournamentSize distinct competitors are drawn at
// random and the fittest one is copied into the next generation.
func TournamentSelection(population [][]float64, fitness []float64, tournamentSize int, rng *rand.Rand) [][]float64 {
	n := len(population)
	if tournamentSize < 1 {
		tournamentSize = 1
	}
	if tournamentSize > n {
		tournamentSize = n
	}

	out := make([][]float64, n)
	for slot := 0; slot < n; slot++ {
		competitors := rng.Perm(n)[:tournamentSize]
		best := competitors[0]
		for _, c := range competitors[1:] {
			if fitness[c] > fitness[best] {
				best = c
			}
		}
		out[slot] = append([]float64(nil), population[best]...)
	}
	return out
}

// RouletteSelection fills a new population of the same size by
// fitness-proportional sampling with replacement. Non-positive fitness is
// shifted so every individual keeps a non-zero chance.
func RouletteSelection(population [][]float64, fitness []float64, rng *rand.Rand) [][]float64 {
	n := len(population)
	shift := 0.0
	min := fitness[0]
	for _, f := range fitness[1:] {
		if f < min {
			min = f
		}
	}
	if min <= 0 {
		shift = -min + 1e-9
	}

	cdf := make([]float64, n)
	total := 0.0
	for i, f := range fitness {
		total += f + shift
		cdf[i] = total
	}

	out := make([][]float64, n)
	for slot := 0; slot < n; slot++ {
		u := rng.Float64() * total
		idx := sort.SearchFloat64s(cdf, u)
		if idx >= n {
			idx = n - 1
		}
		out[slot] = append([]float64(nil), population[idx]...)
	}
	return out
}
