package signalprocessing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearll/pearll/env"
)

func TestNaiveSelection(t *testing.T) {
	population := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	fitness := []float64{2, 1, 3}
	got := NaiveSelection(population, fitness, 0)
	assert.Equal(t, [][]float64{{7, 8, 9}}, got)

	population = [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}}
	fitness = []float64{2, 1, 3, 4}
	got = NaiveSelection(population, fitness, 0.8)
	assert.Equal(t, [][]float64{{1, 2, 3}, {7, 8, 9}, {10, 11, 12}}, got)

	// Equal fitness: later individuals win ties.
	fitness = []float64{1, 1, 1, 1}
	got = NaiveSelection(population, fitness, 0.75)
	assert.Equal(t, [][]float64{{4, 5, 6}, {7, 8, 9}, {10, 11, 12}}, got)
}

func TestTournamentSelection(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	population := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	fitness := []float64{2, 1, 3}

	got := TournamentSelection(population, fitness, 2, rng)
	require.Len(t, got, len(population))
	for _, row := range got {
		assert.Contains(t, population, row)
	}

	// A tournament over the whole population always crowns the fittest.
	got = TournamentSelection(population, fitness, 3, rng)
	for _, row := range got {
		assert.Equal(t, []float64{7, 8, 9}, row)
	}
}

func TestRouletteSelection(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	population := [][]float64{{0}, {1}}
	fitness := []float64{1, 1000}

	picks := 0
	const rounds = 200
	for i := 0; i < rounds; i++ {
		for _, row := range RouletteSelection(population, fitness, rng) {
			if row[0] == 1 {
				picks++
			}
		}
	}
	// The fit individual holds ~99.9% of the wheel.
	assert.Greater(t, picks, rounds*2*9/10)

	// Negative fitness is shifted rather than rejected.
	got := RouletteSelection(population, []float64{-5, -1}, rng)
	require.Len(t, got, 2)
	for _, row := range got {
		assert.Contains(t, population, row)
	}
}

func TestOnePointCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	population := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}

	got := OnePointCrossover(population, 1, rng)
	assert.Equal(t, [][]float64{{1, 5, 6}, {4, 2, 3}, {7, 8, 9}}, got)

	// Input population must stay untouched.
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, population)

	// Random crossover point: rows keep their genes, just possibly swapped.
	got = OnePointCrossover(population, -1, rng)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{7, 8, 9}, got[2], "odd leftover is carried over")
	for g := 0; g < 3; g++ {
		pair := []float64{got[0][g], got[1][g]}
		assert.ElementsMatch(t, []float64{population[0][g], population[1][g]}, pair)
	}
}

func TestFitGaussian(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	parents := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}

	got := FitGaussian(parents, 6, rng)
	require.Len(t, got, 6)
	for _, row := range got {
		require.Len(t, row, 3)
	}

	// Column means are 4,5,6 with population std sqrt(6); samples must stay
	// within a generous band around the fitted distribution.
	std := math.Sqrt(6)
	for _, row := range got {
		for g, v := range row {
			mean := float64(4 + g)
			assert.InDelta(t, mean, v, 6*std)
		}
	}

	// Identical parents collapse the distribution onto the parent.
	clones := [][]float64{{2, 2}, {2, 2}}
	for _, row := range FitGaussian(clones, 4, rng) {
		assert.Equal(t, []float64{2, 2}, row)
	}
}

func TestGaussianMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.UniformBox(-1, 1, 3)
	population := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}

	got := GaussianMutation(population, space, 1, 0.5, rng)
	for _, row := range got {
		assert.True(t, space.Contains(row), "mutated row %v escapes the space", row)
	}

	// Rate 0 is the identity.
	got = GaussianMutation(population, space, 0, 0.5, rng)
	assert.Equal(t, population, got)
}

func TestDiscreteGaussianMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.NewDiscrete(5)
	population := [][]float64{{1}, {1}, {1}}

	got := GaussianMutation(population, space, 1, 1, rng)
	for _, row := range got {
		require.Len(t, row, 1)
		assert.Equal(t, math.Trunc(row[0]), row[0], "discrete mutation must stay integer")
		assert.True(t, space.Contains(row))
	}
}

func TestUniformMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.UniformBox(-1, 1, 3)
	population := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}

	got := UniformMutation(population, space, 1, 0.5, rng)
	for _, row := range got {
		assert.True(t, space.Contains(row))
		for _, v := range row {
			// Additive noise in [-0.5, 0.5] clipped at the upper bound.
			assert.GreaterOrEqual(t, v, 0.5)
		}
	}

	got = UniformMutation(population, space, 0, 0.5, rng)
	assert.Equal(t, population, got)
}

func TestDiscreteUniformMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	space := env.NewDiscrete(5)
	population := [][]float64{{1}, {1}, {1}}

	got := UniformMutation(population, space, 1, 2, rng)
	for _, row := range got {
		assert.Equal(t, math.Trunc(row[0]), row[0])
		assert.True(t, space.Contains(row))
	}
}

func TestMutationWithoutSpace(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	population := [][]float64{{100, -100}}

	// Without a space the genome is unconstrained, as used for parameter
	// vectors in genetic agents.
	got := GaussianMutation(population, nil, 1, 1, rng)
	require.Len(t, got, 1)
	assert.NotEqual(t, population[0], got[0])
}
