package updaters

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/types"
)

func TestNoisyPopulationUpdaterMovesAlongFitnessGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	net := models.NewNetwork(models.Arch{OutDim: 1}, 1, 1, rng)
	u := NewNoisyPopulationUpdater(0.1, 1.0)

	dim := net.NumParams()
	before := net.Parameters()

	// Fitness rises with the first parameter: noise pointing up that axis
	// scores high, noise pointing down scores low.
	noise := make([][]float64, 2)
	noise[0] = make([]float64, dim)
	noise[1] = make([]float64, dim)
	noise[0][0] = 1
	noise[1][0] = -1

	log, err := u.Update(net, noise, []float64{5, -5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, log.BestFitness)
	assert.Equal(t, 0.0, log.MeanFitness)

	after := net.Parameters()
	assert.Greater(t, after[0], before[0])
	assert.Equal(t, before[1:], after[1:], "orthogonal parameters must not move")
}

func TestNoisyPopulationUpdaterEqualFitnessIsNoOp(t *testing.T) {
	rng := rand.New(rand.NewSource(32))
	net := models.NewNetwork(models.Arch{OutDim: 1}, 1, 1, rng)
	u := NewNoisyPopulationUpdater(0.1, 1.0)

	dim := net.NumParams()
	before := net.Parameters()
	noise := [][]float64{make([]float64, dim), make([]float64, dim)}
	noise[0][0] = 1
	noise[1][0] = -1

	_, err := u.Update(net, noise, []float64{3, 3})
	require.NoError(t, err)
	assert.Equal(t, before, net.Parameters())
}

func TestNoisyPopulationUpdaterShapeErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(33))
	net := models.NewNetwork(models.Arch{OutDim: 1}, 1, 1, rng)
	u := NewNoisyPopulationUpdater(0.1, 1.0)

	_, err := u.Update(net, nil, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrEmptyBuffer, types.GetErrorCode(err))

	_, err = u.Update(net, [][]float64{{1}}, []float64{1})
	require.Error(t, err)
	assert.Equal(t, types.ErrShapeMismatch, types.GetErrorCode(err))
}

func TestGeneticUpdaterKeepsPopulationSize(t *testing.T) {
	rng := rand.New(rand.NewSource(34))
	u := NewGeneticUpdater(0.5, 0.1, 0.5)

	population := [][]float64{
		{1, 1, 1},
		{2, 2, 2},
		{3, 3, 3},
		{4, 4, 4},
	}
	next, log, err := u.Update(population, []float64{1, 2, 3, 4}, nil, rng)
	require.NoError(t, err)
	assert.Len(t, next, 4)
	for _, g := range next {
		assert.Len(t, g, 3)
	}
	assert.Equal(t, 4.0, log.BestFitness)
	assert.Equal(t, 2.5, log.MeanFitness)
}

func TestGeneticUpdaterBreedsFromFittest(t *testing.T) {
	rng := rand.New(rand.NewSource(35))
	// No mutation: every child gene must come from the selected parents,
	// genomes 3 and 4 under a 0.5 truncation.
	u := NewGeneticUpdater(0.5, 0, 0)

	population := [][]float64{
		{1, 1, 1},
		{2, 2, 2},
		{3, 3, 3},
		{4, 4, 4},
	}
	next, _, err := u.Update(population, []float64{1, 2, 3, 4}, nil, rng)
	require.NoError(t, err)
	for _, g := range next {
		for _, v := range g {
			assert.Contains(t, []float64{3, 4}, v)
		}
	}
}

func TestGeneticUpdaterEmptyPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(36))
	u := NewGeneticUpdater(0.5, 0.1, 0.5)
	_, _, err := u.Update(nil, nil, nil, rng)
	require.Error(t, err)
	assert.Equal(t, types.ErrEmptyBuffer, types.GetErrorCode(err))
}
