package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mogpkit/mogp"
)

func testModel(t *testing.T) *mogp.GaussianProcess {
	t.Helper()
	// A smooth one-dimensional function sampled on a coarse grid.
	xs := []float64{-2, -1.4, -0.8, -0.2, 0.4, 1.0, 1.6, 2.2}
	ys := make([]float64, len(xs))
	for i, v := range xs {
		ys[i] = math.Sin(v) + 0.5*v
	}
	g, err := mogp.New(
		mat.NewDense(len(xs), 1, xs),
		mat.NewVecDense(len(ys), ys),
		mogp.WithNugget(1e-8),
	)
	require.NoError(t, err)
	return g
}

func TestMAPImprovesLikelihood(t *testing.T) {
	g := testModel(t)
	start := []float64{0, 0}

	startLL, err := g.LogLikelihood(start)
	require.NoError(t, err)

	result, err := MAP(g, start, &Settings{Restarts: 1, Seed: 1})
	require.NoError(t, err)
	require.Len(t, result.Theta, 2)

	assert.GreaterOrEqual(t, result.LogLikelihood, startLL)
	for _, v := range result.Theta {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}

	// The model is left holding the selected parameters.
	assert.Equal(t, result.Theta, g.Theta())
	got, err := g.LogLikelihood(result.Theta)
	require.NoError(t, err)
	assert.InDelta(t, result.LogLikelihood, got, 1e-10)
}

func TestMAPReproducible(t *testing.T) {
	s := &Settings{Restarts: 2, Seed: 7}

	first, err := MAP(testModel(t), []float64{0, 0}, s)
	require.NoError(t, err)
	second, err := MAP(testModel(t), []float64{0, 0}, s)
	require.NoError(t, err)

	assert.Equal(t, first.Theta, second.Theta)
	assert.Equal(t, first.LogLikelihood, second.LogLikelihood)
}

func TestMAPStartLengthValidation(t *testing.T) {
	g := testModel(t)
	_, err := MAP(g, []float64{0, 0, 0}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, mogp.ErrValidation)
}
