package multioutput

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mogpkit/mogp"
	"github.com/mogpkit/mogp/accel"
	"github.com/mogpkit/mogp/fit"
)

func testData() (*mat.Dense, *mat.Dense) {
	xs := []float64{-2, -1, 0, 1, 2}
	inputs := mat.NewDense(len(xs), 1, xs)
	targets := mat.NewDense(len(xs), 2, nil)
	for i, v := range xs {
		targets.Set(i, 0, math.Sin(v))
		targets.Set(i, 1, v*v)
	}
	return inputs, targets
}

func TestNew(t *testing.T) {
	inputs, targets := testData()
	c, err := New(inputs, targets, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, c.NumOutputs())
	assert.Equal(t, 5, c.Size())
	assert.Equal(t, 1, c.Dim())
}

func TestPerChannelLikelihoodMatchesStandalone(t *testing.T) {
	inputs, targets := testData()
	c, err := New(inputs, targets, nil)
	require.NoError(t, err)

	theta := []float64{0.2, -0.1}
	for j := 0; j < c.NumOutputs(); j++ {
		col := mat.NewVecDense(5, nil)
		for i := 0; i < 5; i++ {
			col.SetVec(i, targets.At(i, j))
		}
		standalone, err := mogp.New(inputs, col)
		require.NoError(t, err)

		want, err := standalone.LogLikelihood(theta)
		require.NoError(t, err)
		got, err := c.LogLikelihood(j, theta)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12)
	}
}

func TestFitAllChannels(t *testing.T) {
	inputs, targets := testData()
	c, err := New(inputs, targets, func(x, y mat.Matrix) (mogp.Emulator, error) {
		return mogp.New(x, y, mogp.WithNugget(1e-8))
	})
	require.NoError(t, err)

	results, err := c.Fit([]float64{0, 0}, &fit.Settings{Seed: 3})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for j, res := range results {
		require.NotNilf(t, res, "channel %d", j)
		assert.False(t, math.IsNaN(res.LogLikelihood))
		assert.Equal(t, res.Theta, c.Emulator(j).Theta())
	}
}

func TestEngineSelectionViaFactory(t *testing.T) {
	inputs, targets := testData()
	c, err := New(inputs, targets, func(x, y mat.Matrix) (mogp.Emulator, error) {
		return accel.New(x, y)
	})
	require.NoError(t, err)

	_, ok := c.Emulator(0).(*accel.GaussianProcess)
	assert.True(t, ok)
}

func TestPredictShapes(t *testing.T) {
	inputs, targets := testData()
	c, err := New(inputs, targets, nil)
	require.NoError(t, err)
	for j := 0; j < c.NumOutputs(); j++ {
		require.NoError(t, c.SetParameters(j, []float64{0, 0}))
	}

	xstar := mat.NewDense(3, 1, []float64{-0.5, 0.5, 1.5})
	means, variances, err := c.Predict(xstar)
	require.NoError(t, err)

	r, cc := means.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, cc)
	r, cc = variances.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, cc)
}

func TestPredictBeforeParameters(t *testing.T) {
	inputs, targets := testData()
	c, err := New(inputs, targets, nil)
	require.NoError(t, err)

	_, _, err = c.Predict(mat.NewDense(1, 1, []float64{0}))
	assert.ErrorIs(t, err, mogp.ErrThetaUnset)
}
