package mogp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// Reference values for the derived quantities were produced with a
// double-precision reference implementation of the same model.
var likelihoodFixtures = []struct {
	name    string
	x       []float64
	theta   []float64
	invQ    []float64
	invQt   []float64
	logdetQ float64
	jitter  float64
}{
	{
		name:  "well conditioned",
		x:     []float64{1, 2, 3, 2, 4, 1, 4, 2, 2},
		theta: []float64{0, 0, 0, 0},
		invQ: []float64{
			1.000167195256076, -0.0110373516824135, -0.0066164596502281,
			-0.0110373516824135, 1.0002452278032625, -0.0110373516824135,
			-0.0066164596502281, -0.0110373516824135, 1.0001671952560762,
		},
		invQt:   []float64{1.9407564968639992, 2.934511573315307, 3.954323806676608},
		logdetQ: -0.00029059870020992285,
		jitter:  0,
	},
	{
		name:  "duplicate rows need jitter",
		x:     []float64{1, 2, 3, 1, 2, 3, 4, 2, 2},
		theta: []float64{0, 0, 0, 0},
		invQ: []float64{
			5.0000025001932273e+05, -4.9999974999687175e+05, -3.3691214036059968e-03,
			-4.9999974999687175e+05, 5.0000025001932273e+05, -3.3691214038620732e-03,
			-3.3691214036059972e-03, -3.3691214038620732e-03, 1.0000444018785022e+00,
		},
		invQt:   []float64{-4.9999876342845545e+05, 5.0000123658773920e+05, 3.9833320004952104e+00},
		logdetQ: -13.122407278313416,
		jitter:  1e-6,
	},
}

func fixtureModel(t *testing.T, x []float64, opts ...Option) *GaussianProcess {
	t.Helper()
	g, err := New(
		mat.NewDense(3, 3, x),
		mat.NewVecDense(3, []float64{2, 3, 4}),
		opts...,
	)
	require.NoError(t, err)
	return g
}

func TestSetParameters(t *testing.T) {
	for _, tt := range likelihoodFixtures {
		t.Run(tt.name, func(t *testing.T) {
			g := fixtureModel(t, tt.x)
			require.NoError(t, g.SetParameters(tt.theta))

			assert.Equal(t, tt.theta, g.Theta())
			allClose(t, tt.invQt, g.InvQt(), 1e-6, 1e-8)
			assert.InDelta(t, tt.logdetQ, g.LogDetQ(), 1e-6)
			assert.InDelta(t, tt.jitter, g.Jitter(), 1e-18)

			invQ := g.InvQ()
			flat := make([]float64, 0, 9)
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					flat = append(flat, invQ.At(i, j))
				}
			}
			allClose(t, tt.invQ, flat, 1e-6, 1e-8)
		})
	}
}

func TestSetParametersWrongLength(t *testing.T) {
	g := fixtureModel(t, likelihoodFixtures[0].x)
	require.NoError(t, g.SetParameters([]float64{0, 0, 0, 0}))
	wantTheta := g.Theta()
	wantInvQt := g.InvQt()
	wantLogdet := g.LogDetQ()

	err := g.SetParameters([]float64{0, 0, 0, 0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var paramErr *ParamError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, 4, paramErr.Expected)
	assert.Equal(t, 5, paramErr.Actual)

	// A rejected vector leaves every cached quantity untouched.
	assert.Equal(t, wantTheta, g.Theta())
	assert.Equal(t, wantInvQt, g.InvQt())
	assert.Equal(t, wantLogdet, g.LogDetQ())
}

func TestLogLikelihood(t *testing.T) {
	g := fixtureModel(t, likelihoodFixtures[0].x)
	theta := []float64{0, 0, 0, 0}

	ll, err := g.LogLikelihood(theta)
	require.NoError(t, err)
	assert.InDelta(t, -17.00784177045409, ll, 1e-8)
	assert.Equal(t, theta, g.Theta())
	assert.Equal(t, theta, g.CurrentTheta())
	assert.Equal(t, ll, g.CurrentLogLikelihood())

	_, err = g.LogLikelihood([]float64{0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrValidation)
}

// countingKernel wraps the default kernel and counts covariance evaluations,
// exposing whether an operation rebuilt the covariance matrix.
type countingKernel struct {
	SqExpAniso
	calls *int
}

func (k countingKernel) Cov(x1, x2, theta []float64) float64 {
	*k.calls++
	return k.SqExpAniso.Cov(x1, x2, theta)
}

func TestLogLikelihoodCaching(t *testing.T) {
	var calls int
	g := fixtureModel(t, likelihoodFixtures[0].x, WithKernel(countingKernel{calls: &calls}))
	theta := []float64{0, 0, 0, 0}

	first, err := g.LogLikelihood(theta)
	require.NoError(t, err)
	afterFirst := calls
	assert.Greater(t, afterFirst, 0)

	// Same theta: bit-identical result, no covariance rebuild.
	second, err := g.LogLikelihood(theta)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, afterFirst, calls)

	// New theta: full rebuild.
	_, err = g.LogLikelihood([]float64{0.1, 0, 0, 0})
	require.NoError(t, err)
	assert.Greater(t, calls, afterFirst)
}

func TestLogLikelihoodNoStaleState(t *testing.T) {
	g := fixtureModel(t, likelihoodFixtures[0].x)
	theta0 := []float64{0, 0, 0, 0}
	theta1 := []float64{0.3, -0.2, 0.1, 0.4}

	ll0, err := g.LogLikelihood(theta0)
	require.NoError(t, err)
	logdet0 := g.LogDetQ()
	invQt0 := g.InvQt()

	ll1, err := g.LogLikelihood(theta1)
	require.NoError(t, err)
	assert.NotEqual(t, ll0, ll1)
	assert.NotEqual(t, logdet0, g.LogDetQ())
	assert.NotEqual(t, invQt0, g.InvQt())
	assert.Equal(t, theta1, g.CurrentTheta())

	// Returning to the first theta reproduces the original value exactly.
	llBack, err := g.LogLikelihood(theta0)
	require.NoError(t, err)
	assert.Equal(t, ll0, llBack)
	assert.Equal(t, logdet0, g.LogDetQ())
	assert.Equal(t, invQt0, g.InvQt())
}

func TestAdaptiveNuggetSeedsJitter(t *testing.T) {
	// Duplicate input rows make the covariance singular, so stabilization
	// must engage; the seed replaces the relative floor as the first
	// jitter attempt.
	g := fixtureModel(t, likelihoodFixtures[1].x, WithAdaptiveNugget(1e-5))
	require.NoError(t, g.SetParameters([]float64{0, 0, 0, 0}))
	assert.InDelta(t, 1e-5, g.Jitter(), 1e-18)

	_, err := g.LogLikelihood([]float64{0, 0, 0, 0})
	require.NoError(t, err)
}

func TestFixedNuggetShiftsDiagonal(t *testing.T) {
	plain := fixtureModel(t, likelihoodFixtures[0].x)
	nugged := fixtureModel(t, likelihoodFixtures[0].x, WithNugget(0.5))
	theta := []float64{0, 0, 0, 0}

	require.NoError(t, plain.SetParameters(theta))
	require.NoError(t, nugged.SetParameters(theta))

	// A fixed nugget inflates the covariance diagonal, so the determinant
	// grows and the data fit loosens.
	assert.Greater(t, nugged.LogDetQ(), plain.LogDetQ())
	assert.Equal(t, 0.0, nugged.Jitter())
}
