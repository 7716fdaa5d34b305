package mogp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// derived holds the cached quantities for one hyperparameter vector. They are
// computed as a unit so a failed recompute never leaves the model holding a
// mixture of old and new state.
type derived struct {
	chol    *mat.Cholesky
	invQ    *mat.SymDense
	invQt   *mat.VecDense
	logdetQ float64
	jitter  float64
}

// prepare builds the covariance matrix for theta, factorizes it, and computes
// the derived quantities. invQt is obtained by triangular solves against the
// factor; invQ is formed explicitly because the likelihood gradient consumes
// the full inverse.
func (g *GaussianProcess) prepare(theta []float64) (*derived, error) {
	q := covarianceMatrix(nil, g.x, theta, g.kernel, g.nugget.fixed())
	chol, jitter, err := stableCholesky(q, g.nugget.jitterSeed())
	if err != nil {
		return nil, err
	}

	invQt := mat.NewVecDense(g.n, nil)
	if err := chol.SolveVecTo(invQt, g.y); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, err
		}
	}
	invQ := mat.NewSymDense(g.n, nil)
	if err := chol.InverseTo(invQ); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, err
		}
	}

	return &derived{
		chol:    chol,
		invQ:    invQ,
		invQt:   invQt,
		logdetQ: chol.LogDet(),
		jitter:  jitter,
	}, nil
}

// SetParameters stores theta and refreshes every cached derived quantity.
// theta must have length Dim()+1. On any failure, validation or
// stabilization, the model keeps the state from the last successful set.
func (g *GaussianProcess) SetParameters(theta []float64) error {
	if len(theta) != g.d+1 {
		return &ParamError{Expected: g.d + 1, Actual: len(theta)}
	}
	der, err := g.prepare(theta)
	if err != nil {
		return err
	}
	g.theta = append(g.theta[:0], theta...)
	g.chol = der.chol
	g.invQ = der.invQ
	g.invQt = der.invQt
	g.logdetQ = der.logdetQ
	g.jitter = der.jitter
	return nil
}

// LogLikelihood returns the marginal log-likelihood of the training targets
// under theta,
//
//	-0.5 * (targetsᵗ·Q⁻¹·targets + log|Q| + n·log(2π)),
//
// refreshing the cached derived quantities only when theta differs from the
// stored hyperparameters. A stabilization failure is propagated unchanged;
// callers scanning hyperparameter space should treat it as an infeasible
// point.
func (g *GaussianProcess) LogLikelihood(theta []float64) (float64, error) {
	if len(theta) != g.d+1 {
		return 0, &ParamError{Expected: g.d + 1, Actual: len(theta)}
	}
	if g.theta == nil || !floats.Equal(g.theta, theta) {
		if err := g.SetParameters(theta); err != nil {
			return 0, err
		}
	}
	ll := -0.5 * (mat.Dot(g.y, g.invQt) + g.logdetQ + float64(g.n)*math.Log(2*math.Pi))
	g.curTheta = append(g.curTheta[:0], theta...)
	g.curLogLike = ll
	return ll, nil
}
