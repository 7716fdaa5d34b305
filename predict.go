package mogp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Predict returns the posterior mean and variance of the process at the rows
// of xstar, using the factorization cached for the current hyperparameters.
// The mean is kstarᵗ·Q⁻¹·targets; the variance is
// k(x,x) − kstarᵗ·Q⁻¹·kstar, clamped at zero. Parameters must have been set.
func (g *GaussianProcess) Predict(xstar mat.Matrix) (mean, variance []float64, err error) {
	if g.theta == nil {
		return nil, nil, ErrThetaUnset
	}
	r, c := xstar.Dims()
	if c != g.d {
		return nil, nil, shapeErrorf("prediction points have dimension %d, want %d", c, g.d)
	}

	kstar := crossCovariance(g.x, xstar, g.theta, g.kernel)
	mean = make([]float64, r)
	variance = make([]float64, r)

	tmp := mat.NewVecDense(g.n, nil)
	row := make([]float64, g.d)
	for j := 0; j < r; j++ {
		col := kstar.ColView(j)
		mean[j] = mat.Dot(col, g.invQt)

		if err := g.chol.SolveVecTo(tmp, col); err != nil {
			if _, ok := err.(mat.Condition); !ok {
				return nil, nil, err
			}
		}
		for k := 0; k < g.d; k++ {
			row[k] = xstar.At(j, k)
		}
		v := g.kernel.Cov(row, row, g.theta) - mat.Dot(col, tmp)
		variance[j] = math.Max(0, v)
	}
	return mean, variance, nil
}
