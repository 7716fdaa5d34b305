package mogp

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogLikelihoodGradient stores the gradient of the marginal log-likelihood
// with respect to theta into grad. Both slices must have length Dim()+1.
// Derived quantities are refreshed first when theta differs from the stored
// hyperparameters.
//
// With alpha = Q⁻¹·targets,
//
//	d logL/dθ_k = 0.5 * (alphaᵗ·dQ/dθ_k·alpha - tr(Q⁻¹·dQ/dθ_k))
//
// The jitter added during stabilization is treated as constant.
func (g *GaussianProcess) LogLikelihoodGradient(grad, theta []float64) error {
	if len(theta) != g.d+1 {
		return &ParamError{Expected: g.d + 1, Actual: len(theta)}
	}
	if len(grad) != g.d+1 {
		return &ParamError{Expected: g.d + 1, Actual: len(grad)}
	}
	if g.theta == nil || !floats.Equal(g.theta, theta) {
		if err := g.SetParameters(theta); err != nil {
			return err
		}
	}

	dq := make([]*mat.SymDense, g.d+1)
	for k := range dq {
		dq[k] = mat.NewSymDense(g.n, nil)
	}
	covarianceDeriv(dq, g.x, theta, g.kernel)

	for k := range dq {
		inner := mat.Inner(g.invQt, dq[k], g.invQt)
		var trace float64
		for i := 0; i < g.n; i++ {
			trace += g.invQ.At(i, i) * dq[k].At(i, i)
			for j := i + 1; j < g.n; j++ {
				trace += 2 * g.invQ.At(i, j) * dq[k].At(i, j)
			}
		}
		grad[k] = 0.5 * (inner - trace)
	}
	return nil
}
