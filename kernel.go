package mogp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kernel computes the covariance between two input points for a given
// hyperparameter vector. Implementations must be pure functions of their
// arguments: no internal state, deterministic given IEEE-754 arithmetic.
type Kernel interface {
	// Cov returns the covariance between x1 and x2 under theta.
	Cov(x1, x2, theta []float64) float64
	// CovDHyper computes the covariance between x1 and x2 and stores the
	// derivative of the covariance with respect to each component of theta
	// into deriv. It returns the covariance.
	CovDHyper(x1, x2, theta, deriv []float64) float64
	// NumHyper returns the hyperparameter count for the given input dimension.
	NumHyper(dim int) int
}

var _ Kernel = SqExpAniso{}

// SqExpAniso is the anisotropic squared exponential kernel. For inputs of
// dimension D it takes D+1 hyperparameters, all on a log scale: one
// correlation length per input dimension followed by the overall process
// variance.
//
//	cov(x1, x2) = exp(theta[D]) * exp(-0.5 * Σ_d (x1[d]-x2[d])² / exp(theta[d]))
type SqExpAniso struct{}

func (SqExpAniso) NumHyper(dim int) int { return dim + 1 }

func (SqExpAniso) Cov(x1, x2, theta []float64) float64 {
	d := len(x1)
	if len(x2) != d {
		panic("mogp: input length mismatch")
	}
	if len(theta) != d+1 {
		panic("mogp: theta length mismatch")
	}
	var s float64
	for j := 0; j < d; j++ {
		diff := x1[j] - x2[j]
		s += diff * diff * math.Exp(-theta[j])
	}
	return math.Exp(theta[d] - 0.5*s)
}

func (k SqExpAniso) CovDHyper(x1, x2, theta, deriv []float64) float64 {
	d := len(x1)
	if len(deriv) != d+1 {
		panic("mogp: deriv length mismatch")
	}
	cov := k.Cov(x1, x2, theta)
	for j := 0; j < d; j++ {
		diff := x1[j] - x2[j]
		deriv[j] = cov * 0.5 * diff * diff * math.Exp(-theta[j])
	}
	deriv[d] = cov
	return cov
}

// covarianceMatrix computes the kernel matrix between the rows of x and
// themselves, adding nugget along the diagonal. If dst is nil a new matrix is
// allocated.
func covarianceMatrix(dst *mat.SymDense, x *mat.Dense, theta []float64, ker Kernel, nugget float64) *mat.SymDense {
	n, _ := x.Dims()
	if dst == nil {
		dst = mat.NewSymDense(n, nil)
	}
	if dst.SymmetricDim() != n {
		panic("mogp: bad storage length")
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := ker.Cov(x.RawRowView(i), x.RawRowView(j), theta)
			if i == j {
				v += nugget
			}
			dst.SetSym(i, j, v)
		}
	}
	return dst
}

// covarianceDeriv fills dst[k] with the derivative of the covariance matrix
// with respect to theta[k]. The nugget does not depend on theta, so it
// contributes nothing here.
func covarianceDeriv(dst []*mat.SymDense, x *mat.Dense, theta []float64, ker Kernel) {
	n, _ := x.Dims()
	deriv := make([]float64, len(theta))
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			ker.CovDHyper(x.RawRowView(i), x.RawRowView(j), theta, deriv)
			for k := range dst {
				dst[k].SetSym(i, j, deriv[k])
			}
		}
	}
}

// crossCovariance computes the kernel matrix between the rows of x (training
// inputs) and the rows of xstar (prediction points), one column per
// prediction point.
func crossCovariance(x *mat.Dense, xstar mat.Matrix, theta []float64, ker Kernel) *mat.Dense {
	n, d := x.Dims()
	r, _ := xstar.Dims()
	kstar := mat.NewDense(n, r, nil)
	row := make([]float64, d)
	for j := 0; j < r; j++ {
		for k := 0; k < d; k++ {
			row[k] = xstar.At(j, k)
		}
		for i := 0; i < n; i++ {
			kstar.Set(i, j, ker.Cov(x.RawRowView(i), row, theta))
		}
	}
	return kstar
}
