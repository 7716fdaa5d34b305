// Package accel provides a Gaussian process engine whose covariance
// evaluation runs on SIMD vector arithmetic. It shares the mogp.Emulator
// contract with the reference engine and is a drop-in substitute for it.
package accel

import (
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"

	"github.com/mogpkit/mogp"
)

// GaussianProcess is a Gaussian process model backed by the SIMD kernel.
type GaussianProcess struct {
	*mogp.GaussianProcess
}

var _ mogp.Emulator = (*GaussianProcess)(nil)

// New creates an accelerated model. It accepts the same data layout and
// options as mogp.New; a kernel option passed here overrides the SIMD kernel.
func New(inputs, targets mat.Matrix, opts ...mogp.Option) (*GaussianProcess, error) {
	opts = append([]mogp.Option{mogp.WithKernel(SqExpAniso{})}, opts...)
	m, err := mogp.New(inputs, targets, opts...)
	if err != nil {
		return nil, err
	}
	return &GaussianProcess{GaussianProcess: m}, nil
}

var _ mogp.Kernel = SqExpAniso{}

// SqExpAniso computes the anisotropic squared exponential kernel using
// vectorized arithmetic. It is numerically equivalent to mogp.SqExpAniso.
type SqExpAniso struct{}

func (SqExpAniso) NumHyper(dim int) int { return dim + 1 }

func (SqExpAniso) Cov(x1, x2, theta []float64) float64 {
	d := len(x1)
	if len(x2) != d {
		panic("accel: input length mismatch")
	}
	if len(theta) != d+1 {
		panic("accel: theta length mismatch")
	}
	diff := make([]float64, d)
	w := make([]float64, d)
	vek.Sub_Into(diff, x1, x2)
	// vek rejects overlapping arguments, so squaring goes through Mul,
	// which clones its first operand.
	diff = vek.Mul(diff, diff)
	for j := 0; j < d; j++ {
		w[j] = math.Exp(-theta[j])
	}
	return math.Exp(theta[d] - 0.5*vek.Dot(diff, w))
}

func (k SqExpAniso) CovDHyper(x1, x2, theta, deriv []float64) float64 {
	d := len(x1)
	if len(deriv) != d+1 {
		panic("accel: deriv length mismatch")
	}
	diff := make([]float64, d)
	w := make([]float64, d)
	vek.Sub_Into(diff, x1, x2)
	diff = vek.Mul(diff, diff)
	for j := 0; j < d; j++ {
		w[j] = math.Exp(-theta[j])
	}
	cov := math.Exp(theta[d] - 0.5*vek.Dot(diff, w))
	vek.Mul_Into(deriv[:d], diff, w)
	vek.MulNumber_Inplace(deriv[:d], 0.5*cov)
	deriv[d] = cov
	return cov
}
