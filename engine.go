package mogp

import "gonum.org/v1/gonum/mat"

// Emulator is the capability contract shared by interchangeable regression
// engines. The reference *GaussianProcess implements it, as does the
// SIMD-accelerated engine in the accel package; callers select an engine at
// construction time and never change call sites.
type Emulator interface {
	Size() int
	Dim() int
	Theta() []float64
	SetParameters(theta []float64) error
	LogLikelihood(theta []float64) (float64, error)
	LogLikelihoodGradient(grad, theta []float64) error
	Predict(xstar mat.Matrix) (mean, variance []float64, err error)
}

var _ Emulator = (*GaussianProcess)(nil)
