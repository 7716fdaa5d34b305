// Package mogp fits and evaluates single-output Gaussian process regression
// models. A model is built from a fixed training set; setting a
// hyperparameter vector rebuilds the covariance matrix, factorizes it with
// adaptive diagonal stabilization, and caches the quantities needed for the
// marginal log-likelihood and prediction.
package mogp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type nuggetMode int

const (
	// nuggetAdaptive is the default: nothing is added to the diagonal up
	// front, and the stabilized factorizer injects jitter only when plain
	// factorization fails.
	nuggetAdaptive nuggetMode = iota
	// nuggetFixed adds an exact user-chosen value to the diagonal before
	// factorization.
	nuggetFixed
	// nuggetSeeded behaves like nuggetAdaptive but the jitter escalation
	// starts from a user-chosen value.
	nuggetSeeded
)

type nuggetSpec struct {
	mode  nuggetMode
	value float64
}

// fixed returns the amount added to every diagonal entry before factorization.
func (s nuggetSpec) fixed() float64 {
	if s.mode == nuggetFixed {
		return s.value
	}
	return 0
}

// jitterSeed returns the starting jitter for the stabilized factorizer, or
// zero to use the relative floor.
func (s nuggetSpec) jitterSeed() float64 {
	if s.mode == nuggetSeeded {
		return s.value
	}
	return 0
}

// GaussianProcess is a single-output Gaussian process regression model over a
// fixed training set. It is not safe for concurrent use: callers evaluating
// many hyperparameter candidates in parallel must use one instance per
// goroutine.
type GaussianProcess struct {
	x *mat.Dense    // n×d training inputs
	y *mat.VecDense // length-n targets
	n int
	d int

	kernel Kernel
	nugget nuggetSpec

	// Derived state, valid once theta is non-nil. All five fields always
	// correspond to the same theta: SetParameters computes replacements in
	// full before committing any of them.
	theta   []float64
	chol    *mat.Cholesky
	invQ    *mat.SymDense
	invQt   *mat.VecDense
	logdetQ float64
	jitter  float64

	// Most recent log-likelihood evaluation.
	curTheta   []float64
	curLogLike float64
}

// Option configures a GaussianProcess at construction time.
type Option func(*GaussianProcess) error

// WithNugget adds the exact non-negative value v to the covariance diagonal
// before factorization.
func WithNugget(v float64) Option {
	return func(g *GaussianProcess) error {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("mogp: nugget must be a non-negative number, got %v: %w", v, ErrValidation)
		}
		g.nugget = nuggetSpec{mode: nuggetFixed, value: v}
		return nil
	}
}

// WithAdaptiveNugget seeds the stabilized factorizer's jitter escalation from
// seed instead of the default relative floor.
func WithAdaptiveNugget(seed float64) Option {
	return func(g *GaussianProcess) error {
		if math.IsNaN(seed) || seed <= 0 {
			return fmt.Errorf("mogp: adaptive nugget seed must be positive, got %v: %w", seed, ErrValidation)
		}
		g.nugget = nuggetSpec{mode: nuggetSeeded, value: seed}
		return nil
	}
}

// WithKernel replaces the default anisotropic squared exponential kernel.
// The replacement must accept hyperparameter vectors of length Dim()+1.
func WithKernel(k Kernel) Option {
	return func(g *GaussianProcess) error {
		if k == nil {
			return fmt.Errorf("mogp: nil kernel: %w", ErrValidation)
		}
		g.kernel = k
		return nil
	}
}

// New creates a Gaussian process model from the given training data. Inputs
// are an n×D matrix and targets an n×1 column vector; as a convenience a
// *mat.VecDense input with a single target is treated as one training point
// of dimension equal to the vector length. The training set is copied and
// immutable for the model's lifetime.
func New(inputs, targets mat.Matrix, opts ...Option) (*GaussianProcess, error) {
	x, y, err := normalizeTraining(inputs, targets)
	if err != nil {
		return nil, err
	}
	n, d := x.Dims()
	g := &GaussianProcess{
		x:      x,
		y:      y,
		n:      n,
		d:      d,
		kernel: SqExpAniso{},
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Size returns the number of training examples.
func (g *GaussianProcess) Size() int { return g.n }

// Dim returns the dimension of the input space.
func (g *GaussianProcess) Dim() int { return g.d }

// Inputs returns the n×D training input matrix. The returned matrix must not
// be modified.
func (g *GaussianProcess) Inputs() mat.Matrix { return g.x }

// Targets returns a copy of the training targets.
func (g *GaussianProcess) Targets() []float64 {
	t := make([]float64, g.n)
	for i := 0; i < g.n; i++ {
		t[i] = g.y.AtVec(i)
	}
	return t
}

// Theta returns a copy of the current hyperparameter vector, or nil if no
// parameters have been set.
func (g *GaussianProcess) Theta() []float64 {
	if g.theta == nil {
		return nil
	}
	t := make([]float64, len(g.theta))
	copy(t, g.theta)
	return t
}

// InvQ returns the inverse of the stabilized covariance matrix for the
// current theta, or nil if no parameters have been set. The returned matrix
// must not be modified.
func (g *GaussianProcess) InvQ() mat.Symmetric {
	if g.invQ == nil {
		return nil
	}
	return g.invQ
}

// InvQt returns a copy of Q⁻¹·targets for the current theta, or nil if no
// parameters have been set.
func (g *GaussianProcess) InvQt() []float64 {
	if g.invQt == nil {
		return nil
	}
	t := make([]float64, g.n)
	for i := 0; i < g.n; i++ {
		t[i] = g.invQt.AtVec(i)
	}
	return t
}

// LogDetQ returns the log-determinant of the stabilized covariance matrix
// for the current theta. It is meaningful only after parameters have been
// set.
func (g *GaussianProcess) LogDetQ() float64 { return g.logdetQ }

// Jitter returns the diagonal stabilization that was required to factorize
// the covariance matrix for the current theta. Zero means the matrix
// factored cleanly.
func (g *GaussianProcess) Jitter() float64 { return g.jitter }

// CurrentTheta returns a copy of the hyperparameter vector of the most
// recent log-likelihood evaluation, or nil if none has occurred.
func (g *GaussianProcess) CurrentTheta() []float64 {
	if g.curTheta == nil {
		return nil
	}
	t := make([]float64, len(g.curTheta))
	copy(t, g.curTheta)
	return t
}

// CurrentLogLikelihood returns the value of the most recent log-likelihood
// evaluation. It is meaningful only after LogLikelihood has been called.
func (g *GaussianProcess) CurrentLogLikelihood() float64 { return g.curLogLike }

// String returns a human-readable summary of the model.
func (g *GaussianProcess) String() string {
	return fmt.Sprintf("Gaussian Process with %d training examples and %d input variables", g.n, g.d)
}
