// Package multioutput manages a collection of independent single-output
// Gaussian process models sharing one set of training inputs, one model per
// output channel. Channels carry no cross-output covariance structure; the
// container only delegates per-channel calls, fitting channels in parallel
// with one model instance per goroutine.
package multioutput

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/mogpkit/mogp"
	"github.com/mogpkit/mogp/fit"
)

// Factory constructs one emulator from shared inputs and a single target
// column. It is how callers select an engine without changing call sites.
type Factory func(inputs, targets mat.Matrix) (mogp.Emulator, error)

// Container holds one emulator per output channel.
type Container struct {
	emulators []mogp.Emulator
	n, d      int
}

// New builds a container from an n×D input matrix and an n×m target matrix,
// one output channel per target column. A nil factory uses the reference
// engine with default options.
func New(inputs mat.Matrix, targets mat.Matrix, factory Factory) (*Container, error) {
	if factory == nil {
		factory = func(x, y mat.Matrix) (mogp.Emulator, error) { return mogp.New(x, y) }
	}
	if targets == nil {
		return nil, &mogp.ShapeError{Reason: "nil targets"}
	}
	tr, tc := targets.Dims()
	if tc < 1 {
		return nil, &mogp.ShapeError{Reason: "targets must have at least one column"}
	}

	c := &Container{emulators: make([]mogp.Emulator, tc)}
	col := mat.NewVecDense(tr, nil)
	for j := 0; j < tc; j++ {
		for i := 0; i < tr; i++ {
			col.SetVec(i, targets.At(i, j))
		}
		em, err := factory(inputs, mat.VecDenseCopyOf(col))
		if err != nil {
			return nil, fmt.Errorf("multioutput: channel %d: %w", j, err)
		}
		c.emulators[j] = em
	}
	c.n = c.emulators[0].Size()
	c.d = c.emulators[0].Dim()
	return c, nil
}

// NumOutputs returns the number of output channels.
func (c *Container) NumOutputs() int { return len(c.emulators) }

// Size returns the number of shared training examples.
func (c *Container) Size() int { return c.n }

// Dim returns the dimension of the shared input space.
func (c *Container) Dim() int { return c.d }

// Emulator returns the model for output channel i.
func (c *Container) Emulator(i int) mogp.Emulator { return c.emulators[i] }

// SetParameters sets the hyperparameters of channel i.
func (c *Container) SetParameters(i int, theta []float64) error {
	return c.emulators[i].SetParameters(theta)
}

// LogLikelihood evaluates the marginal log-likelihood of channel i at theta.
func (c *Container) LogLikelihood(i int, theta []float64) (float64, error) {
	return c.emulators[i].LogLikelihood(theta)
}

// Fit runs MAP hyperparameter estimation for every channel concurrently,
// one goroutine per model instance. It returns one result per channel;
// per-channel failures are joined into the returned error and leave the
// corresponding result nil.
func (c *Container) Fit(start []float64, s *fit.Settings) ([]*fit.Result, error) {
	results := make([]*fit.Result, len(c.emulators))
	errs := make([]error, len(c.emulators))

	var wg sync.WaitGroup
	for i := range c.emulators {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := fit.MAP(c.emulators[i], start, s)
			if err != nil {
				errs[i] = fmt.Errorf("multioutput: channel %d: %w", i, err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return results, err
	}
	log.WithField("channels", len(c.emulators)).Info("multioutput: all channels fitted")
	return results, nil
}

// Predict returns per-channel posterior means and variances at the rows of
// xstar, one column per output channel.
func (c *Container) Predict(xstar mat.Matrix) (means, variances *mat.Dense, err error) {
	r, _ := xstar.Dims()
	means = mat.NewDense(r, len(c.emulators), nil)
	variances = mat.NewDense(r, len(c.emulators), nil)
	for j, em := range c.emulators {
		mean, variance, err := em.Predict(xstar)
		if err != nil {
			return nil, nil, fmt.Errorf("multioutput: channel %d: %w", j, err)
		}
		means.SetCol(j, mean)
		variances.SetCol(j, variance)
	}
	return means, variances, nil
}
