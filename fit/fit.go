// Package fit selects hyperparameters for a Gaussian process model by
// maximizing its marginal log-likelihood. Stabilization failures reported by
// the model are treated as infeasible points in hyperparameter space, never
// as fatal errors.
package fit

import (
	"fmt"
	"math"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/mogpkit/mogp"
)

// Settings controls the MAP search. The zero value is usable.
type Settings struct {
	// Restarts is the number of additional optimization runs started from
	// randomly perturbed copies of the initial point.
	Restarts int
	// PerturbScale is the standard deviation of the restart perturbation.
	// Zero means 0.5.
	PerturbScale float64
	// GradientThreshold overrides the optimizer's gradient convergence
	// threshold when positive.
	GradientThreshold float64
	// Seed seeds the restart perturbations. Runs with the same seed and
	// inputs are reproducible.
	Seed int64
}

func (s *Settings) perturbScale() float64 {
	if s == nil || s.PerturbScale <= 0 {
		return 0.5
	}
	return s.PerturbScale
}

// Result holds the best hyperparameters found and their log-likelihood.
type Result struct {
	Theta         []float64
	LogLikelihood float64
}

// MAP maximizes the marginal log-likelihood of m over theta, starting from
// start (length Dim()+1). On success the model is left with the best
// parameters set. It fails only when every run, including restarts, lands in
// a region where the covariance cannot be stabilized.
func MAP(m mogp.Emulator, start []float64, s *Settings) (*Result, error) {
	if len(start) != m.Dim()+1 {
		return nil, &mogp.ParamError{Expected: m.Dim() + 1, Actual: len(start)}
	}
	if s == nil {
		s = &Settings{}
	}
	rng := rand.New(rand.NewSource(s.Seed))

	var best *Result
	for run := 0; run <= s.Restarts; run++ {
		x0 := make([]float64, len(start))
		copy(x0, start)
		if run > 0 {
			for i := range x0 {
				x0[i] += rng.NormFloat64() * s.perturbScale()
			}
		}
		res := minimizeOnce(m, x0, s)
		if res == nil {
			continue
		}
		log.WithFields(log.Fields{
			"run":           run,
			"loglikelihood": res.LogLikelihood,
		}).Debug("fit: run finished")
		if best == nil || res.LogLikelihood > best.LogLikelihood {
			best = res
		}
	}
	if best == nil {
		return nil, fmt.Errorf("fit: no feasible hyperparameters found: %w", mogp.ErrNotPositiveDefinite)
	}
	if err := m.SetParameters(best.Theta); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"theta":         best.Theta,
		"loglikelihood": best.LogLikelihood,
	}).Info("fit: MAP estimate selected")
	return best, nil
}

// minimizeOnce runs one local optimization of the negative log-likelihood.
// It returns nil when no finite objective value was reached.
func minimizeOnce(m mogp.Emulator, x0 []float64, s *Settings) *Result {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			ll, err := m.LogLikelihood(x)
			if err != nil {
				// An unstabilizable covariance marks an infeasible region.
				return math.Inf(1)
			}
			return -ll
		},
		Grad: func(grad, x []float64) {
			if err := m.LogLikelihoodGradient(grad, x); err != nil {
				for i := range grad {
					grad[i] = math.NaN()
				}
				return
			}
			floats.Scale(-1, grad)
		},
	}

	settings := &optimize.Settings{}
	if s.GradientThreshold > 0 {
		settings.GradientThreshold = s.GradientThreshold
	}
	result, err := optimize.Minimize(problem, x0, settings, nil)
	if result == nil || math.IsInf(result.F, 0) || math.IsNaN(result.F) {
		return nil
	}
	if err != nil {
		// A best-so-far point with a finite objective is still usable even
		// when the optimizer stops abnormally.
		log.WithError(err).Debug("fit: optimizer stopped early")
	}
	theta := make([]float64, len(result.X))
	copy(theta, result.X)
	return &Result{Theta: theta, LogLikelihood: -result.F}
}
