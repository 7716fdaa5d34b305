package mogp

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched (via errors.Is) by every error arising from
	// malformed construction arguments or hyperparameter vectors. These are
	// detected before any numeric work begins.
	ErrValidation = errors.New("mogp: invalid model specification")

	// ErrNotPositiveDefinite is matched by stabilization failures: the
	// covariance matrix could not be factorized even with the maximum
	// permitted jitter. Callers probing hyperparameter space should treat
	// this as an infeasible point, not a fatal condition.
	ErrNotPositiveDefinite = errors.New("mogp: covariance matrix not positive definite")

	// ErrThetaUnset is returned by operations that require hyperparameters
	// to have been set at least once.
	ErrThetaUnset = errors.New("mogp: hyperparameters not set")
)

// ShapeError reports training or prediction data whose dimensions cannot be
// reconciled with the model.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string { return "mogp: " + e.Reason }

func (e *ShapeError) Is(target error) bool { return target == ErrValidation }

func shapeErrorf(format string, args ...interface{}) *ShapeError {
	return &ShapeError{Reason: fmt.Sprintf(format, args...)}
}

// ParamError reports a hyperparameter vector of the wrong length.
type ParamError struct {
	Expected int
	Actual   int
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("mogp: hyperparameter vector has length %d, want %d", e.Actual, e.Expected)
}

func (e *ParamError) Is(target error) bool { return target == ErrValidation }

// StabilizationError reports that the stabilized Cholesky factorization
// exhausted its jitter budget without producing a valid factor.
type StabilizationError struct {
	Attempts   int     // factorization attempts made, including the unjittered one
	LastJitter float64 // largest jitter tried, zero if no jitter was applicable
}

func (e *StabilizationError) Error() string {
	if e.LastJitter == 0 {
		return "mogp: matrix is not positive definite"
	}
	return fmt.Sprintf("mogp: matrix is not positive definite after %d attempts (last jitter %g)",
		e.Attempts, e.LastJitter)
}

func (e *StabilizationError) Is(target error) bool { return target == ErrNotPositiveDefinite }
