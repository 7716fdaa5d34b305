package mogp

import "gonum.org/v1/gonum/mat"

const (
	// jitterRelFloor scales the initial jitter relative to the mean diagonal
	// magnitude of the matrix being factorized.
	jitterRelFloor = 1e-6
	// jitterGrowth multiplies the jitter between retries.
	jitterGrowth = 10
	// maxJitterTries bounds the number of jittered factorization attempts.
	maxJitterTries = 5
)

// stableCholesky performs a Cholesky factorization of a, adaptively loading
// the diagonal when plain factorization fails. On success it returns the
// factorization of a + jitter*I together with the jitter that was required;
// an already positive-definite matrix factors with zero jitter.
//
// When seed > 0 the jitter escalation starts from seed instead of the
// relative floor. If the retry budget is exhausted, or the diagonal contains
// non-positive entries that no permitted jitter could repair, a
// *StabilizationError is returned.
func stableCholesky(a *mat.SymDense, seed float64) (*mat.Cholesky, float64, error) {
	var chol mat.Cholesky
	if chol.Factorize(a) {
		return &chol, 0, nil
	}

	n := a.SymmetricDim()
	var meanDiag float64
	for i := 0; i < n; i++ {
		d := a.At(i, i)
		if d <= 0 {
			return nil, 0, &StabilizationError{Attempts: 1}
		}
		meanDiag += d
	}
	meanDiag /= float64(n)

	jitter := seed
	if jitter <= 0 {
		jitter = jitterRelFloor * meanDiag
	}
	b := mat.NewSymDense(n, nil)
	for try := 0; try < maxJitterTries; try++ {
		b.CopySym(a)
		for i := 0; i < n; i++ {
			b.SetSym(i, i, a.At(i, i)+jitter)
		}
		if chol.Factorize(b) {
			return &chol, jitter, nil
		}
		jitter *= jitterGrowth
	}
	return nil, 0, &StabilizationError{
		Attempts:   maxJitterTries + 1,
		LastJitter: jitter / jitterGrowth,
	}
}
