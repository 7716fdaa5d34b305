package mogp

import "gonum.org/v1/gonum/mat"

// normalizeTraining coerces raw training data into the canonical layout used
// by the rest of the model: an n×D input matrix and a length-n target vector.
//
// A 2-D input matrix is used as-is. A *mat.VecDense input paired with a
// single-element target is interpreted as one training point of dimension
// equal to the vector length. No other coercion is performed; every other
// mismatch is a shape error.
func normalizeTraining(inputs, targets mat.Matrix) (*mat.Dense, *mat.VecDense, error) {
	if inputs == nil {
		return nil, nil, shapeErrorf("nil inputs")
	}
	if targets == nil {
		return nil, nil, shapeErrorf("nil targets")
	}
	tr, tc := targets.Dims()
	if tc != 1 {
		return nil, nil, shapeErrorf("targets must be a column vector, got %d×%d", tr, tc)
	}

	// Single-point convenience path: a flat vector of inputs with one target.
	if v, ok := inputs.(*mat.VecDense); ok {
		if tr != 1 {
			return nil, nil, shapeErrorf("vector inputs describe one training point but %d targets given", tr)
		}
		d := v.Len()
		if d < 1 {
			return nil, nil, shapeErrorf("empty input vector")
		}
		x := mat.NewDense(1, d, nil)
		for j := 0; j < d; j++ {
			x.Set(0, j, v.AtVec(j))
		}
		return x, mat.NewVecDense(1, []float64{targets.At(0, 0)}), nil
	}

	n, d := inputs.Dims()
	if n < 1 || d < 1 {
		return nil, nil, shapeErrorf("inputs must be a non-empty matrix, got %d×%d", n, d)
	}
	if n != tr {
		return nil, nil, shapeErrorf("%d input rows but %d targets", n, tr)
	}
	x := mat.DenseCopyOf(inputs)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		y.SetVec(i, targets.At(i, 0))
	}
	return x, y, nil
}
