package similarity

import (
	"math"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

// RowMax is the per-row result of a maximum-similarity reduction: the column
// index of the best reference and its similarity value.
type RowMax struct {
	Index int
	Value float64
}

// ReduceMax extracts the per-row maximum of a similarity matrix. Ties are
// broken toward the lowest column index.
//
// When self is true the matrix must be square and its diagonal is excluded
// (every molecule would otherwise be its own nearest neighbor), which
// requires at least a 2x2 matrix.
func ReduceMax(m *Matrix, self bool) ([]RowMax, error) {
	if self {
		if m.Rows != m.Cols {
			return nil, errors.Newf(errors.ErrCodeShapeMismatch,
				"self-comparison matrix must be square, got %dx%d", m.Rows, m.Cols)
		}
		if m.Rows < 2 {
			return nil, errors.New(errors.ErrCodeSelfComparisonTooSmall,
				"self-comparison requires at least two molecules")
		}
	}
	if m.Rows == 0 || m.Cols == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParam, "matrix is empty")
	}

	out := make([]RowMax, m.Rows)
	for i := 0; i < m.Rows; i++ {
		best := RowMax{Index: -1, Value: math.Inf(-1)}
		for j := 0; j < m.Cols; j++ {
			if self && i == j {
				continue
			}
			if v := m.At(i, j); v > best.Value {
				best = RowMax{Index: j, Value: v}
			}
		}
		out[i] = best
	}
	return out, nil
}
