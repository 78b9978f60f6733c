package similarity

import "github.com/turtacn/ChemPrep/pkg/errors"

// Matrix is a dense row-major similarity matrix: rows are query molecules,
// columns are reference molecules.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zero-filled Rows×Cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.Cols+j] }

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.Cols+j] = v }

// Row returns a view of row i. Mutating the returned slice mutates the
// matrix.
func (m *Matrix) Row(i int) []float64 { return m.Data[i*m.Cols : (i+1)*m.Cols] }

// CheckShape verifies the matrix has the expected dimensions. It backs the
// internal consistency assertion between a computed matrix and the dataset
// it was computed from.
func (m *Matrix) CheckShape(rows, cols int) error {
	if m.Rows != rows || m.Cols != cols {
		return errors.Newf(errors.ErrCodeShapeMismatch,
			"matrix shape %dx%d does not match expected %dx%d", m.Rows, m.Cols, rows, cols)
	}
	return nil
}
