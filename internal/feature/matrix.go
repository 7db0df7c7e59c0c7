package feature

import "fmt"

// Matrix is a pre-sized row-major table with one row per pair and one
// column per schema entry.
type Matrix struct {
	schema *Schema
	rows   int
	values []float64
}

// NewMatrix allocates a zeroed matrix.
func NewMatrix(schema *Schema, rows int) *Matrix {
	return &Matrix{
		schema: schema,
		rows:   rows,
		values: make([]float64, rows*schema.Len()),
	}
}

// Schema returns the column schema.
func (m *Matrix) Schema() *Schema { return m.schema }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.schema.Len() }

// Row returns a view of row r. Writes through the view update the matrix.
func (m *Matrix) Row(r int) []float64 {
	w := m.schema.Len()
	return m.values[r*w : (r+1)*w : (r+1)*w]
}

// At returns the value at row r, column c.
func (m *Matrix) At(r, c int) float64 {
	return m.values[r*m.schema.Len()+c]
}

// Set stores the value at row r, column c.
func (m *Matrix) Set(r, c int, v float64) {
	m.values[r*m.schema.Len()+c] = v
}

// Column copies out a named column.
func (m *Matrix) Column(name string) ([]float64, error) {
	c, ok := m.schema.Index(name)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]float64, m.rows)
	for r := range out {
		out[r] = m.At(r, c)
	}
	return out, nil
}
