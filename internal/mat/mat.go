// Package mat provides a minimal row-major dense matrix used to carry
// numeric tabular and voxel data between loaders and commands.
//
// Design: loaders return *Dense rather than [][]float64 so that shape is
// explicit (a 0x3 matrix is distinct from a 0x0 one) and rows are stored
// contiguously for cheap concatenation.
package mat

import "fmt"

// Dense is a row-major matrix of float64 values.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense creates a rows x cols matrix. If data is nil a zeroed backing
// slice is allocated; otherwise data must have rows*cols elements.
func NewDense(rows, cols int, data []float64) *Dense {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("mat: negative dimension %dx%d", rows, cols))
	}
	if data == nil {
		data = make([]float64, rows*cols)
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("mat: data length %d does not match %dx%d", len(data), rows, cols))
	}
	return &Dense{rows: rows, cols: cols, data: data}
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.cols }

// At returns the value at (r, c).
func (m *Dense) At(r, c int) float64 {
	m.check(r, c)
	return m.data[r*m.cols+c]
}

// Set assigns the value at (r, c).
func (m *Dense) Set(r, c int, v float64) {
	m.check(r, c)
	m.data[r*m.cols+c] = v
}

// Row returns row r as a slice backed by the matrix data.
// Mutating the returned slice mutates the matrix.
func (m *Dense) Row(r int) []float64 {
	if r < 0 || r >= m.rows {
		panic(fmt.Sprintf("mat: row %d out of range [0,%d)", r, m.rows))
	}
	return m.data[r*m.cols : (r+1)*m.cols]
}

// AppendRow grows the matrix by one row. On an empty matrix the column
// count is taken from the row; afterwards the length must match.
func (m *Dense) AppendRow(row []float64) {
	if m.rows == 0 && m.cols == 0 {
		m.cols = len(row)
	}
	if len(row) != m.cols {
		panic(fmt.Sprintf("mat: appending row of length %d to %d-column matrix", len(row), m.cols))
	}
	m.data = append(m.data, row...)
	m.rows++
}

// Slice returns a new matrix sharing data with m, covering columns [c0, c1).
// A copy is made because column slices of a row-major matrix cannot share
// backing storage.
func (m *Dense) Slice(c0, c1 int) *Dense {
	if c0 < 0 || c1 < c0 || c1 > m.cols {
		panic(fmt.Sprintf("mat: column slice [%d,%d) out of range [0,%d)", c0, c1, m.cols))
	}
	out := NewDense(m.rows, c1-c0, nil)
	for r := 0; r < m.rows; r++ {
		copy(out.Row(r), m.Row(r)[c0:c1])
	}
	return out
}

// Stack concatenates matrices row-wise in order. All non-empty inputs must
// agree on column count. Stacking no rows yields a 0x0 matrix.
func Stack(ms ...*Dense) (*Dense, error) {
	cols := 0
	rows := 0
	for _, m := range ms {
		if m == nil || m.rows == 0 {
			continue
		}
		if cols == 0 {
			cols = m.cols
		} else if m.cols != cols {
			return nil, fmt.Errorf("mat: cannot stack %d-column matrix onto %d columns", m.cols, cols)
		}
		rows += m.rows
	}
	out := NewDense(0, 0, nil)
	out.cols = cols
	out.data = make([]float64, 0, rows*cols)
	for _, m := range ms {
		if m == nil || m.rows == 0 {
			continue
		}
		out.data = append(out.data, m.data...)
		out.rows += m.rows
	}
	return out, nil
}

// Equal reports whether two matrices have the same shape and values.
func Equal(a, b *Dense) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

func (m *Dense) check(r, c int) {
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		panic(fmt.Sprintf("mat: index (%d,%d) out of range %dx%d", r, c, m.rows, m.cols))
	}
}
