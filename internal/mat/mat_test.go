package mat

import "testing"

func TestAppendRowAndAt(t *testing.T) {
	m := NewDense(0, 0, nil)
	m.AppendRow([]float64{1, 2, 3})
	m.AppendRow([]float64{4, 5, 6})

	if m.Rows() != 2 || m.Cols() != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", m.Rows(), m.Cols())
	}
	if got := m.At(1, 2); got != 6 {
		t.Errorf("At(1,2) = %v, want 6", got)
	}
}

func TestSlice(t *testing.T) {
	m := NewDense(2, 5, []float64{
		1, 2, 3, 10, 20,
		4, 5, 6, 30, 40,
	})

	coords := m.Slice(0, 3)
	attrs := m.Slice(3, 5)

	if coords.Cols() != 3 || attrs.Cols() != 2 {
		t.Fatalf("cols = %d/%d, want 3/2", coords.Cols(), attrs.Cols())
	}
	if coords.At(1, 0) != 4 {
		t.Errorf("coords.At(1,0) = %v, want 4", coords.At(1, 0))
	}
	if attrs.At(0, 1) != 20 {
		t.Errorf("attrs.At(0,1) = %v, want 20", attrs.At(0, 1))
	}
}

func TestStack(t *testing.T) {
	a := NewDense(1, 3, []float64{1, 2, 3})
	b := NewDense(2, 3, []float64{4, 5, 6, 7, 8, 9})
	empty := NewDense(0, 0, nil)

	m, err := Stack(a, empty, b)
	if err != nil {
		t.Fatalf("Stack: %v", err)
	}
	if m.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", m.Rows())
	}
	if m.At(2, 2) != 9 {
		t.Errorf("At(2,2) = %v, want 9", m.At(2, 2))
	}
}

func TestStackMismatchedColumns(t *testing.T) {
	a := NewDense(1, 3, []float64{1, 2, 3})
	b := NewDense(1, 4, []float64{1, 2, 3, 4})

	if _, err := Stack(a, b); err == nil {
		t.Error("Stack with mismatched columns should fail")
	}
}
