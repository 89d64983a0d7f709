package flylsh

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// NewCSR validates the three CSR arrays and wraps them, without copying, in a
// *sparse.CSR. Row i stores its values in data[indptr[i]:indptr[i+1]] with
// column indices in the matching range of indices.
func NewCSR(rows, cols int, indptr, indices []int, data []float64) (*sparse.CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, &InvalidFormatError{Reason: fmt.Sprintf("negative shape %dx%d", rows, cols)}
	}
	raw := &blas.SparseMatrix{I: rows, J: cols, Indptr: indptr, Ind: indices, Data: data}
	if err := validateCSR(raw); err != nil {
		return nil, err
	}
	return sparse.NewCSR(rows, cols, indptr, indices, data), nil
}

// CSRFromDense collects the nonzero entries of m into a new CSR matrix.
func CSRFromDense(m mat.Matrix) *sparse.CSR {
	r, c := m.Dims()
	indptr := make([]int, r+1)
	var indices []int
	var data []float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v != 0 {
				indices = append(indices, j)
				data = append(data, v)
			}
		}
		indptr[i+1] = len(data)
	}
	return sparse.NewCSR(r, c, indptr, indices, data)
}

// validateCSR checks the row pointers and column indices. A column may appear
// at most once per row.
func validateCSR(m *blas.SparseMatrix) error {
	switch {
	case m.I < 0 || m.J < 0:
		return &InvalidFormatError{Reason: fmt.Sprintf("negative shape %dx%d", m.I, m.J)}
	case len(m.Indptr) != m.I+1:
		return &InvalidFormatError{Reason: fmt.Sprintf("indptr has %d entries, want %d", len(m.Indptr), m.I+1)}
	case len(m.Ind) != len(m.Data):
		return &InvalidFormatError{Reason: fmt.Sprintf("%d indices for %d values", len(m.Ind), len(m.Data))}
	case m.Indptr[0] != 0 || m.Indptr[m.I] != len(m.Data):
		return &InvalidFormatError{Reason: "indptr does not span the data array"}
	}

	seen := make([]int, m.J)
	for i := 0; i < m.I; i++ {
		if m.Indptr[i] > m.Indptr[i+1] {
			return &InvalidFormatError{Reason: fmt.Sprintf("indptr decreases at row %d", i)}
		}
		for _, j := range m.Ind[m.Indptr[i]:m.Indptr[i+1]] {
			if j < 0 || j >= m.J {
				return &InvalidFormatError{Reason: fmt.Sprintf("column index %d outside [0, %d)", j, m.J)}
			}
			// seen holds row+1 of the last row that stored column j
			if seen[j] == i+1 {
				return &InvalidFormatError{Reason: fmt.Sprintf("column %d stored twice in row %d", j, i)}
			}
			seen[j] = i + 1
		}
	}
	return nil
}

// scatterRow writes row i of c into dst, which must have one entry per column.
func scatterRow(c *sparse.CSR, i int, dst []float64) []float64 {
	for j := range dst {
		dst[j] = 0
	}
	return c.ScatterRow(i, dst)
}

// nonzeroCounter is implemented by sparse matrix types from other packages.
type nonzeroCounter interface {
	NNZ() int
}

// classify reports whether m is CSR sparse. Sparse matrices in any other
// layout are rejected.
func classify(m mat.Matrix) (*sparse.CSR, bool, error) {
	if m == nil {
		return nil, false, &InvalidFormatError{Reason: "nil matrix"}
	}
	switch t := m.(type) {
	case *sparse.CSR:
		if err := validateCSR(t.RawMatrix()); err != nil {
			return nil, false, err
		}
		return t, true, nil
	case *sparse.COO, *sparse.CSC, *sparse.DOK, *sparse.DIA:
		return nil, false, &InvalidFormatError{Reason: fmt.Sprintf("%T must be converted to CSR", m)}
	case nonzeroCounter:
		return nil, false, &InvalidFormatError{Reason: fmt.Sprintf("sparse type %T is not CSR", m)}
	}
	return nil, false, nil
}
