package flylsh

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CenterSparseInPlace subtracts from every stored entry of a CSR row the mean
// of that row's stored entries. Implicit zeros are left alone, so this is a
// row-local shift rather than a true centering. A row without stored entries
// has mean 0 and stays unchanged.
func CenterSparseInPlace(m mat.Matrix) error {
	c, ok := m.(*sparse.CSR)
	if !ok {
		return &InvalidFormatError{Reason: fmt.Sprintf("sparse centering requires *sparse.CSR, got %T", m)}
	}
	raw := c.RawMatrix()
	if err := validateCSR(raw); err != nil {
		return err
	}
	for i := 0; i < raw.I; i++ {
		row := raw.Data[raw.Indptr[i]:raw.Indptr[i+1]]
		mean := floats.Sum(row) / float64(max(1, len(row)))
		floats.AddConst(-mean, row)
	}
	return nil
}

// CenterDenseCopy returns a copy of m with the mean of all d entries of each
// row subtracted from that row. m is not modified.
func CenterDenseCopy(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	out := mat.DenseCopyOf(m)
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		floats.AddConst(-floats.Sum(row)/float64(c), row)
	}
	return out
}
