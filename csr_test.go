package flylsh

import (
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewCSR(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		indptr  []int
		indices []int
		data    []float64
		wantErr bool
	}{
		{"Valid", 2, 3, []int{0, 2, 3}, []int{0, 2, 1}, []float64{1, 2, 3}, false},
		{"EmptyRows", 2, 3, []int{0, 0, 0}, nil, nil, false},
		{"ShortIndptr", 2, 3, []int{0, 2}, []int{0, 2}, []float64{1, 2}, true},
		{"IndicesDataLength", 1, 3, []int{0, 2}, []int{0}, []float64{1, 2}, true},
		{"IndptrNotZeroBased", 1, 3, []int{1, 2}, []int{0, 1}, []float64{1, 2}, true},
		{"IndptrDecreasing", 2, 3, []int{0, 2, 1}, []int{0}, []float64{1}, true},
		{"ColumnOutOfRange", 1, 3, []int{0, 1}, []int{3}, []float64{1}, true},
		{"DuplicateColumn", 1, 3, []int{0, 2}, []int{1, 1}, []float64{2, 3}, true},
		{"SameColumnInTwoRows", 2, 3, []int{0, 1, 2}, []int{1, 1}, []float64{2, 3}, false},
		{"NegativeShape", -1, 3, []int{0}, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCSR(tt.rows, tt.cols, tt.indptr, tt.indices, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFormat)
				var ife *InvalidFormatError
				assert.ErrorAs(t, err, &ife)
				return
			}
			require.NoError(t, err)
			r, cols := c.Dims()
			assert.Equal(t, tt.rows, r)
			assert.Equal(t, tt.cols, cols)
		})
	}
}

func TestCSRAt(t *testing.T) {
	c, err := NewCSR(2, 3, []int{0, 2, 3}, []int{0, 2, 1}, []float64{1, 2, 3})
	require.NoError(t, err)

	want := mat.NewDense(2, 3, []float64{
		1, 0, 2,
		0, 3, 0,
	})
	assert.True(t, mat.Equal(want, c))
	assert.True(t, mat.Equal(want.T(), c.T()))
	assert.Equal(t, 3, c.NNZ())
	assert.Equal(t, 2, c.RowNNZ(0))
	assert.Equal(t, 1, c.RowNNZ(1))
	assert.Panics(t, func() { c.At(2, 0) })
}

func TestCSRFromDense(t *testing.T) {
	d := mat.NewDense(3, 2, []float64{
		0, 1,
		0, 0,
		4, 5,
	})
	c := CSRFromDense(d)
	raw := c.RawMatrix()
	assert.Equal(t, []int{0, 1, 1, 3}, raw.Indptr)
	assert.Equal(t, []int{1, 0, 1}, raw.Ind)
	assert.Equal(t, []float64{1, 4, 5}, raw.Data)
	assert.True(t, mat.Equal(d, c))

	buf := make([]float64, 2)
	scatterRow(c, 2, buf)
	assert.Equal(t, []float64{4, 5}, buf)
	scatterRow(c, 1, buf)
	assert.Equal(t, []float64{0, 0}, buf, "stale values must be cleared")
}

func TestClassify(t *testing.T) {
	c := CSRFromDense(mat.NewDense(1, 2, []float64{1, 0}))
	got, isSparse, err := classify(c)
	require.NoError(t, err)
	assert.True(t, isSparse)
	assert.Same(t, c, got)

	_, isSparse, err = classify(mat.NewDense(1, 2, []float64{1, 0}))
	require.NoError(t, err)
	assert.False(t, isSparse)

	_, _, err = classify(nil)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	rejected := []struct {
		name string
		m    mat.Matrix
	}{
		{"COO", sparse.NewCOO(2, 2, []int{0, 1}, []int{0, 1}, []float64{1, 4})},
		{"CSC", sparse.NewCSC(2, 2, []int{0, 1, 2}, []int{0, 1}, []float64{1, 4})},
		{"DOK", sparse.NewDOK(2, 2)},
		{"DIA", sparse.NewDIA(2, 2, []float64{1, 4})},
		{"Foreign", foreignSparse{mat.NewDense(1, 2, []float64{1, 0})}},
		{"BrokenIndptr", sparse.NewCSR(2, 2, []int{0}, nil, nil)},
		{"DuplicateColumn", sparse.NewCSR(1, 3, []int{0, 2}, []int{1, 1}, []float64{2, 3})},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := classify(tt.m)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}
