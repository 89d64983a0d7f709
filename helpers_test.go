package flylsh

import (
	"io"
	"log/slog"
	"math/rand"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func randomDense(rng *rand.Rand, n, d int) *mat.Dense {
	data := make([]float64, n*d)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(n, d, data)
}

// randomSparse zeroes each entry of a random matrix with probability zeroFrac.
func randomSparse(rng *rand.Rand, n, d int, zeroFrac float64) *sparse.CSR {
	m := randomDense(rng, n, d)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			if rng.Float64() < zeroFrac {
				m.Set(i, j, 0)
			}
		}
	}
	return CSRFromDense(m)
}

// foreignSparse is a sparse matrix type from outside the sparse package.
type foreignSparse struct {
	*mat.Dense
}

func (c foreignSparse) NNZ() int {
	r, cols := c.Dims()
	n := 0
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			if c.At(i, j) != 0 {
				n++
			}
		}
	}
	return n
}
