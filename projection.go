package flylsh

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Projection is an immutable d×m boolean matrix mapping input dimensions to
// embedding dimensions.
type Projection struct {
	rows, cols int
	// active[i] lists the embedding columns wired to input dimension i.
	active  [][]int
	weights *mat.Dense
}

// SampleProjection draws a inputDim×embeddingSize projection in which every
// entry is set independently with probability samplingRatio. Entries are drawn
// in row-major order, one rng.Float64 per entry.
func SampleProjection(rng *rand.Rand, inputDim, embeddingSize int, samplingRatio float64) (*Projection, error) {
	if inputDim <= 0 {
		return nil, &RangeError{Name: "inputDim", Value: float64(inputDim), Min: 1, Max: float64(maxInt)}
	}
	if embeddingSize <= 0 {
		return nil, &RangeError{Name: "embeddingSize", Value: float64(embeddingSize), Min: 1, Max: float64(maxInt)}
	}
	if !(samplingRatio > 0 && samplingRatio <= 1) {
		return nil, &RangeError{Name: "samplingRatio", Value: samplingRatio, Min: 0, Max: 1}
	}

	threshold := 1 - samplingRatio
	bits := make([][]bool, inputDim)
	for i := range bits {
		bits[i] = make([]bool, embeddingSize)
		for j := range bits[i] {
			bits[i][j] = rng.Float64() > threshold
		}
	}
	return NewProjection(bits)
}

// NewProjection builds a projection from explicit rows. All rows must have
// the same non-zero length.
func NewProjection(bits [][]bool) (*Projection, error) {
	if len(bits) == 0 || len(bits[0]) == 0 {
		return nil, &DimensionMismatchError{What: "projection shape", Expected: 1, Actual: 0}
	}
	p := &Projection{
		rows:    len(bits),
		cols:    len(bits[0]),
		active:  make([][]int, len(bits)),
		weights: mat.NewDense(len(bits), len(bits[0]), nil),
	}
	for i, row := range bits {
		if len(row) != p.cols {
			return nil, &DimensionMismatchError{What: "projection row length", Expected: p.cols, Actual: len(row)}
		}
		for j, on := range row {
			if on {
				p.active[i] = append(p.active[i], j)
				p.weights.Set(i, j, 1)
			}
		}
	}
	return p, nil
}

// Dims returns (inputDim, embeddingSize).
func (p *Projection) Dims() (int, int) { return p.rows, p.cols }

func (p *Projection) At(i, j int) bool { return p.weights.At(i, j) != 0 }

// Density returns the fraction of set entries.
func (p *Projection) Density() float64 {
	n := 0
	for _, a := range p.active {
		n += len(a)
	}
	return float64(n) / float64(p.rows*p.cols)
}

// Weights returns the projection as a 0/1 dense matrix. The result is a copy.
func (p *Projection) Weights() *mat.Dense {
	return mat.DenseCopyOf(p.weights)
}

const maxInt = math.MaxInt
