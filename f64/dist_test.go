package f64

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestL2Squared(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 8},
		{"Empty", []float64{}, []float64{}, 0},
		{"Tail", []float64{1, 1, 1, 1, 1}, []float64{0, 0, 0, 0, 3}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, L2Squared(tt.a, tt.b))
			assert.Equal(t, tt.expected, L2Squared4(tt.a, tt.b))
		})
	}
}

func TestL2Squared4MatchesPlain(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{1, 3, 4, 17, 128, 1001} {
		a := make([]float64, n)
		b := make([]float64, n)
		for i := range a {
			a[i] = rng.NormFloat64()
			b[i] = rng.NormFloat64()
		}
		assert.InDelta(t, L2Squared(a, b), L2Squared4(a, b), 1e-9, "n=%d", n)
	}
}
