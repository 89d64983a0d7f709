package f64

// L2Squared returns the squared euclidean distance between a and b.
func L2Squared(a, b []float64) (r float64) {
	var d float64
	for i := range a {
		d = a[i] - b[i]
		r += d * d
	}
	return r
}

// L2Squared4 is L2Squared unrolled by four with independent accumulators.
func L2Squared4(a, b []float64) float64 {
	var s0, s1, s2, s3 float64
	n := len(a) &^ 3
	b = b[:len(a)]
	for i := 0; i < n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for i := n; i < len(a); i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return (s0 + s1) + (s2 + s3)
}
