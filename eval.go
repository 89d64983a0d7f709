package flylsh

import (
	"context"
	"log/slog"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// AP returns the average precision of predictions against truth: the mean,
// over every prefix length i, of |set(predictions[:i]) ∩ set(truth[:i])| / i.
// Duplicates count once per prefix. Empty inputs score 0.
func AP(predictions, truth []int) (float64, error) {
	if len(predictions) != len(truth) {
		return 0, &LengthMismatchError{Predictions: len(predictions), Truth: len(truth)}
	}
	if len(truth) == 0 {
		return 0, nil
	}

	seenP := make(map[int]struct{}, len(predictions))
	seenT := make(map[int]struct{}, len(truth))
	common := 0
	var sum float64
	for i := range predictions {
		p, t := predictions[i], truth[i]
		if _, ok := seenP[p]; !ok {
			seenP[p] = struct{}{}
			if _, ok := seenT[p]; ok {
				common++
			}
		}
		if _, ok := seenT[t]; !ok {
			seenT[t] = struct{}{}
			if _, ok := seenP[t]; ok {
				common++
			}
		}
		sum += float64(common) / float64(i+1)
	}
	return sum / float64(len(truth)), nil
}

// FindMAP evaluates a random contiguous window of sampleSize points: for each
// one it compares Query against TrueNNs with AP and returns the mean. The
// per-point scores are kept and available from AllAPs.
//
// A nil rng falls back to the source given with WithRand, which is drawn
// from under the index lock so concurrent calls may share it. A non-nil rng
// belongs to the caller and must not be shared between goroutines.
func (h *FlyIndex) FindMAP(rng *rand.Rand, neighborCount, sampleSize int) (float64, error) {
	if err := checkRange("sampleSize", sampleSize, 1, h.n); err != nil {
		return 0, err
	}
	if err := checkRange("neighborCount", neighborCount, 1, h.n-1); err != nil {
		return 0, err
	}
	var start int
	if rng == nil {
		start = h.intn(h.n - sampleSize + 1)
	} else {
		start = rng.Intn(h.n - sampleSize + 1)
	}
	indices := make([]int, sampleSize)
	for i := range indices {
		indices[i] = start + i
	}
	truth, err := h.ConstructTrueNNs(indices, neighborCount)
	if err != nil {
		return 0, err
	}

	aps := make([]float64, sampleSize)
	for e, q := range indices {
		nns, err := h.Query(q, neighborCount)
		if err != nil {
			return 0, err
		}
		if aps[e], err = AP(nns, truth[e]); err != nil {
			return 0, err
		}
	}
	mAP := stat.Mean(aps, nil)

	h.mu.Lock()
	h.allAPs = aps
	h.mu.Unlock()

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "flylsh mAP computed",
		slog.Int("start", start),
		slog.Int("sample_size", sampleSize),
		slog.Int("neighbors", neighborCount),
		slog.Float64("map", mAP),
	)
	return mAP, nil
}

// AllAPs returns the per-point scores of the last FindMAP call.
func (h *FlyIndex) AllAPs() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.allAPs)
}

// intn draws from the index's own source under h.mu.
func (h *FlyIndex) intn(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rng == nil {
		o := defaultOptions()
		h.rng = o.random()
	}
	return h.rng.Intn(n)
}
