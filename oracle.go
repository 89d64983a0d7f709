package flylsh

import (
	"slices"
	"strconv"
)

// TrueNNs returns the neighborCount exact nearest neighbours of queryIndex by
// squared L2 distance over the centred points. As with Query the first entry
// of the sorted order is dropped.
func (h *FlyIndex) TrueNNs(queryIndex, neighborCount int) ([]int, error) {
	if err := h.checkQuery(queryIndex, neighborCount); err != nil {
		return nil, err
	}
	key := strconv.Itoa(queryIndex) + ":" + strconv.Itoa(neighborCount)
	if nns, ok := h.truth.Get(key); ok {
		return slices.Clone(nns), nil
	}

	sample := h.Point(queryIndex)
	buf := make([]float64, h.d)
	dist := make([]float64, h.n)
	for i := range dist {
		dist[i] = h.DistFunc(h.row(i, buf), sample)
	}
	nns := nearest(dist, neighborCount)
	h.truth.Set(key, nns)
	return slices.Clone(nns), nil
}

// ConstructTrueNNs returns one row of TrueNNs per entry of indices, in order.
func (h *FlyIndex) ConstructTrueNNs(indices []int, neighborCount int) ([][]int, error) {
	for _, i := range indices {
		if err := h.checkQuery(i, neighborCount); err != nil {
			return nil, err
		}
	}
	all := make([][]int, len(indices))
	for i, q := range indices {
		nns, err := h.TrueNNs(q, neighborCount)
		if err != nil {
			return nil, err
		}
		all[i] = nns
	}
	return all, nil
}

// Recall returns the fraction of the exact neighbours of queryIndex that
// Query also finds.
func (h *FlyIndex) Recall(queryIndex, neighborCount int) (float64, error) {
	result, err := h.Query(queryIndex, neighborCount)
	if err != nil {
		return 0, err
	}
	truth, err := h.TrueNNs(queryIndex, neighborCount)
	if err != nil {
		return 0, err
	}
	p := 0
	for _, i := range result {
		if slices.Contains(truth, i) {
			p++
		}
	}
	return float64(p) / float64(neighborCount), nil
}
