// Package flylsh implements Fly-LSH: points are projected through a sparse
// random boolean matrix into a wider space and the top-k activations of each
// point form its binary hash code. Neighbours are ranked by Hamming distance
// between codes.
package flylsh

import (
	"cmp"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Bing-dwendwen/go-flylsh/f64"
	"github.com/james-bowman/sparse"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/willf/bitset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/mat"
)

var maxWorkers int

type DistanceFunction func([]float64, []float64) float64

// DefaultDistFunc is the squared L2 kernel used for ground truth. It is
// picked from the host's CPU features, and the two candidates round
// differently, so ground-truth order at near-ties may differ between hosts.
// Pass WithDistFunc(f64.L2Squared) where results must match across machines.
var DefaultDistFunc DistanceFunction

func init() {
	maxWorkers = runtime.NumCPU()

	switch {
	case cpu.X86.HasAVX2, cpu.ARM64.HasASIMD:
		DefaultDistFunc = f64.L2Squared4
	default:
		DefaultDistFunc = f64.L2Squared
	}
}

// rowBlock is the number of activation rows computed per task.
const rowBlock = 64

// FlyIndex is a Fly-LSH index over a fixed point set. It is read-only once
// New returns, apart from the AP list kept by FindMAP.
type FlyIndex struct {
	n, d          int
	hashLength    int
	embeddingSize int
	samplingRatio float64

	// exactly one of csr and dense holds the centred points
	csr   *sparse.CSR
	dense *mat.Dense

	projection *Projection
	hashes     []*bitset.BitSet

	DistFunc DistanceFunction

	truth  cmap.ConcurrentMap[string, []int]
	rng    *rand.Rand
	logger *slog.Logger

	mu     sync.Mutex
	allAPs []float64
}

// New centres data, samples a projection and computes the hash code of every
// point.
//
// A *sparse.CSR input is centred in place. Any other sparse layout is
// rejected with an InvalidFormatError. Dense input is copied before centering.
//
// Every hash code has at least hashLength bits set: all activations equal to
// the hashLength-th largest are kept, so ties at the cutoff add bits.
func New(data mat.Matrix, hashLength int, samplingRatio float64, embeddingSize int, opts ...Option) (*FlyIndex, error) {
	start := time.Now()

	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	csr, isSparse, err := classify(data)
	if err != nil {
		return nil, err
	}
	n, d := data.Dims()
	if err := checkRange("points", n, 1, maxInt); err != nil {
		return nil, err
	}
	if err := checkRange("dimensions", d, 1, maxInt); err != nil {
		return nil, err
	}
	if err := checkRange("hashLength", hashLength, 1, maxInt); err != nil {
		return nil, err
	}
	if embeddingSize < hashLength {
		return nil, &DimensionMismatchError{What: "embedding size below hash length", Expected: hashLength, Actual: embeddingSize}
	}

	proj := o.projection
	if proj == nil {
		proj, err = SampleProjection(o.random(), d, embeddingSize, samplingRatio)
		if err != nil {
			return nil, err
		}
	}
	pr, pc := proj.Dims()
	if pr != d {
		return nil, &DimensionMismatchError{What: "projection rows vs point columns", Expected: d, Actual: pr}
	}
	if pc < hashLength {
		return nil, &DimensionMismatchError{What: "projection columns below hash length", Expected: hashLength, Actual: pc}
	}
	if pc != embeddingSize {
		return nil, &DimensionMismatchError{What: "projection columns vs embedding size", Expected: embeddingSize, Actual: pc}
	}

	h := &FlyIndex{
		n:             n,
		d:             d,
		hashLength:    hashLength,
		embeddingSize: embeddingSize,
		samplingRatio: samplingRatio,
		projection:    proj,
		DistFunc:      o.distFunc,
		truth:         cmap.New[[]int](),
		rng:           o.rng,
		logger:        o.logger,
	}

	if isSparse {
		if err := CenterSparseInPlace(csr); err != nil {
			return nil, err
		}
		h.csr = csr
	} else {
		h.dense = CenterDenseCopy(data)
	}

	act, err := h.activations(o.workers)
	if err != nil {
		return nil, err
	}
	h.hashes = make([]*bitset.BitSet, n)
	if o.workers == 1 {
		h.sequentialBinarize(act)
	} else {
		h.concurrentBinarize(act, o.workers)
	}

	h.logger.Info("flylsh index built",
		"points", n,
		"dimensions", d,
		"embedding_size", embeddingSize,
		"hash_length", hashLength,
		"sparse", isSparse,
		"elapsed", time.Since(start),
	)
	return h, nil
}

// activations returns the N×m product of the centred points and the projection.
func (h *FlyIndex) activations(workers int) (*mat.Dense, error) {
	m := h.embeddingSize
	act := mat.NewDense(h.n, m, nil)

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for lo := 0; lo < h.n; lo += rowBlock {
		lo := lo
		hi := min(lo+rowBlock, h.n)
		g.Go(func() error {
			if h.csr == nil {
				dst := act.Slice(lo, hi, 0, m).(*mat.Dense)
				dst.Mul(h.dense.Slice(lo, hi, 0, h.d), h.projection.weights)
				return nil
			}
			raw := h.csr.RawMatrix()
			for i := lo; i < hi; i++ {
				row := act.RawRowView(i)
				for p := raw.Indptr[i]; p < raw.Indptr[i+1]; p++ {
					v := raw.Data[p]
					for _, c := range h.projection.active[raw.Ind[p]] {
						row[c] += v
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute activations: %w", err)
	}
	return act, nil
}

func (h *FlyIndex) binarizeWorker(workChan chan int, act *mat.Dense, wg *sync.WaitGroup) {
	scratch := make([]float64, h.embeddingSize)
	for row := range workChan {
		h.hashes[row] = topK(act.RawRowView(row), h.hashLength, scratch)
		wg.Done()
	}
}

func (h *FlyIndex) concurrentBinarize(act *mat.Dense, workers int) {
	workChan := make(chan int, workers*2)
	wg := &sync.WaitGroup{}

	for i := 0; i < workers; i++ {
		go h.binarizeWorker(workChan, act, wg)
	}
	for row := 0; row < h.n; row++ {
		wg.Add(1)
		workChan <- row
	}

	wg.Wait()
	close(workChan)
}

func (h *FlyIndex) sequentialBinarize(act *mat.Dense) {
	scratch := make([]float64, h.embeddingSize)
	for row := 0; row < h.n; row++ {
		h.hashes[row] = topK(act.RawRowView(row), h.hashLength, scratch)
	}
}

// topK sets a bit for every activation at or above the k-th largest one.
func topK(activations []float64, k int, scratch []float64) *bitset.BitSet {
	copy(scratch, activations)
	sort.Float64s(scratch)
	threshold := scratch[len(scratch)-k]

	b := bitset.New(uint(len(activations)))
	for j, v := range activations {
		if v >= threshold {
			b.Set(uint(j))
		}
	}
	return b
}

// Query returns the neighborCount points whose hash codes are closest in
// Hamming distance to the code of queryIndex. The first entry of the sorted
// order is assumed to be the query itself and is always dropped. Equal
// distances keep index order.
func (h *FlyIndex) Query(queryIndex, neighborCount int) ([]int, error) {
	if err := h.checkQuery(queryIndex, neighborCount); err != nil {
		return nil, err
	}
	q := h.hashes[queryIndex]
	dist := make([]uint, h.n)
	for i, c := range h.hashes {
		dist[i] = q.SymmetricDifferenceCardinality(c)
	}
	return nearest(dist, neighborCount), nil
}

// HammingDistance returns the number of differing bits between the codes of
// points i and j.
func (h *FlyIndex) HammingDistance(i, j int) (int, error) {
	if err := checkRange("index", i, 0, h.n-1); err != nil {
		return 0, err
	}
	if err := checkRange("index", j, 0, h.n-1); err != nil {
		return 0, err
	}
	return int(h.hashes[i].SymmetricDifferenceCardinality(h.hashes[j])), nil
}

func (h *FlyIndex) checkQuery(queryIndex, neighborCount int) error {
	if err := checkRange("queryIndex", queryIndex, 0, h.n-1); err != nil {
		return err
	}
	return checkRange("neighborCount", neighborCount, 1, h.n-1)
}

// nearest sorts all indices by ascending distance, stable on index order, and
// returns the n entries after the first.
func nearest[T cmp.Ordered](dist []T, n int) []int {
	idx := make([]int, len(dist))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(dist[a], dist[b])
	})
	return idx[1 : n+1]
}

// Len returns the number of indexed points.
func (h *FlyIndex) Len() int { return h.n }

// Dims returns the dimensionality of the indexed points.
func (h *FlyIndex) Dims() int { return h.d }

func (h *FlyIndex) HashLength() int { return h.hashLength }

func (h *FlyIndex) EmbeddingSize() int { return h.embeddingSize }

func (h *FlyIndex) Sparse() bool { return h.csr != nil }

func (h *FlyIndex) Projection() *Projection { return h.projection }

// HashCode returns a copy of the code of point i.
func (h *FlyIndex) HashCode(i int) *bitset.BitSet {
	return h.hashes[i].Clone()
}

// Point returns a copy of the centred coordinates of point i.
func (h *FlyIndex) Point(i int) []float64 {
	buf := make([]float64, h.d)
	copy(buf, h.row(i, buf))
	return buf
}

// row returns point i, using buf as storage for sparse rows. The result may
// alias the index's storage.
func (h *FlyIndex) row(i int, buf []float64) []float64 {
	if h.csr == nil {
		return h.dense.RawRowView(i)
	}
	return scatterRow(h.csr, i, buf)
}

func (h *FlyIndex) Stats() string {
	var str strings.Builder
	str.WriteString("Fly-LSH Index\n")
	str.WriteString(fmt.Sprintf("Points: %v, dimensions: %v, sparse: %v\n", h.n, h.d, h.Sparse()))
	str.WriteString(fmt.Sprintf("Embedding size: %v, hash length: %v\n", h.embeddingSize, h.hashLength))
	str.WriteString(fmt.Sprintf("Projection density: %.4f (requested %v)\n", h.projection.Density(), h.samplingRatio))

	minBits, maxBits, total := h.embeddingSize, 0, 0
	for _, b := range h.hashes {
		c := int(b.Count())
		minBits = min(minBits, c)
		maxBits = max(maxBits, c)
		total += c
	}
	str.WriteString(fmt.Sprintf("Bits per code: min %v, max %v, avg %.2f\n", minBits, maxBits, float64(total)/float64(h.n)))
	memoryUse := h.n * ((h.embeddingSize + 63) / 64) * 8
	str.WriteString(fmt.Sprintf("Memory use for codes: %v (%v bytes / point)\n", memoryUse, memoryUse/h.n))

	return str.String()
}
