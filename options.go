package flylsh

import (
	"log/slog"
	"math/rand"
	"time"
)

type options struct {
	logger     *slog.Logger
	workers    int
	rng        *rand.Rand
	projection *Projection
	distFunc   DistanceFunction
}

// Option configures index construction.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		workers:  maxWorkers,
		distFunc: DefaultDistFunc,
	}
}

// WithLogger sets the structured logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers bounds the number of goroutines used while building activations
// and hash codes. Values below 1 select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = maxWorkers
		}
		o.workers = n
	}
}

// WithRand sets the random source used to sample the projection and, when
// FindMAP is called with a nil source, to pick the evaluation window.
//
// Without it the index seeds its own source from the clock and results are
// not reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithProjection uses p instead of sampling a new projection. p must match
// the point set's column count and the requested embedding size.
func WithProjection(p *Projection) Option {
	return func(o *options) {
		o.projection = p
	}
}

// WithDistFunc sets the squared L2 kernel used by TrueNNs. A nil function
// keeps DefaultDistFunc.
func WithDistFunc(f DistanceFunction) Option {
	return func(o *options) {
		if f != nil {
			o.distFunc = f
		}
	}
}

func (o *options) random() *rand.Rand {
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o.rng
}
