package sketchdex

import (
	"log/slog"

	"github.com/hupe1980/sketchdex/codec"
	"github.com/hupe1980/sketchdex/storage"
)

type options struct {
	threshold        float64
	containment      bool
	bestOnly         bool
	thresholdBP      float64
	ignoreAbundance  bool
	workers          int
	storage          storage.Storage
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Search, Gather and OpenDatabase.
type Option func(*options)

// WithThreshold sets the minimum score a Search match needs.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithContainment scores Search matches by the fraction of the query they
// contain instead of by similarity.
func WithContainment(containment bool) Option {
	return func(o *options) {
		o.containment = containment
	}
}

// WithBestOnly restricts each database's Search results to its best
// scoring matches. Databases that cannot drive the search themselves are
// scanned normally.
func WithBestOnly(bestOnly bool) Option {
	return func(o *options) {
		o.bestOnly = bestOnly
	}
}

// WithThresholdBP stops Gather once a match overlaps the original query by
// fewer base pairs.
func WithThresholdBP(bp float64) Option {
	return func(o *options) {
		o.thresholdBP = bp
	}
}

// WithIgnoreAbundance weighs every query hash equally in Gather.
func WithIgnoreAbundance(ignore bool) Option {
	return func(o *options) {
		o.ignoreAbundance = ignore
	}
}

// WithWorkers bounds the goroutines an opened database uses per search.
// Zero means GOMAXPROCS.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithStorage sets the backend NewDatabase attaches to its items and saves
// to.
func WithStorage(st storage.Storage) Option {
	return func(o *options) {
		o.storage = st
	}
}

// WithCodec configures the codec used for signatures and manifests.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector sets a custom metrics collector.
// Pass nil to keep the no-op collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel logs text to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
