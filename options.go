package seqidx

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/seqidx/bitcount"
	"github.com/hupe1980/seqidx/codec"
	"github.com/hupe1980/seqidx/internal/fs"
	"github.com/hupe1980/seqidx/internal/mmap"
)

// AccessPattern is a paging hint for the mapped index file.
type AccessPattern int

const (
	// AccessDefault leaves paging to the kernel.
	AccessDefault AccessPattern = iota
	// AccessRandom suits backward search, which touches rows all over the file.
	AccessRandom
	// AccessSequential suits full scans such as Verify.
	AccessSequential
	// AccessWillNeed prefetches the whole file.
	AccessWillNeed
)

func (p AccessPattern) mmap() mmap.AccessPattern {
	switch p {
	case AccessRandom:
		return mmap.AccessRandom
	case AccessSequential:
		return mmap.AccessSequential
	case AccessWillNeed:
		return mmap.AccessWillNeed
	default:
		return mmap.AccessDefault
	}
}

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	selectIndex      bool
	selectOpts       []bitcount.SelectOption
	access           AccessPattern
	verify           bool
}

// Option configures Open.
type Option func(*options)

// WithCodec requires the header blob to have been written with c.
//
// By default, and if nil is passed, the codec named in the file is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &seqidx.BasicMetricsCollector{}
//	idx, _ := seqidx.Open("reads.bwt", seqidx.WithMetricsCollector(metrics))
//	// ... search ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for open and verify.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSelectIndex builds a sparse select index on every bit-vector at open
// time. It costs one pass over each vector and speeds up Select, which
// Range.GetMatch uses on the sequence table.
func WithSelectIndex(opts ...bitcount.SelectOption) Option {
	return func(o *options) {
		o.selectIndex = true
		o.selectOpts = opts
	}
}

// WithAccessPattern sets the paging hint applied to the mapping.
// The default is AccessRandom.
func WithAccessPattern(p AccessPattern) Option {
	return func(o *options) {
		o.access = p
	}
}

// WithVerify checks the data region checksum during Open, which reads the
// whole file once. A mismatch fails Open with ErrChecksumMismatch.
func WithVerify() Option {
	return func(o *options) {
		o.verify = true
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		access:           AccessRandom,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

const defaultCheckpointInterval = 32

type buildOptions struct {
	interval  uint32
	workers   int
	codec     codec.Codec
	logger    *Logger
	seqStarts bool
	fs        fs.FileSystem
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithCheckpointInterval samples every row whose text position is a
// multiple of k. Larger values give smaller files and longer GetMatch walks.
// Values below 1 are treated as 1.
func WithCheckpointInterval(k uint32) BuildOption {
	return func(o *buildOptions) {
		o.interval = max(k, 1)
	}
}

// WithBuildWorkers sets how many goroutines fill the bit-vectors.
// The default is GOMAXPROCS.
func WithBuildWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		o.workers = max(n, 1)
	}
}

// WithBuildCodec configures the codec used to encode the header blob.
// The codec name is stored in the file, so Open needs no matching option.
func WithBuildCodec(c codec.Codec) BuildOption {
	return func(o *buildOptions) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithBuildLogger configures structured logging for the build.
func WithBuildLogger(logger *Logger) BuildOption {
	return func(o *buildOptions) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithoutSequenceTable omits the sequence-boundary table. GetMatch then
// returns raw text positions, as Locate does.
func WithoutSequenceTable() BuildOption {
	return func(o *buildOptions) {
		o.seqStarts = false
	}
}

func applyBuildOptions(optFns []BuildOption) buildOptions {
	o := buildOptions{
		interval:  defaultCheckpointInterval,
		workers:   runtime.GOMAXPROCS(0),
		codec:     codec.Default,
		logger:    NoopLogger(),
		seqStarts: true,
		fs:        fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
