package hashwork

import (
	"github.com/hashwork/hashwork/codec"
	"github.com/hashwork/hashwork/internal/fs"
	"github.com/hashwork/hashwork/offload"
)

// DefaultAlgorithm is used when no algorithm option is given.
const DefaultAlgorithm = "sha512"

// DefaultMmapThreshold is the minimum file size hashed through a read-only
// memory mapping on the plain (undecorated) file path.
const DefaultMmapThreshold int64 = 4 << 20

type config struct {
	algorithm  string
	encoding   Encoding
	readLimit  int
	decompress bool

	mmapThreshold int64
	logger        *Logger
	metrics       MetricsCollector
	codec         codec.Codec
	fs            fs.FileSystem

	executor        offload.Executor
	offloadDisabled bool
}

func defaultConfig() config {
	return config{
		algorithm:     DefaultAlgorithm,
		encoding:      EncodingHex,
		mmapThreshold: DefaultMmapThreshold,
		logger:        NoopLogger(),
		metrics:       NoopMetricsCollector{},
		fs:            fs.Default,
	}
}

func (c config) apply(opts []Option) config {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures an instance at construction or a single operation at
// call time. Per-call options override the instance configuration for that
// call only; lifecycle options (logger, metrics, executor) only take effect
// at construction.
type Option func(*config)

// WithAlgorithm selects the hash algorithm. Unknown names fail when the
// hasher is created, with *UnsupportedAlgorithmError.
func WithAlgorithm(algorithm string) Option {
	return func(c *config) {
		c.algorithm = algorithm
	}
}

// WithEncoding selects the textual rendering used by HashStream.Encoded and
// other encoded outputs. EncodingBuffer means raw bytes.
func WithEncoding(encoding Encoding) Option {
	return func(c *config) {
		c.encoding = encoding
	}
}

// WithReadLimit throttles file and stream reads to roughly bytesPerSec.
// Useful for background integrity sweeps that must not saturate disk
// bandwidth. Zero (the default) means unlimited.
func WithReadLimit(bytesPerSec int) Option {
	return func(c *config) {
		c.readLimit = bytesPerSec
	}
}

// WithAutoDecompress hashes the decompressed content of gzip, zstd and lz4
// sources instead of the container bytes. Unrecognized input is hashed
// as-is.
func WithAutoDecompress() Option {
	return func(c *config) {
		c.decompress = true
	}
}

// WithMmapThreshold sets the minimum file size hashed through a read-only
// memory mapping. Zero disables mapping entirely.
func WithMmapThreshold(n int64) Option {
	return func(c *config) {
		c.mmapThreshold = n
	}
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = NoopLogger()
		}
		c.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(c *config) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		c.metrics = collector
	}
}

// WithCodec configures the codec used for cross-boundary error frames.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) {
		if c == nil {
			c = codec.Default
		}
		cfg.codec = c
	}
}

// WithExecutor substitutes the executor strategy, bypassing the built-in
// dispatcher/sync selection. Intended for tests that need settlement
// without a live background worker.
func WithExecutor(e offload.Executor) Option {
	return func(c *config) {
		c.executor = e
	}
}

// WithOffloadDisabled forces the synchronous strategy: HashAsync and
// HashFile compute on the calling goroutine with identical semantics. The
// strategy is fixed at construction for the instance lifetime.
func WithOffloadDisabled() Option {
	return func(c *config) {
		c.offloadDisabled = true
	}
}

// withFileSystem substitutes the file system. Used by tests to inject read
// faults.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(c *config) {
		if fsys == nil {
			fsys = fs.Default
		}
		c.fs = fsys
	}
}
