package hashwork

import (
	"context"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hashwork/hashwork/digest"
	"github.com/hashwork/hashwork/internal/source"
	"github.com/hashwork/hashwork/offload"
)

// Hashwork is a configured hashing instance. The executor strategy
// (offloaded dispatcher or same-goroutine) is selected once at construction
// and fixed for the instance lifetime; the background worker, if any, is
// created lazily on the first offloaded call and reused until process exit.
//
// All methods are safe for concurrent use.
type Hashwork struct {
	cfg      config
	executor offload.Executor
	syncExec *offload.SyncExecutor
}

// New creates a Hashwork instance.
func New(opts ...Option) *Hashwork {
	cfg := defaultConfig().apply(opts)

	offloadOpts := &offload.Options{
		FS:            cfg.fs,
		Codec:         cfg.codec,
		Logger:        cfg.logger.Logger,
		MmapThreshold: cfg.mmapThreshold,
	}

	h := &Hashwork{
		cfg:      cfg,
		syncExec: offload.NewSyncExecutor(offloadOpts),
	}
	switch {
	case cfg.executor != nil:
		h.executor = cfg.executor
	case cfg.offloadDisabled:
		h.executor = h.syncExec
	default:
		h.executor = offload.NewDispatcher(offloadOpts)
	}
	return h
}

// defaultInstance is the process-wide instance behind the package-level
// functions: created on first use, never torn down.
var (
	defaultOnce     sync.Once
	defaultInstance *Hashwork
)

// Default returns the process-wide default instance, creating it on first
// use.
func Default() *Hashwork {
	defaultOnce.Do(func() {
		defaultInstance = New()
	})
	return defaultInstance
}

// Hash digests a single buffer on the calling goroutine.
func (h *Hashwork) Hash(data []byte, opts ...Option) (Digest, error) {
	return h.HashParts([][]byte{data}, opts...)
}

// HashString digests the UTF-8 bytes of s on the calling goroutine.
func (h *Hashwork) HashString(s string, opts ...Option) (Digest, error) {
	cfg := h.cfg.apply(opts)
	start := time.Now()

	hasher, err := digest.New(cfg.algorithm)
	if err != nil {
		cfg.metrics.RecordHash(cfg.algorithm, 0, time.Since(start), err)
		return nil, err
	}
	hasher.UpdateString(s)
	sum := hasher.Finalize()
	cfg.metrics.RecordHash(cfg.algorithm, int64(len(s)), time.Since(start), nil)
	return Digest(sum), nil
}

// HashParts digests an ordered sequence of parts as if they were one
// concatenated buffer, without allocating the concatenation.
func (h *Hashwork) HashParts(parts [][]byte, opts ...Option) (Digest, error) {
	cfg := h.cfg.apply(opts)
	start := time.Now()

	hasher, err := digest.New(cfg.algorithm)
	if err != nil {
		cfg.metrics.RecordHash(cfg.algorithm, 0, time.Since(start), err)
		return nil, err
	}
	var n int64
	for _, part := range parts {
		hasher.Update(part)
		n += int64(len(part))
	}
	sum := hasher.Finalize()
	cfg.metrics.RecordHash(cfg.algorithm, n, time.Since(start), nil)
	return Digest(sum), nil
}

// HashAsync digests data through the configured executor. With the default
// dispatcher the computation runs on the background worker and only the
// calling goroutine suspends; ctx aborts the wait, not the task.
func (h *Hashwork) HashAsync(ctx context.Context, data []byte, opts ...Option) (Digest, error) {
	cfg := h.cfg.apply(opts)
	return h.execute(ctx, cfg, offload.Request{
		Method:    offload.MethodHash,
		Algorithm: cfg.algorithm,
		Payload:   data,
	})
}

// HashReader consumes r to end-of-input on the calling goroutine, feeding
// each chunk to the hasher as it arrives. A nil reader fails with
// ErrInvalidInput; a source read error aborts the operation with that error
// and no partial result.
func (h *Hashwork) HashReader(ctx context.Context, r io.Reader, opts ...Option) (Digest, error) {
	if r == nil {
		return nil, invalidInputf("expected a stream, got nil reader")
	}
	cfg := h.cfg.apply(opts)
	start := time.Now()

	hasher, err := digest.New(cfg.algorithm)
	if err != nil {
		cfg.metrics.RecordHash(cfg.algorithm, 0, time.Since(start), err)
		return nil, err
	}

	src := source.NewRateLimited(ctx, r, cfg.readLimit)
	if cfg.decompress {
		if src, err = source.NewAutoDecompressor(src); err != nil {
			cfg.metrics.RecordHash(cfg.algorithm, 0, time.Since(start), err)
			return nil, err
		}
	}

	n, err := hasher.ReadFrom(src)
	cfg.metrics.RecordHash(cfg.algorithm, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return Digest(hasher.Finalize()), nil
}

// HashFile digests the file at path through the configured executor.
func (h *Hashwork) HashFile(ctx context.Context, path string, opts ...Option) (Digest, error) {
	cfg := h.cfg.apply(opts)
	return h.execute(ctx, cfg, offload.Request{
		Method:     offload.MethodHashFile,
		Algorithm:  cfg.algorithm,
		Path:       path,
		ReadLimit:  cfg.readLimit,
		Decompress: cfg.decompress,
	})
}

// HashFileSync digests the file at path on the calling goroutine.
func (h *Hashwork) HashFileSync(path string, opts ...Option) (Digest, error) {
	cfg := h.cfg.apply(opts)
	start := time.Now()
	sum, err := h.syncExec.Execute(context.Background(), offload.Request{
		Method:     offload.MethodHashFile,
		Algorithm:  cfg.algorithm,
		Path:       path,
		ReadLimit:  cfg.readLimit,
		Decompress: cfg.decompress,
	})
	cfg.metrics.RecordHash(cfg.algorithm, 0, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return Digest(sum), nil
}

// HashFiles digests several files concurrently through the configured
// executor and returns a path-to-digest map. The first failure cancels the
// remaining waits and is returned.
func (h *Hashwork) HashFiles(ctx context.Context, paths []string, opts ...Option) (map[string]Digest, error) {
	results := make(map[string]Digest, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			sum, err := h.HashFile(ctx, path, opts...)
			if err != nil {
				return err
			}
			mu.Lock()
			results[path] = sum
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Executor exposes the configured executor strategy.
func (h *Hashwork) Executor() offload.Executor { return h.executor }

func (h *Hashwork) execute(ctx context.Context, cfg config, req offload.Request) (Digest, error) {
	start := time.Now()
	sum, err := h.executor.Execute(ctx, req)
	cfg.metrics.RecordOffload(string(req.Method), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return Digest(sum), nil
}

// Hash digests a single buffer using the default instance.
func Hash(data []byte, opts ...Option) (Digest, error) {
	return Default().Hash(data, opts...)
}

// HashString digests a string using the default instance.
func HashString(s string, opts ...Option) (Digest, error) {
	return Default().HashString(s, opts...)
}

// HashParts digests an ordered part sequence using the default instance.
func HashParts(parts [][]byte, opts ...Option) (Digest, error) {
	return Default().HashParts(parts, opts...)
}

// HashAsync digests a buffer on the default instance's background worker.
func HashAsync(ctx context.Context, data []byte, opts ...Option) (Digest, error) {
	return Default().HashAsync(ctx, data, opts...)
}

// HashReader digests a stream using the default instance.
func HashReader(ctx context.Context, r io.Reader, opts ...Option) (Digest, error) {
	return Default().HashReader(ctx, r, opts...)
}

// HashFile digests a file on the default instance's background worker.
func HashFile(ctx context.Context, path string, opts ...Option) (Digest, error) {
	return Default().HashFile(ctx, path, opts...)
}

// HashFileSync digests a file on the calling goroutine using the default
// instance.
func HashFileSync(path string, opts ...Option) (Digest, error) {
	return Default().HashFileSync(path, opts...)
}

// HashFiles digests several files concurrently using the default instance.
func HashFiles(ctx context.Context, paths []string, opts ...Option) (map[string]Digest, error) {
	return Default().HashFiles(ctx, paths, opts...)
}
