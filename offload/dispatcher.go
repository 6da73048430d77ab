package offload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/hashwork/hashwork/codec"
	"github.com/hashwork/hashwork/internal/fs"
)

// Executor runs one hashing request to completion. It is the seam between
// the public hashing surface and the offload machinery: the Dispatcher
// offloads to the background worker, SyncExecutor computes on the calling
// goroutine, and tests substitute fakes that settle synchronously. The
// strategy is chosen once at construction and fixed for process lifetime.
type Executor interface {
	Execute(ctx context.Context, req Request) ([]byte, error)
}

// ContextFaultError reports a fault in the background worker itself, not
// attributable to any single task. It poisons the offload subsystem: every
// in-flight task is rejected with it and all later dispatches fail fast.
type ContextFaultError struct {
	Cause error
}

func (e *ContextFaultError) Error() string {
	return fmt.Sprintf("offload context fault: %v", e.Cause)
}

func (e *ContextFaultError) Unwrap() error { return e.Cause }

// Options configure a Dispatcher or SyncExecutor.
type Options struct {
	// FS is the file system used by hashFile handlers. Defaults to the
	// local file system.
	FS fs.FileSystem

	// Codec encodes error frames crossing the worker boundary. Defaults to
	// codec.Default.
	Codec codec.Codec

	// Logger receives lifecycle and protocol-violation logs. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// MmapThreshold is the minimum file size hashed through a read-only
	// mapping instead of buffered reads. Zero disables mapping.
	MmapThreshold int64
}

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.FS == nil {
		out.FS = fs.Default
	}
	if out.Codec == nil {
		out.Codec = codec.Default
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return out
}

// Dispatcher is the offloaded strategy: it correlates requests and
// responses across the worker boundary through a task registry. Safe for
// concurrent use.
type Dispatcher struct {
	registry *Registry
	worker   *Worker
	logger   *slog.Logger

	fault atomic.Pointer[ContextFaultError]
}

// NewDispatcher creates a Dispatcher. The background worker is not started
// until the first Execute call.
func NewDispatcher(opts *Options) *Dispatcher {
	o := opts.withDefaults()
	d := &Dispatcher{
		registry: NewRegistry(o.Logger),
		logger:   o.Logger,
	}
	d.worker = newWorker(env{fs: o.FS, mmapThreshold: o.MmapThreshold}, o.Codec, o.Logger)
	return d
}

// Execute registers a task, ensures the worker is live, sends the request
// and awaits settlement. Exactly one message round-trip per task; no
// retries, no ordering guarantee across concurrent tasks.
//
// ctx aborts only the wait: a dispatched task runs to completion either
// way. After a context fault, Execute fails fast with the fault.
func (d *Dispatcher) Execute(ctx context.Context, req Request) ([]byte, error) {
	if f := d.fault.Load(); f != nil {
		return nil, f
	}

	id, task := d.registry.Register()
	d.worker.ensureStarted(d.onResponse, d.onFault)
	d.worker.send(message{id: id, req: req})

	// A fault that landed between the entry check and the send may have
	// drained the registry before this task was registered; settle it with
	// the fault rather than waiting on a dead worker. Settle is idempotent,
	// so racing with the drain is harmless.
	if f := d.fault.Load(); f != nil {
		if d.registry.Settle(id, Outcome{Err: f}) {
			d.worker.refs.Add(-1)
		}
	}

	return task.Await(ctx)
}

// Worker exposes the lifecycle state for exit-eligibility decisions and
// tests.
func (d *Dispatcher) Worker() *Worker { return d.worker }

// InFlight returns the number of unsettled tasks.
func (d *Dispatcher) InFlight() int { return d.registry.Len() }

// onResponse is the message listener: it settles the matching registry
// entry, decoding error frames back into reconstructed errors. The worker
// becomes unreferenced the instant a response drains the registry.
func (d *Dispatcher) onResponse(resp response) {
	out := Outcome{Value: resp.value}
	if resp.errFrame != nil {
		decoded, err := DecodeFrame(d.worker.codec, resp.errFrame)
		if err != nil {
			// A frame produced by the worker-side codec must decode with
			// the same codec; failure here means the boundary itself is
			// broken.
			panic(fmt.Sprintf("decode error frame for task %d: %v", resp.id, err))
		}
		out = Outcome{Err: decoded}
	}

	if d.registry.Settle(resp.id, out) {
		// The worker becomes unreferenced the instant a settlement drains
		// the last outstanding task.
		d.worker.refs.Add(-1)
	}
}

// onFault poisons the subsystem: the fault is recorded for future
// dispatches and every in-flight task is rejected with it.
func (d *Dispatcher) onFault(cause error) {
	fault := &ContextFaultError{Cause: cause}
	d.fault.Store(fault)
	d.logger.Error("offload worker faulted", "error", cause)

	for _, t := range d.registry.drain() {
		t.done <- Outcome{Err: fault}
	}
	d.worker.refs.Store(0)
}

// SyncExecutor is the capability-absent strategy: the same request contract
// computed directly on the calling goroutine.
type SyncExecutor struct {
	env env
}

// NewSyncExecutor creates a SyncExecutor.
func NewSyncExecutor(opts *Options) *SyncExecutor {
	o := opts.withDefaults()
	return &SyncExecutor{env: env{fs: o.FS, mmapThreshold: o.MmapThreshold}}
}

// Execute runs the request on the calling goroutine.
func (s *SyncExecutor) Execute(ctx context.Context, req Request) ([]byte, error) {
	return s.env.run(ctx, req)
}
