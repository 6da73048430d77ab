package offload

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hashwork/hashwork/codec"
)

// message is one request crossing into the worker.
type message struct {
	id  uint64
	req Request
}

// response is the worker's answer for one task. Exactly one of value and
// errFrame is set; errFrame is a codec-encoded EncodedError.
type response struct {
	id       uint64
	value    []byte
	errFrame []byte
}

// Worker owns the single persistent background goroutine. It is created
// lazily on the first send and never torn down: once started, the goroutine
// idles between tasks for the remainder of the process. The referenced flag
// tracks whether work is outstanding; it exists so callers deciding on
// process exit (and tests) can observe idleness.
type Worker struct {
	env    env
	codec  codec.Codec
	logger *slog.Logger

	startOnce sync.Once
	requests  chan message

	started atomic.Bool

	// refs counts outstanding tasks: incremented on send, decremented on
	// settlement. The worker is "referenced" while refs > 0.
	refs atomic.Int64
}

func newWorker(e env, c codec.Codec, logger *slog.Logger) *Worker {
	if c == nil {
		c = codec.Default
	}
	return &Worker{
		env:      e,
		codec:    c,
		logger:   logger,
		requests: make(chan message, 64),
	}
}

// ensureStarted transitions Absent to Active on first use. The dispatch
// table is built once, at start; responses flow to sink on a dedicated
// listener path. faultSink receives a context-level fault if the worker
// loop itself fails.
func (w *Worker) ensureStarted(sink func(response), faultSink func(error)) {
	w.startOnce.Do(func() {
		table := w.env.dispatchTable()
		w.started.Store(true)
		go w.loop(table, sink, faultSink)
		w.logger.Debug("offload worker started")
	})
}

// Started reports whether the background goroutine exists yet.
func (w *Worker) Started() bool { return w.started.Load() }

// Referenced reports whether outstanding work is keeping the worker
// referenced. False means the process may exit while the worker idles.
func (w *Worker) Referenced() bool { return w.refs.Load() > 0 }

// send queues one request. The worker becomes referenced the instant work
// is sent, before the message is observable by the loop.
func (w *Worker) send(msg message) {
	w.refs.Add(1)
	w.requests <- msg
}

// loop is the worker body: receive, run the handler, answer. A panic
// escaping the per-task boundary is a context fault: the loop terminates
// permanently and reports the fault instead of restarting.
func (w *Worker) loop(table map[Method]handler, sink func(response), faultSink func(error)) {
	defer func() {
		if r := recover(); r != nil {
			faultSink(fmt.Errorf("worker fault: %v", r))
		}
	}()

	for msg := range w.requests {
		value, err := w.runTask(table, msg.req)

		resp := response{id: msg.id}
		if err != nil {
			frame, encErr := EncodeFrame(w.codec, err)
			if encErr != nil {
				// The error cannot cross the boundary; there is no
				// per-task scope left to attribute this to.
				panic(fmt.Sprintf("encode error frame for task %d: %v", msg.id, encErr))
			}
			resp.errFrame = frame
		} else {
			resp.value = value
		}
		sink(resp)
	}
}

// runTask executes one handler with task-scoped panic isolation: a panic
// inside a handler settles only that task.
func (w *Worker) runTask(table map[Method]handler, req Request) (value []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()

	h, ok := table[req.Method]
	if !ok {
		return nil, fmt.Errorf("unknown method: %q", req.Method)
	}
	// Tasks run to completion once dispatched; there is no per-task
	// cancellation, so the loop context is the background context.
	return h(context.Background(), req)
}
