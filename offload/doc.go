// Package offload implements the background-worker dispatch subsystem.
//
// A single persistent worker goroutine is created lazily on the first
// dispatched request and reused for the remainder of the process; there is
// no teardown path. The Dispatcher correlates requests and responses by
// task id through a Registry of in-flight tasks, each settled exactly once.
// Errors raised inside the worker cross the boundary as encoded frames
// (see Encode/Decode) so the caller receives a reconstructed error with the
// original message, scalar fields, and worker-side stack.
//
// Fault model: an error during a task is delivered to that task alone. A
// fault in the worker loop itself (outside any task handler) poisons the
// whole subsystem for the remainder of the process; in-flight tasks are
// rejected with the fault and later dispatches fail fast. There is no
// supervised restart.
package offload
