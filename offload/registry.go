package offload

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Outcome is the settlement of a task: digest bytes or an error, never both.
type Outcome struct {
	Value []byte
	Err   error
}

// Task is a pending-completion handle for one dispatched request. It is
// owned by the Registry from registration until settlement and settled
// exactly once.
type Task struct {
	id   uint64
	done chan Outcome
}

// ID returns the task id.
func (t *Task) ID() uint64 { return t.id }

// Await blocks until the task settles or ctx is done. A context abort
// abandons the wait only: the task still runs to completion in the worker
// and settles into the buffered channel, so nothing leaks.
func (t *Task) Await(ctx context.Context) ([]byte, error) {
	select {
	case out := <-t.done:
		return out.Value, out.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Registry is the single source of truth for in-flight offloaded tasks,
// keyed by monotonically increasing ids. It is mutated only by the
// dispatcher (registration) and the response listener (settlement); those
// never race for the same id because settlement always follows the
// registration it matches.
type Registry struct {
	nextID atomic.Uint64

	mu    sync.Mutex
	tasks map[uint64]*Task

	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards protocol
// violation warnings.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		tasks:  make(map[uint64]*Task),
		logger: logger,
	}
}

// Register allocates the next id and a pending task handle.
func (r *Registry) Register() (uint64, *Task) {
	id := r.nextID.Add(1)
	t := &Task{id: id, done: make(chan Outcome, 1)}

	r.mu.Lock()
	r.tasks[id] = t
	r.mu.Unlock()

	return id, t
}

// Settle removes the entry for id and delivers the outcome. A response for
// an unknown id is a protocol violation; it is logged and ignored rather
// than allowed to disturb unrelated tasks. Returns whether a task settled.
func (r *Registry) Settle(id uint64, out Outcome) bool {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if ok {
		delete(r.tasks, id)
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Warn("response for unknown task id", "id", id)
		return false
	}
	t.done <- out
	return true
}

// Empty reports whether no tasks are outstanding.
func (r *Registry) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks) == 0
}

// Len returns the number of outstanding tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// drain removes and returns every outstanding task. Used when a context
// fault poisons the subsystem and all in-flight work must be rejected.
func (r *Registry) drain() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]*Task, 0, len(r.tasks))
	for id, t := range r.tasks {
		tasks = append(tasks, t)
		delete(r.tasks, id)
	}
	return tasks
}
