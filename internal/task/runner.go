// Package task bridges the single-threaded terminal loop and the blocking
// storage operations. A Runner owns one background worker goroutine for the
// lifetime of a session; the foreground submits operations and polls the
// returned handle while it keeps servicing input events.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Runner lifecycle errors.
var (
	ErrAlreadyStarted = errors.New("task runner already started")
	ErrNotStarted     = errors.New("task runner not started")
)

// ErrTimeout is returned by Handle.Result when the wait deadline expires
// before the operation settles.
var ErrTimeout = errors.New("timed out waiting for task result")

// Operation is a unit of work executed on the background worker. The context
// is cancelled when the handle is cancelled or the runner stops.
type Operation func(ctx context.Context) (interface{}, error)

type job struct {
	op     Operation
	handle *Handle
}

// Runner executes operations on a single background worker goroutine.
// Exactly one operation runs at a time; the UI is modal and never submits a
// second operation before the first settles, so no queue depth beyond a
// small channel buffer is needed.
type Runner struct {
	mu      sync.Mutex
	jobs    chan job
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
}

// NewRunner returns a runner that has not been started yet.
func NewRunner() *Runner {
	return &Runner{}
}

// Start spins up the background worker. Calling Start twice returns
// ErrAlreadyStarted, even after Stop.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.jobs = make(chan job, 1)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.started = true

	go r.workerLoop(ctx)
	return nil
}

// Running reports whether the worker is accepting operations.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.stopped
}

// Submit schedules an operation on the worker and returns its handle without
// blocking. Returns ErrNotStarted when the worker is not running.
func (r *Runner) Submit(op Operation) (*Handle, error) {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return nil, ErrNotStarted
	}
	jobs := r.jobs
	r.mu.Unlock()

	h := newHandle()
	jobs <- job{op: op, handle: h}
	return h, nil
}

// Stop signals the worker to exit and waits up to timeout for it to finish.
// If the worker is still busy when the timeout expires the goroutine is
// detached and left to die with the process; this leaks the in-flight
// operation but never deadlocks shutdown. Idempotent.
func (r *Runner) Stop(timeout time.Duration) {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.cancel()
	close(r.jobs)
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}

func (r *Runner) workerLoop(ctx context.Context) {
	defer close(r.done)
	for j := range r.jobs {
		r.execute(ctx, j)
	}
}

// execute runs one job, converting panics into the handle's error result so
// a faulty backend can never take down the worker.
func (r *Runner) execute(ctx context.Context, j job) {
	defer func() {
		if rec := recover(); rec != nil {
			j.handle.complete(nil, fmt.Errorf("task panicked: %v", rec))
		}
	}()

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	j.handle.bind(cancel)

	result, err := j.op(opCtx)
	if err == nil && opCtx.Err() != nil {
		err = context.Canceled
	}
	j.handle.complete(result, err)
}

// Handle tracks one submitted operation. It is the only object shared
// between the foreground and the worker: the worker completes it, the
// foreground polls and cancels it.
type Handle struct {
	mu        sync.Mutex
	settled   chan struct{}
	result    interface{}
	err       error
	cancelOp  context.CancelFunc
	cancelReq bool
}

func newHandle() *Handle {
	return &Handle{settled: make(chan struct{})}
}

func (h *Handle) bind(cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelOp = cancel
	if h.cancelReq {
		cancel()
	}
}

func (h *Handle) complete(result interface{}, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.settled:
		return
	default:
	}
	h.result = result
	h.err = err
	close(h.settled)
}

// Done reports whether the operation has settled.
func (h *Handle) Done() bool {
	select {
	case <-h.settled:
		return true
	default:
		return false
	}
}

// Cancel requests cancellation of the operation's context. The operation
// observes it at its next chunk boundary; Cancel never blocks.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelReq = true
	if h.cancelOp != nil {
		h.cancelOp()
	}
}

// CancelRequested reports whether Cancel was called on this handle.
func (h *Handle) CancelRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelReq
}

// Result blocks until the operation settles or the timeout expires.
// A zero timeout waits forever.
func (h *Handle) Result(timeout time.Duration) (interface{}, error) {
	if timeout <= 0 {
		<-h.settled
		return h.result, h.err
	}
	select {
	case <-h.settled:
		return h.result, h.err
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}
