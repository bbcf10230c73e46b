package task

import "sync"

// CancellationToken signals cooperative cancellation to an in-flight
// operation. The foreground thread calls Cancel while the background worker
// polls Cancelled inside its chunk loop, so all access is mutex-guarded.
type CancellationToken struct {
	mu        sync.Mutex
	cancelled bool
}

// NewCancellationToken returns a token in the not-cancelled state.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Cancel requests cancellation. Safe to call more than once.
func (t *CancellationToken) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
}

// Cancelled reports whether cancellation has been requested.
func (t *CancellationToken) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Reset clears the flag so the token can be reused.
func (t *CancellationToken) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = false
}
