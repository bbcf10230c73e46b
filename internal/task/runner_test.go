package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSubmitBeforeStart(t *testing.T) {
	r := NewRunner()

	_, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestStartTwice(t *testing.T) {
	r := NewRunner()
	defer r.Stop(time.Second)

	if err := r.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := r.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestSubmitAndResult(t *testing.T) {
	r := NewRunner()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(time.Second)

	h, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	result, err := h.Result(time.Second)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if result.(int) != 42 {
		t.Errorf("expected 42, got %v", result)
	}
	if !h.Done() {
		t.Error("handle should be done after Result returns")
	}
}

func TestOperationError(t *testing.T) {
	r := NewRunner()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(time.Second)

	opErr := errors.New("backend exploded")
	h, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		return nil, opErr
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := h.Result(time.Second); !errors.Is(err, opErr) {
		t.Errorf("expected operation error, got %v", err)
	}
}

func TestPanicBecomesError(t *testing.T) {
	r := NewRunner()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(time.Second)

	h, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		panic("unexpected fault")
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, resErr := h.Result(time.Second)
	if resErr == nil {
		t.Fatal("expected error from panicking operation")
	}

	// Worker must survive the panic and keep executing.
	h2, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Submit after panic failed: %v", err)
	}
	result, err := h2.Result(time.Second)
	if err != nil || result.(string) != "ok" {
		t.Errorf("worker did not recover: result=%v err=%v", result, err)
	}
}

func TestHandleCancel(t *testing.T) {
	r := NewRunner()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(time.Second)

	started := make(chan struct{})
	h, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	<-started
	h.Cancel()

	if _, err := h.Result(time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !h.CancelRequested() {
		t.Error("CancelRequested should be true after Cancel")
	}
}

func TestResultTimeout(t *testing.T) {
	r := NewRunner()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(time.Second)

	release := make(chan struct{})
	h, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := h.Result(20 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	close(release)
}

func TestStopIdempotent(t *testing.T) {
	r := NewRunner()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	r.Stop(time.Second)
	r.Stop(time.Second) // must not panic or block

	if r.Running() {
		t.Error("Running should be false after Stop")
	}
	if _, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		return nil, nil
	}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Submit after Stop should fail with ErrNotStarted, got %v", err)
	}
}

func TestStopTimeoutDetaches(t *testing.T) {
	r := NewRunner()
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	blocked := make(chan struct{})
	release := make(chan struct{})
	_, err := r.Submit(func(ctx context.Context) (interface{}, error) {
		close(blocked)
		<-release // ignores ctx on purpose
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	<-blocked

	done := make(chan struct{})
	go func() {
		r.Stop(50 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung on a stuck worker instead of detaching")
	}
	close(release)
}
