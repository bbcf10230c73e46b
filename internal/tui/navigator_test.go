package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ftpc/ftpc/internal/logging"
	"github.com/ftpc/ftpc/internal/storage"
	"github.com/ftpc/ftpc/internal/task"
)

// stubBackend is an in-memory storage implementation that records which
// operations were invoked.
type stubBackend struct {
	name     string
	listings map[string][]storage.Entry
	listErr  error

	listCalls   []string
	deleteCalls []string
	mkdirCalls  []string
	uploadCalls []string
	deleteOK    bool
	mkdirOK     bool
	uploadErr   error
}

func newStubBackend(name string) *stubBackend {
	return &stubBackend{
		name:     name,
		listings: map[string][]storage.Entry{},
		deleteOK: true,
		mkdirOK:  true,
	}
}

func (s *stubBackend) Name() string                  { return s.name }
func (s *stubBackend) Connect(context.Context) error { return nil }
func (s *stubBackend) Close() error                  { return nil }

func (s *stubBackend) List(ctx context.Context, dir string) ([]storage.Entry, error) {
	s.listCalls = append(s.listCalls, dir)
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listings[dir], nil
}

func (s *stubBackend) Download(ctx context.Context, remotePath, localPath string, progress storage.Progress) error {
	return nil
}

func (s *stubBackend) Upload(ctx context.Context, localPath, remotePath string, progress storage.Progress) error {
	s.uploadCalls = append(s.uploadCalls, remotePath)
	return s.uploadErr
}

func (s *stubBackend) Delete(ctx context.Context, remotePath string) (bool, error) {
	s.deleteCalls = append(s.deleteCalls, remotePath)
	return s.deleteOK, nil
}

func (s *stubBackend) Mkdir(ctx context.Context, remotePath string) (bool, error) {
	s.mkdirCalls = append(s.mkdirCalls, remotePath)
	return s.mkdirOK, nil
}

func newTestNavigator(t *testing.T, backend storage.Storage, initialPath string, newLocal func() storage.Storage) (*navigator, *task.Runner) {
	t.Helper()
	runner := task.NewRunner()
	if err := runner.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { runner.Stop(2 * time.Second) })

	if newLocal == nil {
		newLocal = func() storage.Storage { return newStubBackend("Local Storage") }
	}
	return newNavigator(nil, DefaultStyles(), runner, logging.NewDiscardLogger(), backend, initialPath, t.TempDir(), newLocal), runner
}

func TestHistoryPushPopSymmetry(t *testing.T) {
	backend := newStubBackend("remote")
	backend.listings["/"] = []storage.Entry{storage.DirEntry("b", time.Time{})}
	backend.listings["/b"] = []storage.Entry{storage.FileEntry("inner.txt", 1, time.Time{})}

	nav, _ := newTestNavigator(t, backend, "/", nil)
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := nav.enterDirectory("b"); err != nil {
		t.Fatalf("enterDirectory: %v", err)
	}
	if nav.path != "/b" {
		t.Errorf("path = %q, want /b", nav.path)
	}

	if err := nav.navigateBack(); err != nil {
		t.Fatalf("navigateBack: %v", err)
	}
	if nav.path != "/" {
		t.Errorf("path = %q, want / after back", nav.path)
	}
	if len(nav.history) != 0 {
		t.Errorf("history depth = %d, want 0", len(nav.history))
	}

	// One listing per transition: initial, descend, back.
	want := []string{"/", "/b", "/"}
	if len(backend.listCalls) != len(want) {
		t.Fatalf("listCalls = %v, want %v", backend.listCalls, want)
	}
	for i := range want {
		if backend.listCalls[i] != want[i] {
			t.Errorf("listCalls[%d] = %q, want %q", i, backend.listCalls[i], want[i])
		}
	}
}

func TestNavigateBackEmptyHistoryIsNoop(t *testing.T) {
	backend := newStubBackend("remote")
	nav, _ := newTestNavigator(t, backend, "/", nil)

	if err := nav.navigateBack(); err != nil {
		t.Fatalf("navigateBack: %v", err)
	}
	if len(backend.listCalls) != 0 {
		t.Errorf("listCalls = %v, want none on empty history", backend.listCalls)
	}
}

func TestNavigateToParentAtRootIsNoop(t *testing.T) {
	backend := newStubBackend("remote")
	nav, _ := newTestNavigator(t, backend, "/", nil)

	if err := nav.navigateToParent(); err != nil {
		t.Fatalf("navigateToParent: %v", err)
	}
	if nav.path != "/" {
		t.Errorf("path = %q, want / unchanged", nav.path)
	}
	if len(backend.listCalls) != 0 {
		t.Errorf("listCalls = %v, want none at root", backend.listCalls)
	}
}

func TestNavigateToParent(t *testing.T) {
	backend := newStubBackend("remote")
	nav, _ := newTestNavigator(t, backend, "/a/b", nil)

	if err := nav.navigateToParent(); err != nil {
		t.Fatalf("navigateToParent: %v", err)
	}
	if nav.path != "/a" {
		t.Errorf("path = %q, want /a", nav.path)
	}
	if len(nav.history) != 1 || nav.history[0] != "/a/b" {
		t.Errorf("history = %v, want [/a/b]", nav.history)
	}
}

func TestUploadModeToggleRestoresState(t *testing.T) {
	remote := newStubBackend("remote")
	nav, _ := newTestNavigator(t, remote, "/data", nil)

	if err := nav.enterDirectory("sub"); err != nil {
		t.Fatalf("enterDirectory: %v", err)
	}
	pathBefore := nav.path

	if err := nav.enterUploadMode(); err != nil {
		t.Fatalf("enterUploadMode: %v", err)
	}
	if nav.mode != ModePickUploadSource {
		t.Fatalf("mode = %v, want ModePickUploadSource", nav.mode)
	}
	if nav.parkedBackend == nil || nav.parkedPath != pathBefore {
		t.Errorf("parked state = (%v, %q), want (remote, %q)", nav.parkedBackend, nav.parkedPath, pathBefore)
	}
	if nav.backend == storage.Storage(remote) {
		t.Error("active backend still the remote in upload mode")
	}
	if len(nav.history) != 0 {
		t.Errorf("history = %v, want cleared on mode switch", nav.history)
	}

	if err := nav.exitUploadMode(); err != nil {
		t.Fatalf("exitUploadMode: %v", err)
	}
	if nav.mode != ModeBrowse {
		t.Fatalf("mode = %v, want ModeBrowse", nav.mode)
	}
	if nav.backend != storage.Storage(remote) || nav.path != pathBefore {
		t.Errorf("restored state = (%v, %q), want (remote, %q)", nav.backend, nav.path, pathBefore)
	}
	if nav.parkedBackend != nil || nav.parkedPath != "" {
		t.Error("parked state not cleared in browse mode")
	}
	if len(nav.history) != 0 {
		t.Errorf("history = %v, want cleared on mode switch", nav.history)
	}
}

func TestDeleteRefusesDirectories(t *testing.T) {
	backend := newStubBackend("remote")
	backend.listings["/"] = []storage.Entry{storage.DirEntry("b", time.Time{})}

	nav, _ := newTestNavigator(t, backend, "/", nil)
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := nav.deleteSelected(); err != nil {
		t.Fatalf("deleteSelected: %v", err)
	}
	if len(backend.deleteCalls) != 0 {
		t.Errorf("deleteCalls = %v, want none for a directory", backend.deleteCalls)
	}
	if nav.status != "Cannot delete directories" {
		t.Errorf("status = %q", nav.status)
	}
}

func TestDeleteFile(t *testing.T) {
	backend := newStubBackend("remote")
	backend.listings["/"] = []storage.Entry{storage.FileEntry("doomed.txt", 3, time.Time{})}

	nav, _ := newTestNavigator(t, backend, "/", nil)
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := nav.deleteSelected(); err != nil {
		t.Fatalf("deleteSelected: %v", err)
	}
	if len(backend.deleteCalls) != 1 || backend.deleteCalls[0] != "/doomed.txt" {
		t.Errorf("deleteCalls = %v, want [/doomed.txt]", backend.deleteCalls)
	}
	if nav.status != "Deleted: doomed.txt" {
		t.Errorf("status = %q", nav.status)
	}
}

func TestDeleteFailureSetsStatus(t *testing.T) {
	backend := newStubBackend("remote")
	backend.listings["/"] = []storage.Entry{storage.FileEntry("locked.txt", 3, time.Time{})}
	backend.deleteOK = false

	nav, _ := newTestNavigator(t, backend, "/", nil)
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := nav.deleteSelected(); err != nil {
		t.Fatalf("deleteSelected: %v", err)
	}
	if nav.status != "Failed to delete locked.txt" {
		t.Errorf("status = %q", nav.status)
	}
}

func TestListingFailureIsRecoverable(t *testing.T) {
	backend := newStubBackend("remote")
	backend.listings["/"] = []storage.Entry{storage.FileEntry("a.txt", 1, time.Time{})}

	nav, _ := newTestNavigator(t, backend, "/", nil)
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if nav.list.Len() != 1 {
		t.Fatalf("list has %d elements, want 1", nav.list.Len())
	}

	backend.listErr = fmt.Errorf("%w: /gone: no such directory", storage.ErrListing)
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh with listing failure should not propagate, got %v", err)
	}
	if nav.list.Len() != 0 {
		t.Errorf("list has %d elements, want cleared after failure", nav.list.Len())
	}
	if !strings.Contains(nav.status, "Listing failed") {
		t.Errorf("status = %q, want listing failure message", nav.status)
	}
}

func TestConnectionFailureIsFatal(t *testing.T) {
	backend := newStubBackend("remote")
	backend.listErr = fmt.Errorf("%w: connection reset", storage.ErrConnection)

	nav, _ := newTestNavigator(t, backend, "/", nil)
	err := nav.refresh()
	if err == nil {
		t.Fatal("refresh with connection error should propagate")
	}
	if !errors.Is(err, storage.ErrConnection) {
		t.Errorf("err = %v, want ErrConnection", err)
	}
}

func TestRefreshSortsListing(t *testing.T) {
	backend := newStubBackend("remote")
	backend.listings["/"] = []storage.Entry{
		storage.FileEntry("zebra.txt", 1, time.Time{}),
		storage.FileEntry("apple.txt", 1, time.Time{}),
	}

	nav, _ := newTestNavigator(t, backend, "/", nil)
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := nav.list.Selected().DisplayName(); got != "apple.txt" {
		t.Errorf("first element = %q, want apple.txt", got)
	}
}

func TestUploadSuccessLeavesUploadMode(t *testing.T) {
	remote := newStubBackend("remote")
	remote.listings["/data"] = nil
	localStub := newStubBackend("Local Storage")
	localStub.listings["/"] = []storage.Entry{storage.FileEntry("up.txt", 4, time.Time{})}

	nav, _ := newTestNavigator(t, remote, "/data", func() storage.Storage { return localStub })
	nav.path = "/data"
	if err := nav.enterUploadMode(); err != nil {
		t.Fatalf("enterUploadMode: %v", err)
	}
	nav.path = "/"
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	selected := nav.list.Selected()
	if selected == nil || selected.DisplayName() != "up.txt" {
		t.Fatalf("selected = %v, want up.txt", selected)
	}

	if err := nav.uploadFile(selected); err != nil {
		t.Fatalf("uploadFile: %v", err)
	}
	if len(remote.uploadCalls) != 1 || remote.uploadCalls[0] != "/data/up.txt" {
		t.Errorf("uploadCalls = %v, want [/data/up.txt]", remote.uploadCalls)
	}
	if nav.mode != ModeBrowse {
		t.Errorf("mode = %v, want ModeBrowse after successful upload", nav.mode)
	}
	if nav.backend != storage.Storage(remote) || nav.path != "/data" {
		t.Errorf("state = (%v, %q), want remote at /data", nav.backend, nav.path)
	}
	if !strings.Contains(nav.status, "Uploaded: up.txt") {
		t.Errorf("status = %q", nav.status)
	}
}

func TestUploadErrorStaysInUploadMode(t *testing.T) {
	remote := newStubBackend("remote")
	remote.uploadErr = fmt.Errorf("%w: disk full", storage.ErrTransfer)
	localStub := newStubBackend("Local Storage")
	localStub.listings["/"] = []storage.Entry{storage.FileEntry("up.txt", 4, time.Time{})}

	nav, _ := newTestNavigator(t, remote, "/data", func() storage.Storage { return localStub })
	if err := nav.enterUploadMode(); err != nil {
		t.Fatalf("enterUploadMode: %v", err)
	}
	nav.path = "/"
	if err := nav.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := nav.uploadFile(nav.list.Selected()); err != nil {
		t.Fatalf("uploadFile: %v", err)
	}
	if nav.mode != ModePickUploadSource {
		t.Errorf("mode = %v, want still ModePickUploadSource after failed upload", nav.mode)
	}
	if !strings.Contains(nav.status, "Error uploading up.txt") {
		t.Errorf("status = %q", nav.status)
	}
}

func TestMakeDirectoryHeadlessIsNoop(t *testing.T) {
	backend := newStubBackend("remote")
	nav, _ := newTestNavigator(t, backend, "/", nil)

	if err := nav.makeDirectory(); err != nil {
		t.Fatalf("makeDirectory: %v", err)
	}
	if len(backend.mkdirCalls) != 0 {
		t.Errorf("mkdirCalls = %v, want none without a prompt", backend.mkdirCalls)
	}
}

func TestRunTransferCancelledOutcome(t *testing.T) {
	backend := newStubBackend("remote")
	nav, _ := newTestNavigator(t, backend, "/", nil)

	outcome, err := nav.runTransfer("Downloading", "x", 10, true,
		func(ctx context.Context, progress storage.Progress) error {
			progress(5)
			return storage.ErrCancelled
		})
	if err != nil {
		t.Fatalf("runTransfer: %v", err)
	}
	if outcome != transferCancelled {
		t.Errorf("outcome = %v, want transferCancelled", outcome)
	}
}

func TestRunTransferErrorOutcome(t *testing.T) {
	backend := newStubBackend("remote")
	nav, _ := newTestNavigator(t, backend, "/", nil)

	wantErr := errors.New("wire broke")
	outcome, err := nav.runTransfer("Downloading", "x", 10, true,
		func(ctx context.Context, progress storage.Progress) error {
			return wantErr
		})
	if outcome != transferFailed {
		t.Errorf("outcome = %v, want transferFailed", outcome)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
