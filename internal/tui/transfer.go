package tui

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ftpc/ftpc/internal/storage"
	"github.com/ftpc/ftpc/internal/task"
)

// transferOutcome classifies how a transfer settled.
type transferOutcome int

const (
	transferDone transferOutcome = iota
	transferCancelled
	transferFailed
)

// progressRedrawInterval paces progress dialog repaints while a transfer
// is in flight.
const progressRedrawInterval = 50 * time.Millisecond

// downloadFile runs the confirm, progress, resolve sequence for a
// download into the local working directory.
func (n *navigator) downloadFile(rec DisplayRecord) error {
	name := rec.DisplayName()
	if !n.confirmAction(fmt.Sprintf("Download %s to local directory?", name)) {
		n.status = "Download cancelled"
		return nil
	}

	localPath := filepath.Join(n.localDir, name)
	remotePath := path.Join(n.path, name)
	size, hasSize := rec.SizeBytes()

	backend := n.backend
	outcome, err := n.runTransfer("Downloading", name, size, hasSize,
		func(ctx context.Context, progress storage.Progress) error {
			return backend.Download(ctx, remotePath, localPath, progress)
		})

	switch outcome {
	case transferCancelled:
		n.status = fmt.Sprintf("Download of %s was canceled", name)
	case transferFailed:
		if storage.IsFatal(err) {
			return err
		}
		n.status = fmt.Sprintf("Error downloading %s: %v", name, err)
	default:
		n.log.Info().Str("remote", remotePath).Str("local", localPath).Msg("downloaded")
		n.status = fmt.Sprintf("Downloaded: %s to %s", name, n.localDir)
	}
	return nil
}

// uploadFile runs the transfer sequence for the file selected in pick
// mode, sending it to the parked remote at the parked path. A successful
// upload leaves upload mode.
func (n *navigator) uploadFile(rec DisplayRecord) error {
	name := rec.DisplayName()
	if !n.confirmAction(fmt.Sprintf("Upload %s to remote directory?", name)) {
		n.status = "Upload cancelled"
		return nil
	}

	localPath := filepath.Join(n.path, name)
	remotePath := path.Join(n.parkedPath, name)
	size, hasSize := rec.SizeBytes()

	backend := n.parkedBackend
	outcome, err := n.runTransfer("Uploading", name, size, hasSize,
		func(ctx context.Context, progress storage.Progress) error {
			return backend.Upload(ctx, localPath, remotePath, progress)
		})

	switch outcome {
	case transferCancelled:
		n.status = fmt.Sprintf("Upload of %s was canceled", name)
		return nil
	case transferFailed:
		if storage.IsFatal(err) {
			return err
		}
		n.status = fmt.Sprintf("Error uploading %s: %v", name, err)
		return nil
	}

	n.log.Info().Str("local", localPath).Str("remote", remotePath).Msg("uploaded")
	target := n.parkedPath
	if err := n.exitUploadMode(); err != nil {
		return err
	}
	n.status = fmt.Sprintf("Uploaded: %s to %s", name, target)
	n.updateBars()
	return nil
}

// runTransfer executes one cancellable transfer on the worker while the
// foreground repaints the progress dialog and watches for the cancel
// key. The progress callback runs on the worker and only touches the
// token and an atomic byte counter, never the terminal.
func (n *navigator) runTransfer(title, name string, size int64, hasSize bool, op func(ctx context.Context, progress storage.Progress) error) (transferOutcome, error) {
	token := task.NewCancellationToken()
	var bytesSoFar atomic.Int64

	progress := func(b int64) bool {
		if token.Cancelled() {
			return false
		}
		bytesSoFar.Store(b)
		return true
	}

	h, err := n.runner.Submit(func(ctx context.Context) (interface{}, error) {
		return nil, op(ctx, progress)
	})
	if err != nil {
		return transferFailed, err
	}

	if n.ses != nil {
		dialog := newProgressDialog(n.ses.screen, n.styles, title, name, size, hasSize)
		dialog.draw(0)

		for !h.Done() {
			if ev, ok := n.ses.pollEvent(progressRedrawInterval); ok {
				if key, isKey := ev.(*tcell.EventKey); isKey && isCancelKey(key) {
					token.Cancel()
					h.Cancel()
				}
			}
			dialog.draw(bytesSoFar.Load())
		}
		n.draw()
	}

	_, err = h.Result(0)
	switch {
	case token.Cancelled() || errors.Is(err, storage.ErrCancelled) || errors.Is(err, context.Canceled):
		return transferCancelled, nil
	case err != nil:
		return transferFailed, err
	default:
		return transferDone, nil
	}
}

func isCancelKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape {
		return true
	}
	return ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')
}
