// Package local implements the storage contract on top of the local
// filesystem. It backs the upload-source picker and doubles as the
// reference backend for round-trip tests.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ftpc/ftpc/internal/storage"
)

// Backend is a local-disk storage implementation. Connect and Close are
// no-ops; the filesystem is always available.
type Backend struct {
	name string
}

// New returns a local filesystem backend.
func New() *Backend {
	return &Backend{name: "Local Storage"}
}

// Name implements storage.Storage.
func (b *Backend) Name() string {
	return b.name
}

// Connect implements storage.Storage.
func (b *Backend) Connect(ctx context.Context) error {
	return nil
}

// Close implements storage.Storage.
func (b *Backend) Close() error {
	return nil
}

// List implements storage.Storage. Entries that cannot be stat'd (races,
// permission holes) are skipped rather than failing the whole listing.
func (b *Backend) List(ctx context.Context, dir string) ([]storage.Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrListing, dir, err)
	}

	result := make([]storage.Entry, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if entry.IsDir() {
			result = append(result, storage.DirEntry(entry.Name(), info.ModTime()))
		} else {
			result = append(result, storage.FileEntry(entry.Name(), info.Size(), info.ModTime()))
		}
	}
	return result, nil
}

// Download implements storage.Storage.
func (b *Backend) Download(ctx context.Context, remotePath, localPath string, progress storage.Progress) error {
	return b.copyFile(ctx, remotePath, localPath, progress)
}

// Upload implements storage.Storage.
func (b *Backend) Upload(ctx context.Context, localPath, remotePath string, progress storage.Progress) error {
	return b.copyFile(ctx, localPath, remotePath, progress)
}

func (b *Backend) copyFile(ctx context.Context, src, dst string, progress storage.Progress) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer out.Close()

	if _, err := storage.CopyWithProgress(ctx, out, in, progress); err != nil {
		// Partial file stays in place; the caller decides what to do with it.
		return err
	}
	return out.Sync()
}

// Delete implements storage.Storage. Directories are never deleted.
func (b *Backend) Delete(ctx context.Context, remotePath string) (bool, error) {
	info, err := os.Stat(remotePath)
	if err != nil || info.IsDir() {
		return false, nil
	}
	if err := os.Remove(remotePath); err != nil {
		return false, nil
	}
	return true, nil
}

// Mkdir implements storage.Storage.
func (b *Backend) Mkdir(ctx context.Context, remotePath string) (bool, error) {
	if err := os.Mkdir(filepath.Clean(remotePath), 0o755); err != nil {
		return false, nil
	}
	return true, nil
}
