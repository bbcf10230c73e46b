// Package storage defines the operation contract every backend implements
// and the entry records listings produce. The TUI core drives any backend
// through this interface and never touches protocol details.
package storage

import "context"

// TransferChunkSize is the copy buffer size for chunked transfers. Progress
// callbacks and cancellation checks happen once per chunk, so this bounds
// how much extra work a transfer does after a cancel request.
const TransferChunkSize = 128 * 1024

// Progress is called during transfers with the cumulative byte count so far.
// Returning false stops the transfer at the next chunk boundary; any
// partially written local file is left in place for the caller to deal with.
type Progress func(bytesSoFar int64) bool

// Storage is the fixed capability set every backend exposes.
//
// Connect is called exactly once before first use and Close exactly once when
// the session ends, including on error. List either returns the full listing
// or an error wrapping ErrListing, never a partial result. Delete and Mkdir
// report benign failures (not found, permission, wrong kind) as false with a
// nil error; only connection-level faults surface as errors.
type Storage interface {
	// Name returns a human-readable label for the backend. No side effects.
	Name() string

	// Connect establishes the backend connection.
	Connect(ctx context.Context) error

	// Close releases the connection. Safe to call after a failed Connect.
	Close() error

	// List returns the entries at the given absolute path.
	List(ctx context.Context, dir string) ([]Entry, error)

	// Download copies a remote file to a local path, reporting cumulative
	// bytes through progress (may be nil).
	Download(ctx context.Context, remotePath, localPath string, progress Progress) error

	// Upload copies a local file to a remote path, same progress contract.
	Upload(ctx context.Context, localPath, remotePath string, progress Progress) error

	// Delete removes a file. Directories are not deleted.
	Delete(ctx context.Context, remotePath string) (bool, error)

	// Mkdir creates a directory at the given path.
	Mkdir(ctx context.Context, remotePath string) (bool, error)
}
