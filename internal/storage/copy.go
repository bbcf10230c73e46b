package storage

import (
	"context"
	"io"
)

// CopyWithProgress copies src to dst in TransferChunkSize chunks, invoking
// progress with the cumulative byte count after each chunk. It stops with
// ErrCancelled when progress returns false or the context is cancelled.
// Backends share this loop so every transfer honors the same cancellation
// contract: at most one chunk of extra work after a cancel request.
func CopyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, progress Progress) (int64, error) {
	buf := make([]byte, TransferChunkSize)
	var written int64

	for {
		if ctx.Err() != nil {
			return written, ErrCancelled
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if progress != nil && !progress(written) {
				return written, ErrCancelled
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
