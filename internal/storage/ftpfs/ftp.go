// Package ftpfs implements the storage contract for FTP and FTPS servers.
package ftpfs

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"os"
	gopath "path"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/ftpc/ftpc/internal/storage"
)

// connectTimeout bounds the initial dial so a dead server surfaces as a
// connection error instead of hanging the selector.
const connectTimeout = 30 * time.Second

// Backend is an FTP/FTPS storage implementation.
type Backend struct {
	name     string
	addr     string
	username string
	password string
	useTLS   bool

	conn *ftp.ServerConn
}

// Option configures a Backend.
type Option func(*Backend)

// WithTLS enables explicit FTPS.
func WithTLS() Option {
	return func(b *Backend) { b.useTLS = true }
}

// WithName overrides the display name (defaults to the address).
func WithName(name string) Option {
	return func(b *Backend) { b.name = name }
}

// New returns an FTP backend for the given address and credentials.
func New(addr, username, password string, opts ...Option) *Backend {
	b := &Backend{
		name:     addr,
		addr:     addr,
		username: username,
		password: password,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements storage.Storage.
func (b *Backend) Name() string {
	return b.name
}

// Connect implements storage.Storage.
func (b *Backend) Connect(ctx context.Context) error {
	dialOpts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(connectTimeout),
	}
	if b.useTLS {
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(&tls.Config{ServerName: hostOnly(b.addr)}))
	}

	conn, err := ftp.Dial(b.addr, dialOpts...)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrConnection, b.addr, err)
	}

	if err := conn.Login(b.username, b.password); err != nil {
		conn.Quit()
		return fmt.Errorf("%w: %v", storage.ErrAuth, err)
	}

	b.conn = conn
	return nil
}

// Close implements storage.Storage.
func (b *Backend) Close() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.Quit()
	b.conn = nil
	return err
}

// List implements storage.Storage. When LIST yields nothing (some servers
// only speak NLST, or emit unparseable formats), it falls back to a name
// list with a per-entry directory probe. The probe costs one round trip per
// entry, so it only runs on the fallback path.
func (b *Backend) List(ctx context.Context, dir string) ([]storage.Entry, error) {
	if b.conn == nil {
		return nil, storage.ErrConnection
	}

	entries, err := b.conn.List(dir)
	if err == nil && len(entries) > 0 {
		result := make([]storage.Entry, 0, len(entries))
		for _, e := range entries {
			if e.Name == "." || e.Name == ".." {
				continue
			}
			switch e.Type {
			case ftp.EntryTypeFolder:
				result = append(result, storage.DirEntry(e.Name, e.Time))
			default:
				result = append(result, storage.FileEntry(e.Name, int64(e.Size), e.Time))
			}
		}
		return result, nil
	}

	names, nlstErr := b.conn.NameList(dir)
	if nlstErr != nil {
		if err == nil {
			err = nlstErr
		}
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrListing, dir, err)
	}

	result := make([]storage.Entry, 0, len(names))
	for _, name := range names {
		base := gopath.Base(name)
		if base == "." || base == ".." {
			continue
		}
		if b.isDirectory(gopath.Join(dir, base)) {
			result = append(result, storage.DirEntry(base, time.Time{}))
		} else {
			result = append(result, storage.Entry{Path: base, Kind: storage.KindFile})
		}
	}
	return result, nil
}

// isDirectory probes a path by attempting to change into it.
func (b *Backend) isDirectory(path string) bool {
	original, err := b.conn.CurrentDir()
	if err != nil {
		return false
	}
	if err := b.conn.ChangeDir(path); err != nil {
		return false
	}
	b.conn.ChangeDir(original)
	return true
}

// Download implements storage.Storage.
func (b *Backend) Download(ctx context.Context, remotePath, localPath string, progress storage.Progress) error {
	if b.conn == nil {
		return storage.ErrConnection
	}

	resp, err := b.conn.Retr(remotePath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer resp.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer out.Close()

	_, err = storage.CopyWithProgress(ctx, out, resp, progress)
	if err != nil && !errors.Is(err, storage.ErrCancelled) {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	return err
}

// Upload implements storage.Storage. Stor consumes the reader internally,
// so cancellation is injected through a reader that fails once progress
// says stop.
func (b *Backend) Upload(ctx context.Context, localPath, remotePath string, progress storage.Progress) error {
	if b.conn == nil {
		return storage.ErrConnection
	}

	in, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer in.Close()

	pr := &progressReader{ctx: ctx, r: in, progress: progress}
	if err := b.conn.Stor(remotePath, pr); err != nil {
		if pr.cancelled {
			return storage.ErrCancelled
		}
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	return nil
}

// Delete implements storage.Storage.
func (b *Backend) Delete(ctx context.Context, remotePath string) (bool, error) {
	if b.conn == nil {
		return false, storage.ErrConnection
	}
	if b.isDirectory(remotePath) {
		return false, nil
	}
	if err := b.conn.Delete(remotePath); err != nil {
		if storage.IsNetworkError(err) {
			return false, fmt.Errorf("%w: %v", storage.ErrConnection, err)
		}
		return false, nil
	}
	return true, nil
}

// Mkdir implements storage.Storage.
func (b *Backend) Mkdir(ctx context.Context, remotePath string) (bool, error) {
	if b.conn == nil {
		return false, storage.ErrConnection
	}
	if err := b.conn.MakeDir(remotePath); err != nil {
		if storage.IsNetworkError(err) {
			return false, fmt.Errorf("%w: %v", storage.ErrConnection, err)
		}
		return false, nil
	}
	return true, nil
}

// progressReader reports cumulative bytes as the FTP library drains it and
// cuts the stream off when progress requests cancellation.
type progressReader struct {
	ctx       context.Context
	r         io.Reader
	progress  storage.Progress
	total     int64
	cancelled bool
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if p.ctx.Err() != nil {
		p.cancelled = true
		return 0, storage.ErrCancelled
	}

	// Cap reads at one chunk so progress granularity matches downloads.
	if len(buf) > storage.TransferChunkSize {
		buf = buf[:storage.TransferChunkSize]
	}

	n, err := p.r.Read(buf)
	if n > 0 {
		p.total += int64(n)
		if p.progress != nil && !p.progress(p.total) {
			p.cancelled = true
			return n, storage.ErrCancelled
		}
	}
	return n, err
}

func hostOnly(addr string) string {
	for i := 0; i < len(addr); i++ {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
