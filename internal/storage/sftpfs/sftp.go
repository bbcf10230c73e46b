// Package sftpfs implements the storage contract over SSH using SFTP.
package sftpfs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/ftpc/ftpc/internal/storage"
)

const connectTimeout = 30 * time.Second

// Backend is an SFTP storage implementation.
type Backend struct {
	name     string
	addr     string
	username string
	password string
	keyFile  string

	sshConn *ssh.Client
	client  *sftp.Client
}

// Option configures a Backend.
type Option func(*Backend)

// WithPassword sets password authentication.
func WithPassword(password string) Option {
	return func(b *Backend) { b.password = password }
}

// WithKeyFile sets private key authentication from a PEM file on disk.
func WithKeyFile(path string) Option {
	return func(b *Backend) { b.keyFile = path }
}

// WithName overrides the display name (defaults to the address).
func WithName(name string) Option {
	return func(b *Backend) { b.name = name }
}

// New returns an SFTP backend for the given address and user.
func New(addr, username string, opts ...Option) *Backend {
	b := &Backend{
		name:     addr,
		addr:     addr,
		username: username,
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
	auth, err := b.authMethods()
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrAuth, err)
	}

	cfg := &ssh.ClientConfig{
		User:            b.username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         connectTimeout,
	}

	dialer := net.Dialer{Timeout: connectTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", b.addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrConnection, b.addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, b.addr, cfg)
	if err != nil {
		netConn.Close()
		if storage.IsAuthError(err) {
			return fmt.Errorf("%w: %v", storage.ErrAuth, err)
		}
		return fmt.Errorf("%w: %v", storage.ErrConnection, err)
	}

	sshClient := ssh.NewClient(sshConn, chans, reqs)
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return fmt.Errorf("%w: sftp subsystem: %v", storage.ErrConnection, err)
	}

	b.sshConn = sshClient
	b.client = client
	return nil
}

func (b *Backend) authMethods() ([]ssh.AuthMethod, error) {
	if b.keyFile != "" {
		pem, err := os.ReadFile(b.keyFile)
		if err != nil {
			return nil, fmt.Errorf("read key file: %v", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse key file: %v", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return []ssh.AuthMethod{ssh.Password(b.password)}, nil
}

// Close implements storage.Storage.
func (b *Backend) Close() error {
	var firstErr error
	if b.client != nil {
		firstErr = b.client.Close()
		b.client = nil
	}
	if b.sshConn != nil {
		if err := b.sshConn.Close(); firstErr == nil {
			firstErr = err
		}
		b.sshConn = nil
	}
	return firstErr
}

// List implements storage.Storage.
func (b *Backend) List(ctx context.Context, dir string) ([]storage.Entry, error) {
	if b.client == nil {
		return nil, storage.ErrConnection
	}

	infos, err := b.client.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrListing, dir, err)
	}

	entries := make([]storage.Entry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			entries = append(entries, storage.DirEntry(info.Name(), info.ModTime()))
		} else {
			entries = append(entries, storage.FileEntry(info.Name(), info.Size(), info.ModTime()))
		}
	}
	return entries, nil
}

// Download implements storage.Storage.
func (b *Backend) Download(ctx context.Context, remotePath, localPath string, progress storage.Progress) error {
	if b.client == nil {
		return storage.ErrConnection
	}

	src, err := b.client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer dst.Close()

	_, err = storage.CopyWithProgress(ctx, dst, src, progress)
	if err != nil && !errors.Is(err, storage.ErrCancelled) {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	return err
}

// Upload implements storage.Storage.
func (b *Backend) Upload(ctx context.Context, localPath, remotePath string, progress storage.Progress) error {
	if b.client == nil {
		return storage.ErrConnection
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer src.Close()

	dst, err := b.client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer dst.Close()

	_, err = storage.CopyWithProgress(ctx, dst, src, progress)
	if err != nil && !errors.Is(err, storage.ErrCancelled) {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	return err
}

// Delete implements storage.Storage. Directories are refused so the
// behavior matches the other backends.
func (b *Backend) Delete(ctx context.Context, remotePath string) (bool, error) {
	if b.client == nil {
		return false, storage.ErrConnection
	}

	info, err := b.client.Stat(remotePath)
	if err != nil {
		if storage.IsNetworkError(err) {
			return false, fmt.Errorf("%w: %v", storage.ErrConnection, err)
		}
		return false, nil
	}
	if info.IsDir() {
		return false, nil
	}

	if err := b.client.Remove(remotePath); err != nil {
		if storage.IsNetworkError(err) {
			return false, fmt.Errorf("%w: %v", storage.ErrConnection, err)
		}
		return false, nil
	}
	return true, nil
}

// Mkdir implements storage.Storage.
func (b *Backend) Mkdir(ctx context.Context, remotePath string) (bool, error) {
	if b.client == nil {
		return false, storage.ErrConnection
	}
	if err := b.client.Mkdir(remotePath); err != nil {
		if storage.IsNetworkError(err) {
			return false, fmt.Errorf("%w: %v", storage.ErrConnection, err)
		}
		return false, nil
	}
	return true, nil
}
