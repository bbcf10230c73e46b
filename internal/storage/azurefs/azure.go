// Package azurefs implements the storage contract on top of Azure Blob
// Storage.
//
// Containers are flat namespaces. Listing uses the hierarchy pager with
// "/" as the delimiter so blob prefixes show up as directories; Mkdir
// writes a zero-byte marker blob with a trailing slash.
package azurefs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/ftpc/ftpc/internal/storage"
)

// Backend is an Azure Blob storage implementation.
type Backend struct {
	name       string
	serviceURL string
	cont       string
	connString string
	accountKey string

	client *azblob.Client
}

// Option configures a Backend.
type Option func(*Backend)

// WithConnectionString authenticates with a full connection string
// instead of the service URL.
func WithConnectionString(cs string) Option {
	return func(b *Backend) { b.connString = cs }
}

// WithAccountKey authenticates with a shared account key. The account
// name is taken from the service URL host.
func WithAccountKey(key string) Option {
	return func(b *Backend) { b.accountKey = key }
}

// WithName overrides the display name (defaults to the container).
func WithName(name string) Option {
	return func(b *Backend) { b.name = name }
}

// New returns an Azure backend for the given service URL and container.
// Without an account key or connection string the URL is used as-is,
// which covers SAS URLs and anonymous public containers.
func New(serviceURL, cont string, opts ...Option) *Backend {
	b := &Backend{
		name:       cont,
		serviceURL: serviceURL,
		cont:       cont,
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

// Connect implements storage.Storage. A one-blob listing probe runs
// after client construction so bad credentials surface here instead of
// on the first operation.
func (b *Backend) Connect(ctx context.Context) error {
	var (
		client *azblob.Client
		err    error
	)
	switch {
	case b.connString != "":
		client, err = azblob.NewClientFromConnectionString(b.connString, nil)
	case b.accountKey != "":
		account, aerr := accountFromURL(b.serviceURL)
		if aerr != nil {
			return fmt.Errorf("%w: %v", storage.ErrConnection, aerr)
		}
		cred, cerr := azblob.NewSharedKeyCredential(account, b.accountKey)
		if cerr != nil {
			return fmt.Errorf("%w: %v", storage.ErrAuth, cerr)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(b.serviceURL, cred, nil)
	default:
		client, err = azblob.NewClientWithNoCredential(b.serviceURL, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrConnection, err)
	}

	one := int32(1)
	pager := client.NewListBlobsFlatPager(b.cont, &azblob.ListBlobsFlatOptions{MaxResults: &one})
	if pager.More() {
		if _, err := pager.NextPage(ctx); err != nil {
			if storage.IsAuthError(err) {
				return fmt.Errorf("%w: container %s: %v", storage.ErrAuth, b.cont, err)
			}
			return fmt.Errorf("%w: container %s: %v", storage.ErrConnection, b.cont, err)
		}
	}

	b.client = client
	return nil
}

// Close implements storage.Storage.
func (b *Backend) Close() error {
	b.client = nil
	return nil
}

// List implements storage.Storage.
func (b *Backend) List(ctx context.Context, dir string) ([]storage.Entry, error) {
	if b.client == nil {
		return nil, storage.ErrConnection
	}

	prefix := blobPrefix(dir)
	containerClient := b.client.ServiceClient().NewContainerClient(b.cont)
	pager := containerClient.NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{
		Prefix: &prefix,
	})

	var entries []storage.Entry
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", storage.ErrListing, dir, err)
		}

		for _, p := range page.Segment.BlobPrefixes {
			if p.Name == nil {
				continue
			}
			name := strings.TrimSuffix(strings.TrimPrefix(*p.Name, prefix), "/")
			if name == "" {
				continue
			}
			entries = append(entries, storage.Entry{Path: name, Kind: storage.KindDirectory})
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*item.Name, prefix)
			if name == "" {
				continue
			}
			e := storage.Entry{Path: name, Kind: storage.KindFile}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					e.Size = *item.Properties.ContentLength
					e.HasSize = true
				}
				if item.Properties.LastModified != nil {
					e.ModTime = *item.Properties.LastModified
				}
			}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// Download implements storage.Storage.
func (b *Backend) Download(ctx context.Context, remotePath, localPath string, progress storage.Progress) error {
	if b.client == nil {
		return storage.ErrConnection
	}

	resp, err := b.client.DownloadStream(ctx, b.cont, blobName(remotePath), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	body := resp.NewRetryReader(ctx, nil)
	defer body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer out.Close()

	_, err = storage.CopyWithProgress(ctx, out, body, progress)
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

	in, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer in.Close()

	body := &progressReader{ctx: ctx, r: in, progress: progress}
	_, err = b.client.UploadStream(ctx, b.cont, blobName(remotePath), body, nil)
	if err != nil {
		if body.cancelled {
			return storage.ErrCancelled
		}
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	return nil
}

// Delete implements storage.Storage. Prefixes (directories) are refused.
func (b *Backend) Delete(ctx context.Context, remotePath string) (bool, error) {
	if b.client == nil {
		return false, storage.ErrConnection
	}

	name := blobName(remotePath)
	if strings.HasSuffix(name, "/") {
		return false, nil
	}

	_, err := b.client.DeleteBlob(ctx, b.cont, name, nil)
	if err != nil {
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

	name := blobName(remotePath)
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}

	_, err := b.client.UploadStream(ctx, b.cont, name, strings.NewReader(""), nil)
	if err != nil {
		if storage.IsNetworkError(err) {
			return false, fmt.Errorf("%w: %v", storage.ErrConnection, err)
		}
		return false, nil
	}
	return true, nil
}

func blobPrefix(dir string) string {
	n := blobName(dir)
	if n == "" {
		return ""
	}
	return n + "/"
}

func blobName(path string) string {
	return strings.Trim(path, "/")
}

// accountFromURL extracts the storage account name from a blob service
// URL like https://myaccount.blob.core.windows.net/.
func accountFromURL(serviceURL string) (string, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("parse service url: %v", err)
	}
	host := u.Hostname()
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i], nil
	}
	if host == "" {
		return "", fmt.Errorf("service url %q has no host", serviceURL)
	}
	return host, nil
}

type progressReader struct {
	ctx       context.Context
	r         *os.File
	progress  storage.Progress
	total     int64
	cancelled bool
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if p.ctx.Err() != nil {
		p.cancelled = true
		return 0, storage.ErrCancelled
	}

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
