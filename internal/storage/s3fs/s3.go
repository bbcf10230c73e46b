// Package s3fs implements the storage contract on top of Amazon S3 and
// S3-compatible object stores.
//
// Object stores have no real directories. Listing treats "/" as a
// delimiter and reports common prefixes as directories; Mkdir writes a
// zero-byte marker object with a trailing slash, which is the convention
// most S3 browsers recognize.
package s3fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ftpc/ftpc/internal/storage"
)

// Backend is an S3 storage implementation.
type Backend struct {
	name      string
	bucket    string
	region    string
	accessKey string
	secretKey string
	endpoint  string

	client *s3.Client
}

// Option configures a Backend.
type Option func(*Backend)

// WithRegion pins the bucket region instead of resolving it from the
// environment.
func WithRegion(region string) Option {
	return func(b *Backend) { b.region = region }
}

// WithStaticCredentials uses the given key pair instead of the default
// AWS credential chain.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(b *Backend) {
		b.accessKey = accessKey
		b.secretKey = secretKey
	}
}

// WithEndpoint points the client at an S3-compatible service (MinIO,
// Ceph RGW) instead of AWS.
func WithEndpoint(endpoint string) Option {
	return func(b *Backend) { b.endpoint = endpoint }
}

// WithName overrides the display name (defaults to the bucket).
func WithName(name string) Option {
	return func(b *Backend) { b.name = name }
}

// New returns an S3 backend for the given bucket.
func New(bucket string, opts ...Option) *Backend {
	b := &Backend{
		name:   bucket,
		bucket: bucket,
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

// Connect implements storage.Storage. The SDK dials lazily, so a cheap
// listing probe runs here to surface bad credentials or a missing bucket
// before the browser opens.
func (b *Backend) Connect(ctx context.Context) error {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if b.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(b.region))
	}
	if b.accessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(b.accessKey, b.secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("%w: load aws config: %v", storage.ErrConnection, err)
	}

	b.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if b.endpoint != "" {
			o.BaseEndpoint = aws.String(b.endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		b.client = nil
		if storage.IsAuthError(err) {
			return fmt.Errorf("%w: bucket %s: %v", storage.ErrAuth, b.bucket, err)
		}
		return fmt.Errorf("%w: bucket %s: %v", storage.ErrConnection, b.bucket, err)
	}
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

	prefix := keyPrefix(dir)
	var entries []storage.Entry

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", storage.ErrListing, dir, err)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name == "" {
				continue
			}
			entries = append(entries, storage.Entry{Path: name, Kind: storage.KindDirectory})
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" {
				// The directory marker for the prefix itself.
				continue
			}
			e := storage.FileEntry(name, aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified))
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

	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(remotePath)),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer resp.Body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer out.Close()

	_, err = storage.CopyWithProgress(ctx, out, resp.Body, progress)
	if err != nil && !errors.Is(err, storage.ErrCancelled) {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	return err
}

// Upload implements storage.Storage. The body reader reports progress as
// the SDK drains it and aborts the request when progress requests
// cancellation.
func (b *Backend) Upload(ctx context.Context, localPath, remotePath string, progress storage.Progress) error {
	if b.client == nil {
		return storage.ErrConnection
	}

	in, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}

	body := &progressReader{ctx: ctx, r: in, progress: progress}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(objectKey(remotePath)),
		Body:          body,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		if body.cancelled {
			return storage.ErrCancelled
		}
		return fmt.Errorf("%w: %v", storage.ErrTransfer, err)
	}
	return nil
}

// Delete implements storage.Storage. Prefixes (directories) are refused;
// only a single object is ever removed.
func (b *Backend) Delete(ctx context.Context, remotePath string) (bool, error) {
	if b.client == nil {
		return false, storage.ErrConnection
	}

	key := objectKey(remotePath)
	if strings.HasSuffix(key, "/") {
		return false, nil
	}

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
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

	key := objectKey(remotePath)
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		if storage.IsNetworkError(err) {
			return false, fmt.Errorf("%w: %v", storage.ErrConnection, err)
		}
		return false, nil
	}
	return true, nil
}

// keyPrefix maps a browser path onto an object key prefix. The root maps
// to the empty prefix; anything else gets a trailing slash.
func keyPrefix(dir string) string {
	k := objectKey(dir)
	if k == "" {
		return ""
	}
	return k + "/"
}

func objectKey(path string) string {
	return strings.Trim(path, "/")
}

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
