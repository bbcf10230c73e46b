package cli

import (
	"github.com/ftpc/ftpc/internal/config"
	"github.com/ftpc/ftpc/internal/storage"
	"github.com/ftpc/ftpc/internal/storage/azurefs"
	"github.com/ftpc/ftpc/internal/storage/ftpfs"
	"github.com/ftpc/ftpc/internal/storage/local"
	"github.com/ftpc/ftpc/internal/storage/s3fs"
	"github.com/ftpc/ftpc/internal/storage/sftpfs"
)

func newLocalBackend(_ *config.LocalRemote) storage.Storage {
	return local.New()
}

func newFTPBackend(r *config.FTPRemote) storage.Storage {
	opts := []ftpfs.Option{ftpfs.WithName(r.Name)}
	if r.TLS {
		opts = append(opts, ftpfs.WithTLS())
	}
	return ftpfs.New(r.Addr(), r.User(), r.Pass(), opts...)
}

func newSFTPBackend(r *config.SFTPRemote) storage.Storage {
	opts := []sftpfs.Option{sftpfs.WithName(r.Name)}
	if r.KeyFile != "" {
		opts = append(opts, sftpfs.WithKeyFile(r.KeyFile))
	} else {
		opts = append(opts, sftpfs.WithPassword(r.Password))
	}
	return sftpfs.New(r.Addr(), r.Username, opts...)
}

func newS3Backend(r *config.S3Remote) storage.Storage {
	opts := []s3fs.Option{s3fs.WithName(r.Name)}
	if r.Region != "" {
		opts = append(opts, s3fs.WithRegion(r.Region))
	}
	if r.EndpointURL != "" {
		opts = append(opts, s3fs.WithEndpoint(r.EndpointURL))
	}
	if r.AccessKeyID != "" {
		opts = append(opts, s3fs.WithStaticCredentials(r.AccessKeyID, r.SecretAccessKey))
	}
	return s3fs.New(r.BucketName(), opts...)
}

func newAzureBackend(r *config.AzureRemote) storage.Storage {
	opts := []azurefs.Option{azurefs.WithName(r.Name)}
	if r.ConnectionString != "" {
		opts = append(opts, azurefs.WithConnectionString(r.ConnectionString))
	}
	if r.AccountKey != "" {
		opts = append(opts, azurefs.WithAccountKey(r.AccountKey))
	}
	return azurefs.New(r.URL, r.Container, opts...)
}
