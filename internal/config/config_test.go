package config

import (
	"errors"
	"testing"
)

const sampleConfig = `
[myftp]
type = "ftp"
url = "ftp.example.com"
username = "alice"
password = "secret"
tls = true

[mylocal]
type = "local"

[mysftp]
type = "sftp"
url = "sftp.example.com"
port = 2222
username = "bob"
key_filename = "/home/bob/.ssh/id_ed25519"

[mybucket]
type = "s3"
bucket_name = "data-bucket"
region_name = "eu-west-1"

[myblob]
type = "azure"
url = "https://account.blob.core.windows.net"
container = "backups"
`

func TestParseAllTypes(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Len() != 5 {
		t.Fatalf("expected 5 remotes, got %d", cfg.Len())
	}

	r, err := cfg.Remote("myftp")
	if err != nil {
		t.Fatalf("Remote(myftp) failed: %v", err)
	}
	ftp, ok := r.(*FTPRemote)
	if !ok {
		t.Fatalf("expected *FTPRemote, got %T", r)
	}
	if ftp.URL != "ftp.example.com" || !ftp.TLS || ftp.User() != "alice" {
		t.Errorf("unexpected FTP remote: %+v", ftp)
	}
	if ftp.Addr() != "ftp.example.com:21" {
		t.Errorf("unexpected FTP addr %q", ftp.Addr())
	}

	r, _ = cfg.Remote("mysftp")
	sftp := r.(*SFTPRemote)
	if sftp.Addr() != "sftp.example.com:2222" {
		t.Errorf("unexpected SFTP addr %q", sftp.Addr())
	}

	r, _ = cfg.Remote("mybucket")
	s3 := r.(*S3Remote)
	if s3.BucketName() != "data-bucket" || s3.Region != "eu-west-1" {
		t.Errorf("unexpected S3 remote: %+v", s3)
	}
}

func TestRemoteNotFound(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Remote("missing"); !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("expected ErrRemoteNotFound, got %v", err)
	}
}

func TestRemotesSorted(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	remotes := cfg.Remotes()
	for i := 1; i < len(remotes); i++ {
		if remotes[i-1].RemoteName() > remotes[i].RemoteName() {
			t.Fatalf("remotes not sorted: %q before %q",
				remotes[i-1].RemoteName(), remotes[i].RemoteName())
		}
	}
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"missing type", "[r]\nurl=\"x\"\n"},
		{"unknown type", "[r]\ntype=\"gopher\"\n"},
		{"ftp without url", "[r]\ntype=\"ftp\"\n"},
		{"sftp without auth", "[r]\ntype=\"sftp\"\nurl=\"h\"\n"},
		{"s3 without bucket", "[r]\ntype=\"s3\"\n"},
		{"azure without container", "[r]\ntype=\"azure\"\nurl=\"https://a\"\n"},
	}

	for _, tc := range cases {
		if _, err := Parse([]byte(tc.toml)); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestS3BucketFromURL(t *testing.T) {
	cfg, err := Parse([]byte("[b]\ntype=\"s3\"\nurl=\"s3://from-url\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	r, _ := cfg.Remote("b")
	if got := r.(*S3Remote).BucketName(); got != "from-url" {
		t.Errorf("expected bucket from-url, got %q", got)
	}
}
