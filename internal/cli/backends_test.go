package cli

import (
	"testing"

	"github.com/ftpc/ftpc/internal/config"
)

const testConfig = `
[disk]
type = "local"

[ftpserver]
type = "ftp"
url = "ftp.example.com"
username = "user"
password = "secret"
tls = true

[sshbox]
type = "sftp"
url = "ssh.example.com"
port = 2222
username = "me"
key_filename = "/home/me/.ssh/id_ed25519"

[bucket]
type = "s3"
bucket_name = "my-bucket"
region_name = "eu-west-1"

[blobs]
type = "azure"
url = "https://acct.blob.core.windows.net"
container = "stuff"
account_key = "key=="
`

func TestBuildBackendResolvesAllTypes(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantNames := map[string]string{
		"disk":      "Local Storage",
		"ftpserver": "ftpserver",
		"sshbox":    "sshbox",
		"bucket":    "bucket",
		"blobs":     "blobs",
	}

	for _, r := range cfg.Remotes() {
		backend, err := buildBackend(r)
		if err != nil {
			t.Fatalf("buildBackend(%s): %v", r.RemoteName(), err)
		}
		if got := backend.Name(); got != wantNames[r.RemoteName()] {
			t.Errorf("backend %s Name() = %q, want %q", r.RemoteName(), got, wantNames[r.RemoteName()])
		}
	}
}

func TestRemoteInfosCarryDetails(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	infos := remoteInfos(cfg)
	if len(infos) != 5 {
		t.Fatalf("len(infos) = %d, want 5", len(infos))
	}

	byName := map[string][]string{}
	for _, info := range infos {
		byName[info.Name] = info.Details
	}

	if details := byName["sshbox"]; len(details) == 0 || details[0] != "Address: ssh.example.com:2222" {
		t.Errorf("sshbox details = %v, want address with configured port", details)
	}
	if details := byName["bucket"]; len(details) == 0 || details[0] != "Bucket: my-bucket" {
		t.Errorf("bucket details = %v", details)
	}
}
