package azurefs

import "testing"

func TestAccountFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://myaccount.blob.core.windows.net", "myaccount", false},
		{"https://myaccount.blob.core.windows.net/", "myaccount", false},
		{"http://localhost:10000", "localhost", false},
		{"not a url\x00", "", true},
	}
	for _, tt := range tests {
		got, err := accountFromURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("accountFromURL(%q) err = nil, want error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("accountFromURL(%q): %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("accountFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestBlobPrefix(t *testing.T) {
	if got := blobPrefix("/"); got != "" {
		t.Errorf("blobPrefix(/) = %q, want empty", got)
	}
	if got := blobPrefix("/logs/app"); got != "logs/app/" {
		t.Errorf("blobPrefix(/logs/app) = %q, want logs/app/", got)
	}
}

func TestOperationsWithoutConnect(t *testing.T) {
	b := New("https://acct.blob.core.windows.net", "c")
	if _, err := b.List(t.Context(), "/"); err == nil {
		t.Error("List before Connect should fail")
	}
	if _, err := b.Mkdir(t.Context(), "/x"); err == nil {
		t.Error("Mkdir before Connect should fail")
	}
}
