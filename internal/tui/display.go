package tui

import "time"

// DisplayRecord is what the list view needs from an item: a name, a kind
// for coloring, and optional size and modification time. Storage entries
// and remote definitions both satisfy it, so the same view renders file
// listings and the pre-connection remote selector.
type DisplayRecord interface {
	DisplayName() string
	IsDir() bool
	SizeBytes() (int64, bool)
	Modified() (time.Time, bool)
}
