package storage

import (
	"fmt"
	"path"
	"time"
)

// Kind distinguishes files from directories in a listing.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Entry represents one file or directory returned by a backend listing.
// Path is the name relative to the listed directory, unique within one
// listing. Size and ModTime are optional; not every backend reports them.
type Entry struct {
	Path    string
	Kind    Kind
	Size    int64
	HasSize bool
	ModTime time.Time // zero when the backend cannot report it
}

// FileEntry builds a file entry with a known size.
func FileEntry(name string, size int64, modTime time.Time) Entry {
	return Entry{Path: name, Kind: KindFile, Size: size, HasSize: true, ModTime: modTime}
}

// DirEntry builds a directory entry. Directories carry no size.
func DirEntry(name string, modTime time.Time) Entry {
	return Entry{Path: name, Kind: KindDirectory, ModTime: modTime}
}

// Name returns the last path segment.
func (e Entry) Name() string {
	return path.Base(e.Path)
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// DisplayName implements the display record contract used by the list view.
func (e Entry) DisplayName() string {
	return e.Name()
}

// SizeBytes returns the size and whether the backend reported one.
func (e Entry) SizeBytes() (int64, bool) {
	return e.Size, e.HasSize
}

// Modified returns the modification time and whether the backend reported one.
func (e Entry) Modified() (time.Time, bool) {
	return e.ModTime, !e.ModTime.IsZero()
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Path)
}
