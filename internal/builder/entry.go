package builder

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/utils"
)

// EntryKind classifies one input path.
type EntryKind uint8

const (
	KindFile EntryKind = iota
	KindExecutable
	// KindDirectory marks a directory that must exist even when empty.
	KindDirectory
	KindSymlink
	// KindOther covers devices, sockets, pipes and anything else.
	KindOther
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindExecutable:
		return "executable"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// ContentProvider opens the bytes of a file entry. It is opened at most once
// per build, possibly from a worker goroutine.
type ContentProvider interface {
	Open() (io.ReadCloser, error)
}

// Entry is one path handed to BuildTree. Path is slash-separated and
// relative to the tree root. Content is only read for file kinds.
type Entry struct {
	Path    string
	Kind    EntryKind
	Content ContentProvider
}

// BytesContent serves an in-memory byte slice.
type BytesContent []byte

func (b BytesContent) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FileContent reads a file from disk.
type FileContent string

func (f FileContent) Open() (io.ReadCloser, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", string(f), err)
	}
	return file, nil
}

// ObjectWriter is the part of the object store the builders need.
type ObjectWriter interface {
	Write(obj objects.Object) (utils.Hash, error)
	Contains(hash utils.Hash) bool
}
