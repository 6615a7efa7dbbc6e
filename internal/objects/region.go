package objects

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/KostasZigo/vx/internal/constants"
)

// region is an append-only byte area addressed by absolute offsets.
// Append is only ever called by one goroutine at a time (the store's
// append lock); ReadAt may run concurrently with it.
type region interface {
	io.ReaderAt
	Append(p []byte) (offset int64, err error)
	Size() int64
	Truncate(size int64) error
	Close() error
}

// fileRegion appends to a file, optionally fsyncing after every append so
// a returned offset is durable.
type fileRegion struct {
	file *os.File
	size int64
	sync bool
}

func openFileRegion(path string, syncWrites bool) (*fileRegion, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, constants.FilePerms)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return &fileRegion{file: file, size: info.Size(), sync: syncWrites}, nil
}

func (r *fileRegion) ReadAt(p []byte, off int64) (int, error) {
	return r.file.ReadAt(p, off)
}

func (r *fileRegion) Append(p []byte) (int64, error) {
	offset := r.size
	if _, err := r.file.WriteAt(p, offset); err != nil {
		return 0, err
	}
	if r.sync {
		if err := r.file.Sync(); err != nil {
			return 0, err
		}
	}
	r.size += int64(len(p))
	return offset, nil
}

func (r *fileRegion) Size() int64 {
	return r.size
}

func (r *fileRegion) Truncate(size int64) error {
	if err := r.file.Truncate(size); err != nil {
		return err
	}
	r.size = size
	return nil
}

func (r *fileRegion) Close() error {
	return r.file.Close()
}

// memRegion keeps the bytes in memory.
type memRegion struct {
	mu  sync.RWMutex
	buf []byte
}

func (r *memRegion) ReadAt(p []byte, off int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if off < 0 || off > int64(len(r.buf)) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *memRegion) Append(p []byte) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offset := int64(len(r.buf))
	r.buf = append(r.buf, p...)
	return offset, nil
}

func (r *memRegion) Size() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.buf))
}

func (r *memRegion) Truncate(size int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = r.buf[:size]
	return nil
}

func (r *memRegion) Close() error {
	return nil
}
