package mmap

import (
	"os"

	"github.com/pkg/errors"
)

// File is a read-only mapping that owns its file descriptor.
type File struct {
	*Mapping
	f *os.File
}

// Open maps the whole file at path read-only. The file must be at least
// size bytes; only size bytes are mapped.
func Open(path string, size int) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if fi.Size() < int64(size) {
		f.Close()
		return nil, errors.Wrapf(ErrShortFile, "%s: %d < %d", path, fi.Size(), size)
	}
	m, err := Map(f, size, ReadOnly)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Mapping: m, f: f}, nil
}

// Close unmaps the memory and closes the underlying file.
func (m *File) Close() error {
	if m == nil {
		return nil
	}
	err := m.Mapping.Close()
	if closeErr := m.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
