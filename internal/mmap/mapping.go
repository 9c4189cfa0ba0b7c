package mmap

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Fder is the part of *os.File a mapping needs.
type Fder interface {
	Fd() uintptr
	Name() string
}

// Mapping is a fixed-length view of a file's bytes.
// It owns the mapped memory but not the file descriptor.
type Mapping struct {
	data   []byte
	name   string
	mode   Mode
	closed atomic.Bool
}

// Map maps the first size bytes of f. The file must already be at least
// size bytes long; the caller keeps ownership of f.
func Map(f Fder, size int, mode Mode) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	prot := unix.PROT_READ
	if mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %s", f.Name())
	}
	return &Mapping{data: data, name: f.Name(), mode: mode}, nil
}

// Bytes returns the mapped region, or nil once closed.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the length of the mapping in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Flush synchronously writes dirty pages back to the file.
func (m *Mapping) Flush() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.mode != ReadWrite {
		return nil
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return errors.Wrapf(err, "msync %s", m.name)
	}
	return nil
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	default:
		advice = unix.MADV_NORMAL
	}
	err := unix.Madvise(m.data, advice)
	if err == unix.EINVAL {
		// advisory only
		return nil
	}
	return err
}

// Close unmaps the memory. It is idempotent and does not flush.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if err := unix.Munmap(m.data); err != nil {
		return errors.Wrapf(err, "munmap %s", m.name)
	}
	return nil
}
