package deque

import (
	"errors"
	"fmt"
)

var (
	// ErrIO wraps filesystem and mapping failures.
	ErrIO = errors.New("deque: i/o error")
	// ErrCodec is returned when metadata cannot be encoded or decoded.
	ErrCodec = errors.New("deque: metadata codec error")
	// ErrAtomicWrite is returned when the atomic metadata replace fails.
	ErrAtomicWrite = errors.New("deque: atomic write error")
	// ErrSchemaMismatch is matched by every schema mismatch error type.
	ErrSchemaMismatch = errors.New("deque: schema mismatch")
	// ErrZeroSizedType is returned when the element type has size zero.
	ErrZeroSizedType = errors.New("deque: zero-sized types are not supported")
	// ErrUnsupportedType is returned when the element type holds pointers or
	// other references that cannot be stored as raw bytes.
	ErrUnsupportedType = errors.New("deque: element type is not trivially copyable")
	// ErrIndexOutOfRange signals a position outside the addressable range.
	ErrIndexOutOfRange = errors.New("deque: index out of range")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("deque: store is closed")
	// ErrOther is the catch-all kind.
	ErrOther = errors.New("deque: error")
)

// TypeMismatchError indicates the stored schema id differs from the requested one.
type TypeMismatchError struct {
	Stored    string
	Requested string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: stored type %q, requested type %q", e.Stored, e.Requested)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// ElementSizeMismatchError indicates the stored element size differs from sizeof(T).
type ElementSizeMismatchError struct {
	Stored    int
	Requested int
}

func (e *ElementSizeMismatchError) Error() string {
	return fmt.Sprintf("element size mismatch: stored size %d, requested size %d", e.Stored, e.Requested)
}

func (e *ElementSizeMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// ChunkSizeMismatchError indicates the stored chunk capacity differs from the requested one.
type ChunkSizeMismatchError struct {
	Stored    int
	Requested int
}

func (e *ChunkSizeMismatchError) Error() string {
	return fmt.Sprintf("chunk size mismatch: stored size %d, requested size %d", e.Stored, e.Requested)
}

func (e *ChunkSizeMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// ioError classifies err as ErrIO while keeping the cause reachable.
func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
