package deque

import (
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store is a persistent double-ended queue of fixed-size elements backed by
// memory-mapped chunk files in one directory.
//
// All methods are safe to call from multiple goroutines; one RWMutex guards
// the metadata, the chunk window and the dirty flag together. Pointers
// returned by Get, GetMut, Front, Back and iterators alias mapped memory and
// stay valid until the next Commit that shrinks the window, or Close.
//
// Nothing is durable until Commit returns. Close releases the mappings
// without flushing. Element bytes are not rolled back on Close: writes into
// positions vacated by uncommitted pops or Clear can replace committed
// values seen after reopen, while the committed range itself is kept.
type Store[T any] struct {
	mu       sync.RWMutex
	dir      string
	opts     Options
	log      logrus.FieldLogger
	elemSize int

	meta   Metadata
	pool   pool
	dirty  bool
	closed bool

	stats counters
}

// OpenOrCreate opens the store in dir, creating it when dir holds no
// metadata yet, with DefaultOptions. An empty schemaID is replaced with
// DefaultSchemaID[T]().
func OpenOrCreate[T any](dir, schemaID string) (*Store[T], error) {
	return OpenOrCreateWithOptions[T](dir, schemaID, DefaultOptions())
}

// OpenOrCreateWithOptions opens or creates the store in dir with custom
// options. An existing store must have been created with the same element
// size, schema id and chunk capacity; otherwise a schema mismatch error is
// returned and the directory is left untouched.
func OpenOrCreateWithOptions[T any](dir, schemaID string, opts Options) (*Store[T], error) {
	elemSize, err := elementLayout[T]()
	if err != nil {
		return nil, err
	}
	if schemaID == "" {
		schemaID = DefaultSchemaID[T]()
	}
	opts = opts.withDefaults()
	if uint64(opts.ChunkCapacity) > math.MaxInt/uint64(elemSize) {
		return nil, fmt.Errorf("%w: chunk of %d x %d bytes is too large", ErrOther, opts.ChunkCapacity, elemSize)
	}
	log := opts.Logger.WithField("dir", dir)

	want := Metadata{
		SchemaID:      schemaID,
		ElementSize:   elemSize,
		ChunkCapacity: opts.ChunkCapacity,
	}
	meta, created, err := loadOrInitMetadata(opts.fs, dir, want)
	if err != nil {
		return nil, err
	}
	if !created {
		if err := removeStaleTemp(opts.fs, dir); err != nil {
			return nil, err
		}
	}

	s := &Store[T]{
		dir:      dir,
		opts:     opts,
		log:      log,
		elemSize: elemSize,
		meta:     meta,
	}
	s.pool = pool{
		fsys:     opts.fs,
		dir:      dir,
		capacity: uint64(meta.ChunkCapacity),
		elemSize: elemSize,
		advise:   opts.Advise,
		log:      log,
		stats:    &s.stats,
	}

	first, last := meta.ChunkRange()
	if err := s.pool.load(first, last); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"schema":  meta.SchemaID,
		"created": created,
		"len":     meta.Len(),
		"chunks":  len(s.pool.chunks),
	}).Info("opened store")
	return s, nil
}

// slot returns the mapped element at position. The chunk must be loaded.
func (s *Store[T]) slot(position uint64) (*T, error) {
	idx, offset, ok := s.pool.locate(position)
	if !ok {
		return nil, fmt.Errorf("%w: position %d not loaded", ErrIndexOutOfRange, position)
	}
	return elementAt[T](s.pool.chunks[idx], offset, s.elemSize)
}

// write ensures capacity for position and stores v there.
func (s *Store[T]) write(position uint64, v T) error {
	if err := s.pool.ensureLoaded(position); err != nil {
		return err
	}
	p, err := s.slot(position)
	if err != nil {
		return err
	}
	*p = v
	s.dirty = true
	return nil
}

// PushBack appends v at the back.
func (s *Store[T]) PushBack(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.meta.End == math.MaxUint64 {
		return fmt.Errorf("%w: back position exhausted", ErrIndexOutOfRange)
	}

	pos := s.meta.End
	s.meta.End++
	if err := s.write(pos, v); err != nil {
		s.meta.End--
		return err
	}
	return nil
}

// PushFront prepends v at the front.
func (s *Store[T]) PushFront(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.meta.Start == 0 {
		return fmt.Errorf("%w: front position exhausted", ErrIndexOutOfRange)
	}

	s.meta.Start--
	if err := s.write(s.meta.Start, v); err != nil {
		s.meta.Start++
		return err
	}
	return nil
}

// PopBack removes and returns the last element. ok is false when the store
// is empty. The vacated bytes are left in place.
func (s *Store[T]) PopBack() (v T, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return v, false, ErrClosed
	}
	if s.meta.Start == s.meta.End {
		return v, false, nil
	}

	pos := s.meta.End - 1
	p, err := s.slot(pos)
	if err != nil {
		return v, false, err
	}
	v = *p
	s.meta.End = pos
	return v, true, nil
}

// PopFront removes and returns the first element. ok is false when the
// store is empty.
func (s *Store[T]) PopFront() (v T, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return v, false, ErrClosed
	}
	if s.meta.Start == s.meta.End {
		return v, false, nil
	}

	pos := s.meta.Start
	p, err := s.slot(pos)
	if err != nil {
		return v, false, err
	}
	v = *p
	s.meta.Start = pos + 1
	return v, true, nil
}

// Get returns a reference to the element at logical index i (0 = front).
// The pointer aliases mapped memory and must not be written through; use
// GetMut for that.
func (s *Store[T]) Get(i int) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(i)
}

// GetMut is like Get but marks the store dirty so the next Commit flushes
// writes made through the returned pointer.
func (s *Store[T]) GetMut(i int) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.get(i)
	if ok {
		s.dirty = true
	}
	return p, ok
}

func (s *Store[T]) get(i int) (*T, bool) {
	if s.closed || i < 0 || uint64(i) >= s.meta.Len() {
		return nil, false
	}
	p, err := s.slot(s.meta.Start + uint64(i))
	if err != nil {
		return nil, false
	}
	return p, true
}

// Front returns the first element.
func (s *Store[T]) Front() (*T, bool) {
	return s.Get(0)
}

// Back returns the last element.
func (s *Store[T]) Back() (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.meta.Len()
	if n == 0 {
		return nil, false
	}
	return s.get(int(n - 1))
}

// Clear empties the store by resetting the range to Bias. Loaded chunks
// beyond the one kept minimum are released by the next Commit.
func (s *Store[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.meta.Start, s.meta.End = Bias, Bias
	return nil
}

// Len returns the number of elements.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.meta.Len())
}

// IsEmpty reports whether Len() == 0.
func (s *Store[T]) IsEmpty() bool {
	return s.Len() == 0
}
