package deque

import (
	"fmt"
	"iter"
)

// Iterator is a lazy cursor over the store from front to back. It keeps a
// (chunk slot, element offset) pair and steps into the next chunk when the
// offset reaches the chunk capacity.
//
// An iterator must not overlap a Commit or a push that grows the window at
// the front on the same store; both move chunk slots. Every call to Iter
// starts a fresh cursor.
type Iterator[T any] struct {
	s         *Store[T]
	slot      int
	offset    int
	remaining uint64
	cur       *T
	err       error
}

// Iter returns a cursor over all elements.
func (s *Store[T]) Iter() *Iterator[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newIterator()
}

// IterMut returns a cursor whose Ptr results may be written through. The
// store is marked dirty.
func (s *Store[T]) IterMut() *Iterator[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.newIterator()
	if it.remaining > 0 {
		s.dirty = true
	}
	return it
}

func (s *Store[T]) newIterator() *Iterator[T] {
	it := &Iterator[T]{s: s}
	if s.closed {
		it.err = ErrClosed
		return it
	}
	n := s.meta.Len()
	if n == 0 {
		return it
	}
	slot, offset, ok := s.pool.locate(s.meta.Start)
	if !ok {
		it.err = fmt.Errorf("%w: front chunk not loaded", ErrIndexOutOfRange)
		return it
	}
	it.slot, it.offset, it.remaining = slot, offset, n
	return it
}

// Next advances to the next element and reports whether there is one.
func (it *Iterator[T]) Next() bool {
	if it.remaining == 0 || it.err != nil {
		it.cur = nil
		return false
	}
	s := it.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	if it.offset == s.meta.ChunkCapacity {
		it.slot++
		it.offset = 0
	}
	if s.closed || it.slot >= len(s.pool.chunks) {
		it.err = fmt.Errorf("%w: chunk slot %d not loaded", ErrIndexOutOfRange, it.slot)
		it.cur = nil
		return false
	}
	p, err := elementAt[T](s.pool.chunks[it.slot], it.offset, s.elemSize)
	if err != nil {
		it.err = err
		it.cur = nil
		return false
	}
	it.cur = p
	it.offset++
	it.remaining--
	return true
}

// Value returns a copy of the current element.
func (it *Iterator[T]) Value() T {
	return *it.cur
}

// Ptr returns the current element in mapped memory.
func (it *Iterator[T]) Ptr() *T {
	return it.cur
}

// Remaining returns how many elements Next has yet to produce.
func (it *Iterator[T]) Remaining() int {
	return int(it.remaining)
}

// Err returns the error that stopped iteration early, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// All yields (index, value) pairs from front to back.
func (s *Store[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		it := s.Iter()
		for i := 0; it.Next(); i++ {
			if !yield(i, it.Value()) {
				return
			}
		}
	}
}

// Values yields the elements from front to back.
func (s *Store[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := s.Iter()
		for it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}
