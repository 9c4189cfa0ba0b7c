package deque

import "github.com/sirupsen/logrus"

// Commit is the durability boundary. It flushes dirty chunks (msync + fsync),
// then atomically rewrites the metadata record, then releases loaded chunks
// that fall outside [start, end).
//
// Metadata is rewritten even when nothing is dirty, since pops and Clear only
// move the range. A flush or metadata failure keeps the in-memory state and
// Commit may be retried. Once the metadata is written the commit has taken
// effect; failing to unmap a released chunk afterwards is logged, not
// returned.
func (s *Store[T]) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	flushed := s.dirty
	if s.dirty {
		if err := s.pool.flush(s.opts.FlushConcurrency); err != nil {
			return err
		}
		s.dirty = false
	}

	if err := writeMetadata(s.opts.fs, s.dir, s.meta); err != nil {
		return err
	}
	s.stats.commits.Add(1)

	first, last := s.meta.ChunkRange()
	if err := s.pool.shrink(first, last); err != nil {
		s.log.WithError(err).Warn("release chunks after commit")
	}

	s.log.WithFields(logrus.Fields{
		"start":   s.meta.Start,
		"end":     s.meta.End,
		"flushed": flushed,
		"base":    s.pool.base,
		"count":   len(s.pool.chunks),
	}).Debug("committed")
	return nil
}

// Close unmaps every chunk and closes the chunk files. Uncommitted changes
// are not flushed and the metadata keeps the last committed range, so
// uncommitted pushes outside that range are gone on reopen.
//
// Chunks are shared mappings, so element bytes written before Close may still
// reach the files. A push that reuses a position freed by an uncommitted pop
// or Clear overwrites a committed element, and the new value is what a reopen
// sees at that position. Commit before Close to avoid this. Close is
// idempotent.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.dirty {
		s.log.Debug("closing with uncommitted writes")
	}
	return s.pool.close()
}
