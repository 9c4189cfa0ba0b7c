package deque

import "sync/atomic"

// counters are updated with atomics so Stats never waits on the store lock
// for them.
type counters struct {
	commits       atomic.Uint64
	chunksCreated atomic.Uint64
	chunksMapped  atomic.Uint64
	chunksDropped atomic.Uint64
}

// Stats is a snapshot of a store's shape and lifetime counters.
type Stats struct {
	Len           int
	LoadedChunks  int
	BaseChunk     uint64
	Dirty         bool
	Commits       uint64
	ChunksCreated uint64 // chunk files created by this handle
	ChunksMapped  uint64 // chunk mappings established, including reopens of existing files
	ChunksDropped uint64 // chunks unmapped by shrink
}

// Stats returns a snapshot of the store.
func (s *Store[T]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Len:           int(s.meta.Len()),
		LoadedChunks:  len(s.pool.chunks),
		BaseChunk:     s.pool.base,
		Dirty:         s.dirty,
		Commits:       s.stats.commits.Load(),
		ChunksCreated: s.stats.chunksCreated.Load(),
		ChunksMapped:  s.stats.chunksMapped.Load(),
		ChunksDropped: s.stats.chunksDropped.Load(),
	}
}

// ResetStats zeroes the lifetime counters.
func (s *Store[T]) ResetStats() {
	s.stats.commits.Store(0)
	s.stats.chunksCreated.Store(0)
	s.stats.chunksMapped.Store(0)
	s.stats.chunksDropped.Store(0)
}

// Dir returns the store directory.
func (s *Store[T]) Dir() string { return s.dir }

// SchemaID returns the persisted schema identifier.
func (s *Store[T]) SchemaID() string { return s.meta.SchemaID }

// ChunkCapacity returns the number of elements per chunk.
func (s *Store[T]) ChunkCapacity() int { return s.meta.ChunkCapacity }
