// Package deque provides a persistent double-ended queue of fixed-size
// elements stored in memory-mapped chunk files.
//
// A store directory holds one metadata record (metadata.bin) describing the
// schema and the logical range [start, end), plus one file per chunk
// (chunk_<N>.bin) of exactly ChunkCapacity*sizeof(T) bytes. Positions are
// absolute 64-bit coordinates, so pushes at either end never move data: the
// pool of mapped chunks grows at the back or the front, and Commit releases
// chunks that fell out of range.
//
// The library is organised into several files:
//
//	options.go  – configuration struct & defaults
//	errors.go   – error kinds and schema mismatch types
//	metadata.go – metadata record, codec, load-or-initialize, atomic rewrite
//	layout.go   – element type validation and default schema id
//	chunk.go    – one mapped chunk file and the typed element accessor
//	pool.go     – loaded window, index translation, grow & shrink
//	deque.go    – Store constructors and deque operations
//	commit.go   – commit protocol & close
//	iter.go     – lazy cursor and range-over-func iterators
//	stats.go    – lightweight stats accessors
//
// Durability is explicit: nothing survives a restart until Commit returns.
// A store is meant for one process; nothing coordinates concurrent opens of
// the same directory.
//
//	s, err := deque.OpenOrCreate[uint64]("./ring", "ring.v1")
//	if err != nil { ... }
//	defer s.Close()
//	_ = s.PushBack(42)
//	_ = s.Commit()
package deque
