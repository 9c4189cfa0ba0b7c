package deque

import (
	"github.com/sirupsen/logrus"

	"github.com/luhtfiimanal/go-mmap-deque/internal/fs"
)

// DefaultChunkCapacity is the number of elements per chunk file when
// Options.ChunkCapacity is zero.
const DefaultChunkCapacity = 10_000

// AccessPattern is a kernel hint applied to every mapped chunk.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
)

// Options configures a Store.
//
//   - ChunkCapacity:    elements per chunk file; persisted and verified on reopen
//   - FlushConcurrency: chunks flushed in parallel by Commit
//   - Advise:           madvise hint for mapped chunks
//   - Logger:           structured logger (nil = package logger)
//
// Zero values mean default. See DefaultOptions.
type Options struct {
	ChunkCapacity    int
	FlushConcurrency int
	Advise           AccessPattern
	Logger           logrus.FieldLogger

	fs fs.FileSystem // overridden by tests for fault injection
}

// DefaultOptions returns the configuration used by OpenOrCreate.
func DefaultOptions() Options {
	return Options{
		ChunkCapacity:    DefaultChunkCapacity,
		FlushConcurrency: 4,
		Advise:           AccessDefault,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ChunkCapacity <= 0 {
		o.ChunkCapacity = def.ChunkCapacity
	}
	if o.FlushConcurrency <= 0 {
		o.FlushConcurrency = def.FlushConcurrency
	}
	if o.Logger == nil {
		o.Logger = logger
	}
	if o.fs == nil {
		o.fs = fs.Default
	}
	return o
}
