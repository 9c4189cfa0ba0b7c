package main

import (
	"fmt"
	"path/filepath"

	deque "github.com/luhtfiimanal/go-mmap-deque"
	"github.com/luhtfiimanal/go-mmap-deque/internal/mmap"
)

// committedReader walks the committed range of a store directory through
// read-only mappings, one chunk at a time.
type committedReader struct {
	dir  string
	meta deque.Metadata
}

func openCommitted(dir string) (*committedReader, error) {
	meta, err := deque.ReadMetadata(dir)
	if err != nil {
		return nil, err
	}
	return &committedReader{dir: dir, meta: meta}, nil
}

// each calls fn for up to limit elements from the front (0 = all). The elem
// slice aliases mapped memory and is only valid during the call.
func (r *committedReader) each(limit uint64, fn func(i uint64, elem []byte) error) error {
	n := r.meta.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	capacity := uint64(r.meta.ChunkCapacity)
	size := r.meta.ElementSize

	var (
		cur    *mmap.File
		curIdx uint64
	)
	defer func() {
		if cur != nil {
			cur.Close()
		}
	}()

	for i := uint64(0); i < n; i++ {
		pos := r.meta.Start + i
		idx := pos / capacity
		if cur == nil || idx != curIdx {
			if cur != nil {
				cur.Close()
				cur = nil
			}
			path := filepath.Join(r.dir, deque.ChunkFileName(idx))
			m, err := mmap.Open(path, r.meta.ChunkBytes())
			if err != nil {
				return fmt.Errorf("map chunk %d: %w", idx, err)
			}
			if err := m.Advise(mmap.AccessSequential); err != nil {
				logger.Debugf("advise %s: %s", path, err)
			}
			cur, curIdx = m, idx
			logger.Debugf("mapped chunk %d", idx)
		}
		off := int(pos%capacity) * size
		if err := fn(i, cur.Bytes()[off:off+size]); err != nil {
			return err
		}
	}
	return nil
}
