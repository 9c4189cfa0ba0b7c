package deque

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/luhtfiimanal/go-mmap-deque/internal/fs"
)

// pool is the loaded window: a contiguous run of mapped chunks whose
// absolute indices are [base, base+len(chunks)).
type pool struct {
	fsys     fs.FileSystem
	dir      string
	capacity uint64 // elements per chunk
	elemSize int
	advise   AccessPattern
	log      logrus.FieldLogger
	stats    *counters

	chunks []*chunk
	base   uint64
}

func (p *pool) chunkBytes() int { return int(p.capacity) * p.elemSize }

func (p *pool) open(index uint64) (*chunk, error) {
	c, created, err := openChunk(p.fsys, p.dir, index, p.chunkBytes(), p.advise, p.log)
	if err != nil {
		return nil, err
	}
	p.stats.chunksMapped.Add(1)
	if created {
		p.stats.chunksCreated.Add(1)
	}
	return c, nil
}

// load maps chunks [first, last] as the whole window.
func (p *pool) load(first, last uint64) error {
	chunks := make([]*chunk, 0, last-first+1)
	for idx := first; idx <= last; idx++ {
		c, err := p.open(idx)
		if err != nil {
			for _, opened := range chunks {
				opened.close()
			}
			return err
		}
		chunks = append(chunks, c)
	}
	p.chunks = chunks
	p.base = first
	return nil
}

// locate translates a logical position into a pool slot and an element
// offset inside that chunk. ok is false when the chunk is not loaded.
func (p *pool) locate(position uint64) (slot, offset int, ok bool) {
	idx := position / p.capacity
	offset = int(position % p.capacity)
	if idx < p.base || idx-p.base >= uint64(len(p.chunks)) {
		return 0, offset, false
	}
	return int(idx - p.base), offset, true
}

// ensureLoaded grows the window until it contains the chunk of position.
// Chunks between the current window and the target are mapped too, so the
// window stays contiguous.
func (p *pool) ensureLoaded(position uint64) error {
	needed := position / p.capacity

	if len(p.chunks) == 0 {
		c, err := p.open(needed)
		if err != nil {
			return err
		}
		p.chunks = []*chunk{c}
		p.base = needed
		return nil
	}

	first := p.base
	last := p.base + uint64(len(p.chunks)) - 1

	switch {
	case needed > last:
		for idx := last + 1; idx <= needed; idx++ {
			c, err := p.open(idx)
			if err != nil {
				return err
			}
			p.chunks = append(p.chunks, c)
		}
		p.log.WithFields(logrus.Fields{"chunk": needed, "base": p.base, "count": len(p.chunks)}).Debug("grew window at back")
	case needed < first:
		prepend := make([]*chunk, 0, first-needed)
		for idx := first - 1; ; idx-- {
			c, err := p.open(idx)
			if err != nil {
				// keep what was mapped so far; the window is still contiguous
				p.prepend(prepend)
				return err
			}
			prepend = append(prepend, c)
			if idx == needed {
				break
			}
		}
		p.prepend(prepend)
		p.log.WithFields(logrus.Fields{"chunk": needed, "base": p.base, "count": len(p.chunks)}).Debug("grew window at front")
	}
	return nil
}

// prepend inserts chunks that were opened in descending index order.
func (p *pool) prepend(desc []*chunk) {
	if len(desc) == 0 {
		return
	}
	chunks := make([]*chunk, 0, len(desc)+len(p.chunks))
	for i := len(desc) - 1; i >= 0; i-- {
		chunks = append(chunks, desc[i])
	}
	p.chunks = append(chunks, p.chunks...)
	p.base = desc[len(desc)-1].index
}

// shrink drops loaded chunks outside [first, last] from both ends, always
// keeping at least one chunk. Backing files stay on disk.
func (p *pool) shrink(first, last uint64) error {
	var firstErr error
	dropped := 0
	for len(p.chunks) > 1 && p.base < first {
		if err := p.chunks[0].close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.chunks[0] = nil
		p.chunks = p.chunks[1:]
		p.base++
		dropped++
	}
	for len(p.chunks) > 1 && p.base+uint64(len(p.chunks))-1 > last {
		n := len(p.chunks) - 1
		if err := p.chunks[n].close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.chunks[n] = nil
		p.chunks = p.chunks[:n]
		dropped++
	}
	if dropped > 0 {
		p.stats.chunksDropped.Add(uint64(dropped))
		p.log.WithFields(logrus.Fields{"dropped": dropped, "base": p.base, "count": len(p.chunks)}).Debug("shrank window")
	}
	return firstErr
}

// flush flushes every loaded chunk, at most concurrency at a time.
func (p *pool) flush(concurrency int) error {
	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, c := range p.chunks {
		g.Go(c.flush)
	}
	return g.Wait()
}

// close releases every chunk without flushing.
func (p *pool) close() error {
	var firstErr error
	for _, c := range p.chunks {
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.chunks = nil
	return firstErr
}
