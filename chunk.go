package deque

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/luhtfiimanal/go-mmap-deque/internal/fs"
	"github.com/luhtfiimanal/go-mmap-deque/internal/mmap"
)

// chunk is one loaded segment: a chunk file mapped read/write for as long as
// it stays in the pool.
//
// index is the absolute chunk coordinate (position / capacity). It never
// changes when the pool grows or shrinks, so chunk_<index>.bin always holds
// the same logical positions.
type chunk struct {
	index uint64
	file  fs.File
	mem   *mmap.Mapping
}

// openChunk maps chunk index of dir, creating a zero-filled file of exactly
// size bytes when none exists. created reports whether the file was new.
func openChunk(fsys fs.FileSystem, dir string, index uint64, size int, advise AccessPattern, log logrus.FieldLogger) (c *chunk, created bool, err error) {
	path := filepath.Join(dir, ChunkFileName(index))

	exists, err := fs.Exists(fsys, path)
	if err != nil {
		return nil, false, ioError("stat chunk", err)
	}
	if !exists {
		f, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
		if err != nil {
			return nil, false, ioError("create chunk", err)
		}
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, false, ioError("size chunk", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, false, ioError("sync chunk", err)
		}
		if err := f.Close(); err != nil {
			return nil, false, ioError("close chunk", err)
		}
		created = true
	}

	f, err := fsys.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, false, ioError("open chunk", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, ioError("stat chunk", err)
	}
	if fi.Size() != int64(size) {
		f.Close()
		return nil, false, ioError("open chunk", fmt.Errorf("%s is %d bytes, want %d", path, fi.Size(), size))
	}

	mem, err := mmap.Map(f, size, mmap.ReadWrite)
	if err != nil {
		f.Close()
		return nil, false, ioError("map chunk", err)
	}
	if advise != AccessDefault {
		if err := mem.Advise(mmap.AccessPattern(advise)); err != nil {
			log.WithError(err).WithField("chunk", index).Debug("advise chunk")
		}
	}
	return &chunk{index: index, file: f, mem: mem}, created, nil
}

// flush writes dirty pages back and forces the file to disk.
func (c *chunk) flush() error {
	if err := c.mem.Flush(); err != nil {
		return ioError(fmt.Sprintf("flush chunk %d", c.index), err)
	}
	if err := c.file.Sync(); err != nil {
		return ioError(fmt.Sprintf("sync chunk %d", c.index), err)
	}
	return nil
}

// close unmaps the chunk and closes its file. It never flushes and never
// removes the file.
func (c *chunk) close() error {
	err := c.mem.Close()
	if closeErr := c.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return ioError(fmt.Sprintf("close chunk %d", c.index), err)
	}
	return nil
}

// elementAt is the single place where mapped bytes are aliased as *T. It
// checks offset against the chunk's capacity and reinterprets exactly
// elemSize bytes. Mappings are page aligned and elemSize is a multiple of
// T's alignment, so the result is suitably aligned.
func elementAt[T any](c *chunk, offset, elemSize int) (*T, error) {
	data := c.mem.Bytes()
	if data == nil {
		return nil, ErrClosed
	}
	if offset < 0 || offset >= len(data)/elemSize {
		return nil, fmt.Errorf("%w: offset %d in chunk %d", ErrIndexOutOfRange, offset, c.index)
	}
	b := data[offset*elemSize : (offset+1)*elemSize : (offset+1)*elemSize]
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}
