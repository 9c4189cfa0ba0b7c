package deque

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/tinylib/msgp/msgp"

	"github.com/luhtfiimanal/go-mmap-deque/internal/fs"
)

const (
	// MetadataFileName is the name of the metadata record inside a store directory.
	MetadataFileName = "metadata.bin"

	// Bias is the logical position of an empty, freshly created store. It
	// leaves room for Bias front pushes before Start would underflow.
	Bias uint64 = 1 << 32

	metaMagic      = 0x3151444d // "MDQ1"
	metaVersion    = 1
	metaHeaderSize = 16
	metaFields     = 5
)

// Metadata is the persisted descriptor of a store: its schema and the
// logical range [Start, End) of valid positions.
type Metadata struct {
	SchemaID      string
	ElementSize   int
	ChunkCapacity int
	Start         uint64
	End           uint64
}

// Len returns End - Start.
func (m Metadata) Len() uint64 { return m.End - m.Start }

// ChunkRange returns the first and last absolute chunk index covering
// [Start, End). An empty range maps to the single chunk holding Start.
func (m Metadata) ChunkRange() (first, last uint64) {
	capacity := uint64(m.ChunkCapacity)
	first = m.Start / capacity
	if m.Start == m.End {
		return first, first
	}
	return first, (m.End - 1) / capacity
}

// ChunkBytes is the exact size of every chunk file.
func (m Metadata) ChunkBytes() int { return m.ChunkCapacity * m.ElementSize }

// ChunkFileName returns the file name of the chunk with absolute index n.
func ChunkFileName(n uint64) string { return fmt.Sprintf("chunk_%d.bin", n) }

// MarshalBinary encodes the record: a 16-byte header (magic, version, crc32
// of payload, payload length) followed by a MessagePack array payload.
func (m Metadata) MarshalBinary() ([]byte, error) {
	if m.ElementSize <= 0 || m.ChunkCapacity <= 0 {
		return nil, fmt.Errorf("%w: invalid layout %d x %d", ErrCodec, m.ChunkCapacity, m.ElementSize)
	}
	if m.Start > m.End {
		return nil, fmt.Errorf("%w: start %d > end %d", ErrCodec, m.Start, m.End)
	}

	payload := make([]byte, 0, 48+len(m.SchemaID))
	payload = msgp.AppendArrayHeader(payload, metaFields)
	payload = msgp.AppendString(payload, m.SchemaID)
	payload = msgp.AppendUint64(payload, uint64(m.ElementSize))
	payload = msgp.AppendUint64(payload, uint64(m.ChunkCapacity))
	payload = msgp.AppendUint64(payload, m.Start)
	payload = msgp.AppendUint64(payload, m.End)

	out := make([]byte, metaHeaderSize, metaHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], metaMagic)
	binary.LittleEndian.PutUint32(out[4:8], metaVersion)
	binary.LittleEndian.PutUint32(out[8:12], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(payload)))
	return append(out, payload...), nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
func (m *Metadata) UnmarshalBinary(data []byte) error {
	if len(data) < metaHeaderSize {
		return fmt.Errorf("%w: metadata too small (%d bytes)", ErrCodec, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != metaMagic {
		return fmt.Errorf("%w: invalid magic %#x", ErrCodec, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != metaVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCodec, version)
	}
	checksum := binary.LittleEndian.Uint32(data[8:12])
	length := binary.LittleEndian.Uint32(data[12:16])
	payload := data[metaHeaderSize:]
	if uint32(len(payload)) != length {
		return fmt.Errorf("%w: payload length %d, header says %d", ErrCodec, len(payload), length)
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return fmt.Errorf("%w: checksum mismatch", ErrCodec)
	}

	n, rest, err := msgp.ReadArrayHeaderBytes(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCodec, err)
	}
	if n != metaFields {
		return fmt.Errorf("%w: expected %d fields, got %d", ErrCodec, metaFields, n)
	}
	var out Metadata
	if out.SchemaID, rest, err = msgp.ReadStringBytes(rest); err != nil {
		return fmt.Errorf("%w: schema id: %w", ErrCodec, err)
	}
	var elemSize, chunkCap uint64
	if elemSize, rest, err = msgp.ReadUint64Bytes(rest); err != nil {
		return fmt.Errorf("%w: element size: %w", ErrCodec, err)
	}
	if chunkCap, rest, err = msgp.ReadUint64Bytes(rest); err != nil {
		return fmt.Errorf("%w: chunk capacity: %w", ErrCodec, err)
	}
	if out.Start, rest, err = msgp.ReadUint64Bytes(rest); err != nil {
		return fmt.Errorf("%w: start: %w", ErrCodec, err)
	}
	if out.End, rest, err = msgp.ReadUint64Bytes(rest); err != nil {
		return fmt.Errorf("%w: end: %w", ErrCodec, err)
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCodec, len(rest))
	}
	if elemSize == 0 || chunkCap == 0 || out.Start > out.End {
		return fmt.Errorf("%w: inconsistent record", ErrCodec)
	}
	out.ElementSize = int(elemSize)
	out.ChunkCapacity = int(chunkCap)
	*m = out
	return nil
}

// verify compares the stored schema against the requested one. Element size
// is checked first, then the schema id, then chunk capacity.
func (m Metadata) verify(want Metadata) error {
	if m.ElementSize != want.ElementSize {
		return &ElementSizeMismatchError{Stored: m.ElementSize, Requested: want.ElementSize}
	}
	if m.SchemaID != want.SchemaID {
		return &TypeMismatchError{Stored: m.SchemaID, Requested: want.SchemaID}
	}
	if m.ChunkCapacity != want.ChunkCapacity {
		return &ChunkSizeMismatchError{Stored: m.ChunkCapacity, Requested: want.ChunkCapacity}
	}
	return nil
}

// ReadMetadata decodes the metadata record of the store in dir without
// opening the store.
func ReadMetadata(dir string) (Metadata, error) {
	return readMetadata(fs.Default, dir)
}

func readMetadata(fsys fs.FileSystem, dir string) (Metadata, error) {
	data, err := fs.ReadFile(fsys, filepath.Join(dir, MetadataFileName))
	if err != nil {
		return Metadata{}, ioError("read metadata", err)
	}
	var m Metadata
	if err := m.UnmarshalBinary(data); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// writeMetadata atomically replaces the metadata record and syncs dir.
func writeMetadata(fsys fs.FileSystem, dir string, m Metadata) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	if err := fs.WriteFileAtomic(fsys, filepath.Join(dir, MetadataFileName), data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrAtomicWrite, err)
	}
	return nil
}

// loadOrInitMetadata returns the verified stored record, or persists and
// returns want with Start = End = Bias when dir has no metadata yet. On a
// schema mismatch nothing is written.
func loadOrInitMetadata(fsys fs.FileSystem, dir string, want Metadata) (Metadata, bool, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return Metadata{}, false, ioError("create directory", err)
	}

	exists, err := fs.Exists(fsys, filepath.Join(dir, MetadataFileName))
	if err != nil {
		return Metadata{}, false, ioError("stat metadata", err)
	}
	if exists {
		have, err := readMetadata(fsys, dir)
		if err != nil {
			return Metadata{}, false, err
		}
		if err := have.verify(want); err != nil {
			return Metadata{}, false, err
		}
		return have, false, nil
	}

	want.Start, want.End = Bias, Bias
	if err := writeMetadata(fsys, dir, want); err != nil {
		return Metadata{}, false, err
	}
	return want, true, nil
}

// removeStaleTemp deletes a leftover metadata temp file from an interrupted
// commit. The committed record is untouched.
func removeStaleTemp(fsys fs.FileSystem, dir string) error {
	err := fsys.Remove(filepath.Join(dir, MetadataFileName+fs.TempSuffix))
	if err != nil && !os.IsNotExist(err) {
		return ioError("remove stale metadata temp", err)
	}
	return nil
}
