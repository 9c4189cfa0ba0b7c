package deque

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotDir returns every regular file in dir with its content.
func snapshotDir(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = data
	}
	return out
}

func TestMetadataEncoding(t *testing.T) {
	m := Metadata{SchemaID: "ticks.v2", ElementSize: 24, ChunkCapacity: 512, Start: Bias - 3, End: Bias + 9}
	data, err := m.MarshalBinary()
	require.NoError(t, err)

	var got Metadata
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, m, got)
	assert.Equal(t, uint64(12), got.Len())
}

func TestMetadataRejectsCorruption(t *testing.T) {
	m := Metadata{SchemaID: "x", ElementSize: 8, ChunkCapacity: 4, Start: Bias, End: Bias}
	data, err := m.MarshalBinary()
	require.NoError(t, err)

	cases := map[string][]byte{
		"truncated header": data[:10],
		"truncated body":   data[:len(data)-1],
		"bad magic":        append([]byte{0, 0, 0, 0}, data[4:]...),
	}
	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0xff
	cases["payload bit flip"] = flipped

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var got Metadata
			assert.ErrorIs(t, got.UnmarshalBinary(raw), ErrCodec)
		})
	}

	_, err = Metadata{SchemaID: "x", ElementSize: 8, ChunkCapacity: 4, Start: 2, End: 1}.MarshalBinary()
	assert.ErrorIs(t, err, ErrCodec)
}

func TestChunkRange(t *testing.T) {
	m := Metadata{ElementSize: 8, ChunkCapacity: 10, Start: 25, End: 25}
	first, last := m.ChunkRange()
	assert.Equal(t, uint64(2), first)
	assert.Equal(t, uint64(2), last)

	m.End = 30
	first, last = m.ChunkRange()
	assert.Equal(t, uint64(2), first)
	assert.Equal(t, uint64(2), last)

	m.End = 31
	_, last = m.ChunkRange()
	assert.Equal(t, uint64(3), last)
	assert.Equal(t, 80, m.ChunkBytes())
}

func TestOpenCreatesMetadataWithBias(t *testing.T) {
	s, dir := newTestStore[uint64](t, 100)
	assert.Equal(t, "test", s.SchemaID())
	assert.Equal(t, 100, s.ChunkCapacity())

	m, err := ReadMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, Metadata{SchemaID: "test", ElementSize: 8, ChunkCapacity: 100, Start: Bias, End: Bias}, m)

	_, err = os.Stat(filepath.Join(dir, ChunkFileName(Bias/100)))
	assert.NoError(t, err, "the chunk holding Bias is created on open")
}

func TestSchemaMismatch(t *testing.T) {
	s, dir := newTestStore[uint64](t, 100)
	require.NoError(t, s.PushBack(42))
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())
	before := snapshotDir(t, dir)

	opts := DefaultOptions()
	opts.ChunkCapacity = 100

	_, err := OpenOrCreateWithOptions[uint32](dir, "test", opts)
	var sizeErr *ElementSizeMismatchError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 8, sizeErr.Stored)
	assert.Equal(t, 4, sizeErr.Requested)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = OpenOrCreateWithOptions[int64](dir, "other", opts)
	var typeErr *TypeMismatchError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "test", typeErr.Stored)
	assert.Equal(t, "other", typeErr.Requested)

	opts.ChunkCapacity = 50
	_, err = OpenOrCreateWithOptions[uint64](dir, "test", opts)
	var chunkErr *ChunkSizeMismatchError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 100, chunkErr.Stored)
	assert.Equal(t, 50, chunkErr.Requested)

	assert.Equal(t, before, snapshotDir(t, dir), "a failed open must not touch the directory")
}

func TestDefaultSchemaIDDistinguishesTypes(t *testing.T) {
	type point struct{ X, Y int32 }
	dir := filepath.Join(t.TempDir(), "deque")

	s, err := OpenOrCreate[point](dir, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSchemaID[point](), s.SchemaID())
	require.NoError(t, s.Close())

	_, err = OpenOrCreate[int64](dir, "")
	var typeErr *TypeMismatchError
	require.ErrorAs(t, err, &typeErr)
}

func TestOpenCorruptMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFileName), []byte("not a deque"), 0o644))

	_, err := OpenOrCreate[uint64](dir, "test")
	assert.ErrorIs(t, err, ErrCodec)
}

func TestOpenRemovesStaleTemp(t *testing.T) {
	s, dir := newTestStore[uint16](t, 8)
	require.NoError(t, s.Close())

	tmp := filepath.Join(dir, MetadataFileName+".tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("half written"), 0o644))

	openTestStore[uint16](t, dir, 8)
	_, err := os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))
}
