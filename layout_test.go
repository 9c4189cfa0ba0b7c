package deque

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainRecord struct {
	ID    uint64
	Price float64
	Flags [4]bool
	Pair  struct{ A, B int16 }
}

type pointerRecord struct {
	ID   uint64
	Name string
}

func TestElementLayout(t *testing.T) {
	size, err := elementLayout[plainRecord]()
	require.NoError(t, err)
	assert.Equal(t, 24, size)

	size, err = elementLayout[[3]uint16]()
	require.NoError(t, err)
	assert.Equal(t, 6, size)
}

func TestZeroSizedTypeRejectedBeforeIO(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")

	_, err := OpenOrCreate[struct{}](dir, "empty")
	require.ErrorIs(t, err, ErrZeroSizedType)

	_, err = OpenOrCreate[[0]uint64](dir, "empty")
	require.ErrorIs(t, err, ErrZeroSizedType)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "no directory may be created")
}

func TestReferenceTypesRejected(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")

	_, err := OpenOrCreate[pointerRecord](dir, "")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = OpenOrCreate[*int](dir, "")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = OpenOrCreate[[]byte](dir, "")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = OpenOrCreate[[2]any](dir, "")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStructElementsRoundTrip(t *testing.T) {
	s, dir := newTestStore[plainRecord](t, 5)
	for i := 0; i < 12; i++ {
		r := plainRecord{ID: uint64(i), Price: float64(i) / 4}
		r.Flags[i%4] = true
		r.Pair.A, r.Pair.B = int16(i), int16(-i)
		require.NoError(t, s.PushBack(r))
	}
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	reopened := openTestStore[plainRecord](t, dir, 5)
	for i, r := range reopened.All() {
		assert.Equal(t, uint64(i), r.ID)
		assert.Equal(t, float64(i)/4, r.Price)
		assert.True(t, r.Flags[i%4])
		assert.Equal(t, int16(-i), r.Pair.B)
	}
}
