package deque_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	deque "github.com/luhtfiimanal/go-mmap-deque"
)

type tick struct {
	Seq   uint64
	Price float64
	Size  uint32
	_     [4]byte
}

// Writing across chunk boundaries at both ends must never index past a
// chunk's mapping.
func TestPushAcrossChunkBoundaries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ticks")
	opts := deque.DefaultOptions()
	opts.ChunkCapacity = 3

	s, err := deque.OpenOrCreateWithOptions[tick](dir, "tick.v1", opts)
	require.NoError(t, err)
	defer s.Close()

	for i := uint64(1); i <= 10; i++ {
		require.NoError(t, s.PushBack(tick{Seq: i, Price: float64(i)}))
		require.NoError(t, s.PushFront(tick{Seq: 100 + i}))
	}
	require.Equal(t, 20, s.Len())

	p, ok := s.Front()
	require.True(t, ok)
	require.Equal(t, uint64(110), p.Seq)
	p, ok = s.Back()
	require.True(t, ok)
	require.Equal(t, uint64(10), p.Seq)
}

func Example() {
	dir, err := os.MkdirTemp("", "deque-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	s, err := deque.OpenOrCreate[uint64](dir, "example.v1")
	if err != nil {
		panic(err)
	}
	for _, v := range []uint64{10, 20, 30} {
		if err := s.PushBack(v); err != nil {
			panic(err)
		}
	}
	if err := s.PushFront(5); err != nil {
		panic(err)
	}
	if err := s.Commit(); err != nil {
		panic(err)
	}
	s.Close()

	s, err = deque.OpenOrCreate[uint64](dir, "example.v1")
	if err != nil {
		panic(err)
	}
	defer s.Close()

	for i, v := range s.All() {
		fmt.Println(i, v)
	}
	// Output:
	// 0 5
	// 1 10
	// 2 20
	// 3 30
}
