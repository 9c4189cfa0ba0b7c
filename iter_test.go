package deque

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteration(t *testing.T) {
	s, _ := newTestStore[uint32](t, 7)
	for i := uint32(0); i < 100; i++ {
		require.NoError(t, s.PushBack(i))
	}
	require.NoError(t, s.Commit())

	want := make([]uint32, 100)
	for i := range want {
		want[i] = uint32(i)
	}
	assert.Equal(t, want, slices.Collect(s.Values()))

	it := s.IterMut()
	assert.Equal(t, 100, it.Remaining())
	for it.Next() {
		*it.Ptr() += 1
	}
	require.NoError(t, it.Err())
	assert.True(t, s.Stats().Dirty)
	require.NoError(t, s.Commit())

	for i := range want {
		want[i]++
	}
	assert.Equal(t, want, slices.Collect(s.Values()))
}

func TestIterationIsRestartable(t *testing.T) {
	s, _ := newTestStore[int16](t, 3)
	for i := int16(0); i < 5; i++ {
		require.NoError(t, s.PushFront(i))
	}

	first := slices.Collect(s.Values())
	second := slices.Collect(s.Values())
	assert.Equal(t, []int16{4, 3, 2, 1, 0}, first)
	assert.Equal(t, first, second)

	var idx []int
	for i := range s.All() {
		idx = append(idx, i)
		if i == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1, 2}, idx)
}

func TestIterateEmpty(t *testing.T) {
	s, _ := newTestStore[uint64](t, 4)
	it := s.Iter()
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
	assert.Nil(t, it.Ptr())

	require.NoError(t, s.PushBack(1))
	require.NoError(t, s.Clear())
	assert.Empty(t, slices.Collect(s.Values()))
	assert.False(t, s.IterMut().Next())
}
