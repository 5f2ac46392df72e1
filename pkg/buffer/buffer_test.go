package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBasicReadWrite(t *testing.T) {
	r := NewRing[int](4, DropOldest)

	for i := 1; i <= 3; i++ {
		ok, err := r.Write(i)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Equal(t, 3, r.Size())
	assert.False(t, r.IsFull())
	assert.False(t, r.IsEmpty())

	for i := 1; i <= 3; i++ {
		item, ok := r.Read()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}

	_, ok := r.Read()
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())
}

func TestRingDropOldestKeepsLatestWindow(t *testing.T) {
	r := NewRing[int](3, DropOldest)

	for i := 1; i <= 7; i++ {
		ok, err := r.Write(i)
		require.NoError(t, err)
		assert.True(t, ok, "drop-oldest always admits the new item")
	}

	// Buffer holds exactly the last 3 items in order.
	assert.Equal(t, []int{5, 6, 7}, r.ReadBatch(10))

	stats := r.Stats().Snapshot()
	assert.Equal(t, int64(7), stats.Writes)
	assert.Equal(t, int64(4), stats.Drops)
}

func TestRingDropNewestRejectsWhenFull(t *testing.T) {
	r := NewRing[int](3, DropNewest)

	for i := 1; i <= 3; i++ {
		ok, err := r.Write(i)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := r.Write(4)
	require.NoError(t, err)
	assert.False(t, ok, "drop-newest rejects writes against a full buffer")

	assert.Equal(t, []int{1, 2, 3}, r.ReadBatch(10))
}

func TestRingDropCallback(t *testing.T) {
	var dropped []int
	r := NewRing[int](2, DropOldest)
	r.OnDrop(func(item int) { dropped = append(dropped, item) })

	for i := 1; i <= 5; i++ {
		_, err := r.Write(i)
		require.NoError(t, err)
	}

	assert.Equal(t, []int{1, 2, 3}, dropped)
}

func TestRingPeek(t *testing.T) {
	r := NewRing[string](2, DropOldest)

	_, ok := r.Peek()
	assert.False(t, ok)

	_, err := r.Write("first")
	require.NoError(t, err)
	_, err = r.Write("second")
	require.NoError(t, err)

	item, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, "first", item)
	assert.Equal(t, 2, r.Size(), "peek does not consume")
}

func TestRingClear(t *testing.T) {
	var dropped []int
	r := NewRing[int](4, DropOldest)
	r.OnDrop(func(item int) { dropped = append(dropped, item) })

	for i := 1; i <= 3; i++ {
		_, err := r.Write(i)
		require.NoError(t, err)
	}

	r.Clear()
	assert.True(t, r.IsEmpty())
	assert.Equal(t, []int{1, 2, 3}, dropped)
}

func TestRingCloseRejectsWrites(t *testing.T) {
	r := NewRing[int](2, DropOldest)
	_, err := r.Write(1)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.Write(2)
	assert.Error(t, err)

	// Buffered items drain after close.
	item, ok := r.Read()
	require.True(t, ok)
	assert.Equal(t, 1, item)
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[int](0, DropOldest)
	assert.Equal(t, 1, r.Capacity())
}

func TestRingConcurrentAccess(t *testing.T) {
	r := NewRing[int](64, DropOldest)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				_, _ = r.Write(base + i)
			}
		}(w * 1000)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			r.Read()
		}
	}()

	wg.Wait()

	stats := r.Stats().Snapshot()
	assert.Equal(t, int64(1000), stats.Writes)
	assert.LessOrEqual(t, stats.Size, int64(64))
}

func TestStatisticsHighWaterMark(t *testing.T) {
	s := NewStatistics()
	s.UpdateSize(3)
	s.UpdateSize(7)
	s.UpdateSize(2)

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap.Size)
	assert.Equal(t, int64(7), snap.MaxSize)
}
