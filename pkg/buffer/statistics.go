package buffer

import "sync/atomic"

// Statistics tracks buffer activity with atomic counters. Collection is
// always on; the counters are cheap enough to never disable.
type Statistics struct {
	writes    atomic.Int64
	reads     atomic.Int64
	drops     atomic.Int64
	overflows atomic.Int64
	size      atomic.Int64
	maxSize   atomic.Int64
}

// NewStatistics creates a zeroed statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Write records a successful write.
func (s *Statistics) Write() {
	s.writes.Add(1)
}

// Read records a successful read.
func (s *Statistics) Read() {
	s.reads.Add(1)
}

// Drop records an item dropped by the overflow policy.
func (s *Statistics) Drop() {
	s.drops.Add(1)
}

// Overflow records a write arriving against a full buffer.
func (s *Statistics) Overflow() {
	s.overflows.Add(1)
}

// UpdateSize records the current size and tracks the high-water mark.
func (s *Statistics) UpdateSize(size int64) {
	s.size.Store(size)
	for {
		max := s.maxSize.Load()
		if size <= max || s.maxSize.CompareAndSwap(max, size) {
			return
		}
	}
}

// Snapshot is a point-in-time copy of the statistics counters.
type Snapshot struct {
	Writes    int64
	Reads     int64
	Drops     int64
	Overflows int64
	Size      int64
	MaxSize   int64
}

// Snapshot returns the current counter values.
func (s *Statistics) Snapshot() Snapshot {
	return Snapshot{
		Writes:    s.writes.Load(),
		Reads:     s.reads.Load(),
		Drops:     s.drops.Load(),
		Overflows: s.overflows.Load(),
		Size:      s.size.Load(),
		MaxSize:   s.maxSize.Load(),
	}
}
