// Package buffer provides a generic, thread-safe bounded ring buffer with
// configurable overflow policies and always-on statistics.
package buffer

import (
	"sync"

	"github.com/c360/cogstream/errors"
)

// OverflowPolicy defines how the buffer behaves when it reaches capacity.
type OverflowPolicy int

const (
	// DropOldest removes the oldest item to make room for new items. The
	// reader always sees the most recent window, possibly missing
	// intermediate items.
	DropOldest OverflowPolicy = iota

	// DropNewest drops new items when the buffer is full. Items already
	// buffered stay intact; the write reports non-delivery.
	DropNewest
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "drop-oldest"
	case DropNewest:
		return "drop-newest"
	default:
		return "unknown"
	}
}

// DropCallback is called with each item dropped by the overflow policy.
// The callback runs after the triggering operation releases the buffer
// lock.
type DropCallback[T any] func(item T)

// Ring is a fixed-capacity circular buffer. Writes never block: when the
// buffer is full the configured overflow policy decides which item is
// dropped. All methods are safe for concurrent use; the single-producer,
// single-consumer pattern used by bus subscriptions needs no external
// locking.
type Ring[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int // next write position
	tail     int // next read position
	policy   OverflowPolicy
	onDrop   DropCallback[T]
	stats    *Statistics
	closed   bool
}

// NewRing creates a ring buffer with the given capacity and policy.
// Capacity is clamped to a minimum of 1.
func NewRing[T any](capacity int, policy OverflowPolicy) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		policy:   policy,
		stats:    NewStatistics(),
	}
}

// OnDrop installs a callback invoked for every item dropped by the
// overflow policy. Must be set before concurrent use begins.
func (r *Ring[T]) OnDrop(cb DropCallback[T]) {
	r.onDrop = cb
}

// Write adds an item according to the overflow policy. The boolean result
// reports whether the new item was admitted: always true for DropOldest,
// false for DropNewest against a full buffer. An error is returned only
// when the buffer is closed.
func (r *Ring[T]) Write(item T) (bool, error) {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return false, errors.WrapInvalid(errors.ErrAlreadyStopped, "Ring", "Write", "buffer closed")
	}

	var dropped T
	var haveDrop bool

	if r.size == r.capacity {
		r.stats.Overflow()
		r.stats.Drop()

		if r.policy == DropNewest {
			r.mu.Unlock()
			if r.onDrop != nil {
				r.onDrop(item)
			}
			return false, nil
		}

		// DropOldest: evict to admit the new item
		dropped = r.items[r.tail]
		var zero T
		r.items[r.tail] = zero
		r.tail = (r.tail + 1) % r.capacity
		r.size--
		haveDrop = true
	}

	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	r.size++

	r.stats.Write()
	r.stats.UpdateSize(int64(r.size))
	r.mu.Unlock()

	if haveDrop && r.onDrop != nil {
		r.onDrop(dropped)
	}
	return true, nil
}

// Read retrieves and removes the oldest buffered item. Returns the zero
// value and false when the buffer is empty.
func (r *Ring[T]) Read() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}

	item := r.items[r.tail]
	r.items[r.tail] = zero // clear for GC
	r.tail = (r.tail + 1) % r.capacity
	r.size--

	r.stats.Read()
	r.stats.UpdateSize(int64(r.size))

	return item, true
}

// ReadBatch retrieves and removes up to max items in order.
func (r *Ring[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return nil
	}

	n := max
	if n > r.size {
		n = r.size
	}

	result := make([]T, n)
	var zero T
	for i := 0; i < n; i++ {
		result[i] = r.items[r.tail]
		r.items[r.tail] = zero
		r.tail = (r.tail + 1) % r.capacity
		r.size--
		r.stats.Read()
	}
	r.stats.UpdateSize(int64(r.size))

	return result
}

// Peek returns the oldest buffered item without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.items[r.tail], true
}

// Size returns the current number of buffered items.
func (r *Ring[T]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Capacity returns the fixed buffer capacity.
func (r *Ring[T]) Capacity() int {
	return r.capacity // immutable, no lock needed
}

// IsEmpty returns true when no items are buffered.
func (r *Ring[T]) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size == 0
}

// IsFull returns true when the buffer is at capacity.
func (r *Ring[T]) IsFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size == r.capacity
}

// Clear discards all buffered items.
func (r *Ring[T]) Clear() {
	r.mu.Lock()

	var toDrop []T
	if r.onDrop != nil && r.size > 0 {
		toDrop = make([]T, r.size)
		for i := 0; i < r.size; i++ {
			toDrop[i] = r.items[(r.tail+i)%r.capacity]
		}
	}

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.tail = 0
	r.size = 0
	r.stats.UpdateSize(0)
	r.mu.Unlock()

	for _, item := range toDrop {
		r.onDrop(item)
	}
}

// Stats returns the buffer statistics tracker.
func (r *Ring[T]) Stats() *Statistics {
	return r.stats
}

// Close marks the buffer closed. Subsequent writes fail; buffered items
// remain readable for draining.
func (r *Ring[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
