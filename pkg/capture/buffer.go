// Package capture holds the bounded diagnostic buffers fed by the browser
// Session: console messages and network responses.
package capture

import "sync"

// Buffer is a fixed-capacity, time-ordered buffer.
//
// When an append pushes the length past capacity, the buffer is cut down to
// the most recent retain entries in arrival order. Readers never observe more
// than capacity entries.
type Buffer[T any] struct {
	mu       sync.Mutex
	entries  []T
	capacity int
	retain   int
}

// NewBuffer creates a buffer holding at most capacity entries that keeps the
// newest retain entries on overflow. retain is clamped to [1, capacity].
func NewBuffer[T any](capacity, retain int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	if retain < 1 {
		retain = 1
	}
	if retain > capacity {
		retain = capacity
	}
	return &Buffer[T]{
		entries:  make([]T, 0, capacity+1),
		capacity: capacity,
		retain:   retain,
	}
}

// Append adds an entry, evicting the oldest entries on overflow.
func (b *Buffer[T]) Append(entry T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entry)
	if len(b.entries) > b.capacity {
		kept := make([]T, b.retain, b.capacity+1)
		copy(kept, b.entries[len(b.entries)-b.retain:])
		b.entries = kept
	}
}

// Snapshot returns a copy of the entries, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]T, len(b.entries))
	copy(out, b.entries)
	return out
}

// Take removes and returns the entries matching match, in order. Entries that
// do not match stay buffered.
func (b *Buffer[T]) Take(match func(T) bool) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []T
	rest := b.entries[:0]
	for _, e := range b.entries {
		if match(e) {
			out = append(out, e)
		} else {
			rest = append(rest, e)
		}
	}
	clear(b.entries[len(rest):])
	b.entries = rest
	return out
}

// Clear drops all entries.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
}

// Len returns the number of buffered entries.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}
