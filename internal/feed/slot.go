// Package feed moves detector output from the capture goroutine to the
// frame loop through overwrite-on-write latest-value slots.
package feed

import "sync/atomic"

type entry[T any] struct {
	value T
	seq   uint64
}

// Slot holds the most recently stored value. Writers never block and
// readers always see a complete value; intermediate values may be skipped.
type Slot[T any] struct {
	cur atomic.Pointer[entry[T]]
	seq atomic.Uint64
}

// Store replaces the held value and returns its sequence number. When
// writers race, the value with the highest sequence is kept.
func (s *Slot[T]) Store(v T) uint64 {
	n := s.seq.Add(1)
	e := &entry[T]{value: v, seq: n}
	for {
		old := s.cur.Load()
		if old != nil && old.seq > n {
			return n
		}
		if s.cur.CompareAndSwap(old, e) {
			return n
		}
	}
}

// Load returns the latest value and its sequence number. Sequence zero
// means nothing has been stored yet.
func (s *Slot[T]) Load() (T, uint64) {
	e := s.cur.Load()
	if e == nil {
		var zero T
		return zero, 0
	}
	return e.value, e.seq
}

// Clear stores the zero value.
func (s *Slot[T]) Clear() uint64 {
	var zero T
	return s.Store(zero)
}
