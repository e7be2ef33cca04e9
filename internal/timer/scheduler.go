// Package timer provides one-shot callbacks driven by the frame clock.
//
// A Scheduler never starts goroutines: callbacks run inside Advance, on the
// caller's goroutine, so state they touch keeps a single writer.
package timer

import (
	"sort"
	"time"
)

// Handle identifies a scheduled callback. The zero Handle refers to nothing.
type Handle uint64

type entry struct {
	handle   Handle
	deadline time.Time
	fn       func()
}

// Scheduler holds pending one-shot callbacks keyed by Handle.
type Scheduler struct {
	now     time.Time
	next    Handle
	pending map[Handle]*entry
}

// New returns a Scheduler whose clock starts at now.
func New(now time.Time) *Scheduler {
	return &Scheduler{
		now:     now,
		pending: make(map[Handle]*entry),
	}
}

// Now returns the time of the last Advance.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// After schedules fn to run once the clock reaches Now()+d.
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	s.next++
	h := s.next
	s.pending[h] = &entry{handle: h, deadline: s.now.Add(d), fn: fn}
	return h
}

// Cancel removes a pending callback. It reports whether h was still pending.
func (s *Scheduler) Cancel(h Handle) bool {
	if _, ok := s.pending[h]; !ok {
		return false
	}
	delete(s.pending, h)
	return true
}

// Pending reports whether h is scheduled and has not yet fired.
func (s *Scheduler) Pending(h Handle) bool {
	_, ok := s.pending[h]
	return ok
}

// Len returns the number of pending callbacks.
func (s *Scheduler) Len() int {
	return len(s.pending)
}

// Advance moves the clock to now and runs every callback whose deadline is
// not after it, earliest first. Callbacks scheduled while firing are
// relative to the new clock and wait for a later Advance. A callback
// cancelled by an earlier one in the same batch does not run.
// Advance returns the number of callbacks run.
func (s *Scheduler) Advance(now time.Time) int {
	if now.After(s.now) {
		s.now = now
	}

	var due []*entry
	for _, e := range s.pending {
		if !e.deadline.After(s.now) {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].handle < due[j].handle
		}
		return due[i].deadline.Before(due[j].deadline)
	})

	fired := 0
	for _, e := range due {
		if _, ok := s.pending[e.handle]; !ok {
			continue
		}
		delete(s.pending, e.handle)
		e.fn()
		fired++
	}
	return fired
}
