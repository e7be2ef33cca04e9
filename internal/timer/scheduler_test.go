package timer

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScheduler_After(t *testing.T) {
	t.Run("fires at the deadline", func(t *testing.T) {
		s := New(epoch)
		fired := false
		s.After(100*time.Millisecond, func() { fired = true })

		if n := s.Advance(epoch.Add(99 * time.Millisecond)); n != 0 || fired {
			t.Fatalf("fired early: n=%d", n)
		}
		if n := s.Advance(epoch.Add(100 * time.Millisecond)); n != 1 || !fired {
			t.Fatalf("expected callback at deadline, n=%d", n)
		}
		if s.Len() != 0 {
			t.Errorf("expected no pending callbacks, got %d", s.Len())
		}
	})

	t.Run("runs in deadline order", func(t *testing.T) {
		s := New(epoch)
		var order []string
		s.After(30*time.Millisecond, func() { order = append(order, "c") })
		s.After(10*time.Millisecond, func() { order = append(order, "a") })
		s.After(20*time.Millisecond, func() { order = append(order, "b") })

		s.Advance(epoch.Add(time.Second))

		if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
			t.Errorf("order = %v, want [a b c]", order)
		}
	})

	t.Run("callbacks scheduled while firing wait for the next advance", func(t *testing.T) {
		s := New(epoch)
		count := 0
		s.After(0, func() {
			count++
			s.After(0, func() { count++ })
		})

		s.Advance(epoch.Add(time.Millisecond))
		if count != 1 {
			t.Fatalf("count = %d after first advance, want 1", count)
		}
		s.Advance(epoch.Add(time.Millisecond))
		if count != 2 {
			t.Errorf("count = %d after second advance, want 2", count)
		}
	})

	t.Run("clock never moves backwards", func(t *testing.T) {
		s := New(epoch.Add(time.Second))
		s.Advance(epoch)
		if !s.Now().Equal(epoch.Add(time.Second)) {
			t.Errorf("Now() = %v, want %v", s.Now(), epoch.Add(time.Second))
		}
	})
}

func TestScheduler_Cancel(t *testing.T) {
	t.Run("cancelled callback never fires", func(t *testing.T) {
		s := New(epoch)
		fired := false
		h := s.After(time.Second, func() { fired = true })

		if !s.Pending(h) {
			t.Fatal("expected handle to be pending")
		}
		if !s.Cancel(h) {
			t.Fatal("expected Cancel to report pending handle")
		}
		s.Advance(epoch.Add(2 * time.Second))

		if fired {
			t.Error("cancelled callback fired")
		}
		if s.Cancel(h) {
			t.Error("second Cancel should report false")
		}
	})

	t.Run("zero handle is never pending", func(t *testing.T) {
		s := New(epoch)
		if s.Pending(0) || s.Cancel(0) {
			t.Error("zero handle should not be pending")
		}
	})

	t.Run("earlier callback can cancel a later one in the same batch", func(t *testing.T) {
		s := New(epoch)
		fired := false
		var later Handle
		s.After(10*time.Millisecond, func() { s.Cancel(later) })
		later = s.After(20*time.Millisecond, func() { fired = true })

		s.Advance(epoch.Add(time.Second))

		if fired {
			t.Error("callback cancelled mid-batch still fired")
		}
	})
}
