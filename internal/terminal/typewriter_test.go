package terminal

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/fluidportrait/internal/timer"
)

var epoch = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

// drain advances the scheduler in small steps until nothing is pending.
func drain(s *timer.Scheduler, limit time.Duration) time.Duration {
	start := s.Now()
	for s.Len() > 0 && s.Now().Sub(start) < limit {
		s.Advance(s.Now().Add(5 * time.Millisecond))
	}
	return s.Now().Sub(start)
}

func newTypewriter() (*Typewriter, *timer.Scheduler) {
	sched := timer.New(epoch)
	return New(sched, rand.New(rand.NewPCG(3, 4)), GesturePacing), sched
}

func TestTypewriter_Type(t *testing.T) {
	t.Run("reveals every line", func(t *testing.T) {
		tw, sched := newTypewriter()
		done := false

		if !tw.Type([]string{"hello", "world"}, Options{OnDone: func() { done = true }}) {
			t.Fatal("expected Type to start")
		}
		if !tw.Visible() || !tw.Typing() {
			t.Fatal("expected terminal visible and typing")
		}

		drain(sched, 10*time.Second)

		if tw.Text() != "hello\nworld" {
			t.Errorf("Text() = %q, want %q", tw.Text(), "hello\nworld")
		}
		if !done {
			t.Error("OnDone was not called")
		}
		if tw.Typing() || tw.Busy() {
			t.Error("expected terminal idle after typing")
		}
	})

	t.Run("characters arrive over time", func(t *testing.T) {
		tw, sched := newTypewriter()
		tw.Type([]string{"abcdef"}, Options{})

		sched.Advance(epoch.Add(GesturePacing.CharMin + GesturePacing.CharJitter))
		if got := tw.Text(); len(got) != 1 {
			t.Errorf("after one char delay Text() = %q, want one character", got)
		}
	})

	t.Run("second call while typing is ignored", func(t *testing.T) {
		tw, sched := newTypewriter()
		tw.Type([]string{"first"}, Options{})

		if tw.Type([]string{"second"}, Options{}) {
			t.Error("expected Type to refuse while typing")
		}
		drain(sched, 10*time.Second)
		if tw.Text() != "first" {
			t.Errorf("Text() = %q, want %q", tw.Text(), "first")
		}
	})

	t.Run("prefix is written before each line", func(t *testing.T) {
		tw, sched := newTypewriter()
		tw.Type([]string{"a", "b"}, Options{Prefix: func(i int) string {
			if i == 0 {
				return "> "
			}
			return "  "
		}})
		drain(sched, 10*time.Second)
		if tw.Text() != "> a\n  b" {
			t.Errorf("Text() = %q, want %q", tw.Text(), "> a\n  b")
		}
	})
}

func TestTypewriter_Clear(t *testing.T) {
	t.Run("cancels typing and hides", func(t *testing.T) {
		tw, sched := newTypewriter()
		done := false
		tw.Type([]string{"interrupted"}, Options{OnDone: func() { done = true }})
		sched.Advance(epoch.Add(100 * time.Millisecond))

		tw.Clear()
		drain(sched, 10*time.Second)

		if tw.Visible() || tw.Typing() || tw.Text() != "" {
			t.Errorf("expected cleared terminal, got visible=%v typing=%v text=%q", tw.Visible(), tw.Typing(), tw.Text())
		}
		if done {
			t.Error("OnDone ran after Clear")
		}
	})

	t.Run("cancels a pending follow-up", func(t *testing.T) {
		tw, sched := newTypewriter()
		fired := false
		tw.After(time.Second, func() { fired = true })
		if !tw.Busy() {
			t.Fatal("expected pending follow-up to make the terminal busy")
		}

		tw.Clear()
		sched.Advance(epoch.Add(2 * time.Second))

		if fired {
			t.Error("follow-up fired after Clear")
		}
	})
}

func TestIntro_Start(t *testing.T) {
	sched := timer.New(epoch)
	intro := NewIntro(sched, rand.New(rand.NewPCG(1, 1)))

	if !intro.Start() {
		t.Fatal("expected first Start to type")
	}
	if intro.Start() {
		t.Error("expected second Start to be a no-op")
	}
	if !intro.Fired() {
		t.Error("expected Fired() after Start")
	}

	drain(sched, time.Minute)

	lines := strings.Split(intro.Text(), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), intro.Text())
	}
	if lines[0] != "> [GMT 14:05:06] "+IntroLines[0] {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "  "+IntroLines[1] {
		t.Errorf("second line = %q", lines[1])
	}
}
