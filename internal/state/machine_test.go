package state

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/fluidportrait/internal/detector"
	"github.com/ayusman/fluidportrait/internal/terminal"
	"github.com/ayusman/fluidportrait/internal/timer"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	sched   *timer.Scheduler
	machine *Machine
}

func newFixture() *fixture {
	sched := timer.New(epoch)
	term := terminal.New(sched, rand.New(rand.NewPCG(9, 9)), terminal.GesturePacing)
	return &fixture{sched: sched, machine: NewMachine(sched, term)}
}

// wait advances the clock by d in frame-sized steps.
func (f *fixture) wait(d time.Duration) {
	end := f.sched.Now().Add(d)
	for f.sched.Now().Before(end) {
		next := f.sched.Now().Add(16 * time.Millisecond)
		if next.After(end) {
			next = end
		}
		f.sched.Advance(next)
	}
}

func hands(h ...detector.HandLandmarks) []detector.HandLandmarks {
	return h
}

func TestMode(t *testing.T) {
	if Attract.Sign() != 1 || Repel.Sign() != -1 {
		t.Errorf("unexpected signs: attract=%f repel=%f", Attract.Sign(), Repel.Sign())
	}
	if Attract.Toggle().Toggle() != Attract {
		t.Error("toggling twice should return to Attract")
	}
	if Attract.Toggle().Sign() != -Attract.Sign() {
		t.Error("toggle should invert the pull sign")
	}
	if Repel.String() != "Repel" || Attract.String() != "Attract" {
		t.Errorf("unexpected names %s/%s", Attract, Repel)
	}
}

func TestMachine_ThemeSwitch(t *testing.T) {
	t.Run("first fist switches immediately", func(t *testing.T) {
		f := newFixture()
		ev := f.machine.HandleHands(hands(detector.FistLandmarks()))
		if !ev.ThemeChanged || f.machine.State().ThemeIndex != 1 {
			t.Errorf("expected theme 1, got %d (changed=%v)", f.machine.State().ThemeIndex, ev.ThemeChanged)
		}
	})

	t.Run("repeated fists inside the cooldown switch once", func(t *testing.T) {
		f := newFixture()
		for i := 0; i < 10; i++ {
			f.machine.HandleHands(hands(detector.FistLandmarks()))
			f.wait(100 * time.Millisecond)
		}
		if got := f.machine.State().ThemeIndex; got != 1 {
			t.Errorf("ThemeIndex = %d after 1s of fists, want 1", got)
		}

		f.wait(500 * time.Millisecond)
		f.machine.HandleHands(hands(detector.FistLandmarks()))
		if got := f.machine.State().ThemeIndex; got != 2 {
			t.Errorf("ThemeIndex = %d after cooldown, want 2", got)
		}
	})

	t.Run("cooldown boundary", func(t *testing.T) {
		tests := []struct {
			name        string
			after       time.Duration
			wantChanged bool
			wantIndex   int
		}{
			{"just before", ThemeCooldown - time.Millisecond, false, 1},
			{"exactly at", ThemeCooldown, true, 2},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture()
				f.machine.HandleHands(hands(detector.FistLandmarks()))
				f.wait(tt.after)

				ev := f.machine.HandleHands(hands(detector.FistLandmarks()))
				if ev.ThemeChanged != tt.wantChanged {
					t.Errorf("ThemeChanged = %v, want %v", ev.ThemeChanged, tt.wantChanged)
				}
				if got := f.machine.State().ThemeIndex; got != tt.wantIndex {
					t.Errorf("ThemeIndex = %d, want %d", got, tt.wantIndex)
				}
			})
		}
	})

	t.Run("wraps past the last theme", func(t *testing.T) {
		f := newFixture()
		for i := 0; i < 5; i++ {
			f.machine.HandleHands(hands(detector.FistLandmarks()))
			f.wait(ThemeCooldown + time.Millisecond)
		}
		if got := f.machine.State().ThemeIndex; got != 0 {
			t.Errorf("ThemeIndex = %d after five switches, want 0", got)
		}
	})

	t.Run("switches while punished", func(t *testing.T) {
		f := newFixture()
		f.machine.HandleHands(hands(detector.MiddleFingerLandmarks()))
		ev := f.machine.HandleHands(hands(detector.FistLandmarks()))
		if !ev.ThemeChanged {
			t.Error("expected theme switch during punishment")
		}
	})

	t.Run("no hands is a no-op", func(t *testing.T) {
		f := newFixture()
		if ev := f.machine.HandleHands(nil); ev != (Events{}) {
			t.Errorf("HandleHands(nil) = %+v, want zero", ev)
		}
	})
}

func TestMachine_Punishment(t *testing.T) {
	t.Run("warning appears after the apology delay", func(t *testing.T) {
		f := newFixture()
		ev := f.machine.HandleHands(hands(detector.MiddleFingerLandmarks()))

		if !ev.Punished {
			t.Fatal("expected punishment to start")
		}
		st := f.machine.State()
		if st.Mode != Repel || st.Punishment != PunishmentActive {
			t.Fatalf("state = %+v, want Repel and active punishment", st)
		}

		f.wait(ApologyDelay - 20*time.Millisecond)
		if f.machine.Terminal().Visible() {
			t.Fatal("warning visible before the apology delay")
		}

		f.wait(20*time.Millisecond + 10*time.Second)
		if f.machine.State().Punishment != PunishmentWarned {
			t.Errorf("Punishment = %s, want warned", f.machine.State().Punishment)
		}
		if got := f.machine.Terminal().Text(); got != ApologyPrompt {
			t.Errorf("terminal = %q, want apology prompt", got)
		}
	})

	t.Run("override before the delay cancels the warning", func(t *testing.T) {
		f := newFixture()
		f.machine.HandleHands(hands(detector.MiddleFingerLandmarks()))
		f.wait(3 * time.Second)

		if !f.machine.Override() {
			t.Fatal("expected Override to lift the punishment")
		}
		f.wait(10 * time.Second)

		st := f.machine.State()
		if st.Mode != Attract || st.Punished() {
			t.Errorf("state = %+v, want Attract and no punishment", st)
		}
		if f.machine.Terminal().Visible() {
			t.Error("warning became visible after override")
		}
	})

	t.Run("toggle mode acts as override while punished", func(t *testing.T) {
		f := newFixture()
		f.machine.HandleHands(hands(detector.MiddleFingerLandmarks()))

		if mode := f.machine.ToggleMode(); mode != Attract {
			t.Errorf("ToggleMode() = %s, want Attract", mode)
		}
		if f.machine.State().Punished() {
			t.Error("expected punishment lifted")
		}
	})

	t.Run("cooldown blocks a second punishment", func(t *testing.T) {
		f := newFixture()
		f.machine.HandleHands(hands(detector.MiddleFingerLandmarks()))
		f.machine.Override()

		f.wait(5 * time.Second)
		if ev := f.machine.HandleHands(hands(detector.MiddleFingerLandmarks())); ev.Punished {
			t.Error("punishment retriggered inside cooldown")
		}

		f.wait(5 * time.Second)
		if ev := f.machine.HandleHands(hands(detector.MiddleFingerLandmarks())); !ev.Punished {
			t.Error("expected punishment after cooldown")
		}
	})

	t.Run("preempts an in-flight peace message", func(t *testing.T) {
		f := newFixture()
		f.machine.HandleHands(hands(detector.PeaceLandmarks()))
		f.wait(100 * time.Millisecond)

		f.machine.HandleHands(hands(detector.MiddleFingerLandmarks()))
		f.wait(ApologyDelay - 100*time.Millisecond)

		if f.machine.Terminal().Visible() {
			t.Errorf("peace message survived punishment: %q", f.machine.Terminal().Text())
		}
	})

	t.Run("override outside punishment does nothing", func(t *testing.T) {
		f := newFixture()
		if f.machine.Override() {
			t.Error("expected Override to report false")
		}
	})
}

func TestMachine_Peace(t *testing.T) {
	t.Run("types both messages then clears", func(t *testing.T) {
		f := newFixture()
		ev := f.machine.HandleHands(hands(detector.PeaceLandmarks()))
		if !ev.PeaceShown {
			t.Fatal("expected peace message")
		}

		f.wait(2 * time.Second)
		if got := f.machine.Terminal().Text(); got != PeaceQuestion {
			t.Errorf("terminal = %q, want question", got)
		}

		replyDone := false
		for i := 0; i < 1000 && !replyDone; i++ {
			f.wait(16 * time.Millisecond)
			replyDone = f.machine.Terminal().Text() == PeaceReply && !f.machine.Terminal().Typing()
		}
		if !replyDone {
			t.Fatalf("reply never finished, terminal = %q", f.machine.Terminal().Text())
		}

		f.wait(PeaceClearDelay + 50*time.Millisecond)
		if f.machine.Terminal().Visible() {
			t.Error("expected terminal cleared after the reply")
		}
		if f.machine.State().Mode != Attract {
			t.Error("peace must not change the mode")
		}
	})

	t.Run("ignored while punished", func(t *testing.T) {
		f := newFixture()
		f.machine.HandleHands(hands(detector.MiddleFingerLandmarks()))
		if ev := f.machine.HandleHands(hands(detector.PeaceLandmarks())); ev.PeaceShown {
			t.Error("peace shown during punishment")
		}
	})

	t.Run("ignored inside the cooldown", func(t *testing.T) {
		f := newFixture()
		f.machine.HandleHands(hands(detector.PeaceLandmarks()))
		f.machine.Terminal().Clear()

		f.wait(time.Second)
		if ev := f.machine.HandleHands(hands(detector.PeaceLandmarks())); ev.PeaceShown {
			t.Error("peace retriggered inside cooldown")
		}

		f.wait(PeaceCooldown)
		if ev := f.machine.HandleHands(hands(detector.PeaceLandmarks())); !ev.PeaceShown {
			t.Error("expected peace after cooldown")
		}
	})

	t.Run("ignored while the terminal is busy", func(t *testing.T) {
		f := newFixture()
		f.machine.Terminal().Type([]string{strings.Repeat("x", 200)}, terminal.Options{})
		if ev := f.machine.HandleHands(hands(detector.PeaceLandmarks())); ev.PeaceShown {
			t.Error("peace shown while another message was typing")
		}
	})
}

func TestSimulationState_Lines(t *testing.T) {
	var st SimulationState
	if st.ModeLine() != "> Mode: Attract" {
		t.Errorf("ModeLine() = %q", st.ModeLine())
	}
	if !strings.Contains(st.ShortcutLine(), "Space Toggle Mode") {
		t.Errorf("ShortcutLine() = %q, want mode shortcut", st.ShortcutLine())
	}

	st.Punishment = PunishmentActive
	if st.ShortcutLine() != "> Shortcuts: V Toggle Preview" {
		t.Errorf("ShortcutLine() while punished = %q", st.ShortcutLine())
	}
}
