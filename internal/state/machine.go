package state

import (
	"log"
	"time"

	"github.com/ayusman/fluidportrait/internal/detector"
	"github.com/ayusman/fluidportrait/internal/gesture"
	"github.com/ayusman/fluidportrait/internal/terminal"
	"github.com/ayusman/fluidportrait/internal/theme"
	"github.com/ayusman/fluidportrait/internal/timer"
)

// Cooldowns and delays of gesture-triggered transitions.
const (
	ThemeCooldown    = 1400 * time.Millisecond
	PunishCooldown   = 9000 * time.Millisecond
	ApologyDelay     = 7000 * time.Millisecond
	PeaceCooldown    = 6000 * time.Millisecond
	PeaceFollowDelay = 2000 * time.Millisecond
	PeaceClearDelay  = 900 * time.Millisecond
)

// Scripted messages.
const (
	PeaceQuestion = "> How's your day?"
	PeaceReply    = "I know you're gonna to say i'm good, but i think you're not. Because you're so bored that you're browsing this website."
	ApologyPrompt = "You should be more polite, you boring person. Press the spacebar to apologize to me."
)

// Events reports what a call to HandleHands changed.
type Events struct {
	ThemeChanged bool
	Punished     bool
	PeaceShown   bool
}

// Machine applies gesture and user transitions to a SimulationState. It is
// driven from the frame loop and is not safe for concurrent use.
type Machine struct {
	state SimulationState
	sched *timer.Scheduler
	term  *terminal.Typewriter
}

// NewMachine returns a Machine in Attract mode on the first theme. Scripted
// messages are typed on term.
func NewMachine(sched *timer.Scheduler, term *terminal.Typewriter) *Machine {
	return &Machine{sched: sched, term: term}
}

// State returns a copy of the current state.
func (m *Machine) State() SimulationState {
	return m.state
}

// Theme returns the active theme.
func (m *Machine) Theme() theme.Theme {
	return theme.At(m.state.ThemeIndex)
}

// Terminal returns the gesture message terminal.
func (m *Machine) Terminal() *terminal.Typewriter {
	return m.term
}

// HandleHands evaluates one hand result. Theme switching applies in every
// state; a punishment trigger ends evaluation for the result; the peace
// message only runs outside punishment.
func (m *Machine) HandleHands(hands []detector.HandLandmarks) Events {
	var ev Events
	if len(hands) == 0 {
		return ev
	}
	now := m.sched.Now()
	pose := gesture.Any(hands)

	if pose.Fist && m.themeReady(now) {
		m.advanceTheme(now)
		ev.ThemeChanged = true
	}

	if pose.Obscene && now.After(m.state.punishCooldownUntil) && !m.state.Punished() {
		m.punish(now)
		ev.Punished = true
		return ev
	}

	if m.state.Punished() {
		return ev
	}

	if pose.Peace && now.After(m.state.peaceCooldownUntil) && !m.term.Busy() {
		m.state.peaceCooldownUntil = now.Add(PeaceCooldown)
		m.showPeace()
		ev.PeaceShown = true
	}
	return ev
}

// ToggleMode flips between Attract and Repel. While punished it acts as
// Override instead.
func (m *Machine) ToggleMode() Mode {
	if m.state.Punished() {
		m.Override()
		return m.state.Mode
	}
	m.state.Mode = m.state.Mode.Toggle()
	log.Printf("Mode set to %s", m.state.Mode)
	return m.state.Mode
}

// Override ends a punishment: Attract mode, no pending apology, terminal
// cleared. It reports whether a punishment was in effect.
func (m *Machine) Override() bool {
	if !m.state.Punished() {
		return false
	}
	m.sched.Cancel(m.state.apology)
	m.state.apology = 0
	m.state.Punishment = PunishmentInactive
	m.state.Mode = Attract
	m.term.Clear()
	log.Println("Punishment lifted")
	return true
}

func (m *Machine) themeReady(now time.Time) bool {
	last := m.state.lastThemeSwitch
	return last.IsZero() || now.Sub(last) >= ThemeCooldown
}

func (m *Machine) advanceTheme(now time.Time) {
	m.state.ThemeIndex = theme.Next(m.state.ThemeIndex)
	m.state.lastThemeSwitch = now
	log.Printf("Theme switched to %s", theme.At(m.state.ThemeIndex).Name)
}

func (m *Machine) punish(now time.Time) {
	m.state.punishCooldownUntil = now.Add(PunishCooldown)
	m.state.Punishment = PunishmentActive
	m.state.Mode = Repel
	m.term.Clear()

	m.sched.Cancel(m.state.apology)
	m.state.apology = m.sched.After(ApologyDelay, func() {
		m.state.apology = 0
		m.state.Punishment = PunishmentWarned
		m.term.Type([]string{ApologyPrompt}, terminal.Options{})
	})
	log.Println("Punishment started")
}

func (m *Machine) showPeace() {
	m.term.Type([]string{PeaceQuestion}, terminal.Options{
		OnDone: func() {
			m.term.After(PeaceFollowDelay, func() {
				m.term.Type([]string{PeaceReply}, terminal.Options{
					OnDone: func() {
						m.term.After(PeaceClearDelay, m.term.Clear)
					},
				})
			})
		},
	})
}
