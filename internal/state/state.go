// Package state holds the simulation mode, theme and punishment state and
// the gesture-driven transitions between them.
package state

import (
	"time"

	"github.com/ayusman/fluidportrait/internal/timer"
)

// Mode is the sign applied to every particle pull.
type Mode int

const (
	Attract Mode = iota
	Repel
)

// String returns the display name of the mode.
func (m Mode) String() string {
	if m == Repel {
		return "Repel"
	}
	return "Attract"
}

// Sign returns +1 for Attract and -1 for Repel.
func (m Mode) Sign() float64 {
	if m == Repel {
		return -1
	}
	return 1
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Repel {
		return Attract
	}
	return Repel
}

// Punishment tracks the timed mode override.
type Punishment int

const (
	// PunishmentInactive is normal operation.
	PunishmentInactive Punishment = iota
	// PunishmentActive forces Repel while the apology warning is pending.
	PunishmentActive
	// PunishmentWarned means the apology warning has been shown.
	PunishmentWarned
)

func (p Punishment) String() string {
	switch p {
	case PunishmentActive:
		return "active"
	case PunishmentWarned:
		return "warned"
	default:
		return "inactive"
	}
}

// SimulationState is the mode, theme and punishment shared with the swarm.
// Cooldown deadlines and the apology timer handle are owned by Machine.
type SimulationState struct {
	Mode       Mode
	ThemeIndex int
	Punishment Punishment

	lastThemeSwitch     time.Time
	peaceCooldownUntil  time.Time
	punishCooldownUntil time.Time
	apology             timer.Handle
}

// Punished reports whether a punishment is in effect.
func (s SimulationState) Punished() bool {
	return s.Punishment != PunishmentInactive
}

// ModeLine is the mode status shown to the user.
func (s SimulationState) ModeLine() string {
	return "> Mode: " + s.Mode.String()
}

// ShortcutLine lists the keyboard shortcuts available in the current state.
func (s SimulationState) ShortcutLine() string {
	if s.Punished() {
		return "> Shortcuts: V Toggle Preview"
	}
	return "> Shortcuts: Space Toggle Mode · V Toggle Preview"
}
