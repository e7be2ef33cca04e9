package app

import (
	"errors"
	"fmt"
	"log"
)

// Action is a named user input.
type Action string

// User input surface.
const (
	ActionStartSession       Action = "start-session"
	ActionToggleMode         Action = "toggle-mode"
	ActionTogglePreview      Action = "toggle-preview"
	ActionPunishmentOverride Action = "punishment-override"
)

// ErrUnknownAction is returned for action names outside the input surface.
var ErrUnknownAction = errors.New("unknown action")

// ErrQueueFull is returned by Do when the frame loop is not keeping up.
var ErrQueueFull = errors.New("action queue full")

// Actions lists every accepted action.
func Actions() []Action {
	return []Action{ActionStartSession, ActionToggleMode, ActionTogglePreview, ActionPunishmentOverride}
}

// ParseAction validates an action name.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions() {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// actionQueueSize bounds the number of actions waiting for the next frame.
const actionQueueSize = 64

// Do queues an action for the next frame. It never blocks.
func (a *App) Do(action Action) error {
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}
	select {
	case a.actions <- action:
		return nil
	default:
		return ErrQueueFull
	}
}

// applyAction runs on the frame loop.
func (a *App) applyAction(action Action) {
	log.Printf("Action: %s", action)
	switch action {
	case ActionStartSession:
		if a.SessionActive() {
			return
		}
		ctx := a.baseCtx
		go func() {
			if err := a.StartSession(ctx); err != nil {
				log.Printf("Failed to start session: %v", err)
			}
		}()
	case ActionToggleMode:
		a.machine.ToggleMode()
	case ActionTogglePreview:
		a.previewVisible = !a.previewVisible
	case ActionPunishmentOverride:
		a.machine.Override()
	}
}
