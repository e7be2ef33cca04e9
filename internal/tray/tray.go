// Package tray provides a system tray menu for the particle portrait.
package tray

import (
	"fmt"
	"sync"

	"github.com/ayusman/fluidportrait/internal/app"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onAction func(action app.Action)
	onQuit   func()
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuMode   *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnAction sets the callback for menu items that map to an action.
func (t *Tray) OnAction(fn func(action app.Action)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAction = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// menuEntry binds a menu item to the action it queues.
type menuEntry struct {
	title   string
	tooltip string
	action  app.Action
}

var menuEntries = []menuEntry{
	{"Start Camera", "Start face and hand tracking", app.ActionStartSession},
	{"Toggle Mode", "Switch between attract and repel", app.ActionToggleMode},
	{"Toggle Preview", "Show or hide the landmark preview", app.ActionTogglePreview},
	{"Apologize", "Lift the punishment", app.ActionPunishmentOverride},
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Fluid Portrait")
	systray.SetTooltip("Particle Fluid Portrait")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(StatusLine(app.Snapshot{}), "Current state")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	for _, e := range menuEntries {
		item := systray.AddMenuItem(e.title, e.tooltip)
		if e.action == app.ActionToggleMode {
			t.mu.Lock()
			t.menuMode = item
			t.mu.Unlock()
		}
		go func(action app.Action) {
			for range item.ClickedCh {
				t.handleAction(action)
			}
		}(e.action)
	}
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Fluid Portrait")
	go func() {
		<-menuQuit.ClickedCh
		t.handleQuit()
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleAction forwards a menu click to the action callback.
func (t *Tray) handleAction(action app.Action) {
	t.mu.RLock()
	callback := t.onAction
	t.mu.RUnlock()

	if callback != nil {
		callback(action)
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Update refreshes the status line from snap. It is a no-op before the
// menu is ready.
func (t *Tray) Update(snap app.Snapshot) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(StatusLine(snap))
	}
	if t.menuMode != nil {
		if snap.Punishment != "inactive" && snap.Punishment != "" {
			t.menuMode.Disable()
		} else {
			t.menuMode.Enable()
		}
	}
}

// StatusLine summarizes snap for the tray menu.
func StatusLine(snap app.Snapshot) string {
	if snap.Status != "" {
		return snap.Status
	}
	mode := snap.Mode
	if mode == "" {
		mode = "Attract"
	}
	line := fmt.Sprintf("Mode: %s", mode)
	if snap.Theme != "" {
		line += fmt.Sprintf(" | Theme: %s", snap.Theme)
	}
	if snap.Punishment == "active" || snap.Punishment == "warned" {
		line += " | Punished"
	}
	return line
}
