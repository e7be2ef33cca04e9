package app

import (
	"github.com/ayusman/fluidportrait/internal/swarm"
	"github.com/ayusman/fluidportrait/internal/targets"
)

// Snapshot is a read-only view of the last frame for the HTTP API and tray.
type Snapshot struct {
	Frame          uint64 `json:"frame"`
	Mode           string `json:"mode"`
	Theme          string `json:"theme"`
	ThemeIndex     int    `json:"themeIndex"`
	Punishment     string `json:"punishment"`
	Status         string `json:"status"`
	SessionID      string `json:"sessionId,omitempty"`
	Tracking       bool   `json:"tracking"`
	PreviewVisible bool   `json:"previewVisible"`
	Branch         string `json:"branch"`

	Particles   int `json:"particles"`
	FaceTargets int `json:"faceTargets"`
	HandTargets int `json:"handTargets"`
	TextTargets int `json:"textTargets"`
	Hands       int `json:"hands"`

	ModeLine        string `json:"modeLine"`
	ShortcutLine    string `json:"shortcutLine"`
	Terminal        string `json:"terminal"`
	TerminalVisible bool   `json:"terminalVisible"`
	Intro           string `json:"intro"`
	IntroVisible    bool   `json:"introVisible"`
}

// Snapshot returns the state published by the last frame.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// publish runs on the frame loop after each step.
func (a *App) publish(res swarm.Result, set targets.Set, hands int) {
	st := a.machine.State()
	snap := Snapshot{
		Frame:           a.frames,
		Mode:            st.Mode.String(),
		Theme:           a.machine.Theme().Name,
		ThemeIndex:      st.ThemeIndex,
		Punishment:      st.Punishment.String(),
		Tracking:        a.Tracking(),
		PreviewVisible:  a.previewVisible,
		Branch:          res.Branch.String(),
		Particles:       a.sim.Len(),
		FaceTargets:     len(set.Face),
		HandTargets:     len(set.Hand),
		TextTargets:     res.ActiveText,
		Hands:           hands,
		ModeLine:        st.ModeLine(),
		ShortcutLine:    st.ShortcutLine(),
		Terminal:        a.term.Text(),
		TerminalVisible: a.term.Visible(),
		Intro:           a.intro.Text(),
		IntroVisible:    a.intro.Visible(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	snap.Status = a.status
	snap.SessionID = a.sessionID
	a.snap = snap
}
