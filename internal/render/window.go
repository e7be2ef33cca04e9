package render

import "gocv.io/x/gocv"

// Key codes returned by WaitKey.
const (
	keyEnter    = 13
	keyNewline  = 10
	keySpace    = 32
	keyEscape   = 27
	keyV        = 'v'
	keyUpperV   = 'V'
	keyQ        = 'q'
	keyNoneCode = -1
)

// Window action names produced by KeyAction.
const (
	ActionStartSession  = "start-session"
	ActionToggleMode    = "toggle-mode"
	ActionTogglePreview = "toggle-preview"
	ActionQuit          = "quit"
)

// KeyAction maps a WaitKey code to a named action.
func KeyAction(key int) (string, bool) {
	switch key {
	case keyEnter, keyNewline:
		return ActionStartSession, true
	case keySpace:
		return ActionToggleMode, true
	case keyV, keyUpperV:
		return ActionTogglePreview, true
	case keyEscape, keyQ:
		return ActionQuit, true
	}
	return "", false
}

// Window shows the canvas in an OpenCV window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a named window sized to the canvas.
func NewWindow(title string, width, height int) *Window {
	win := gocv.NewWindow(title)
	win.ResizeWindow(width, height)
	return &Window{win: win}
}

// Show displays c and polls the keyboard for up to delayMs milliseconds.
// It returns the mapped action when a known key was pressed.
func (w *Window) Show(c *MatCanvas, delayMs int) (string, bool) {
	w.win.IMShow(*c.Mat())
	key := w.win.WaitKey(max(1, delayMs))
	if key == keyNoneCode {
		return "", false
	}
	return KeyAction(key)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
