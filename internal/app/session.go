package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ayusman/fluidportrait/internal/feed"
	"github.com/google/uuid"
)

// User-visible status strings. The empty string means everything is fine.
const (
	StatusOK               = ""
	StatusLoadingModels    = "Loading models..."
	StatusRequestingCamera = "Requesting camera access..."
	StatusLoadFailed       = "Camera or model failed to load"
	StatusProcessingFailed = "Model processing failed"
)

// Session errors.
var (
	ErrSessionActive = errors.New("session already active")
	ErrNoCamera      = errors.New("camera disabled")
	ErrNoDetector    = errors.New("no landmark detector available")
)

// StartSession opens the camera and starts the capture pump. Failures set
// a user-visible status and the simulation keeps running without
// tracking; nothing is retried.
func (a *App) StartSession(ctx context.Context) error {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.active.Load() {
		return ErrSessionActive
	}
	a.reapSession()

	if a.camera == nil {
		a.setStatus(StatusLoadFailed)
		return ErrNoCamera
	}

	a.setStatus(StatusLoadingModels)
	if a.detector == nil {
		a.setStatus(StatusLoadFailed)
		return ErrNoDetector
	}

	a.setStatus(StatusRequestingCamera)
	if err := a.camera.Open(); err != nil {
		a.setStatus(StatusLoadFailed)
		return fmt.Errorf("start session: %w", err)
	}

	id := uuid.NewString()
	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	pump := &feed.Pump{
		Camera:    a.camera,
		Motion:    a.motion,
		Detector:  a.detector,
		Face:      &a.face,
		Hands:     &a.hands,
		Preview:   &a.preview,
		IdleFPS:   a.config.IdleFPS,
		ActiveFPS: a.config.ActiveFPS,
		OnError: func(err error) {
			log.Printf("Session %s: %v", id, err)
			a.setStatus(StatusProcessingFailed)
		},
	}

	a.cancel = cancel
	a.done = done
	a.active.Store(true)
	a.mu.Lock()
	a.sessionID = id
	a.status = StatusOK
	a.mu.Unlock()

	go func() {
		defer close(done)
		err := pump.Run(sctx)
		a.active.Store(false)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Session %s ended: %v", id, err)
			a.setStatus(StatusLoadFailed)
		}
	}()

	log.Printf("Session %s started", id)
	return nil
}

// StopSession stops the capture pump and closes the camera. Calling it
// without a session is a no-op.
func (a *App) StopSession() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.cancel == nil {
		return
	}
	id := a.SessionID()
	a.reapSession()
	log.Printf("Session %s stopped", id)
}

// reapSession tears down a running or finished session. Callers hold sessionMu.
func (a *App) reapSession() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel = nil
	a.done = nil
	a.active.Store(false)

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if a.motion != nil {
		a.motion.Reset()
	}
	a.face.Clear()
	a.hands.Clear()
	a.preview.Clear()

	a.mu.Lock()
	a.sessionID = ""
	a.mu.Unlock()
}

// SessionActive reports whether the capture pump is running.
func (a *App) SessionActive() bool {
	return a.active.Load()
}

// SessionID returns the id of the current session, or "".
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// Status returns the user-visible status string.
func (a *App) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *App) setStatus(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}
