// Package app runs the particle portrait: it owns the frame loop, the
// capture session and the single writer of simulation state.
package app

import (
	"context"
	"image"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/fluidportrait/internal/capture"
	"github.com/ayusman/fluidportrait/internal/detector"
	"github.com/ayusman/fluidportrait/internal/feed"
	"github.com/ayusman/fluidportrait/internal/geom"
	"github.com/ayusman/fluidportrait/internal/render"
	"github.com/ayusman/fluidportrait/internal/state"
	"github.com/ayusman/fluidportrait/internal/swarm"
	"github.com/ayusman/fluidportrait/internal/targets"
	"github.com/ayusman/fluidportrait/internal/terminal"
	"github.com/ayusman/fluidportrait/internal/timer"
)

// Frame loop timing.
const (
	// FrameRate is the target simulation rate of Run.
	FrameRate = 60
	// StreamInterval is the minimum gap between encoded stream frames (~15 FPS).
	StreamInterval = 66 * time.Millisecond
	// previewMargin is the gap between the preview and the canvas corner.
	previewMargin = 16
)

// Config holds the application settings.
type Config struct {
	Width     int
	Height    int
	Particles int
	// Seed seeds the simulation randomness. Zero picks a time-based seed.
	Seed           uint64
	IntroText      string
	RevealDuration time.Duration

	CameraEnabled   bool
	Camera          capture.Config
	MotionThreshold float64
	IdleFPS         int
	ActiveFPS       int

	// Render draws frames into an OpenCV canvas for the window and stream.
	Render bool
}

// DefaultConfig returns the standard 15000 particle setup.
func DefaultConfig() Config {
	return Config{
		Width:           1280,
		Height:          720,
		Particles:       swarm.DefaultCount,
		IntroText:       targets.IntroText,
		RevealDuration:  swarm.DefaultRevealDuration,
		CameraEnabled:   true,
		Camera:          capture.DefaultConfig(),
		MotionThreshold: capture.DefaultMotionThreshold,
		IdleFPS:         feed.DefaultIdleFPS,
		ActiveFPS:       feed.DefaultActiveFPS,
		Render:          true,
	}
}

// Deps overrides the collaborators New would otherwise create.
type Deps struct {
	Camera   capture.Camera
	Detector detector.Detector
	Motion   *capture.MotionDetector
}

type size struct {
	width, height int
}

// App orchestrates landmark ingestion, gesture state and the swarm.
//
// Simulation state is only touched by Step. Other goroutines talk to it
// through Do, Resize, the landmark slots and Snapshot.
type App struct {
	config Config

	sched   *timer.Scheduler
	term    *terminal.Typewriter
	intro   *terminal.Intro
	machine *state.Machine
	gen     *targets.Generator
	sim     *swarm.Swarm
	canvas  *render.MatCanvas
	text    targets.TextTargets

	width, height  int
	previewVisible bool
	wasActive      bool
	lastHandSeq    uint64
	lastEncode     time.Time
	frames         uint64

	face    feed.Slot[detector.FaceLandmarks]
	hands   feed.Slot[[]detector.HandLandmarks]
	preview feed.Slot[image.Image]

	actions chan Action
	resize  chan size
	baseCtx context.Context

	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionDetector

	sessionMu sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	active    atomic.Bool
	remote    atomic.Int32

	mu        sync.RWMutex
	status    string
	sessionID string
	snap      Snapshot
	jpeg      []byte
}

// New creates an App. Nil Deps fields are filled with the real camera,
// motion detector and MediaPipe detector when the camera is enabled.
func New(config Config, deps Deps) *App {
	def := DefaultConfig()
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = def.Width, def.Height
	}
	if config.Particles <= 0 {
		config.Particles = def.Particles
	}
	if config.RevealDuration <= 0 {
		config.RevealDuration = def.RevealDuration
	}
	if config.IntroText == "" {
		config.IntroText = def.IntroText
	}
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	now := time.Now()

	a := &App{
		config:         config,
		sched:          timer.New(now),
		gen:            targets.NewGenerator(rng),
		width:          config.Width,
		height:         config.Height,
		previewVisible: true,
		actions:        make(chan Action, actionQueueSize),
		resize:         make(chan size, 1),
		baseCtx:        context.Background(),
		camera:         deps.Camera,
		detector:       deps.Detector,
		motion:         deps.Motion,
	}
	a.term = terminal.New(a.sched, rng, terminal.GesturePacing)
	a.intro = terminal.NewIntro(a.sched, rng)
	a.machine = state.NewMachine(a.sched, a.term)
	a.sim = swarm.New(config.Particles, float64(config.Width), float64(config.Height), a.machine.Theme(), rng)
	a.sim.SetRevealDuration(config.RevealDuration)
	a.rebuildText(now)
	if config.Render {
		a.canvas = render.NewMatCanvas(config.Width, config.Height)
	}

	if config.CameraEnabled {
		if a.camera == nil {
			a.camera = capture.NewCamera(config.Camera)
		}
		if a.motion == nil {
			a.motion = capture.NewMotionDetector(config.MotionThreshold)
		}
		if a.detector == nil {
			if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
				a.detector = mp
				log.Println("Using MediaPipe face and hand detection")
			} else {
				log.Printf("MediaPipe not available: %v", err)
			}
		}
	}

	a.publish(swarm.Result{}, targets.Set{}, 0)
	return a
}

// Resize queues a canvas resize for the next frame.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	select {
	case <-a.resize:
	default:
	}
	a.resize <- size{width, height}
}

// IngestFace stores a face result from an external landmark source.
// A nil face clears the slot.
func (a *App) IngestFace(face detector.FaceLandmarks) {
	a.face.Store(face)
}

// IngestHands stores a hand result from an external landmark source.
func (a *App) IngestHands(hands []detector.HandLandmarks) {
	a.hands.Store(hands)
}

// AttachRemote marks an external landmark source as connected. While any
// is attached the swarm tracks landmarks as if a camera session were live.
func (a *App) AttachRemote() {
	if a.remote.Add(1) == 1 {
		log.Println("Remote landmark source attached")
	}
}

// DetachRemote reverses AttachRemote.
func (a *App) DetachRemote() {
	if a.remote.Add(-1) == 0 {
		a.face.Clear()
		a.hands.Clear()
		log.Println("Remote landmark source detached")
	}
}

// Tracking reports whether a camera session or remote source is live.
func (a *App) Tracking() bool {
	return a.active.Load() || a.remote.Load() > 0
}

// Run steps the simulation at FrameRate until ctx is done. A non-nil
// window shows each frame and forwards its keys as actions; the quit key
// returns nil.
func (a *App) Run(ctx context.Context, win *render.Window) error {
	a.baseCtx = ctx

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			a.Step(now)
		}

		if win == nil || a.canvas == nil {
			continue
		}
		name, ok := win.Show(a.canvas, 1)
		if !ok {
			continue
		}
		if name == render.ActionQuit {
			return nil
		}
		if err := a.Do(Action(name)); err != nil {
			log.Printf("Dropped key action %s: %v", name, err)
		}
	}
}

// Step advances one frame at now. It is not safe to call concurrently
// with itself.
func (a *App) Step(now time.Time) swarm.Result {
	a.sched.Advance(now)
	a.drain(now)

	tracking := a.Tracking()
	if tracking != a.wasActive {
		a.wasActive = tracking
		if tracking {
			a.intro.Clear()
		} else {
			a.sim.SetText(a.text, now)
		}
	}

	hands, seq := a.hands.Load()
	if seq != a.lastHandSeq {
		a.lastHandSeq = seq
		if ev := a.machine.HandleHands(hands); ev.ThemeChanged {
			a.sim.Retheme(a.machine.Theme())
		}
	}

	var set targets.Set
	if tracking {
		face, _ := a.face.Load()
		vw, vh := 0, 0
		if a.camera != nil && a.active.Load() {
			vw, vh = a.camera.FrameSize()
		}
		vp := geom.NewViewport(float64(a.width), float64(a.height), vw, vh)
		set = a.gen.Build(face, hands, vp)
	}

	st := a.machine.State()
	frame := swarm.Frame{
		Targets:      set,
		Mode:         st.Mode,
		Theme:        a.machine.Theme(),
		CameraActive: tracking,
		Now:          now,
	}

	var res swarm.Result
	if a.canvas != nil {
		res = a.sim.Step(frame, a.canvas)
		if err := a.canvas.Err(); err != nil {
			log.Printf("Error drawing frame: %v", err)
		}
		a.drawPreview(tracking)
	} else {
		res = a.sim.Step(frame, nil)
	}

	if res.RevealComplete && !tracking && !a.intro.Fired() {
		a.intro.Start()
	}

	a.frames++
	a.encode(now)
	a.publish(res, set, len(hands))
	return res
}

func (a *App) drain(now time.Time) {
	select {
	case s := <-a.resize:
		a.applyResize(s, now)
	default:
	}

	for {
		select {
		case action := <-a.actions:
			a.applyAction(action)
		default:
			return
		}
	}
}

func (a *App) applyResize(s size, now time.Time) {
	a.width, a.height = s.width, s.height
	a.sim.Reset(float64(s.width), float64(s.height), a.machine.Theme())
	a.rebuildText(now)
	if a.canvas != nil {
		a.canvas.Close()
		a.canvas = render.NewMatCanvas(s.width, s.height)
	}
	log.Printf("Canvas resized to %dx%d", s.width, s.height)
}

func (a *App) rebuildText(now time.Time) {
	a.text = targets.BuildText(a.config.IntroText, float64(a.width), float64(a.height))
	a.sim.SetText(a.text, now)
}

func (a *App) drawPreview(tracking bool) {
	if !a.previewVisible || !tracking {
		return
	}
	img, seq := a.preview.Load()
	if seq == 0 || img == nil {
		return
	}
	mat, err := render.MatFromImage(img)
	if err != nil {
		return
	}
	defer mat.Close()

	w, h := a.canvas.Size()
	a.canvas.Blit(mat, w-mat.Cols()-previewMargin, h-mat.Rows()-previewMargin)
}

func (a *App) encode(now time.Time) {
	if a.canvas == nil || now.Sub(a.lastEncode) < StreamInterval {
		return
	}
	a.lastEncode = now

	data, err := a.canvas.EncodeJPEG()
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}
	a.mu.Lock()
	a.jpeg = data
	a.mu.Unlock()
}

// LatestJPEG returns the most recently encoded frame, or nil before the
// first one.
func (a *App) LatestJPEG() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jpeg
}

// Close stops any session and releases the detector, motion detector and canvas.
func (a *App) Close() {
	a.StopSession()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
	if a.motion != nil {
		a.motion.Close()
	}
	if a.canvas != nil {
		a.canvas.Close()
		a.canvas = nil
	}
}
