// Package swarm owns the particle population and integrates it toward the
// per-frame targets.
package swarm

import (
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ayusman/fluidportrait/internal/state"
	"github.com/ayusman/fluidportrait/internal/targets"
	"github.com/ayusman/fluidportrait/internal/theme"
)

// DefaultCount is the population size used by the app.
const DefaultCount = 15000

// DefaultRevealDuration is how long the intro text takes to sweep in.
const DefaultRevealDuration = 3500 * time.Millisecond

// Integration constants.
const (
	idleImpulse     = 0.1
	idleDamping     = 0.96
	trackDamping    = 0.86
	maxPull         = 3.2
	pullBase        = 1.6
	pullFalloff     = 0.12
	distEpsilon     = 0.01
	jitterGain      = 0.6
	teleportDist    = 240.0
	teleportChance  = 0.01
	teleportScatter = 40.0
	sizeEase        = 0.08
	defaultSize     = 1.2
	minFaceShare    = 0.35
	maxFaceShare    = 0.6
)

// Particle is one member of the swarm.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Size   float64
	Color  color.RGBA
	Jitter float64
}

// Canvas receives the draw calls of one frame.
type Canvas interface {
	// Fade paints c over the whole surface.
	Fade(c color.NRGBA)
	// FillRect draws an opaque size x size square at (x, y).
	FillRect(x, y, size float64, c color.RGBA)
}

// Branch identifies which motion policy a frame used.
type Branch int

const (
	BranchIdle Branch = iota
	BranchText
	BranchTracking
)

func (b Branch) String() string {
	switch b {
	case BranchText:
		return "text"
	case BranchTracking:
		return "tracking"
	default:
		return "idle"
	}
}

// Frame is the input of one Step.
type Frame struct {
	Targets      targets.Set
	Mode         state.Mode
	Theme        theme.Theme
	CameraActive bool
	Now          time.Time
}

// Result describes what a Step did.
type Result struct {
	Branch Branch
	// ActiveText is the number of revealed text targets in the text branch.
	ActiveText int
	// RevealComplete is set once the text has been fully revealed.
	RevealComplete bool
}

// Swarm is a fixed-size particle population. It is not safe for concurrent use.
type Swarm struct {
	particles []Particle
	width     float64
	height    float64
	rng       *rand.Rand

	text           targets.TextTargets
	textBuiltAt    time.Time
	revealDuration time.Duration
}

// New creates count particles clustered around the canvas centre and
// colored from th.
func New(count int, width, height float64, th theme.Theme, rng *rand.Rand) *Swarm {
	s := &Swarm{
		rng:            rng,
		revealDuration: DefaultRevealDuration,
	}
	s.particles = make([]Particle, count)
	s.Reset(width, height, th)
	return s
}

// SetRevealDuration changes how long the text sweep takes.
func (s *Swarm) SetRevealDuration(d time.Duration) {
	if d > 0 {
		s.revealDuration = d
	}
}

// Reset re-seeds every particle for a canvas of the given size. The
// population size does not change.
func (s *Swarm) Reset(width, height float64, th theme.Theme) {
	s.width, s.height = width, height
	cx, cy := width/2, height/2
	for i := range s.particles {
		s.particles[i] = Particle{
			X:      cx + (s.rng.Float64()-0.5)*width*0.2,
			Y:      cy + (s.rng.Float64()-0.5)*height*0.2,
			VX:     (s.rng.Float64() - 0.5) * 0.4,
			VY:     (s.rng.Float64() - 0.5) * 0.4,
			Size:   0.6 + s.rng.Float64()*1.2,
			Color:  th.Pick(s.rng),
			Jitter: 0.2 + s.rng.Float64()*0.5,
		}
	}
}

// Retheme recolors every particle from th.
func (s *Swarm) Retheme(th theme.Theme) {
	for i := range s.particles {
		s.particles[i].Color = th.Pick(s.rng)
	}
}

// SetText replaces the intro text targets and restarts the reveal at now.
func (s *Swarm) SetText(tt targets.TextTargets, now time.Time) {
	s.text = tt
	s.textBuiltAt = now
}

// Particles returns the population. Callers must not retain it across Steps.
func (s *Swarm) Particles() []Particle {
	return s.particles
}

// Len returns the population size.
func (s *Swarm) Len() int {
	return len(s.particles)
}

// Size returns the canvas dimensions.
func (s *Swarm) Size() (width, height float64) {
	return s.width, s.height
}

// Step advances every particle by one frame and draws it on c. A nil
// Canvas skips drawing.
func (s *Swarm) Step(f Frame, c Canvas) Result {
	if c != nil {
		c.Fade(f.Theme.TrailColor())
	}

	var res Result
	switch {
	case !f.CameraActive && !s.text.Empty():
		res = s.stepText(f)
	case !f.Targets.Empty():
		res.Branch = BranchTracking
		s.stepTracking(f.Targets, f.Mode.Sign())
	default:
		res.Branch = BranchIdle
		s.stepIdle()
	}

	if c != nil {
		for i := range s.particles {
			p := &s.particles[i]
			c.FillRect(p.X, p.Y, p.Size, p.Color)
		}
	}
	return res
}

// RevealProgress returns the eased reveal fraction at now.
func (s *Swarm) RevealProgress(now time.Time) float64 {
	t := float64(now.Sub(s.textBuiltAt)) / float64(s.revealDuration)
	t = math.Max(0, math.Min(1, t))
	return 1 - (1-t)*(1-t)
}

func (s *Swarm) stepText(f Frame) Result {
	elapsed := f.Now.Sub(s.textBuiltAt)
	active := s.text.Active(s.RevealProgress(f.Now))
	sign := f.Mode.Sign()
	for i := range s.particles {
		s.seek(&s.particles[i], active[i%len(active)], sign)
	}
	return Result{
		Branch:         BranchText,
		ActiveText:     len(active),
		RevealComplete: elapsed >= s.revealDuration,
	}
}

// faceShare returns how many particles follow face targets.
func faceShare(n int, set targets.Set) int {
	switch {
	case len(set.Face) == 0:
		return 0
	case len(set.Hand) == 0:
		return n
	}
	ratio := float64(len(set.Face)) / float64(set.Total())
	ratio = math.Max(minFaceShare, math.Min(maxFaceShare, ratio))
	return int(math.Floor(float64(n) * ratio))
}

func (s *Swarm) stepTracking(set targets.Set, sign float64) {
	faceCount := faceShare(len(s.particles), set)
	for i := range s.particles {
		var t targets.Target
		if i < faceCount {
			t = set.Face[i%len(set.Face)]
		} else {
			t = set.Hand[(i-faceCount)%len(set.Hand)]
		}
		s.seek(&s.particles[i], t, sign)
	}
}

func (s *Swarm) stepIdle() {
	for i := range s.particles {
		p := &s.particles[i]
		p.VX += (s.rng.Float64() - 0.5) * idleImpulse
		p.VY += (s.rng.Float64() - 0.5) * idleImpulse
		p.VX *= idleDamping
		p.VY *= idleDamping
		p.X += p.VX
		p.Y += p.VY

		if p.X < 0 || p.X > s.width || p.Y < 0 || p.Y > s.height {
			p.X = s.rng.Float64() * s.width
			p.Y = s.rng.Float64() * s.height
		}
	}
}

// pull returns the force toward t on a particle at (x, y), and the
// distance used to compute it. A negative sign pushes away.
func pull(x, y float64, t targets.Target, sign float64) (fx, fy, dist float64) {
	dx, dy := t.X-x, t.Y-y
	dist = math.Hypot(dx, dy) + distEpsilon
	mag := math.Min(maxPull, (pullBase+t.Weight)/(dist*pullFalloff)) * sign
	return dx / dist * mag, dy / dist * mag, dist
}

func (s *Swarm) seek(p *Particle, t targets.Target, sign float64) {
	fx, fy, dist := pull(p.X, p.Y, t, sign)

	if dist > teleportDist && s.rng.Float64() < teleportChance {
		p.X = t.X + (s.rng.Float64()-0.5)*teleportScatter
		p.Y = t.Y + (s.rng.Float64()-0.5)*teleportScatter
		p.VX, p.VY = 0, 0
	} else {
		p.VX += fx + (s.rng.Float64()-0.5)*p.Jitter*jitterGain
		p.VY += fy + (s.rng.Float64()-0.5)*p.Jitter*jitterGain
		p.VX *= trackDamping
		p.VY *= trackDamping
		p.X += p.VX
		p.Y += p.VY
	}

	size := t.Size
	if size == 0 {
		size = defaultSize
	}
	p.Size += (size - p.Size) * sizeEase
}
