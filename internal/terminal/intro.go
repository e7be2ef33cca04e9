package terminal

import (
	"math/rand/v2"
	"time"

	"github.com/ayusman/fluidportrait/internal/timer"
)

// IntroLines are typed once the intro text has finished assembling.
var IntroLines = []string{
	"Particle Fluid Portrait",
	"Press Enter to start the camera and let thousands of particles trace your face and hands.",
}

// IntroPacing is the typing rhythm of the intro terminal. Line pauses get
// an extra random 0-120ms on top of LineDelay.
var IntroPacing = Pacing{
	CharMin:    18 * time.Millisecond,
	CharJitter: 45 * time.Millisecond,
	LineDelay:  260 * time.Millisecond,
}

const introLineJitter = 120 * time.Millisecond

// Intro is the one-shot intro terminal.
type Intro struct {
	*Typewriter
	rng   *rand.Rand
	fired bool
}

// NewIntro returns a hidden intro terminal.
func NewIntro(sched *timer.Scheduler, rng *rand.Rand) *Intro {
	return &Intro{
		Typewriter: New(sched, rng, IntroPacing),
		rng:        rng,
	}
}

// Fired reports whether the intro has been started.
func (in *Intro) Fired() bool {
	return in.fired
}

// Start types IntroLines the first time it is called and is a no-op after.
func (in *Intro) Start() bool {
	if in.fired {
		return false
	}
	in.fired = true

	stamp := in.sched.Now().UTC().Format("15:04:05")
	return in.Type(IntroLines, Options{
		Prefix: func(i int) string {
			if i == 0 {
				return "> [GMT " + stamp + "] "
			}
			return "  "
		},
		LineDelay: func(int) time.Duration {
			return in.pacing.LineDelay + time.Duration(in.rng.Int64N(int64(introLineJitter)))
		},
	})
}
