// Package terminal implements the typewriter text surfaces shown over the swarm.
package terminal

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ayusman/fluidportrait/internal/timer"
)

// Pacing is the per-character delay range and the default pause between lines.
type Pacing struct {
	CharMin    time.Duration
	CharJitter time.Duration
	LineDelay  time.Duration
}

// GesturePacing is used by the gesture message terminal.
var GesturePacing = Pacing{
	CharMin:    16 * time.Millisecond,
	CharJitter: 55 * time.Millisecond,
	LineDelay:  240 * time.Millisecond,
}

// Options customize one Type call.
type Options struct {
	// Prefix returns the text written before line i.
	Prefix func(i int) string
	// LineDelay overrides the pause before line i (i >= 1).
	LineDelay func(i int) time.Duration
	// OnDone runs after the last character is written.
	OnDone func()
}

// Typewriter reveals lines one character at a time on a timer.Scheduler.
// Only one sequence types at a time.
type Typewriter struct {
	sched  *timer.Scheduler
	rng    *rand.Rand
	pacing Pacing

	lines   []string
	visible bool
	typing  bool
	pending timer.Handle
}

// New returns a hidden Typewriter.
func New(sched *timer.Scheduler, rng *rand.Rand, pacing Pacing) *Typewriter {
	return &Typewriter{sched: sched, rng: rng, pacing: pacing}
}

// Type starts revealing lines. It reports false, and does nothing, when a
// sequence is already typing.
func (tw *Typewriter) Type(lines []string, opts Options) bool {
	if tw.typing {
		return false
	}
	tw.sched.Cancel(tw.pending)
	tw.pending = 0
	tw.lines = tw.lines[:0]
	tw.visible = true
	tw.typing = true

	if len(lines) == 0 {
		tw.finish(opts)
		return true
	}
	tw.startLine(lines, 0, opts)
	return true
}

// After schedules fn on the terminal's timer, replacing any pending step.
// The step is cancelled by Clear.
func (tw *Typewriter) After(d time.Duration, fn func()) {
	tw.sched.Cancel(tw.pending)
	tw.pending = tw.sched.After(d, func() {
		tw.pending = 0
		fn()
	})
}

// Clear hides the terminal and cancels any pending step.
func (tw *Typewriter) Clear() {
	tw.sched.Cancel(tw.pending)
	tw.pending = 0
	tw.lines = tw.lines[:0]
	tw.visible = false
	tw.typing = false
}

// Text returns what has been typed so far, one line per row.
func (tw *Typewriter) Text() string {
	return strings.Join(tw.lines, "\n")
}

// Visible reports whether the terminal is shown.
func (tw *Typewriter) Visible() bool {
	return tw.visible
}

// Typing reports whether a sequence is mid-reveal.
func (tw *Typewriter) Typing() bool {
	return tw.typing
}

// Busy reports whether the terminal is typing or has a follow-up step queued.
func (tw *Typewriter) Busy() bool {
	return tw.typing || tw.sched.Pending(tw.pending)
}

func (tw *Typewriter) startLine(lines []string, i int, opts Options) {
	prefix := ""
	if opts.Prefix != nil {
		prefix = opts.Prefix(i)
	}
	tw.lines = append(tw.lines, prefix)
	tw.typeChar(lines, i, []rune(lines[i]), 0, opts)
}

func (tw *Typewriter) typeChar(lines []string, i int, runes []rune, pos int, opts Options) {
	if pos >= len(runes) {
		if i+1 >= len(lines) {
			tw.finish(opts)
			return
		}
		delay := tw.pacing.LineDelay
		if opts.LineDelay != nil {
			delay = opts.LineDelay(i + 1)
		}
		tw.schedule(delay, func() { tw.startLine(lines, i+1, opts) })
		return
	}

	tw.schedule(tw.charDelay(), func() {
		tw.lines[len(tw.lines)-1] += string(runes[pos])
		tw.typeChar(lines, i, runes, pos+1, opts)
	})
}

func (tw *Typewriter) schedule(d time.Duration, fn func()) {
	tw.pending = tw.sched.After(d, func() {
		tw.pending = 0
		fn()
	})
}

func (tw *Typewriter) finish(opts Options) {
	tw.typing = false
	if opts.OnDone != nil {
		opts.OnDone()
	}
}

func (tw *Typewriter) charDelay() time.Duration {
	if tw.pacing.CharJitter <= 0 {
		return tw.pacing.CharMin
	}
	return tw.pacing.CharMin + time.Duration(tw.rng.Int64N(int64(tw.pacing.CharJitter)))
}
