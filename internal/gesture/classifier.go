// Package gesture classifies static hand poses from landmark geometry.
package gesture

import "github.com/ayusman/fluidportrait/internal/detector"

// Ratio thresholds between a fingertip's and its proximal joint's distance
// from the wrist. Extension is stricter than curl so poses near the
// boundary do not read as both.
const (
	ExtendedRatio = 1.18
	CurledRatio   = 1.05
)

// finger pairs a tip with the joint it is compared against.
type finger struct {
	tip, pip int
}

var (
	thumb  = finger{detector.ThumbTip, detector.ThumbIP}
	index  = finger{detector.IndexTip, detector.IndexPIP}
	middle = finger{detector.MiddleTip, detector.MiddlePIP}
	ring   = finger{detector.RingTip, detector.RingPIP}
	pinky  = finger{detector.PinkyTip, detector.PinkyPIP}
)

var allFingers = []finger{thumb, index, middle, ring, pinky}

// Pose is the set of recognized gestures for one hand.
type Pose struct {
	Fist    bool
	Peace   bool
	Obscene bool
}

// Extended reports whether tip sits farther from the wrist than
// ExtendedRatio times pip.
func Extended(h *detector.HandLandmarks, tip, pip int) bool {
	if h == nil {
		return false
	}
	return h.WristDistance(tip) > h.WristDistance(pip)*ExtendedRatio
}

// Curled reports whether tip sits closer to the wrist than CurledRatio
// times pip.
func Curled(h *detector.HandLandmarks, tip, pip int) bool {
	if h == nil {
		return false
	}
	return h.WristDistance(tip) < h.WristDistance(pip)*CurledRatio
}

func (f finger) extended(h *detector.HandLandmarks) bool { return Extended(h, f.tip, f.pip) }
func (f finger) curled(h *detector.HandLandmarks) bool   { return Curled(h, f.tip, f.pip) }

// IsFist reports whether at least four of the five fingers are curled.
func IsFist(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	curled := 0
	for _, f := range allFingers {
		if f.curled(h) {
			curled++
		}
	}
	return curled >= 4
}

// IsPeace reports a V sign: index and middle extended, ring and pinky curled.
func IsPeace(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	return index.extended(h) && middle.extended(h) && ring.curled(h) && pinky.curled(h)
}

// IsObscene reports a raised middle finger with index, ring and pinky curled.
func IsObscene(h *detector.HandLandmarks) bool {
	if h == nil {
		return false
	}
	return middle.extended(h) && index.curled(h) && ring.curled(h) && pinky.curled(h)
}

// Classify evaluates every pose predicate for h.
func Classify(h *detector.HandLandmarks) Pose {
	return Pose{
		Fist:    IsFist(h),
		Peace:   IsPeace(h),
		Obscene: IsObscene(h),
	}
}

// Any folds the poses of several hands: a flag is set when any hand shows it.
func Any(hands []detector.HandLandmarks) Pose {
	var p Pose
	for i := range hands {
		c := Classify(&hands[i])
		p.Fist = p.Fist || c.Fist
		p.Peace = p.Peace || c.Peace
		p.Obscene = p.Obscene || c.Obscene
	}
	return p
}
