// Package targets expands landmark sets into weighted point targets that
// swarm particles are pulled toward.
package targets

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/fluidportrait/internal/detector"
	"github.com/ayusman/fluidportrait/internal/geom"
)

// Target is a weighted, sized point in swarm space. A zero Size means the
// particle keeps easing toward the default size.
type Target struct {
	X, Y   float64
	Weight float64
	Size   float64
}

// Set holds the per-frame face and hand target lists.
type Set struct {
	Face []Target
	Hand []Target
}

// Empty reports whether neither list has targets.
func (s Set) Empty() bool {
	return len(s.Face) == 0 && len(s.Hand) == 0
}

// Total returns the combined target count.
func (s Set) Total() int {
	return len(s.Face) + len(s.Hand)
}

// Face target parameters.
const (
	faceJitter       = 1.4
	faceWeight       = 1.0
	faceSize         = 1.1
	faceCopies       = 2
	boostJitter      = 2.2
	boostWeight      = 2.0
	boostSize        = 1.8
	boostCopies      = 3
	boneDensity      = 0.9
	boneWeight       = 1.2
	palmWidth        = 12.0
	palmDensity      = 0.8
	palmSize         = 1.5
	minBonePoints    = 4
	keypointWeightHi = 1.6
	keypointWeightLo = 1.4
)

// goldenRatio strides bone interpolation so consecutive points never bunch.
var goldenRatio = (1 + math.Sqrt(5)) / 2

// boosted marks the nose, cheek and eye socket landmarks of the face mesh.
var boosted = func() map[int]bool {
	m := make(map[int]bool)
	for _, group := range [][]int{
		{1, 2, 98, 327, 4, 5},
		{234, 454, 93, 323, 127, 356},
		{33, 133, 362, 263, 159, 386},
	} {
		for _, idx := range group {
			m[idx] = true
		}
	}
	return m
}()

// fingerChains lists the joints of each finger from the wrist out, thumb through pinky.
var fingerChains = [][]int{
	{detector.Wrist, detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	{detector.Wrist, detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	{detector.Wrist, detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip},
	{detector.Wrist, detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
}

// palmConnections outline the palm polygon.
var palmConnections = [][2]int{
	{detector.Wrist, detector.IndexMCP},
	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.PinkyMCP},
	{detector.PinkyMCP, detector.Wrist},
}

var tips = map[int]bool{
	detector.ThumbTip:  true,
	detector.IndexTip:  true,
	detector.MiddleTip: true,
	detector.RingTip:   true,
	detector.PinkyTip:  true,
}

var palmRoots = map[int]bool{
	detector.Wrist:     true,
	detector.IndexMCP:  true,
	detector.MiddleMCP: true,
	detector.RingMCP:   true,
	detector.PinkyMCP:  true,
}

// keypoints are anchored with extra targets: every fingertip plus the wrist.
var keypoints = []int{
	detector.ThumbTip, detector.IndexTip, detector.MiddleTip,
	detector.RingTip, detector.PinkyTip, detector.Wrist,
}

// Generator builds target lists. It is not safe for concurrent use because
// it draws from the injected random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing jitter from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Build maps the given landmarks through vp and returns both target lists.
func (g *Generator) Build(face detector.FaceLandmarks, hands []detector.HandLandmarks, vp geom.Viewport) Set {
	return Set{
		Face: g.Face(face, vp),
		Hand: g.Hands(hands, vp),
	}
}

// Face emits two jittered targets per landmark and three more for each
// boosted landmark. The result is nil when face is empty.
func (g *Generator) Face(face detector.FaceLandmarks, vp geom.Viewport) []Target {
	if len(face) == 0 {
		return nil
	}

	out := make([]Target, 0, len(face)*faceCopies)
	for i, lm := range face {
		p := vp.Map(lm)
		for c := 0; c < faceCopies; c++ {
			out = append(out, g.jittered(p, faceJitter, faceWeight, faceSize))
		}
		if boosted[i] {
			for c := 0; c < boostCopies; c++ {
				out = append(out, g.jittered(p, boostJitter, boostWeight, boostSize))
			}
		}
	}
	return out
}

// Hands emits bone, palm and keypoint targets for every hand.
func (g *Generator) Hands(hands []detector.HandLandmarks, vp geom.Viewport) []Target {
	if len(hands) == 0 {
		return nil
	}

	scale := vp.TargetScale()
	var out []Target
	for i := range hands {
		var pts [detector.NumLandmarks]geom.Point
		for j, lm := range hands[i].Points {
			pts[j] = vp.Map(lm)
		}

		for _, chain := range fingerChains {
			for k := 0; k < len(chain)-1; k++ {
				a, b := chain[k], chain[k+1]
				width, size := boneStyle(a, b)
				out = g.bone(out, pts[a], pts[b], width*scale, boneDensity, size)
			}
		}

		for _, c := range palmConnections {
			out = g.bone(out, pts[c[0]], pts[c[1]], palmWidth*scale, palmDensity, palmSize)
		}

		for _, idx := range keypoints {
			size := 2.2
			if idx == detector.Wrist {
				size = 1.6
			}
			out = append(out,
				g.jittered(pts[idx], 3.2*scale, keypointWeightHi, size),
				g.jittered(pts[idx], 2.2*scale, keypointWeightLo, size),
			)
		}
	}
	return out
}

// boneStyle picks the lateral width and size hint for the segment a-b.
// Palm roots take precedence for width and tips take precedence for size.
func boneStyle(a, b int) (width, size float64) {
	tip := tips[b]
	palm := palmRoots[a]

	switch {
	case palm:
		width = 10
	case tip:
		width = 3
	default:
		width = 6
	}

	switch {
	case tip:
		size = 1.9
	case palm:
		size = 1.5
	default:
		size = 1.3
	}
	return width, size
}

// bone interpolates targets along a-b at golden-ratio strided fractions,
// offset along the segment normal by up to width.
func (g *Generator) bone(out []Target, a, b geom.Point, width, density, size float64) []Target {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	count := max(minBonePoints, int(math.Floor(length*density)))

	norm := length
	if norm == 0 {
		norm = 1
	}
	nx, ny := -dy/norm, dx/norm

	for i := 0; i < count; i++ {
		_, t := math.Modf(float64(i) * goldenRatio)
		offset := (g.rng.Float64()*2 - 1) * width
		out = append(out, Target{
			X:      a.X + dx*t + nx*offset,
			Y:      a.Y + dy*t + ny*offset,
			Weight: boneWeight,
			Size:   size,
		})
	}
	return out
}

// jittered places a target within radius of p at a uniformly random angle.
func (g *Generator) jittered(p geom.Point, radius, weight, size float64) Target {
	angle := g.rng.Float64() * 2 * math.Pi
	r := radius * (g.rng.Float64()*2 - 1)
	return Target{
		X:      p.X + math.Cos(angle)*r,
		Y:      p.Y + math.Sin(angle)*r,
		Weight: weight,
		Size:   size,
	}
}
