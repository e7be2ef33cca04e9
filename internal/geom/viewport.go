// Package geom maps normalized landmark coordinates into swarm-space pixels.
package geom

import (
	"math"

	"github.com/ayusman/fluidportrait/internal/detector"
)

// Source dimensions assumed before the camera feed reports its real size.
const (
	DefaultVideoWidth  = 640
	DefaultVideoHeight = 360
)

// referenceExtent is the canvas extent at which target jitter and density are unscaled.
const referenceExtent = 800.0

// Point is a position in swarm space.
type Point struct {
	X, Y float64
}

// Viewport letterboxes a video source into a canvas. Scale is the larger of
// the two axis fits, so the video covers the canvas and the overflow on the
// other axis is centred by a negative offset.
type Viewport struct {
	Width, Height    float64
	VideoWidth       float64
	VideoHeight      float64
	OffsetX, OffsetY float64
	Scale            float64
}

// NewViewport computes the letterbox transform. Non-positive video
// dimensions fall back to DefaultVideoWidth x DefaultVideoHeight.
func NewViewport(canvasWidth, canvasHeight float64, videoWidth, videoHeight int) Viewport {
	vw, vh := float64(videoWidth), float64(videoHeight)
	if videoWidth <= 0 || videoHeight <= 0 {
		vw, vh = DefaultVideoWidth, DefaultVideoHeight
	}

	v := Viewport{
		Width:       canvasWidth,
		Height:      canvasHeight,
		VideoWidth:  vw,
		VideoHeight: vh,
	}
	if canvasWidth <= 0 || canvasHeight <= 0 {
		v.Scale = 1
		return v
	}

	if canvasWidth/canvasHeight > vw/vh {
		v.Scale = canvasWidth / vw
		v.OffsetY = (canvasHeight - vh*v.Scale) / 2
	} else {
		v.Scale = canvasHeight / vh
		v.OffsetX = (canvasWidth - vw*v.Scale) / 2
	}
	return v
}

// Map converts a normalized landmark to mirrored canvas coordinates.
func (v Viewport) Map(p detector.Point3D) Point {
	x := p.X*v.VideoWidth*v.Scale + v.OffsetX
	y := p.Y*v.VideoHeight*v.Scale + v.OffsetY
	return Point{X: v.Width - x, Y: y}
}

// TargetScale is the factor applied to hand jitter widths so the swarm
// reads consistently across viewport sizes.
func (v Viewport) TargetScale() float64 {
	return math.Min(v.Width, v.Height) / referenceExtent
}
