// Package detector provides landmark detection interfaces and types for face and hand tracking.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// NumFaceLandmarks is the size of the MediaPipe face mesh without iris refinement.
// Refined meshes carry 478 points; the extra iris points are accepted as-is.
const NumFaceLandmarks = 468

// HandConnections lists the skeleton segments of the 21-point hand schema.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D represents a normalized landmark. X and Y are in [0,1] image space,
// Z is relative depth and is ignored by everything that works in 2-D.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FaceLandmarks is an ordered face mesh. A nil value means no face this frame.
type FaceLandmarks []Point3D

// Result is one processed frame: zero-or-one face and zero-or-more hands.
type Result struct {
	Face  FaceLandmarks   `json:"face"`
	Hands []HandLandmarks `json:"hands"`
}

// Distance2D returns the planar Euclidean distance between two landmarks.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// WristDistance returns how far landmark idx lies from the wrist in the image plane.
func (h *HandLandmarks) WristDistance(idx int) float64 {
	if h == nil || idx < 0 || idx >= NumLandmarks {
		return 0
	}
	return Distance2D(h.Points[idx], h.Points[Wrist])
}

// HandFromPoints builds a HandLandmarks from an arbitrary-length point slice.
// Missing points stay at the origin; extra points are dropped.
func HandFromPoints(points []Point3D) HandLandmarks {
	var h HandLandmarks
	for i := 0; i < NumLandmarks && i < len(points); i++ {
		h.Points[i] = points[i]
	}
	return h
}
