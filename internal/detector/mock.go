package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector that returns empty results.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the full result that will be returned by Detect.
func (m *MockDetector) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.Hands = hands
}

// SetFace sets the face that will be returned by Detect.
func (m *MockDetector) SetFace(face FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.Face = face
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OvalFaceLandmarks returns a synthetic face mesh of n points laid out on
// concentric ellipses around the centre of the frame.
func OvalFaceLandmarks(n int) FaceLandmarks {
	face := make(FaceLandmarks, n)
	rings := 6
	for i := range face {
		ring := float64(i%rings+1) / float64(rings)
		angle := float64(i) * 2 * math.Pi / float64(n)
		face[i] = Point3D{
			X: 0.5 + math.Cos(angle)*0.12*ring,
			Y: 0.45 + math.Sin(angle)*0.18*ring,
		}
	}
	return face
}

// FistLandmarks returns a preset HandLandmarks with every finger curled into the palm.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	// Thumb folded across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.59, Y: 0.73}
	landmarks.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.70}
	landmarks.Points[ThumbTip] = Point3D{X: 0.56, Y: 0.72}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.64, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.68, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.53, Y: 0.72, Z: -0.02}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.62, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.67, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	setCurledRing(&landmarks)
	setCurledPinky(&landmarks)

	return landmarks
}

// PeaceLandmarks returns a preset HandLandmarks with index and middle fingers
// raised in a V while ring and pinky are curled.
func PeaceLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.59, Y: 0.73}
	landmarks.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.70}
	landmarks.Points[ThumbTip] = Point3D{X: 0.56, Y: 0.72}

	setExtendedIndex(&landmarks)
	setExtendedMiddle(&landmarks)
	setCurledRing(&landmarks)
	setCurledPinky(&landmarks)

	return landmarks
}

// MiddleFingerLandmarks returns a preset HandLandmarks with only the middle
// finger raised. The thumb is held out to the side so the pose does not also
// read as a fist.
func MiddleFingerLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.73}
	landmarks.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.70}
	landmarks.Points[ThumbTip] = Point3D{X: 0.68, Y: 0.62}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.64, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.68, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.53, Y: 0.72, Z: -0.02}

	setExtendedMiddle(&landmarks)
	setCurledRing(&landmarks)
	setCurledPinky(&landmarks)

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	setExtendedIndex(&landmarks)
	setExtendedMiddle(&landmarks)

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

func setExtendedIndex(h *HandLandmarks) {
	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	h.Points[IndexDIP] = Point3D{X: 0.59, Y: 0.42}
	h.Points[IndexTip] = Point3D{X: 0.60, Y: 0.30}
}

func setExtendedMiddle(h *HandLandmarks) {
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}
}

func setCurledRing(h *HandLandmarks) {
	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.67, Z: -0.02}
	h.Points[RingPIP] = Point3D{X: 0.45, Y: 0.62, Z: -0.05}
	h.Points[RingDIP] = Point3D{X: 0.46, Y: 0.66, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 0.47, Y: 0.70, Z: -0.02}
}

func setCurledPinky(h *HandLandmarks) {
	h.Points[PinkyMCP] = Point3D{X: 0.41, Y: 0.70, Z: -0.02}
	h.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.66, Z: -0.05}
	h.Points[PinkyDIP] = Point3D{X: 0.42, Y: 0.69, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: 0.43, Y: 0.72, Z: -0.02}
}
