package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestHandLandmarks_WristDistance(t *testing.T) {
	t.Run("measures in the image plane only", func(t *testing.T) {
		hand := HandLandmarks{}
		hand.Points[Wrist] = Point3D{X: 0.1, Y: 0.1, Z: 5}
		hand.Points[IndexTip] = Point3D{X: 0.4, Y: 0.5, Z: -3}

		if got := hand.WristDistance(IndexTip); math.Abs(got-0.5) > epsilon {
			t.Errorf("WristDistance(IndexTip) = %f, want 0.5", got)
		}
	})

	t.Run("nil hand returns zero", func(t *testing.T) {
		var hand *HandLandmarks
		if got := hand.WristDistance(IndexTip); got != 0 {
			t.Errorf("expected 0 for nil hand, got %f", got)
		}
	})

	t.Run("out of range index returns zero", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		if got := hand.WristDistance(NumLandmarks); got != 0 {
			t.Errorf("expected 0 for out of range index, got %f", got)
		}
	})
}

func TestHandFromPoints(t *testing.T) {
	t.Run("short input leaves remaining points at origin", func(t *testing.T) {
		hand := HandFromPoints([]Point3D{{X: 1, Y: 2}})
		if hand.Points[0].X != 1 || hand.Points[0].Y != 2 {
			t.Errorf("first point = %+v, want {1 2 0}", hand.Points[0])
		}
		if hand.Points[PinkyTip] != (Point3D{}) {
			t.Errorf("expected missing points to stay zero, got %+v", hand.Points[PinkyTip])
		}
	})

	t.Run("long input is truncated", func(t *testing.T) {
		points := make([]Point3D, 30)
		for i := range points {
			points[i] = Point3D{X: float64(i)}
		}
		hand := HandFromPoints(points)
		if hand.Points[PinkyTip].X != PinkyTip {
			t.Errorf("last kept point X = %f, want %d", hand.Points[PinkyTip].X, PinkyTip)
		}
	})
}

func TestParseServiceResponse(t *testing.T) {
	t.Run("face and hands", func(t *testing.T) {
		line := `{"face":[{"x":0.1,"y":0.2,"z":0}],"hands":[{"points":[` + repeatPoint(NumLandmarks) + `],"handedness":"Left","score":0.8}]}`
		result, err := parseServiceResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Face) != 1 {
			t.Errorf("expected 1 face landmark, got %d", len(result.Face))
		}
		if len(result.Hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(result.Hands))
		}
		if result.Hands[0].Handedness != "Left" {
			t.Errorf("expected handedness Left, got %s", result.Hands[0].Handedness)
		}
	})

	t.Run("null face yields nil", func(t *testing.T) {
		result, err := parseServiceResponse([]byte(`{"face":null,"hands":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Face != nil {
			t.Errorf("expected nil face, got %d points", len(result.Face))
		}
	})

	t.Run("incomplete hand is dropped", func(t *testing.T) {
		line := `{"hands":[{"points":[` + repeatPoint(5) + `]}]}`
		result, err := parseServiceResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Hands) != 0 {
			t.Errorf("expected incomplete hand to be dropped, got %d", len(result.Hands))
		}
	})

	t.Run("malformed line", func(t *testing.T) {
		if _, err := parseServiceResponse([]byte("not json")); err == nil {
			t.Error("expected error for malformed response")
		}
	})
}

func TestDecodeHands(t *testing.T) {
	data := `[{"points":[` + repeatPoint(NumLandmarks) + `],"handedness":"Right"},{"points":[` + repeatPoint(3) + `]}]`
	hands, err := DecodeHands([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected 1 complete hand, got %d", len(hands))
	}
	if hands[0].Handedness != "Right" {
		t.Errorf("expected handedness Right, got %s", hands[0].Handedness)
	}

	if _, err := DecodeHands([]byte(`{"points":[]}`)); err == nil {
		t.Error("expected error for non-array input")
	}
}

func repeatPoint(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ","
		}
		s += `{"x":0.5,"y":0.5,"z":0}`
	}
	return s
}

func TestConfig_Args(t *testing.T) {
	args := DefaultConfig().args()
	want := map[string]bool{}
	for _, a := range []string{
		"--max-faces=1",
		"--max-hands=2",
		"--refine-landmarks=true",
		"--min-detection-confidence=0.60",
		"--min-tracking-confidence=0.60",
	} {
		want[a] = true
	}
	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %d: %v", len(want), len(args), args)
	}
	for _, a := range args {
		if !want[a] {
			t.Errorf("unexpected arg %q", a)
		}
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty result by default", func(t *testing.T) {
		mock := NewMockDetector()

		result, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result.Face != nil || result.Hands != nil {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("returns configured hands and face", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks(), OpenPalmLandmarks()})
		mock.SetFace(OvalFaceLandmarks(NumFaceLandmarks))

		result, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(result.Hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(result.Hands))
		}
		if len(result.Face) != NumFaceLandmarks {
			t.Errorf("expected %d face landmarks, got %d", NumFaceLandmarks, len(result.Face))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks()})

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		result, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if result.Hands != nil {
			t.Errorf("expected no hands when error is set, got %v", result.Hands)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestOvalFaceLandmarks(t *testing.T) {
	face := OvalFaceLandmarks(NumFaceLandmarks)
	for i, p := range face {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Fatalf("landmark %d outside normalized space: %+v", i, p)
		}
	}
}

func TestPosePresets(t *testing.T) {
	t.Run("fist tips sit closer to the wrist than their pips", func(t *testing.T) {
		hand := FistLandmarks()
		pairs := [][2]int{{ThumbTip, ThumbIP}, {IndexTip, IndexPIP}, {MiddleTip, MiddlePIP}, {RingTip, RingPIP}, {PinkyTip, PinkyPIP}}
		for _, p := range pairs {
			if hand.WristDistance(p[0]) >= hand.WristDistance(p[1]) {
				t.Errorf("tip %d not curled toward the wrist", p[0])
			}
		}
	})

	t.Run("peace raises index and middle", func(t *testing.T) {
		hand := PeaceLandmarks()
		if hand.WristDistance(IndexTip) < 1.5*hand.WristDistance(IndexPIP) {
			t.Error("index finger should be extended")
		}
		if hand.WristDistance(MiddleTip) < 1.5*hand.WristDistance(MiddlePIP) {
			t.Error("middle finger should be extended")
		}
	})

	t.Run("middle finger keeps the index down", func(t *testing.T) {
		hand := MiddleFingerLandmarks()
		if hand.WristDistance(IndexTip) >= hand.WristDistance(IndexPIP) {
			t.Error("index finger should be curled")
		}
		if hand.WristDistance(MiddleTip) < 1.5*hand.WristDistance(MiddlePIP) {
			t.Error("middle finger should be extended")
		}
	})
}
