package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/fluidportrait/internal/detector"
	"gocv.io/x/gocv"
)

// Preview surface size.
const (
	OverlayWidth  = 256
	OverlayHeight = 144
)

var (
	faceColor  = color.RGBA{R: 200, G: 220, B: 255, A: 255}
	boneOuter  = color.RGBA{R: 100, G: 255, B: 218, A: 255}
	boneInner  = color.RGBA{R: 255, G: 105, B: 180, A: 255}
	jointColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var anchorJoints = map[int]bool{
	detector.Wrist:     true,
	detector.ThumbTip:  true,
	detector.IndexTip:  true,
	detector.MiddleTip: true,
	detector.RingTip:   true,
	detector.PinkyTip:  true,
}

// DrawLandmarks draws face points and hand skeletons onto dst using
// normalized coordinates scaled to dst's size. It returns the first
// drawing failure.
func DrawLandmarks(dst *gocv.Mat, r detector.Result) error {
	w, h := float64(dst.Cols()), float64(dst.Rows())
	pt := func(p detector.Point3D) image.Point {
		return image.Pt(int(p.X*w), int(p.Y*h))
	}

	var first error
	keep := func(err error) {
		if first == nil {
			first = err
		}
	}

	for _, p := range r.Face {
		keep(gocv.Circle(dst, pt(p), 1, faceColor, -1))
	}

	for i := range r.Hands {
		hand := &r.Hands[i]
		for _, c := range detector.HandConnections {
			keep(gocv.Line(dst, pt(hand.Points[c[0]]), pt(hand.Points[c[1]]), boneOuter, 2))
		}
		for _, c := range detector.HandConnections {
			keep(gocv.Line(dst, pt(hand.Points[c[0]]), pt(hand.Points[c[1]]), boneInner, 1))
		}
		for j, p := range hand.Points {
			radius := 2
			if anchorJoints[j] {
				radius = 4
			}
			keep(gocv.Circle(dst, pt(p), radius, jointColor, -1))
		}
	}
	if first != nil {
		return fmt.Errorf("draw landmarks: %w", first)
	}
	return nil
}

// Preview scales frame to the overlay surface, draws r over it and mirrors
// the result horizontally. The returned Mat is always valid and the caller
// closes it; a non-nil error reports the steps that failed.
func Preview(frame *gocv.Mat, r detector.Result) (gocv.Mat, error) {
	return preview(frame, r, image.Pt(OverlayWidth, OverlayHeight))
}

func preview(frame *gocv.Mat, r detector.Result, size image.Point) (gocv.Mat, error) {
	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), size.Y, size.X, gocv.MatTypeCV8UC3)
	var errs []error
	if frame != nil && !frame.Empty() {
		if err := gocv.Resize(*frame, &out, size, 0, 0, gocv.InterpolationLinear); err != nil {
			errs = append(errs, fmt.Errorf("resize preview: %w", err))
		}
	}
	if err := DrawLandmarks(&out, r); err != nil {
		errs = append(errs, err)
	}
	if err := gocv.Flip(out, &out, 1); err != nil {
		errs = append(errs, fmt.Errorf("mirror preview: %w", err))
	}
	return out, errors.Join(errs...)
}
