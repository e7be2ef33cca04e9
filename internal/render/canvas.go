// Package render draws the swarm and the landmark overlay onto GoCV Mats.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// MatCanvas is a BGR surface the swarm draws into.
// Draw failures are kept until Err is called.
type MatCanvas struct {
	mat  gocv.Mat
	fill gocv.Mat
	err  error
}

// NewMatCanvas allocates a black width x height canvas.
func NewMatCanvas(width, height int) *MatCanvas {
	width, height = max(1, width), max(1, height)
	black := gocv.NewScalar(0, 0, 0, 0)
	return &MatCanvas{
		mat:  gocv.NewMatWithSizeFromScalar(black, height, width, gocv.MatTypeCV8UC3),
		fill: gocv.NewMatWithSizeFromScalar(black, height, width, gocv.MatTypeCV8UC3),
	}
}

// Fade blends c over the whole canvas at c's alpha.
func (m *MatCanvas) Fade(c color.NRGBA) {
	alpha := float64(c.A) / 255
	if alpha <= 0 {
		return
	}
	m.fill.SetTo(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0))
	if err := gocv.AddWeighted(m.mat, 1-alpha, m.fill, alpha, 0, &m.mat); err != nil {
		m.keep(fmt.Errorf("fade: %w", err))
	}
}

// FillRect draws a filled square with its top-left corner at (x, y).
// Sizes below one pixel still cover a single pixel.
func (m *MatCanvas) FillRect(x, y, size float64, c color.RGBA) {
	s := max(1, int(math.Ceil(size)))
	x0, y0 := int(x), int(y)
	if err := gocv.Rectangle(&m.mat, image.Rect(x0, y0, x0+s, y0+s), c, -1); err != nil {
		m.keep(fmt.Errorf("fill rect: %w", err))
	}
}

func (m *MatCanvas) keep(err error) {
	if m.err == nil {
		m.err = err
	}
}

// Err returns the first draw failure since the last call and clears it.
func (m *MatCanvas) Err() error {
	err := m.err
	m.err = nil
	return err
}

// Blit copies src into the canvas with its top-left corner at (x, y),
// clipped to the canvas bounds.
func (m *MatCanvas) Blit(src gocv.Mat, x, y int) {
	dst := image.Rect(x, y, x+src.Cols(), y+src.Rows()).Intersect(image.Rect(0, 0, m.mat.Cols(), m.mat.Rows()))
	if dst.Empty() {
		return
	}
	part := src.Region(dst.Sub(image.Pt(x, y)))
	defer part.Close()
	roi := m.mat.Region(dst)
	defer roi.Close()
	part.CopyTo(&roi)
}

// MatFromImage converts img to a BGR Mat. The caller closes it.
func MatFromImage(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("convert image: %w", err)
	}
	return mat, nil
}

// Size returns the canvas dimensions.
func (m *MatCanvas) Size() (width, height int) {
	return m.mat.Cols(), m.mat.Rows()
}

// Mat exposes the underlying surface. It stays owned by the canvas.
func (m *MatCanvas) Mat() *gocv.Mat {
	return &m.mat
}

// EncodeJPEG returns the canvas as JPEG bytes.
func (m *MatCanvas) EncodeJPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, m.mat)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the canvas Mats.
func (m *MatCanvas) Close() error {
	if err := m.fill.Close(); err != nil {
		return err
	}
	return m.mat.Close()
}
