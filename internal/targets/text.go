package targets

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// IntroText is the string the swarm spells before a camera session starts.
const IntroText = "Welcome to Particle Fluid Portrait"

// Text raster parameters.
const (
	minFontSize    = 26
	maxFontSize    = 64
	alphaThreshold = 10
	textWeight     = 1.4
	textSize       = 1.6
)

// TextTargets is the sampled raster of a string.
type TextTargets struct {
	All    []Target
	Sorted []Target // All ordered by ascending X
	MinX   float64
	MaxX   float64
}

// Empty reports whether the raster produced no targets.
func (t TextTargets) Empty() bool {
	return len(t.Sorted) == 0
}

// Active returns the prefix of Sorted whose X does not exceed the cutoff
// interpolated between MinX and MaxX by progress in [0,1]. At least one
// target is returned whenever any exist.
func (t TextTargets) Active(progress float64) []Target {
	if len(t.Sorted) == 0 {
		return nil
	}
	if progress >= 1 {
		return t.Sorted
	}
	cutoff := t.MinX + (t.MaxX-t.MinX)*progress
	n := sort.Search(len(t.Sorted), func(i int) bool {
		return t.Sorted[i].X > cutoff
	})
	return t.Sorted[:max(1, n)]
}

// FontSize returns the responsive font size for a canvas of the given width.
func FontSize(width float64) int {
	size := int(math.Floor(width * 0.05))
	return min(maxFontSize, max(minFontSize, size))
}

// BuildText rasterizes text centred at (0.5w, 0.4h) of a w x h canvas and
// samples every Nth opaque pixel, N derived from the font size. Samples
// falling outside the canvas are discarded.
func BuildText(text string, width, height float64) TextTargets {
	if text == "" || width <= 0 || height <= 0 {
		return TextTargets{}
	}

	fontSize := FontSize(width)
	glyphs := rasterize(text)
	if glyphs == nil {
		return TextTargets{}
	}

	scale := float64(fontSize) / float64(basicfont.Face7x13.Height)
	src := glyphs.Bounds()
	sw := int(math.Ceil(float64(src.Dx()) * scale))
	sh := int(math.Ceil(float64(src.Dy()) * scale))
	scaled := image.NewAlpha(image.Rect(0, 0, sw, sh))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), glyphs, src, draw.Src, nil)

	left := math.Floor(width*0.5 - float64(sw)/2)
	top := math.Floor(height*0.4 - float64(sh)/2)
	step := max(2, fontSize/10)

	var out TextTargets
	for y := 0; y < sh; y += step {
		for x := 0; x < sw; x += step {
			if scaled.AlphaAt(x, y).A <= alphaThreshold {
				continue
			}
			px, py := left+float64(x), top+float64(y)
			if px < 0 || px >= width || py < 0 || py >= height {
				continue
			}
			out.All = append(out.All, Target{X: px, Y: py, Weight: textWeight, Size: textSize})
		}
	}
	if len(out.All) == 0 {
		return TextTargets{}
	}

	out.Sorted = make([]Target, len(out.All))
	copy(out.Sorted, out.All)
	sort.SliceStable(out.Sorted, func(i, j int) bool {
		return out.Sorted[i].X < out.Sorted[j].X
	})
	out.MinX = out.Sorted[0].X
	out.MaxX = out.Sorted[len(out.Sorted)-1].X
	return out
}

// rasterize draws text with the fixed 7x13 face into a tight alpha mask.
func rasterize(text string) *image.Alpha {
	face := basicfont.Face7x13
	advance := font.MeasureString(face, text).Ceil()
	if advance <= 0 {
		return nil
	}

	img := image.NewAlpha(image.Rect(0, 0, advance, face.Height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)
	return img
}
