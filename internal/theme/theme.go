// Package theme defines the ordered color themes particles are tinted from.
package theme

import (
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme is a named palette plus the translucent trail painted each frame.
type Theme struct {
	Name    string
	Palette []colorful.Color
	Trail   colorful.Color
	// TrailAlpha is the opacity of the per-frame trail fill in [0,1].
	TrailAlpha float64
}

type spec struct {
	name    string
	palette []string
	trail   [3]uint8
	alpha   float64
}

var specs = []spec{
	{"Rainbow", []string{"#ff4d6d", "#ffd166", "#64dfdf", "#5f8cff", "#c77dff"}, [3]uint8{6, 7, 12}, 0.18},
	{"Flame", []string{"#ff9f1c", "#ff5714", "#ffd166", "#ff006e", "#ffa8c6"}, [3]uint8{8, 6, 4}, 0.2},
	{"Ocean", []string{"#1b998b", "#0ead69", "#0f4c5c", "#5bc0eb", "#c1fba4"}, [3]uint8{5, 10, 14}, 0.18},
	{"Galaxy", []string{"#f15bb5", "#9b5de5", "#00bbf9", "#00f5d4", "#fee440"}, [3]uint8{7, 6, 12}, 0.2},
	{"Matrix", []string{"#00f5d4", "#0aff99", "#37ff8b", "#7cff6b", "#c7ff9e"}, [3]uint8{3, 6, 4}, 0.22},
}

var themes = mustBuild(specs)

func mustBuild(specs []spec) []Theme {
	out := make([]Theme, 0, len(specs))
	for _, s := range specs {
		t := Theme{
			Name:       s.name,
			Trail:      colorful.Color{R: float64(s.trail[0]) / 255, G: float64(s.trail[1]) / 255, B: float64(s.trail[2]) / 255},
			TrailAlpha: s.alpha,
		}
		for _, hex := range s.palette {
			c, err := colorful.Hex(hex)
			if err != nil {
				panic(fmt.Sprintf("theme %s: %v", s.name, err))
			}
			t.Palette = append(t.Palette, c)
		}
		out = append(out, t)
	}
	return out
}

// Count returns the number of themes.
func Count() int {
	return len(themes)
}

// At returns the theme at i, wrapping in both directions.
func At(i int) Theme {
	n := len(themes)
	return themes[((i%n)+n)%n]
}

// Next returns the index after i, wrapping to zero.
func Next(i int) int {
	return (i + 1) % len(themes)
}

// Names lists the theme names in order.
func Names() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// Pick returns a random palette color as RGBA.
func (t Theme) Pick(rng *rand.Rand) color.RGBA {
	if len(t.Palette) == 0 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return toRGBA(t.Palette[rng.IntN(len(t.Palette))])
}

// TrailColor returns the trail tint with its alpha applied.
func (t Theme) TrailColor() color.NRGBA {
	r, g, b := t.Trail.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(t.TrailAlpha*255 + 0.5)}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
