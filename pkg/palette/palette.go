// Package palette generates evenly spaced highlight colors.
package palette

import (
	"fmt"
	"math"
)

const (
	DefaultSaturation = 0.7
	DefaultValue      = 0.9
)

// RGB is a color with 8-bit channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// Generator sweeps hue around the wheel at fixed saturation and value.
type Generator struct {
	Saturation float64
	Value      float64
}

// Default is the generator used for highlight colors.
var Default = Generator{Saturation: DefaultSaturation, Value: DefaultValue}

// Distinct returns n colors from the Default generator.
func Distinct(n int) []RGB {
	return Default.Generate(n)
}

// Generate returns n colors with hue i/n for i in [0, n).
// Channels are scaled to [0, 255] and truncated.
func (g Generator) Generate(n int) []RGB {
	if n <= 0 {
		return []RGB{}
	}

	colors := make([]RGB, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, gr, b := HSVToRGB(hue, g.Saturation, g.Value)
		colors[i] = RGB{R: channel(r), G: channel(gr), B: channel(b)}
	}
	return colors
}

func channel(x float64) uint8 {
	v := int(x * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// HSVToRGB converts hue, saturation and value in [0, 1] to red, green and blue in [0, 1].
func HSVToRGB(h, s, v float64) (float64, float64, float64) {
	if s == 0 {
		return v, v, v
	}

	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
