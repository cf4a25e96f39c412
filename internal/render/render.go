// Package render paints highlight spans onto text for 24-bit color terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/fractal-lba/rhymer/internal/highlight"
	"github.com/fractal-lba/rhymer/internal/rhyme"
	"github.com/fractal-lba/rhymer/pkg/palette"
)

const reset = "\x1b[0m"

// Theme controls how highlighted words are drawn.
type Theme struct {
	Name string
	// Foreground is the text color drawn over a highlight.
	Foreground palette.RGB
}

var (
	Light = Theme{Name: "light", Foreground: palette.RGB{R: 0, G: 0, B: 0}}
	Dark  = Theme{Name: "dark", Foreground: palette.RGB{R: 255, G: 255, B: 255}}
)

// ThemeByName returns the theme called name ("light" or "dark").
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q", name)
}

func (t Theme) paint(bg palette.RGB) string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm",
		bg.R, bg.G, bg.B, t.Foreground.R, t.Foreground.G, t.Foreground.B)
}

// ANSI returns text with every span drawn on its color. spans must be ordered
// by Start; spans that overlap an earlier one or fall outside text are skipped.
func ANSI(text string, spans []highlight.Span, theme Theme) string {
	var b strings.Builder
	b.Grow(len(text) + len(spans)*40)

	pos := 0
	for _, s := range spans {
		end := s.Start + s.Length
		if s.Length <= 0 || s.Start < pos || end > len(text) {
			continue
		}
		b.WriteString(text[pos:s.Start])
		b.WriteString(theme.paint(s.Color))
		b.WriteString(text[s.Start:end])
		b.WriteString(reset)
		pos = end
	}
	b.WriteString(text[pos:])
	return b.String()
}

// Legend lists each group with its color swatch, one line per group.
// Groups without a color are omitted.
func Legend(groups []rhyme.Group, colors []palette.RGB) string {
	var b strings.Builder
	for i, g := range groups {
		if i >= len(colors) {
			break
		}
		c := colors[i]
		fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm  %s %s  %-10s %s\n",
			c.R, c.G, c.B, reset, c.Hex(), g.Key, strings.Join(g.Members, ", "))
	}
	return b.String()
}

// Plain is Legend without escapes.
func Plain(groups []rhyme.Group, colors []palette.RGB) string {
	var b strings.Builder
	for i, g := range groups {
		if i >= len(colors) {
			break
		}
		fmt.Fprintf(&b, "%s  %-10s %s\n", colors[i].Hex(), g.Key, strings.Join(g.Members, ", "))
	}
	return b.String()
}
