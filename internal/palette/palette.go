// Package palette generates and normalizes project colors.
package palette

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	goldenAngle = 137.508
	baseHue     = 220.0
	saturation  = 0.55
	value       = 0.85
)

// Generate returns the color of the n-th project.
// Successive hues are a golden angle apart so neighbouring columns never look alike.
func Generate(n int) string {
	if n < 0 {
		n = -n
	}
	h := math.Mod(baseHue+float64(n)*goldenAngle, 360)
	return colorful.Hsv(h, saturation, value).Hex()
}

// Next returns the first generated color not already in use
func Next(used []string) string {
	taken := make(map[string]bool, len(used))
	for _, c := range used {
		if n, err := Normalize(c); err == nil {
			taken[n] = true
		}
	}
	for i := 0; i < len(used)+1; i++ {
		if c := Generate(len(used) + i); !taken[c] {
			return c
		}
	}
	return Generate(len(used))
}

// Normalize parses a hex color (#rgb or #rrggbb, leading # optional) and
// returns it as lowercase #rrggbb.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c.Clamped().Hex(), nil
}

// Foreground returns black or white, whichever reads better on bg
func Foreground(bg string) string {
	c, err := colorful.Hex(bg)
	if err != nil {
		return "#ffffff"
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}

// Fade blends color toward the background by t (0..1); used for completed tasks
func Fade(color, background string, t float64) string {
	c, err := colorful.Hex(color)
	if err != nil {
		return color
	}
	b, err := colorful.Hex(background)
	if err != nil {
		return color
	}
	return c.BlendLab(b, t).Clamped().Hex()
}
