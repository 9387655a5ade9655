package utils

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"white":  "#FFFFFF",
	"black":  "#000000",
	"red":    "#FF0000",
	"green":  "#00FF00",
	"blue":   "#0000FF",
	"amber":  "#FFBF00",
	"gold":   "#FFD700",
	"purple": "#8A2BE2",
}

// GetRGBFromString parses a hex colour ("#FFD700") or one of a few colour names. Anything else is black.
func GetRGBFromString(s string) colorful.Color {
	if hex, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// Blend mixes two colours in Lab space, t=0 returning a and t=1 returning b.
func Blend(a, b colorful.Color, t float64) colorful.Color {
	return a.BlendLab(b, Clamp(t, 0, 1)).Clamped()
}
