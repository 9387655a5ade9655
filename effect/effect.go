package effect

import (
	"time"

	"github.com/fogleman/ease"
)

// Function shapes the decay of a flash. t runs from 0 to 1.
type Function func(t float64) float64

// Flash is a one-shot envelope that jumps to full level when triggered and eases back to zero over its length.
type Flash struct {
	// Length is how long the flash takes to fade out.
	Length time.Duration

	// Easing shapes the fade. It defaults to ease.OutQuad.
	Easing Function

	triggeredAt time.Time
	accent      bool
}

// NewFlash creates a new Flash that fades out over length
func NewFlash(length time.Duration) *Flash {
	return &Flash{
		Length: length,
		Easing: ease.OutQuad,
	}
}

// Trigger restarts the flash at t.
func (f *Flash) Trigger(t time.Time, accent bool) {
	f.triggeredAt = t
	f.accent = accent
}

// Accent reports whether the last trigger was an accented beat.
func (f *Flash) Accent() bool {
	return f.accent
}

// Level returns the flash level at now, between 0 and 1.
func (f *Flash) Level(now time.Time) float64 {
	if f.triggeredAt.IsZero() || f.Length <= 0 {
		return 0
	}
	elapsed := now.Sub(f.triggeredAt)
	if elapsed < 0 || elapsed >= f.Length {
		return 0
	}

	easing := f.Easing
	if easing == nil {
		easing = ease.OutQuad
	}
	return 1 - easing(float64(elapsed)/float64(f.Length))
}

// Active reports whether the flash is still fading at now.
func (f *Flash) Active(now time.Time) bool {
	return f.Level(now) > 0
}
