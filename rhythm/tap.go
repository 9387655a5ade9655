package rhythm

import "math"

const (
	// TapResetThreshold is the number of seconds after which a new tap starts a fresh history.
	TapResetThreshold = 3.0

	// TapsNeeded is the number of taps required before a tempo is estimated.
	TapsNeeded = 4

	// MaxTapBPM caps the estimated tempo.
	MaxTapBPM = 300.0
)

// TapTempo estimates a tempo from the timing of manual taps.
type TapTempo struct {
	taps    []float64
	lastTap float64
}

// Tap records a tap at t, in seconds on the playback clock. ok is true when enough taps are recorded to estimate a
// tempo.
func (tt *TapTempo) Tap(t float64) (bpm float64, ok bool) {
	if t-tt.lastTap > TapResetThreshold {
		tt.taps = tt.taps[:0]
	}
	tt.taps = append(tt.taps, t)
	tt.lastTap = t

	if len(tt.taps) < TapsNeeded {
		return 0, false
	}
	return estimateBPM(tt.taps), true
}

// Count returns the number of taps in the current history.
func (tt *TapTempo) Count() int {
	return len(tt.taps)
}

// estimateBPM folds the gaps between taps with a running pairwise average, so the latest gaps weigh the most.
func estimateBPM(taps []float64) float64 {
	secondsPerBeat := taps[1] - taps[0]
	for i := 2; i < len(taps); i++ {
		secondsPerBeat = (secondsPerBeat + (taps[i] - taps[i-1])) / 2
	}
	return math.Round(math.Min(60.0/secondsPerBeat, MaxTapBPM))
}
