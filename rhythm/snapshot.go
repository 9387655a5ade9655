package rhythm

// Snapshot is a consistent view of the metronome's state at one instant.
type Snapshot struct {
	Running          bool
	BPM              float64
	BeatsPerBar      int
	NoteValueForBeat int
	AccentFirstBeat  bool
	ClickType        int
	ClickTypes       int

	// ClickLoaded is false while the selected click is still decoding.
	ClickLoaded bool

	Volume       float64
	CurrentBeat  int
	NextNoteTime float64

	// Interval is the time between notes in seconds.
	Interval float64
}

// BarInterval returns the length of a bar in seconds.
func (s Snapshot) BarInterval() float64 {
	return s.Interval * float64(s.BeatsPerBar)
}

// IsDownBeat reports whether the next note is the first of its bar.
func (s Snapshot) IsDownBeat() bool {
	return s.CurrentBeat == 0
}
