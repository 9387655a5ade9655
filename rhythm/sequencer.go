package rhythm

import (
	"math"

	"github.com/robmorgan/beatkeeper/config"
	"golang.org/x/exp/slices"
)

// AccentPlaybackRate is the playback rate of an accented click.
const AccentPlaybackRate = 1.1

// MeterConfig describes the bar: how many notes it holds, what note value each one is and whether the first is
// accented.
type MeterConfig struct {
	BeatsPerBar      int
	NoteValueForBeat int
	AccentFirstBeat  bool
}

// ScheduledNote is a note the sequencer has decided is due.
type ScheduledNote struct {
	BeatIndex int

	// Time is on the playback clock, in seconds.
	Time float64

	Accent bool
}

// Sequencer holds the timing math of the metronome: the tempo, the meter and the position of the next note.
type Sequencer struct {
	bpm          float64
	meter        MeterConfig
	nextNoteTime float64
	currentBeat  int
}

// NewSequencer creates a new Sequencer with the default tempo and meter
func NewSequencer() *Sequencer {
	return &Sequencer{
		bpm: config.DefaultBPM,
		meter: MeterConfig{
			BeatsPerBar:      config.DefaultBeatsPerBar,
			NoteValueForBeat: config.DefaultNoteValueForBeat,
		},
	}
}

// Reset moves the sequencer to the first beat of a bar starting at t.
func (s *Sequencer) Reset(t float64) {
	s.nextNoteTime = t
	s.currentBeat = 0
}

// Interval returns the number of seconds between two notes at the current tempo and note value.
func (s *Sequencer) Interval() float64 {
	secondsPerBeat := 60.0 / s.bpm
	return (4 / float64(s.meter.NoteValueForBeat)) * secondsPerBeat
}

// Next returns the note due at the next note time without advancing.
func (s *Sequencer) Next() ScheduledNote {
	return ScheduledNote{
		BeatIndex: s.currentBeat,
		Time:      s.nextNoteTime,
		Accent:    s.currentBeat == 0 && s.meter.AccentFirstBeat,
	}
}

// Advance moves to the following note. The interval is computed from the tempo and meter at the time of the call.
func (s *Sequencer) Advance() {
	s.nextNoteTime += s.Interval()
	s.currentBeat = (s.currentBeat + 1) % s.meter.BeatsPerBar
}

func (s *Sequencer) NextNoteTime() float64 {
	return s.nextNoteTime
}

func (s *Sequencer) CurrentBeat() int {
	return s.currentBeat
}

func (s *Sequencer) BPM() float64 {
	return s.bpm
}

// SetBPM changes the tempo. Zero, negative, infinite and NaN values are ignored. It returns the resulting tempo.
func (s *Sequencer) SetBPM(bpm float64) float64 {
	if bpm > 0 && !math.IsInf(bpm, 1) {
		s.bpm = bpm
	}
	return s.bpm
}

func (s *Sequencer) Meter() MeterConfig {
	return s.meter
}

// SetBeatsPerBar changes the bar length. Values outside [1,16] are ignored. A shorter bar wraps the current beat.
func (s *Sequencer) SetBeatsPerBar(beats int) int {
	if beats >= config.MinBeatsPerBar && beats <= config.MaxBeatsPerBar {
		s.meter.BeatsPerBar = beats
		s.currentBeat %= beats
	}
	return s.meter.BeatsPerBar
}

// SetNoteValueForBeat changes the subdivision. Only quarter, eighth and sixteenth notes are accepted.
func (s *Sequencer) SetNoteValueForBeat(noteValue int) int {
	if slices.Contains(config.AllowedNoteValues, noteValue) {
		s.meter.NoteValueForBeat = noteValue
	}
	return s.meter.NoteValueForBeat
}

func (s *Sequencer) SetAccentFirstBeat(accent bool) bool {
	s.meter.AccentFirstBeat = accent
	return s.meter.AccentFirstBeat
}
