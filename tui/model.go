// Package tui is the terminal front end of the metronome: a row of beat lights, a glyph that turns every bar and the
// key bindings to change the tempo and the meter while playing.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fogleman/ease"
	"github.com/robmorgan/beatkeeper/effect"
	"github.com/robmorgan/beatkeeper/rhythm"
	"k8s.io/utils/clock"
)

const (
	// MinBPM and MaxBPM bound the tempo keys.
	MinBPM = 20.0
	MaxBPM = 220.0

	frameInterval = time.Second / 30
	lightFade     = 200 * time.Millisecond
)

// Metronome is the part of rhythm.Metronome the interface drives.
type Metronome interface {
	Start(onBeat rhythm.BeatFunc)
	Stop()
	Restart()
	IsRunning() bool
	BPM() float64
	SetBPM(bpm float64) float64
	TapTempo() float64
	CycleClickType() int
	ToggleAccentFirstBeat() bool
	BeatsPerBar() int
	SetBeatsPerBar(beats int) int
	NoteValueForBeat() int
	SetNoteValueForBeat(noteValue int) int
	IncreaseVolume()
	DecreaseVolume()
	Snapshot() rhythm.Snapshot
}

type Model struct {
	metronome Metronome
	beats     <-chan rhythm.Beat
	clock     clock.PassiveClock

	volume progress.Model
	flash  *effect.Flash

	lastBeat rhythm.Beat
	hasBeat  bool

	// rotation counts quarter turns of the bar glyph
	rotation int

	quitting bool
}

// New creates a new Model for metronome, animating the lights from beats.
func New(metronome Metronome, beats <-chan rhythm.Beat, clk clock.PassiveClock) Model {
	flash := effect.NewFlash(lightFade)
	flash.Easing = ease.OutCubic

	return Model{
		metronome: metronome,
		beats:     beats,
		clock:     clk,
		volume: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(20),
			progress.WithoutPercentage(),
		),
		flash: flash,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForBeat(m.beats))
}

type tickMsg time.Time

type beatMsg rhythm.Beat

type beatsClosedMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForBeat blocks until the next beat arrives.
func waitForBeat(beats <-chan rhythm.Beat) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-beats
		if !ok {
			return beatsClosedMsg{}
		}
		return beatMsg(b)
	}
}
