package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/beatkeeper/config"
	"github.com/robmorgan/beatkeeper/rhythm"
	"github.com/robmorgan/beatkeeper/utils"
	"golang.org/x/exp/slices"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case beatMsg:
		m.onBeat(rhythm.Beat(msg))
		return m, waitForBeat(m.beats)
	case beatsClosedMsg:
		return m, nil
	case tickMsg:
		return m, tickCmd()
	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "space":
		if m.metronome.IsRunning() {
			m.metronome.Stop()
		} else {
			m.hasBeat = false
			m.rotation = 0
			m.metronome.Start(nil)
		}
	case "[":
		m.nudgeBPM(-1)
	case "]":
		m.nudgeBPM(1)
	case "{":
		m.nudgeBPM(-10)
	case "}":
		m.nudgeBPM(10)
	case "t":
		m.metronome.TapTempo()
	case "c":
		m.metronome.CycleClickType()
	case "a":
		m.metronome.ToggleAccentFirstBeat()
	case "b":
		m.changeMeter(func() { m.metronome.SetBeatsPerBar(m.metronome.BeatsPerBar() - 1) })
	case "B":
		m.changeMeter(func() { m.metronome.SetBeatsPerBar(m.metronome.BeatsPerBar() + 1) })
	case "n":
		m.changeMeter(func() { m.metronome.SetNoteValueForBeat(nextNoteValue(m.metronome.NoteValueForBeat())) })
	case "+", "=":
		m.metronome.IncreaseVolume()
	case "-":
		m.metronome.DecreaseVolume()
	case "q", "ctrl+c":
		m.quitting = true
		m.metronome.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) nudgeBPM(delta float64) {
	m.metronome.SetBPM(utils.Clamp(m.metronome.BPM()+delta, MinBPM, MaxBPM))
}

// changeMeter applies fn and restarts a running metronome from the top of the bar.
func (m *Model) changeMeter(fn func()) {
	fn()
	if m.metronome.IsRunning() {
		m.hasBeat = false
		m.rotation = 0
		m.metronome.Restart()
	}
}

func (m *Model) onBeat(b rhythm.Beat) {
	// the glyph stays put on the very first downbeat
	if b.FirstBeatOfBar && m.hasBeat {
		m.rotation++
	}
	m.lastBeat = b
	m.hasBeat = true
	m.flash.Trigger(m.clock.Now(), b.Accent)
}

func nextNoteValue(current int) int {
	values := config.AllowedNoteValues
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}
