package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"
	"github.com/robmorgan/beatkeeper/audio/audiotest"
	"github.com/robmorgan/beatkeeper/config"
	"github.com/robmorgan/beatkeeper/rhythm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"
)

type readyLoader struct{}

func (readyLoader) Load(sources []string, onReady func([]*beep.Buffer)) {
	buffers := make([]*beep.Buffer, len(sources))
	for i := range buffers {
		buffers[i] = audiotest.Buffer(beep.SampleRate(44100), 64)
	}
	onReady(buffers)
}

func newTestModel(t *testing.T) (Model, *rhythm.Metronome, *testclock.FakeClock) {
	t.Helper()

	clk := testclock.NewFakeClock(time.Unix(0, 0))
	metronome := rhythm.NewMetronome(config.NewMetronomeConfig(), clk, audiotest.NewContext(), readyLoader{})
	t.Cleanup(metronome.Close)

	beats, cancel := metronome.Subscribe(8)
	t.Cleanup(cancel)

	return New(metronome, beats, clk), metronome, clk
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()

	var msg tea.KeyMsg
	if key == "ctrl+c" {
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestSpaceTogglesPlayback(t *testing.T) {
	t.Parallel()

	m, metronome, _ := newTestModel(t)

	m, _ = press(t, m, " ")
	assert.True(t, metronome.IsRunning())
	assert.Contains(t, m.View(), "playing")

	m, _ = press(t, m, " ")
	assert.False(t, metronome.IsRunning())
	assert.Contains(t, m.View(), "stopped")
}

func TestBPMKeysAreBounded(t *testing.T) {
	t.Parallel()

	m, metronome, _ := newTestModel(t)

	m, _ = press(t, m, "]")
	assert.Equal(t, 121.0, metronome.BPM())
	m, _ = press(t, m, "[")
	m, _ = press(t, m, "[")
	assert.Equal(t, 119.0, metronome.BPM())

	for i := 0; i < 20; i++ {
		m, _ = press(t, m, "}")
	}
	assert.Equal(t, MaxBPM, metronome.BPM())

	for i := 0; i < 30; i++ {
		m, _ = press(t, m, "{")
	}
	assert.Equal(t, MinBPM, metronome.BPM())
	assert.Contains(t, m.View(), "20")
}

func TestMeterKeys(t *testing.T) {
	t.Parallel()

	m, metronome, _ := newTestModel(t)

	m, _ = press(t, m, "B")
	assert.Equal(t, 5, metronome.BeatsPerBar())
	m, _ = press(t, m, "b")
	m, _ = press(t, m, "b")
	assert.Equal(t, 3, metronome.BeatsPerBar())

	m, _ = press(t, m, "n")
	assert.Equal(t, 8, metronome.NoteValueForBeat())
	m, _ = press(t, m, "n")
	assert.Equal(t, 16, metronome.NoteValueForBeat())
	m, _ = press(t, m, "n")
	assert.Equal(t, 4, metronome.NoteValueForBeat())
	assert.Contains(t, m.View(), "3/4")
}

func TestMeterChangeRestartsFromTopOfBar(t *testing.T) {
	t.Parallel()

	m, metronome, _ := newTestModel(t)
	m, _ = press(t, m, " ")

	next, _ := m.Update(beatMsg(rhythm.Beat{BeatIndex: 0, FirstBeatOfBar: true}))
	m = next.(Model)
	require.True(t, m.hasBeat)

	m, _ = press(t, m, "B")
	assert.True(t, metronome.IsRunning())
	assert.False(t, m.hasBeat)
	assert.Equal(t, 0, metronome.Snapshot().CurrentBeat)
}

func TestToggleKeys(t *testing.T) {
	t.Parallel()

	m, metronome, _ := newTestModel(t)

	m, _ = press(t, m, "a")
	assert.True(t, metronome.AccentFirstBeat())
	m, _ = press(t, m, "a")
	assert.False(t, metronome.AccentFirstBeat())

	m, _ = press(t, m, "c")
	assert.Equal(t, 0, metronome.ClickType())

	m, _ = press(t, m, "-")
	assert.InDelta(t, 0.6, metronome.Volume(), 1e-9)
	_, _ = press(t, m, "+")
	assert.InDelta(t, 0.7, metronome.Volume(), 1e-9)
}

func TestTapKey(t *testing.T) {
	t.Parallel()

	m, metronome, _ := newTestModel(t)
	m, _ = press(t, m, "t")
	assert.Equal(t, config.DefaultBPM, metronome.BPM())
	assert.Contains(t, m.View(), "120")
}

func TestGlyphTurnsAfterFirstDownbeat(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestModel(t)
	first := m.glyph()

	for _, b := range []rhythm.Beat{
		{BeatIndex: 0, FirstBeatOfBar: true, Bar: 0},
		{BeatIndex: 1, Bar: 0},
		{BeatIndex: 2, Bar: 0},
		{BeatIndex: 3, Bar: 0},
	} {
		next, cmd := m.Update(beatMsg(b))
		require.NotNil(t, cmd)
		m = next.(Model)
	}
	assert.Equal(t, first, m.glyph())

	next, _ := m.Update(beatMsg(rhythm.Beat{BeatIndex: 0, FirstBeatOfBar: true, Bar: 1}))
	m = next.(Model)
	assert.Equal(t, 1, m.rotation)
	assert.NotEqual(t, first, m.glyph())
}

func TestLightFades(t *testing.T) {
	t.Parallel()

	m, _, clk := newTestModel(t)

	next, _ := m.Update(beatMsg(rhythm.Beat{BeatIndex: 1}))
	m = next.(Model)
	assert.Equal(t, 1.0, m.flash.Level(clk.Now()))

	clk.Step(lightFade)
	assert.Equal(t, 0.0, m.flash.Level(clk.Now()))
	assert.NotEmpty(t, m.lights(4, true))
}

func TestQuit(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"q", "ctrl+c"} {
		m, metronome, _ := newTestModel(t)
		m, _ = press(t, m, " ")

		m, cmd := press(t, m, key)
		assert.True(t, m.quitting)
		assert.NotNil(t, cmd)
		assert.False(t, metronome.IsRunning())
	}
}

func TestBeatsClosed(t *testing.T) {
	t.Parallel()

	beats := make(chan rhythm.Beat)
	close(beats)

	msg := waitForBeat(beats)()
	assert.Equal(t, beatsClosedMsg{}, msg)
}
