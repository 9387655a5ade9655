package rhythm

import (
	"context"
	"sync"
	"time"

	"github.com/robmorgan/beatkeeper/audio"
	"github.com/robmorgan/beatkeeper/config"
	"github.com/robmorgan/beatkeeper/logger"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// Metronome schedules clicks ahead of a playback clock. A coarse timer wakes it every tick interval; each wake-up
// hands every note due within the lookahead horizon to the playback clock, which plays them on the exact sample
// regardless of how late the timer fired.
// The timing approach follows https://github.com/cwilso/metronome
type Metronome struct {
	mu sync.Mutex

	clock  clock.Clock
	audio  audio.Context
	clicks *audio.ClickRegistry
	gain   *audio.GainController
	seq    *Sequencer
	tap    TapTempo

	clickType       int
	tickInterval    time.Duration
	lookahead       float64
	maxNotesPerTick int

	running bool
	onBeat  BeatFunc
	bar     int
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	subMu          sync.Mutex
	subscribers    map[int]chan Beat
	nextSubscriber int
}

// NewMetronome creates a new Metronome from cfg. clk drives the coarse tick and the beat notifications, ac is the
// playback clock. The click sources are handed to loader straight away; notes due before they finish decoding are
// silent.
func NewMetronome(cfg config.MetronomeConfig, clk clock.Clock, ac audio.Context, loader audio.AssetLoader) *Metronome {
	cfg = withSchedulingDefaults(cfg)
	m := &Metronome{
		clock:           clk,
		audio:           ac,
		clicks:          audio.NewClickRegistry(ac, len(cfg.Audio.ClickSources)),
		gain:            audio.NewGainController(ac.Gain()),
		seq:             NewSequencer(),
		tickInterval:    cfg.TickInterval,
		lookahead:       cfg.Lookahead,
		maxNotesPerTick: cfg.MaxNotesPerTick,
		subscribers:     make(map[int]chan Beat),
	}

	m.seq.SetBPM(cfg.BPM)
	m.seq.SetBeatsPerBar(cfg.BeatsPerBar)
	m.seq.SetNoteValueForBeat(cfg.NoteValueForBeat)
	m.seq.SetAccentFirstBeat(cfg.AccentFirstBeat)
	if cfg.ClickType >= 0 && cfg.ClickType < m.clicks.Total() {
		m.clickType = cfg.ClickType
	}
	ac.Gain().Set(cfg.Volume)

	if loader != nil {
		loader.Load(cfg.Audio.ClickSources, m.clicks.SetBuffers)
	}

	return m
}

// withSchedulingDefaults replaces scheduling values the tick loop cannot run with by the defaults.
func withSchedulingDefaults(cfg config.MetronomeConfig) config.MetronomeConfig {
	defaults := config.NewMetronomeConfig()
	logger := logger.GetProjectLogger()

	if cfg.TickInterval <= 0 {
		logger.WithFields(logrus.Fields{"tick_interval": cfg.TickInterval}).Warn("Invalid tick interval, using default")
		cfg.TickInterval = defaults.TickInterval
	}
	if !(cfg.Lookahead > 0) {
		logger.WithFields(logrus.Fields{"lookahead": cfg.Lookahead}).Warn("Invalid lookahead, using default")
		cfg.Lookahead = defaults.Lookahead
	}
	if cfg.MaxNotesPerTick <= 0 {
		logger.WithFields(logrus.Fields{"max_notes_per_tick": cfg.MaxNotesPerTick}).Warn("Invalid catch-up limit, using default")
		cfg.MaxNotesPerTick = defaults.MaxNotesPerTick
	}
	return cfg
}

// Start begins playing from the first beat of a bar at the current playback time. Calling Start while running
// restarts cleanly. onBeat may be nil.
func (m *Metronome) Start(onBeat BeatFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startLocked(onBeat)
}

func (m *Metronome) startLocked(onBeat BeatFunc) {
	m.stopLocked()

	m.seq.Reset(m.audio.Now())
	m.bar = -1
	m.onBeat = onBeat
	m.running = true

	ctx, cancel := context.WithCancel(context.Background())
	m.runCtx = ctx
	m.cancel = cancel

	m.wg.Add(1)
	go m.processForever(ctx)

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{
		"bpm":           m.seq.BPM(),
		"beats_per_bar": m.seq.Meter().BeatsPerBar,
		"note_value":    m.seq.Meter().NoteValueForBeat,
		"start":         m.seq.NextNoteTime(),
	}).Info("Metronome started")
}

// Stop halts the tick and any notification not yet delivered. Clicks already handed to the playback clock still play.
func (m *Metronome) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.stopLocked()

	logger := logger.GetProjectLogger()
	logger.Info("Metronome stopped")
}

func (m *Metronome) stopLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.running = false
}

// Restart re-applies the current settings from the first beat of a bar, keeping the beat callback. It does nothing
// when stopped.
func (m *Metronome) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.startLocked(m.onBeat)
	}
}

// Close stops the metronome and waits for the tick goroutine and pending notification timers. A beat callback
// that is already running is not waited for, so onBeat may call Close.
func (m *Metronome) Close() {
	m.Stop()
	m.wg.Wait()
}

// processForever ticks until ctx is cancelled.
func (m *Metronome) processForever(ctx context.Context) {
	defer m.wg.Done()

	t := m.clock.NewTimer(m.tickInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			m.tick(ctx)
			t.Reset(m.tickInterval)
		}
	}
}

// tick runs one lookahead pass for the run identified by ctx.
func (m *Metronome) tick(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || ctx != m.runCtx {
		return
	}

	now := m.audio.Now()
	var due []Beat
	count := SchedulePass(m.seq, now, m.lookahead, m.maxNotesPerTick, func(note ScheduledNote) {
		beat := m.scheduleNote(note)
		if delay := time.Duration((note.Time - now) * float64(time.Second)); delay > 0 {
			m.notifyAt(ctx, beat, delay)
		} else {
			due = append(due, beat)
		}
	})
	m.notifyNow(ctx, due)

	if count == m.maxNotesPerTick && m.seq.NextNoteTime() < now+m.lookahead {
		logger := logger.GetProjectLogger()
		logger.WithFields(logrus.Fields{"dispatched": count, "behind": now - m.seq.NextNoteTime()}).
			Warn("Metronome fell behind, truncating catch-up")
	}
}

// scheduleNote hands the click to the playback clock and returns the beat to notify.
func (m *Metronome) scheduleNote(note ScheduledNote) Beat {
	logger := logger.GetProjectLogger()

	if trigger, ok := m.clicks.CreateTrigger(m.clickType); ok {
		if note.Accent {
			trigger.SetPlaybackRate(AccentPlaybackRate)
		}
		trigger.ScheduleAt(note.Time)
	} else {
		logger.WithFields(logrus.Fields{"click_type": m.clickType, "beat": note.BeatIndex}).Debug("Click not loaded, skipping sound")
	}

	if note.BeatIndex == 0 || m.bar < 0 {
		m.bar++
	}
	beat := Beat{
		BeatIndex:      note.BeatIndex,
		FirstBeatOfBar: note.BeatIndex == 0,
		Accent:         note.Accent,
		Time:           note.Time,
		Bar:            m.bar,
	}
	logger.WithFields(logrus.Fields{"beat": beat.BeatIndex, "bar": beat.Bar, "time": note.Time, "accent": note.Accent}).Debug("Scheduled note")

	return beat
}

// notifyNow delivers beats that are already due, in order, from a single goroutine.
func (m *Metronome) notifyNow(ctx context.Context, beats []Beat) {
	if len(beats) == 0 {
		return
	}
	onBeat := m.onBeat

	go func() {
		for _, beat := range beats {
			if ctx.Err() != nil {
				return
			}
			m.deliver(onBeat, beat)
		}
	}()
}

// notifyAt delivers beat after delay unless the run is stopped first.
func (m *Metronome) notifyAt(ctx context.Context, beat Beat, delay time.Duration) {
	onBeat := m.onBeat

	m.wg.Add(1)
	timer := m.clock.NewTimer(delay)
	go func() {
		select {
		case <-ctx.Done():
			timer.Stop()
			m.wg.Done()
		case <-timer.C():
			m.wg.Done()
			if ctx.Err() == nil {
				m.deliver(onBeat, beat)
			}
		}
	}()
}

func (m *Metronome) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// CurrentBeat returns the index of the next note to be scheduled.
func (m *Metronome) CurrentBeat() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.CurrentBeat()
}

func (m *Metronome) BPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.BPM()
}

// SetBPM changes the tempo from the next computed interval on. Zero and negative values are ignored.
func (m *Metronome) SetBPM(bpm float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.SetBPM(bpm)
}

func (m *Metronome) ClickType() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clickType
}

// CycleClickType selects the next click sound, wrapping around.
func (m *Metronome) CycleClickType() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if total := m.clicks.Total(); total > 0 {
		m.clickType = (m.clickType + 1) % total
	}
	return m.clickType
}

func (m *Metronome) AccentFirstBeat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.Meter().AccentFirstBeat
}

func (m *Metronome) ToggleAccentFirstBeat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.SetAccentFirstBeat(!m.seq.Meter().AccentFirstBeat)
}

func (m *Metronome) BeatsPerBar() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.Meter().BeatsPerBar
}

// SetBeatsPerBar changes the bar length. Values outside [1,16] are ignored.
func (m *Metronome) SetBeatsPerBar(beats int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.SetBeatsPerBar(beats)
}

func (m *Metronome) NoteValueForBeat() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.Meter().NoteValueForBeat
}

// SetNoteValueForBeat changes the subdivision to 4, 8 or 16. Other values are ignored.
func (m *Metronome) SetNoteValueForBeat(noteValue int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.SetNoteValueForBeat(noteValue)
}

// TapTempo records a tap at the current playback time and, once enough taps are in, sets the tempo from them. It
// returns the resulting tempo.
func (m *Metronome) TapTempo() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bpm, ok := m.tap.Tap(m.audio.Now()); ok {
		m.seq.SetBPM(bpm)
	}
	return m.seq.BPM()
}

func (m *Metronome) Volume() float64 {
	return m.gain.Volume()
}

func (m *Metronome) IncreaseVolume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain.Increase()
}

func (m *Metronome) DecreaseVolume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain.Decrease()
}

// Snapshot returns the current state.
func (m *Metronome) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	meter := m.seq.Meter()
	return Snapshot{
		Running:          m.running,
		BPM:              m.seq.BPM(),
		BeatsPerBar:      meter.BeatsPerBar,
		NoteValueForBeat: meter.NoteValueForBeat,
		AccentFirstBeat:  meter.AccentFirstBeat,
		ClickType:        m.clickType,
		ClickTypes:       m.clicks.Total(),
		ClickLoaded:      m.clicks.Ready(m.clickType),
		Volume:           m.gain.Volume(),
		CurrentBeat:      m.seq.CurrentBeat(),
		NextNoteTime:     m.seq.NextNoteTime(),
		Interval:         m.seq.Interval(),
	}
}
