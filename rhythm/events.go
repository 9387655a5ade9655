package rhythm

// BeatFunc is called close to the moment a note becomes audible.
type BeatFunc func(firstBeatOfBar bool, beatIndex int)

// Beat is published to subscribers for every note the metronome plays.
type Beat struct {
	BeatIndex      int
	FirstBeatOfBar bool
	Accent         bool

	// Time is when the note plays on the playback clock, in seconds.
	Time float64

	// Bar counts bars since the metronome was last started, starting at 0.
	Bar int
}

// Subscribe returns a channel receiving every beat from now on, and a function that closes it. Beats are dropped for
// a subscriber whose buffer is full.
func (m *Metronome) Subscribe(buffer int) (<-chan Beat, func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextSubscriber
	m.nextSubscriber++
	ch := make(chan Beat, buffer)
	m.subscribers[id] = ch

	cancel := func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if c, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(c)
		}
	}
	return ch, cancel
}

func (m *Metronome) publish(beat Beat) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, ch := range m.subscribers {
		select {
		case ch <- beat:
		default:
			// subscriber is behind; drop
		}
	}
}

func (m *Metronome) deliver(onBeat BeatFunc, beat Beat) {
	if onBeat != nil {
		onBeat(beat.FirstBeatOfBar, beat.BeatIndex)
	}
	m.publish(beat)
}
