// Package audio contains the playback side of the metronome: the playback clock, the click registry, the gain
// controller and the asset loader.
package audio

import (
	"sync"

	"github.com/faiface/beep"
	"github.com/robmorgan/beatkeeper/utils"
)

// Clock supplies a monotonically increasing time, in seconds, on the playback timeline.
type Clock interface {
	Now() float64
}

// OneShot is a single playback of a buffer. Once scheduled it cannot be retracted.
type OneShot interface {
	SetPlaybackRate(rate float64)
	ScheduleAt(t float64)
}

// GainParam is the volume control exposed by a Context.
type GainParam interface {
	Value() float64
	Set(value float64)
}

// Context is the playback clock collaborator: it tells the time and triggers sounds precisely on its own timeline.
type Context interface {
	Clock
	NewOneShot(buffer *beep.Buffer) OneShot
	Gain() GainParam
}

// Param is a GainParam limited to [0,1] and safe to read from the audio thread.
type Param struct {
	mu    sync.Mutex
	value float64
}

// NewParam creates a new Param set to value
func NewParam(value float64) *Param {
	p := &Param{}
	p.Set(value)
	return p
}

func (p *Param) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *Param) Set(value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = utils.Clamp(value, 0, 1)
}
