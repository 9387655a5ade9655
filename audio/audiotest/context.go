// Package audiotest provides a playback clock whose time only moves when a test moves it.
package audiotest

import (
	"sync"

	"github.com/faiface/beep"
	"github.com/robmorgan/beatkeeper/audio"
)

// Trigger records a one-shot handed to the fake context.
type Trigger struct {
	Buffer *beep.Buffer
	Rate   float64
	Time   float64
}

// Context implements audio.Context with a manually advanced clock.
type Context struct {
	mu       sync.Mutex
	now      float64
	gain     *audio.Param
	triggers []Trigger
}

// NewContext creates a new Context at time zero with full gain
func NewContext() *Context {
	return &Context{gain: audio.NewParam(1)}
}

func (c *Context) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SetTime moves the clock to t.
func (c *Context) SetTime(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d seconds.
func (c *Context) Advance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

func (c *Context) NewOneShot(buffer *beep.Buffer) audio.OneShot {
	return &oneShot{ctx: c, buffer: buffer, rate: 1}
}

func (c *Context) Gain() audio.GainParam {
	return c.gain
}

// Triggers returns a copy of every scheduled one-shot in scheduling order.
func (c *Context) Triggers() []Trigger {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Trigger, len(c.triggers))
	copy(out, c.triggers)
	return out
}

type oneShot struct {
	ctx    *Context
	buffer *beep.Buffer
	rate   float64
}

func (o *oneShot) SetPlaybackRate(rate float64) {
	o.rate = rate
}

func (o *oneShot) ScheduleAt(t float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.ctx.triggers = append(o.ctx.triggers, Trigger{Buffer: o.buffer, Rate: o.rate, Time: t})
}

// Buffer returns a silent stereo buffer of n frames, enough to stand in for a decoded click.
func Buffer(rate beep.SampleRate, n int) *beep.Buffer {
	buffer := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buffer.Append(beep.Silence(n))
	return buffer
}
