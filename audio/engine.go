package audio

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/beatkeeper/logger"
	"k8s.io/utils/clock"
)

// resampleQuality is passed to beep when a voice plays at a rate other than 1.
const resampleQuality = 4

// Engine mixes scheduled voices into a single beep.Streamer. Its clock counts rendered frames, so a voice scheduled
// at t starts on the exact frame t*sampleRate regardless of when the scheduling call was made.
type Engine struct {
	mu       sync.Mutex
	rate     beep.SampleRate
	rendered int64
	voices   []*Voice
	gain     *Param
	scratch  [][2]float64
}

// NewEngine creates a new Engine rendering at rate with the master gain set to volume
func NewEngine(rate beep.SampleRate, volume float64) *Engine {
	return &Engine{
		rate: rate,
		gain: NewParam(volume),
	}
}

// SampleRate returns the rate voices are mixed at. Buffers must be decoded at this rate.
func (e *Engine) SampleRate() beep.SampleRate {
	return e.rate
}

// Now returns the playback time in seconds.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.rendered) / float64(e.rate)
}

func (e *Engine) NewOneShot(buffer *beep.Buffer) OneShot {
	return &Voice{engine: e, buffer: buffer, rate: 1}
}

func (e *Engine) Gain() GainParam {
	return e.gain
}

// Pending returns the number of voices that have been scheduled and not finished playing.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

func (e *Engine) schedule(v *Voice, t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := int64(math.Round(t * float64(e.rate)))
	if start < e.rendered {
		start = e.rendered
	}
	v.start = start
	e.voices = append(e.voices, v)
}

// Stream implements beep.Streamer. It never runs dry; silence is rendered when no voice is playing.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}

	n := len(samples)
	blockEnd := e.rendered + int64(n)
	active := e.voices[:0]
	for _, v := range e.voices {
		if v.start >= blockEnd {
			active = append(active, v)
			continue
		}
		if v.streamer == nil {
			v.streamer = v.open()
		}

		offset := int(v.start - e.rendered)
		if offset < 0 {
			offset = 0
		}
		want := n - offset
		if cap(e.scratch) < want {
			e.scratch = make([][2]float64, want)
		}
		buf := e.scratch[:want]
		got, ok := v.streamer.Stream(buf)
		for i := 0; i < got; i++ {
			samples[offset+i][0] += buf[i][0]
			samples[offset+i][1] += buf[i][1]
		}

		v.start = blockEnd
		if ok && got == want {
			active = append(active, v)
		}
	}
	for i := len(active); i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = active

	gain := e.gain.Value()
	for i := range samples {
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	e.rendered = blockEnd

	return n, true
}

func (e *Engine) Err() error {
	return nil
}

// Open starts playing the engine through the default output device.
func (e *Engine) Open(bufferSize time.Duration) error {
	if err := speaker.Init(e.rate, e.rate.N(bufferSize)); err != nil {
		return errors.WithStackTrace(err)
	}
	speaker.Play(e)

	logger := logger.GetProjectLogger()
	logger.Infof("Audio output opened at %d Hz, buffer %v", e.rate, bufferSize)
	return nil
}

// Close stops the output device.
func (e *Engine) Close() {
	speaker.Clear()
	speaker.Close()
}

// RunSilent renders the engine into a discard buffer at the rate given by clk until ctx is done. It keeps the playback
// clock moving when no output device is available.
func (e *Engine) RunSilent(ctx context.Context, clk clock.Clock, tick time.Duration) {
	logger := logger.GetProjectLogger()
	logger.Warn("Running audio engine without an output device")

	started := clk.Now()
	base := e.renderedFrames()
	buf := make([][2]float64, 1024)

	t := clk.NewTimer(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			target := base + int64(e.rate.N(clk.Since(started)))
			for behind := target - e.renderedFrames(); behind > 0; behind = target - e.renderedFrames() {
				chunk := buf
				if behind < int64(len(chunk)) {
					chunk = chunk[:behind]
				}
				e.Stream(chunk)
			}
			t.Reset(tick)
		}
	}
}

func (e *Engine) renderedFrames() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rendered
}

// Voice is a OneShot played by an Engine.
type Voice struct {
	engine    *Engine
	buffer    *beep.Buffer
	rate      float64
	scheduled bool

	// guarded by engine.mu once scheduled
	start    int64
	streamer beep.Streamer
}

// SetPlaybackRate changes the speed (and pitch) of the voice. It has no effect once the voice is scheduled.
func (v *Voice) SetPlaybackRate(rate float64) {
	if rate > 0 && !v.scheduled {
		v.rate = rate
	}
}

// ScheduleAt hands the voice to the engine to start at playback time t. A voice can be scheduled once.
func (v *Voice) ScheduleAt(t float64) {
	if v.scheduled {
		return
	}
	v.scheduled = true
	v.engine.schedule(v, t)
}

func (v *Voice) open() beep.Streamer {
	s := v.buffer.Streamer(0, v.buffer.Len())
	if v.rate == 1 {
		return s
	}
	return beep.ResampleRatio(resampleQuality, v.rate, s)
}
