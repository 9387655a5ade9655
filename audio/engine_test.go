package audio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"
)

// sampleTolerance covers the 16-bit quantization of constBuffer.
const sampleTolerance = 2.0 / 32768

// constBuffer returns a buffer of n frames all set to v.
func constBuffer(rate beep.SampleRate, n int, v float64) *beep.Buffer {
	left := n
	buffer := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buffer.Append(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if left == 0 {
			return 0, false
		}
		count := len(samples)
		if count > left {
			count = left
		}
		for i := 0; i < count; i++ {
			samples[i] = [2]float64{v, v}
		}
		left -= count
		return count, true
	}))
	return buffer
}

func firstNonZero(samples [][2]float64) int {
	for i, s := range samples {
		if s[0] != 0 {
			return i
		}
	}
	return -1
}

func TestEngineClockCountsRenderedFrames(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000), 1)
	require.Equal(t, 0.0, e.Now())

	n, ok := e.Stream(make([][2]float64, 250))
	require.True(t, ok)
	require.Equal(t, 250, n)
	require.Equal(t, 0.25, e.Now())
}

func TestEngineStartsVoiceOnExactFrame(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000), 1)
	e.NewOneShot(constBuffer(e.SampleRate(), 10, 0.5)).ScheduleAt(0.137)

	block := make([][2]float64, 100)
	e.Stream(block)
	require.Equal(t, -1, firstNonZero(block))
	require.Equal(t, 1, e.Pending())

	e.Stream(block)
	require.Equal(t, 37, firstNonZero(block))
	assert.InDelta(t, 0.5, block[37][0], sampleTolerance)
	assert.InDelta(t, 0.5, block[46][1], sampleTolerance)
	assert.Equal(t, 0.0, block[47][0])
	require.Equal(t, 0, e.Pending())
}

func TestEngineVoiceSpanningBlocks(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000), 1)
	e.NewOneShot(constBuffer(e.SampleRate(), 30, 1)).ScheduleAt(0.090)

	block := make([][2]float64, 100)
	e.Stream(block)
	assert.Equal(t, 90, firstNonZero(block))

	e.Stream(block)
	assert.Equal(t, 0, firstNonZero(block))
	assert.InDelta(t, 1.0, block[19][0], sampleTolerance)
	assert.Equal(t, 0.0, block[20][0])
}

func TestEngineLateVoiceStartsImmediately(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000), 1)
	e.Stream(make([][2]float64, 500))

	e.NewOneShot(constBuffer(e.SampleRate(), 5, 1)).ScheduleAt(0.1)
	block := make([][2]float64, 10)
	e.Stream(block)
	require.Equal(t, 0, firstNonZero(block))
}

func TestEngineAppliesGainAndMixes(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000), 0.5)
	e.NewOneShot(constBuffer(e.SampleRate(), 10, 0.4)).ScheduleAt(0)
	e.NewOneShot(constBuffer(e.SampleRate(), 10, 0.4)).ScheduleAt(0)

	block := make([][2]float64, 10)
	e.Stream(block)
	assert.InDelta(t, 0.4, block[0][0], sampleTolerance)

	e.Gain().Set(0)
	e.NewOneShot(constBuffer(e.SampleRate(), 10, 0.4)).ScheduleAt(0)
	e.Stream(block)
	assert.Equal(t, -1, firstNonZero(block))
}

func TestEngineFasterVoiceIsShorter(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000), 1)
	v := e.NewOneShot(constBuffer(e.SampleRate(), 110, 1))
	v.SetPlaybackRate(1.1)
	v.ScheduleAt(0)

	block := make([][2]float64, 200)
	e.Stream(block)

	last := -1
	for i, s := range block {
		if s[0] != 0 {
			last = i
		}
	}
	assert.InDelta(t, 100, last, 8)
}

func TestEngineScheduleOnce(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000), 1)
	v := e.NewOneShot(constBuffer(e.SampleRate(), 5, 1))
	v.ScheduleAt(0)
	v.ScheduleAt(0.5)
	require.Equal(t, 1, e.Pending())
}

func TestEngineRunSilentFollowsClock(t *testing.T) {
	t.Parallel()

	fakeClock := testclock.NewFakeClock(time.Now())
	e := NewEngine(beep.SampleRate(1000), 1)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.RunSilent(ctx, fakeClock, 10*time.Millisecond)
	}()

	require.Eventually(t, fakeClock.HasWaiters, time.Second, time.Millisecond)
	fakeClock.Step(10 * time.Millisecond)
	require.Eventually(t, func() bool { return e.Now() == 0.01 }, time.Second, time.Millisecond)

	cancel()
	wg.Wait()
}
