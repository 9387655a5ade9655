package audio

import (
	"fmt"
	"io/fs"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/beatkeeper/logger"
	"github.com/sirupsen/logrus"
)

// AssetLoader decodes click sources in the background and hands the buffers over once, aligned with sources.
type AssetLoader interface {
	Load(sources []string, onReady func([]*beep.Buffer))
}

// Loader decodes WAV files from a filesystem and resamples them to the engine rate.
type Loader struct {
	fsys fs.FS
	rate beep.SampleRate
}

// NewLoader creates a new Loader reading from fsys
func NewLoader(fsys fs.FS, rate beep.SampleRate) *Loader {
	return &Loader{fsys: fsys, rate: rate}
}

// Load decodes sources in a goroutine and calls onReady with the result. Sources that fail to decode are nil.
func (l *Loader) Load(sources []string, onReady func([]*beep.Buffer)) {
	go func() {
		buffers, _ := l.LoadSync(sources)
		onReady(buffers)
	}()
}

// LoadSync decodes every source and returns the buffers along with the first error encountered.
func (l *Loader) LoadSync(sources []string) ([]*beep.Buffer, error) {
	logger := logger.GetProjectLogger()

	var firstErr error
	buffers := make([]*beep.Buffer, len(sources))
	for i, source := range sources {
		buffer, err := l.decode(source)
		if err != nil {
			logger.WithFields(logrus.Fields{"source": source, "click_type": i}).Warnf("could not load click: %v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		buffers[i] = buffer
		logger.WithFields(logrus.Fields{"source": source, "click_type": i, "frames": buffer.Len()}).Debug("Loaded click")
	}

	return buffers, firstErr
}

func (l *Loader) decode(source string) (*beep.Buffer, error) {
	f, err := l.fsys.Open(source)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, errors.WithStackTrace(fmt.Errorf("decoding %s: %w", source, err))
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != l.rate {
		s = beep.Resample(resampleQuality, format.SampleRate, l.rate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{SampleRate: l.rate, NumChannels: 2, Precision: 2})
	buffer.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, errors.WithStackTrace(fmt.Errorf("decoding %s: %w", source, err))
	}

	return buffer, nil
}
