package fixture

import (
	"context"
	"fmt"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/beatkeeper/config"
	"github.com/robmorgan/beatkeeper/effect"
	"github.com/robmorgan/beatkeeper/logger"
	"github.com/robmorgan/beatkeeper/profile"
	"github.com/robmorgan/beatkeeper/rhythm"
	"github.com/robmorgan/beatkeeper/utils"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// BeatLight flashes a group of fixtures on every beat, using the accent colour on accented beats.
type BeatLight struct {
	mu sync.Mutex

	clock       clock.Clock
	group       *Group
	flash       *effect.Flash
	beatColor   colorful.Color
	accentColor colorful.Color
	dmxState    *DMXState
}

// NewBeatLight patches the fixtures in cfg. Every fixture needs a unique name and a known profile.
func NewBeatLight(cfg config.BeatLightConfig, clk clock.Clock) (*BeatLight, error) {
	group := NewGroup()
	for _, patched := range cfg.Fixtures {
		if group.HasFixture(patched.Name) {
			return nil, fmt.Errorf("duplicate fixture name in patch: %s", patched.Name)
		}
		p, ok := cfg.Profiles[patched.Profile]
		if !ok {
			return nil, fmt.Errorf("fixture %s uses unknown profile %q", patched.Name, patched.Profile)
		}
		group.AddFixture(patched.Name, NewFixture(patched.Name, patched.Universe, patched.Address, p))
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"fixtures": group.Count(),
	}).Debug("patched beat light")

	return &BeatLight{
		clock:       clk,
		group:       group,
		flash:       effect.NewFlash(cfg.FlashLength),
		beatColor:   utils.GetRGBFromString(cfg.BeatColor),
		accentColor: utils.GetRGBFromString(cfg.AccentColor),
		dmxState:    &DMXState{},
	}, nil
}

// Group returns the patched fixtures.
func (l *BeatLight) Group() *Group {
	return l.group
}

// OnBeat starts a new flash.
func (l *BeatLight) OnBeat(b rhythm.Beat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flash.Trigger(l.clock.Now(), b.Accent)
}

// Watch flashes on every beat received until ctx is done or beats is closed.
func (l *BeatLight) Watch(ctx context.Context, beats <-chan rhythm.Beat) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-beats:
			if !ok {
				return
			}
			l.OnBeat(b)
		}
	}
}

// Render writes the current flash level to every fixture and updates the DMX state.
func (l *BeatLight) Render() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	level := l.flash.Level(l.clock.Now())
	color := l.beatColor
	if l.flash.Accent() {
		color = l.accentColor
	}

	var err error
	l.group.Each(func(id string, f *Fixture) {
		if _, hasDimmer := f.Channels[profile.ChannelTypeIntensity]; hasDimmer {
			f.SetIntensity(level)
			f.SetColor(color)
		} else {
			// no dimmer, fade the colour itself
			f.SetColor(utils.Blend(colorful.Color{}, color, level))
		}

		if !f.NeedsUpdate() || err != nil {
			return
		}
		err = l.dmxState.set(f.dmxOperations()...)
		f.HasUpdated()
	})
	return err
}

// GetDMXState returns the state written by Render.
func (l *BeatLight) GetDMXState() *DMXState {
	return l.dmxState
}
