package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/gruntwork-io/go-commons/files"
	"github.com/robmorgan/beatkeeper/profile"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBPM              = 120.0
	DefaultBeatsPerBar      = 4
	DefaultNoteValueForBeat = 4
	DefaultClickType        = 3
	DefaultVolume           = 0.7

	MinBeatsPerBar = 1
	MaxBeatsPerBar = 16
)

// AllowedNoteValues limits the subdivision to quarter, eighth and sixteenth notes.
var AllowedNoteValues = []int{4, 8, 16}

// MetronomeConfig represents options that configure the global behavior of the program
type MetronomeConfig struct {
	BPM              float64 `yaml:"bpm"`
	BeatsPerBar      int     `yaml:"beats_per_bar"`
	NoteValueForBeat int     `yaml:"note_value_for_beat"`
	AccentFirstBeat  bool    `yaml:"accent_first_beat"`
	ClickType        int     `yaml:"click_type"`
	Volume           float64 `yaml:"volume"`

	// TickInterval is the period of the coarse scheduling loop.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Lookahead is how far ahead of the playback clock notes are scheduled, in seconds.
	Lookahead float64 `yaml:"lookahead"`

	// MaxNotesPerTick bounds the catch-up work of a single scheduling pass.
	MaxNotesPerTick int `yaml:"max_notes_per_tick"`

	Audio AudioConfig `yaml:"audio"`

	BeatLight BeatLightConfig `yaml:"beat_light"`
}

// AudioConfig configures the output device and the click assets.
type AudioConfig struct {
	SampleRate int           `yaml:"sample_rate"`
	BufferSize time.Duration `yaml:"buffer_size"`

	// AssetDir overrides the embedded click sounds with files read from disk.
	AssetDir     string   `yaml:"asset_dir"`
	ClickSources []string `yaml:"click_sources"`
}

// BeatLightConfig configures the optional DMX fixtures flashed on every beat.
type BeatLightConfig struct {
	Enabled     bool             `yaml:"enabled"`
	OLAAddress  string           `yaml:"ola_address"`
	Refresh     time.Duration    `yaml:"refresh"`
	FlashLength time.Duration    `yaml:"flash_length"`
	BeatColor   string           `yaml:"beat_color"`
	AccentColor string           `yaml:"accent_color"`
	Fixtures    []PatchedFixture `yaml:"fixtures"`

	// Profiles is not read from YAML, the patched fixtures refer to it by name.
	Profiles map[string]profile.Profile `yaml:"-"`
}

// NewMetronomeConfig creates a new MetronomeConfig object with reasonable defaults for real usage
func NewMetronomeConfig() MetronomeConfig {
	return MetronomeConfig{
		BPM:              DefaultBPM,
		BeatsPerBar:      DefaultBeatsPerBar,
		NoteValueForBeat: DefaultNoteValueForBeat,
		ClickType:        DefaultClickType,
		Volume:           DefaultVolume,
		TickInterval:     25 * time.Millisecond,
		Lookahead:        0.1,
		MaxNotesPerTick:  1000,
		Audio: AudioConfig{
			SampleRate:   44100,
			BufferSize:   50 * time.Millisecond,
			ClickSources: DefaultClickSources(),
		},
		BeatLight: BeatLightConfig{
			OLAAddress:  "localhost:9010",
			Refresh:     40 * time.Millisecond,
			FlashLength: 150 * time.Millisecond,
			BeatColor:   "white",
			AccentColor: "#FF0000",
			Fixtures:    PatchBeatLights(),
			Profiles:    initializeFixtureProfiles(),
		},
	}
}

// LoadFile reads a YAML document and overlays it on the defaults.
func LoadFile(path string) (MetronomeConfig, error) {
	cfg := NewMetronomeConfig()
	if !files.FileExists(path) {
		return cfg, errors.WithStackTrace(fmt.Errorf("config file %s does not exist", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithStackTrace(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithStackTrace(fmt.Errorf("parsing %s: %w", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the values that would leave the metronome unable to run.
func (c MetronomeConfig) Validate() error {
	switch {
	case c.BPM <= 0:
		return invalid("bpm", c.BPM)
	case c.BeatsPerBar < MinBeatsPerBar || c.BeatsPerBar > MaxBeatsPerBar:
		return invalid("beats_per_bar", c.BeatsPerBar)
	case !slices.Contains(AllowedNoteValues, c.NoteValueForBeat):
		return invalid("note_value_for_beat", c.NoteValueForBeat)
	case c.Volume < 0 || c.Volume > 1:
		return invalid("volume", c.Volume)
	case c.TickInterval <= 0:
		return invalid("tick_interval", c.TickInterval)
	case c.Lookahead <= 0:
		return invalid("lookahead", c.Lookahead)
	case c.MaxNotesPerTick <= 0:
		return invalid("max_notes_per_tick", c.MaxNotesPerTick)
	case c.Audio.SampleRate <= 0:
		return invalid("audio.sample_rate", c.Audio.SampleRate)
	case len(c.Audio.ClickSources) == 0:
		return invalid("audio.click_sources", c.Audio.ClickSources)
	case c.ClickType < 0 || c.ClickType >= len(c.Audio.ClickSources):
		return invalid("click_type", c.ClickType)
	}

	if c.BeatLight.Enabled {
		for _, fixture := range c.BeatLight.Fixtures {
			if _, ok := c.BeatLight.Profiles[fixture.Profile]; !ok {
				return errors.WithStackTrace(fmt.Errorf("beat light fixture %s uses unknown profile %q", fixture.Name, fixture.Profile))
			}
		}
	}

	return nil
}

func invalid(key string, value interface{}) error {
	return errors.WithStackTrace(fmt.Errorf("invalid config value for %s: %v", key, value))
}
