package fixture

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/beatkeeper/profile"
)

// Fixture is a patched DMX fixture.
type Fixture struct {
	Name     string
	Universe int

	// The DMX starting address
	Address int

	// The fixture channels keyed by channel type
	Channels map[string]*Channel

	needsUpdate bool
}

// NewFixture patches a fixture with the channel layout of p at address.
func NewFixture(name string, universe, address int, p profile.Profile) *Fixture {
	channels := make(map[string]*Channel, len(p.Channels))
	for channelType, offset := range p.Channels {
		channels[channelType] = &Channel{Type: channelType, Offset: offset}
	}

	return &Fixture{
		Name:     name,
		Universe: universe,
		Address:  address,
		Channels: channels,
	}
}

// GetChannelCount returns the number of channels the fixture uses
func (f *Fixture) GetChannelCount() int {
	return len(f.Channels)
}

func (f *Fixture) setChannel(channelType string, value float64) bool {
	c, ok := f.Channels[channelType]
	if !ok {
		return false
	}
	if c.Value != value {
		c.SetValue(value)
		f.needsUpdate = true
	}
	return true
}

// SetIntensity sets the dimmer. Fixtures without a dimmer channel ignore it.
func (f *Fixture) SetIntensity(value float64) {
	f.setChannel(profile.ChannelTypeIntensity, value)
}

func (f *Fixture) GetIntensity() (float64, error) {
	c, ok := f.Channels[profile.ChannelTypeIntensity]
	if !ok {
		return 0, fmt.Errorf("fixture %s has no intensity channel", f.Name)
	}
	return c.Value, nil
}

// SetColor sets whichever of the red, green and blue channels the fixture has.
func (f *Fixture) SetColor(c colorful.Color) {
	c = c.Clamped()
	f.setChannel(profile.ChannelTypeRed, c.R)
	f.setChannel(profile.ChannelTypeGreen, c.G)
	f.setChannel(profile.ChannelTypeBlue, c.B)
}

func (f *Fixture) GetColor() (colorful.Color, error) {
	r, hasRed := f.Channels[profile.ChannelTypeRed]
	g, hasGreen := f.Channels[profile.ChannelTypeGreen]
	b, hasBlue := f.Channels[profile.ChannelTypeBlue]
	if !hasRed || !hasGreen || !hasBlue {
		return colorful.Color{}, fmt.Errorf("fixture %s has no rgb channels", f.Name)
	}
	return colorful.Color{R: r.Value, G: g.Value, B: b.Value}, nil
}

// NeedsUpdate reports whether a value changed since the last HasUpdated.
func (f *Fixture) NeedsUpdate() bool {
	return f.needsUpdate
}

func (f *Fixture) HasUpdated() {
	f.needsUpdate = false
}

func (f *Fixture) dmxOperations() []dmxOperation {
	ops := make([]dmxOperation, 0, len(f.Channels))
	for _, c := range f.Channels {
		ops = append(ops, dmxOperation{
			universe: f.Universe,
			channel:  f.Address + c.Offset - 1,
			value:    c.toDMX(),
		})
	}
	return ops
}
