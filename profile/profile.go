package profile

const (
	ChannelTypeIntensity = "channel:type:intensity"
	ChannelTypeStrobe    = "channel:type:strobe"

	ChannelTypeRed   = "channel:type:red"
	ChannelTypeGreen = "channel:type:green"
	ChannelTypeBlue  = "channel:type:blue"
	ChannelTypeWhite = "channel:type:white"
)

// Profile describes how a fixture lays out its DMX channels. Channels maps a channel type to its offset from the
// fixture's start address, starting at 1.
type Profile struct {
	Name     string
	Channels map[string]int
}

// HasChannel reports whether the profile exposes a channel of the given type.
func (p Profile) HasChannel(channelType string) bool {
	_, ok := p.Channels[channelType]
	return ok
}

// ChannelCount returns the number of channels the fixture occupies.
func (p Profile) ChannelCount() int {
	max := 0
	for _, offset := range p.Channels {
		if offset > max {
			max = offset
		}
	}
	return max
}
