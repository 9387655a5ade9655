package fixture

import (
	"math"

	"github.com/robmorgan/beatkeeper/utils"
)

// Channel represents a channel on the fixture
type Channel struct {
	Type string

	// Offset from the fixture's start address, starting at 1.
	Offset int

	// Values are stored between 0 and 1 and scaled to DMX on output.
	Value float64
}

func (c *Channel) SetValue(value float64) {
	c.Value = utils.Clamp(value, 0, 1)
}

func (c *Channel) toDMX() int {
	return int(math.Round(c.Value * 255))
}
