package model

// This module defines the measurement channels of the color sensor and the
// calibration record normalising them

import (
	"fmt"
)

// Channel selects one raw measurement of the color sensor.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	IR
	Clear

	// NumChannels is the number of sensor channels, used to size arrays
	NumChannels
)

// Channels lists every channel in the order samples are taken.
var Channels = [NumChannels]Channel{Red, Green, Blue, IR, Clear}

var channelNames = [NumChannels]string{"red", "green", "blue", "ir", "clear"}

func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid is true for the five sensor channels.
func (c Channel) Valid() bool {
	return c >= 0 && c < NumChannels
}

// ParseChannel is the inverse of Channel.String.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return -1, fmt.Errorf("unknown channel %q", name)
}
