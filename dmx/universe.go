package dmx

import (
	"encoding/hex"
	"fmt"
)

// Address is a zero-based channel index on the dimmer bank.
type Address int

// Channel is a single scaled output byte.
type Channel uint8

const (
	// UniverseChannels is the fixed number of dimmer channels on the bank.
	UniverseChannels Address = 24

	// FrameSize is header + channels + footer.
	FrameSize = len(frameHeader) + int(UniverseChannels) + len(frameFooter)
)

var (
	frameHeader = [...]byte{126, 6, 25, 0, 0}
	frameFooter = [...]byte{231}
)

// Universe holds the intensity percent of every dimmer channel before scaling.
type Universe struct {
	levels [UniverseChannels]int
}

// NewUniverse creates a universe with every channel at zero.
func NewUniverse() *Universe {
	return &Universe{}
}

// ValidAddress reports whether address exists on the bank.
func ValidAddress(address Address) bool {
	return address >= 0 && address < UniverseChannels
}

// Get returns the percent currently held by address.
func (u *Universe) Get(address Address) int {
	if !ValidAddress(address) {
		panic(fmt.Sprintf("invalid dimmer address %d", address))
	}
	return u.levels[address]
}

// Max raises address to percent if percent is higher than what it already holds.
func (u *Universe) Max(address Address, percent int) {
	if !ValidAddress(address) {
		panic(fmt.Sprintf("invalid dimmer address %d", address))
	}
	if percent > u.levels[address] {
		u.levels[address] = percent
	}
}

// Channels scales every level to a byte with integer truncation.
func (u *Universe) Channels() [UniverseChannels]Channel {
	var out [UniverseChannels]Channel
	for i, percent := range u.levels {
		out[i] = PercentToChannel(percent)
	}
	return out
}

// Bytes returns the scaled channel bytes without header or footer.
func (u *Universe) Bytes() []byte {
	channels := u.Channels()
	buf := make([]byte, len(channels))
	for i, channel := range channels {
		buf[i] = byte(channel)
	}
	return buf
}

// Frame builds the wire frame for the current levels.
func (u *Universe) Frame() Frame {
	var f Frame
	n := copy(f[:], frameHeader[:])
	n += copy(f[n:], u.Bytes())
	copy(f[n:], frameFooter[:])
	return f
}

func (u *Universe) String() string {
	return hex.Dump(u.Bytes())
}

// PercentToChannel scales a 0-100 percent to 0-255. Out of range input is clamped.
func PercentToChannel(percent int) Channel {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return Channel(percent * 255 / 100)
}
