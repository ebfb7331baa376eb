package dmx

import "encoding/hex"

// Frame is the complete byte sequence sent to the dimmer bank.
type Frame [FrameSize]byte

// Channels returns the 24 intensity bytes carried by the frame.
func (f Frame) Channels() []byte {
	start := len(frameHeader)
	out := make([]byte, UniverseChannels)
	copy(out, f[start:start+int(UniverseChannels)])
	return out
}

// Valid reports whether the header and footer are intact.
func (f Frame) Valid() bool {
	for i, b := range frameHeader {
		if f[i] != b {
			return false
		}
	}
	return f[FrameSize-1] == frameFooter[0]
}

func (f Frame) String() string {
	return hex.Dump(f[:])
}
