package fixture

import "github.com/robmorgan/stagehand/dmx"

// FrameSlot hands frames from the control loop to the output worker. It holds at
// most one frame: offering a new frame replaces one that has not been picked up yet.
type FrameSlot struct {
	ch chan dmx.Frame
}

// NewFrameSlot creates an empty slot.
func NewFrameSlot() *FrameSlot {
	return &FrameSlot{ch: make(chan dmx.Frame, 1)}
}

// Offer stores f, dropping any pending frame. It never blocks. Only one goroutine may offer.
func (s *FrameSlot) Offer(f dmx.Frame) {
	for {
		select {
		case s.ch <- f:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// C delivers the pending frame.
func (s *FrameSlot) C() <-chan dmx.Frame {
	return s.ch
}

// Pending reports whether a frame is waiting.
func (s *FrameSlot) Pending() bool {
	return len(s.ch) > 0
}
