package fixture

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/robmorgan/stagehand/dmx"
	"github.com/robmorgan/stagehand/logger"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// FrameWriter delivers frames to the dimmer bank.
type FrameWriter interface {
	WriteFrame(f dmx.Frame) error
	Close() error
}

// SerialWriter sends whole wire frames over a serial port.
type SerialWriter struct {
	port io.WriteCloser
	name string
}

// OpenSerial opens the serial port the dimmer bank is attached to.
func OpenSerial(portName string, baud int) (*SerialWriter, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return NewSerialWriter(port, portName), nil
}

// NewSerialWriter wraps an already opened port.
func NewSerialWriter(port io.WriteCloser, name string) *SerialWriter {
	return &SerialWriter{port: port, name: name}
}

func (w *SerialWriter) WriteFrame(f dmx.Frame) error {
	n, err := w.port.Write(f[:])
	if err != nil {
		return fmt.Errorf("write frame to %s: %w", w.name, err)
	}
	if n != len(f) {
		return fmt.Errorf("write frame to %s: short write of %d bytes", w.name, n)
	}
	return nil
}

func (w *SerialWriter) Close() error {
	return w.port.Close()
}

// OLAClient is the interface for communicating with OLA
type OLAClient interface {
	SendDmx(universe int, values []byte) (status bool, err error)
	Close()
}

// OLAWriter sends the channel bytes of each frame to an OLA universe instead of a serial port.
type OLAWriter struct {
	client   OLAClient
	universe int
}

// NewOLAWriter creates a writer for universe.
func NewOLAWriter(client OLAClient, universe int) *OLAWriter {
	return &OLAWriter{client: client, universe: universe}
}

func (w *OLAWriter) WriteFrame(f dmx.Frame) error {
	ok, err := w.client.SendDmx(w.universe, f.Channels())
	if err != nil {
		return fmt.Errorf("send dmx to OLA universe %d: %w", w.universe, err)
	}
	if !ok {
		return fmt.Errorf("OLA rejected dmx for universe %d", w.universe)
	}
	return nil
}

func (w *OLAWriter) Close() error {
	w.client.Close()
	return nil
}

// NullWriter discards frames. It is used for dry runs without hardware.
type NullWriter struct {
	mu     sync.Mutex
	last   dmx.Frame
	frames int
}

func (w *NullWriter) WriteFrame(f dmx.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = f
	w.frames++
	return nil
}

func (w *NullWriter) Close() error {
	return nil
}

// Last returns the most recent frame and how many frames were written.
func (w *NullWriter) Last() (dmx.Frame, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.frames
}

// SendFrameWorker writes every frame taken from slot until ctx is done. Write
// failures are logged and the worker keeps going with the next frame.
func SendFrameWorker(ctx context.Context, w FrameWriter, slot *FrameSlot, wg *sync.WaitGroup) error {
	defer wg.Done()
	defer w.Close()

	log := logger.GetProjectLogger()
	log.Info("frame writer started")

	for {
		select {
		case <-ctx.Done():
			log.Info("frame writer shutdown")
			return ctx.Err()
		case f := <-slot.C():
			if err := w.WriteFrame(f); err != nil {
				log.WithFields(logrus.Fields{"error": err}).Error("frame write failed")
			}
		}
	}
}
