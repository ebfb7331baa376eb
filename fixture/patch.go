package fixture

import (
	"errors"
	"fmt"

	"github.com/robmorgan/stagehand/dmx"
)

// ErrInvalidPatch is returned for a patch entry that cannot be sent to the dimmer bank.
var ErrInvalidPatch = errors.New("invalid patch")

// Channel binds a light name to a dimmer address. Several names may share an
// address and one name may drive several addresses.
type Channel struct {
	Name    string      `yaml:"name"`
	Address dmx.Address `yaml:"channel"`
}

// Patch is the ordered channel map of the rig.
type Patch []Channel

// Lookup is anything that reports an intensity percent per light name.
type Lookup interface {
	Get(name string) int
}

// DefaultPatch is the house rig.
func DefaultPatch() Patch {
	return Patch{
		{"CC", 0},
		{"CIR", 1},
		{"CSL", 2},
		{"BackHals", 3},
		{"FC", 4},
		{"FIL", 5},
		{"FSR", 6},
		{"FSL", 7},
		{"BC", 8},
		{"BSR", 9},
		{"BSL", 9},
		{"ONHALS", 10},
		{"TRACKS", 11},
		{"FCOFF", 12},
		{"RS", 14},
		{"RAMP", 14},
		{"RC", 15},
		{"FCOFF", 13},
		{"OFFHALS", 16},
		{"CC", 18},
		{"CIL", 19},
		{"CSR", 20},
		{"FC", 22},
		{"FIR", 23},
	}
}

// Validate rejects empty names and addresses outside the dimmer bank.
func (p Patch) Validate() error {
	for i, c := range p {
		if c.Name == "" {
			return fmt.Errorf("patch entry %d has no name: %w", i, ErrInvalidPatch)
		}
		if !dmx.ValidAddress(c.Address) {
			return fmt.Errorf("patch entry %d (%s) uses channel %d, want 0-%d: %w", i, c.Name, c.Address, dmx.UniverseChannels-1, ErrInvalidPatch)
		}
	}
	return nil
}

// Names returns every patched light name once, in patch order.
func (p Patch) Names() []string {
	seen := make(map[string]bool, len(p))
	names := make([]string, 0, len(p))
	for _, c := range p {
		if !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}

// Render combines the levels of lights onto the dimmer addresses, keeping the
// highest level where names share an address.
func (p Patch) Render(lights Lookup) *dmx.Universe {
	u := dmx.NewUniverse()
	for _, c := range p {
		u.Max(c.Address, lights.Get(c.Name))
	}
	return u
}

// EncodeFrame renders lights and builds the wire frame.
func (p Patch) EncodeFrame(lights Lookup) dmx.Frame {
	return p.Render(lights).Frame()
}
