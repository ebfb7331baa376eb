package cuelist

import (
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// PageID identifies a page within a show.
type PageID string

// NoPage is the empty link. A next link of NoPage is filled in on demand.
const NoPage PageID = ""

// Reserved pages that every show carries.
const (
	StartPage     PageID = "0"
	BlackoutPage  PageID = "blackout"
	HalsPage      PageID = "hals"
	InterruptPage PageID = "interrupt"
)

// Disabled is the countdown value of a page that never auto-advances.
const Disabled time.Duration = -1

// Kind separates the reserved pages from ordinary sequence pages.
type Kind int

const (
	KindSequence Kind = iota
	KindStart
	KindBlackout
	KindHals
	KindInterrupt
)

// KindOf classifies id.
func KindOf(id PageID) Kind {
	switch id {
	case StartPage:
		return KindStart
	case BlackoutPage:
		return KindBlackout
	case HalsPage:
		return KindHals
	case InterruptPage:
		return KindInterrupt
	default:
		return KindSequence
	}
}

// IsTemplate is true for the reserved pages that get spliced into the timeline instead of living in it.
func (k Kind) IsTemplate() bool {
	return k == KindBlackout || k == KindHals || k == KindInterrupt
}

// IsReserved is true for every page that always exists.
func (k Kind) IsReserved() bool {
	return k != KindSequence
}

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindBlackout:
		return "blackout"
	case KindHals:
		return "hals"
	case KindInterrupt:
		return "interrupt"
	default:
		return "sequence"
	}
}

// Lights maps a light name to an intensity percent. Unlisted names are at zero.
type Lights map[string]int

// Get returns the intensity of name, or zero when it is not listed.
func (l Lights) Get(name string) int {
	return l[name]
}

// Set stores the intensity of name.
func (l Lights) Set(name string, percent int) {
	l[name] = percent
}

// Clone returns an independent copy.
func (l Lights) Clone() Lights {
	out := make(Lights, len(l))
	for name, percent := range l {
		out[name] = percent
	}
	return out
}

// Names returns the listed names in sorted order.
func (l Lights) Names() []string {
	names := maps.Keys(l)
	slices.Sort(names)
	return names
}

// Links are the navigation pointers of a page.
type Links struct {
	Next     PageID
	Previous PageID
	Timeout  PageID
}

// Page is a single cue.
type Page struct {
	ID     PageID
	Lights Lights
	Links  Links

	// Countdown is the time left before the page moves to its timeout link. Negative disables it.
	Countdown time.Duration

	// FullCountdown is the countdown the page was created with.
	FullCountdown time.Duration

	Note string
}

// NewPage creates a page that owns a copy of lights.
func NewPage(id PageID, lights Lights, links Links, countdown time.Duration, note string) *Page {
	return &Page{
		ID:            id,
		Lights:        lights.Clone(),
		Links:         links,
		Countdown:     countdown,
		FullCountdown: countdown,
		Note:          note,
	}
}

func newBlankPage(id PageID) *Page {
	return NewPage(id, nil, Links{}, Disabled, "")
}

// Kind classifies the page.
func (p *Page) Kind() Kind {
	return KindOf(p.ID)
}

// CountdownEnabled reports whether the page will auto-advance.
func (p *Page) CountdownEnabled() bool {
	return p.Countdown >= 0
}

// countDown subtracts elapsed and reports whether the countdown expired.
func (p *Page) countDown(elapsed time.Duration) bool {
	if !p.CountdownEnabled() {
		return false
	}
	p.Countdown -= elapsed
	return p.Countdown < 0
}

// toggleIntensity applies the three-step rule: up to 50 goes to full, up to 75
// drops to 50, anything brighter drops to 75.
func (p *Page) toggleIntensity(name string) int {
	switch v := p.Lights.Get(name); {
	case v <= 50:
		p.Lights.Set(name, 100)
	case v <= 75:
		p.Lights.Set(name, 50)
	default:
		p.Lights.Set(name, 75)
	}
	return p.Lights.Get(name)
}
