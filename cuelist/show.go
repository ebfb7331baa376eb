package cuelist

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robmorgan/stagehand/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// interruptPrefix marks pages created by Interrupt.
const interruptPrefix = "i"

// Show is the cue graph. Pages are kept in a single table keyed by id and
// every link is an id into that table. Exactly one page is current.
//
// A Show is not safe for concurrent use; the engine loop owns it.
type Show struct {
	pages   map[PageID]*Page
	current PageID
}

// NewShow creates a show holding only the reserved pages.
func NewShow() *Show {
	s, _ := NewShowFromPages(nil)
	return s
}

// DefaultPages returns the pages a show starts with when nothing has been saved.
func DefaultPages() []*Page {
	return []*Page{
		newBlankPage(StartPage),
		newBlankPage(BlackoutPage),
		NewPage(HalsPage, Lights{"ONHALS": 100, "OFFHALS": 100}, Links{}, Disabled, ""),
		newBlankPage(InterruptPage),
	}
}

// NewShowFromPages builds a show from pages, adding any reserved page that is missing.
// The start page becomes current.
func NewShowFromPages(pages []*Page) (*Show, error) {
	s := &Show{
		pages:   make(map[PageID]*Page, len(pages)+4),
		current: StartPage,
	}
	for _, p := range pages {
		if p.ID == NoPage {
			return nil, fmt.Errorf("page with empty id")
		}
		if _, ok := s.pages[p.ID]; ok {
			return nil, fmt.Errorf("duplicate page id %q", p.ID)
		}
		if p.Lights == nil {
			p.Lights = Lights{}
		}
		s.pages[p.ID] = p
	}
	for _, p := range DefaultPages() {
		if _, ok := s.pages[p.ID]; !ok {
			s.pages[p.ID] = p
		}
	}
	return s, nil
}

// Current returns the current page.
func (s *Show) Current() *Page {
	return s.pages[s.current]
}

// CurrentID returns the id of the current page.
func (s *Show) CurrentID() PageID {
	return s.current
}

// Page looks up a page by id.
func (s *Show) Page(id PageID) (*Page, bool) {
	p, ok := s.pages[id]
	return p, ok
}

// Len returns the number of stored pages, reachable or not.
func (s *Show) Len() int {
	return len(s.pages)
}

// IDs returns every stored page id in sorted order.
func (s *Show) IDs() []PageID {
	ids := maps.Keys(s.pages)
	slices.Sort(ids)
	return ids
}

// Pages returns every stored page ordered by id.
func (s *Show) Pages() []*Page {
	ids := s.IDs()
	out := make([]*Page, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.pages[id])
	}
	return out
}

func (s *Show) resolves(id PageID) bool {
	if id == NoPage {
		return false
	}
	_, ok := s.pages[id]
	return ok
}

func (s *Show) moveTo(id PageID) {
	log := logger.GetProjectLogger()
	log.WithFields(logrus.Fields{"from": s.current, "to": id}).Debug("page change")
	s.current = id
}

// freshID returns prefix followed by the smallest unused non-negative integer.
func (s *Show) freshID(prefix string) PageID {
	for i := 0; ; i++ {
		id := PageID(prefix + strconv.Itoa(i))
		if _, ok := s.pages[id]; !ok {
			return id
		}
	}
}

// splice links p in after the current page. The current page's own next link is left alone.
func (s *Show) splice(p *Page) {
	cur := s.Current()
	p.Links.Previous = cur.ID
	p.Links.Next = cur.Links.Next
}

// createPage adds a blank page and makes it the current page's next.
func (s *Show) createPage(prefix string) *Page {
	p := newBlankPage(s.freshID(prefix))
	s.pages[p.ID] = p
	s.splice(p)
	s.Current().Links.Next = p.ID
	return p
}

// Advance moves to the next page, creating it when the next link does not resolve.
// Afterwards the new current page always has a resolvable next page.
func (s *Show) Advance() {
	if next := s.Current().Links.Next; s.resolves(next) {
		s.moveTo(next)
	} else {
		s.moveTo(s.createPage("").ID)
	}
	s.prepareNext()
}

// prepareNext makes sure the current page has a next page to move to.
func (s *Show) prepareNext() {
	if !s.resolves(s.Current().Links.Next) {
		s.createPage("")
	}
}

// Retreat moves to the previous page. It stays put when there is none.
func (s *Show) Retreat() {
	if prev := s.Current().Links.Previous; s.resolves(prev) {
		s.moveTo(prev)
	}
}

// Blackout splices the blackout page in after the current page and moves to it.
// The page after the splice keeps its previous link, so retreating from there skips the blackout.
func (s *Show) Blackout() {
	s.enterTemplate(BlackoutPage)
}

// Hals splices the half-lights page in after the current page and moves to it.
// Like Blackout, the downstream previous link is not touched.
func (s *Show) Hals() {
	s.enterTemplate(HalsPage)
}

func (s *Show) enterTemplate(id PageID) {
	if id == s.current {
		return
	}
	p := s.pages[id]
	s.splice(p)
	s.moveTo(id)
}

// Interrupt moves the levels held by the interrupt page onto a new page, clears the
// interrupt page, splices the new page in after the current one and moves to it.
// Unlike Blackout and Hals the downstream page's previous link is rewired to the new page.
func (s *Show) Interrupt() {
	downstream := s.Current().Links.Next
	p := s.createPage(interruptPrefix)

	template := s.pages[InterruptPage]
	for name, percent := range template.Lights {
		if percent != 0 {
			p.Lights.Set(name, percent)
		}
	}
	template.Lights = Lights{}

	if next, ok := s.pages[downstream]; ok {
		next.Links.Previous = p.ID
	}
	s.moveTo(p.ID)
}

// Delete unlinks the current page from the chain and moves to its next page.
// Reserved pages cannot be deleted. An unresolvable previous link is ErrGraphCorrupt;
// a missing next page is created as Advance would, and the page moved to always has
// a next page of its own. The deleted page stays in storage.
func (s *Show) Delete() error {
	cur := s.Current()
	if cur.Kind().IsReserved() {
		return fmt.Errorf("delete %q: %w", cur.ID, ErrReservedPage)
	}
	prev, ok := s.pages[cur.Links.Previous]
	if !ok || cur.Links.Previous == NoPage {
		return fmt.Errorf("delete %q: previous page %q does not resolve: %w", cur.ID, cur.Links.Previous, ErrGraphCorrupt)
	}
	if !s.resolves(cur.Links.Next) {
		s.createPage("")
	}
	next := s.pages[cur.Links.Next]

	prev.Links.Next = next.ID
	next.Links.Previous = prev.ID
	s.moveTo(next.ID)
	s.prepareNext()
	return nil
}

// SetNext reroutes the current page's next link. NoPage resets it so that the next
// Advance creates a fresh page.
func (s *Show) SetNext(id PageID) error {
	if id != NoPage && !s.resolves(id) {
		return fmt.Errorf("set next to %q: %w", id, ErrPageNotFound)
	}
	s.Current().Links.Next = id
	return nil
}

// SetTimeout sets the page the current page moves to when its countdown expires.
func (s *Show) SetTimeout(id PageID) error {
	if id != NoPage && !s.resolves(id) {
		return fmt.Errorf("set timeout to %q: %w", id, ErrPageNotFound)
	}
	s.Current().Links.Timeout = id
	return nil
}

// SetCountdown arms the current page's auto-advance timer. A negative value disables it.
func (s *Show) SetCountdown(d time.Duration) {
	if d < 0 {
		d = Disabled
	}
	cur := s.Current()
	cur.Countdown = d
	cur.FullCountdown = d
}

// SetNote replaces the current page's note.
func (s *Show) SetNote(note string) {
	s.Current().Note = note
}

// Tick runs the current page's countdown down by elapsed. When it expires the show
// moves to the timeout page, or advances when the timeout link does not resolve.
// It reports whether the current page changed.
func (s *Show) Tick(elapsed time.Duration) bool {
	cur := s.Current()
	if !cur.countDown(elapsed) {
		return false
	}
	log := logger.GetProjectLogger()
	log.WithFields(logrus.Fields{"page": cur.ID, "timeout": cur.Links.Timeout}).Info("countdown expired")

	if s.resolves(cur.Links.Timeout) {
		s.moveTo(cur.Links.Timeout)
	} else {
		s.Advance()
	}
	return true
}

// page resolves id for the intensity and preview operations: NoPage is the current
// page and an unknown id is replaced by a freshly created next page.
func (s *Show) page(id PageID) *Page {
	if id == NoPage {
		return s.Current()
	}
	if p, ok := s.pages[id]; ok {
		return p
	}
	return s.createPage("")
}

// ToggleIntensity steps name on page id and returns the new value. From dark the
// sequence is 100, 75, 50 and back to 100.
func (s *Show) ToggleIntensity(name string, id PageID) int {
	return s.page(id).toggleIntensity(name)
}

// TurnOff sets name on page id to zero.
func (s *Show) TurnOff(name string, id PageID) {
	s.page(id).Lights.Set(name, 0)
}

// Preview returns a copy of the lights of page id, creating the page when id is unknown.
func (s *Show) Preview(id PageID) Lights {
	return s.page(id).Lights.Clone()
}

// Walk follows next links for a positive depth or previous links for a negative one,
// stopping early at the last page that resolves.
func (s *Show) Walk(from PageID, depth int) PageID {
	if from == NoPage {
		from = s.current
	}
	id := from
	for depth != 0 {
		p, ok := s.pages[id]
		if !ok {
			return id
		}
		link := p.Links.Next
		if depth < 0 {
			link = p.Links.Previous
			depth++
		} else {
			depth--
		}
		if !s.resolves(link) {
			return id
		}
		id = link
	}
	return id
}

// PreviewNext returns a copy of the lights of the current page's next page, creating
// that page first when the next link does not resolve.
func (s *Show) PreviewNext() Lights {
	next := s.Current().Links.Next
	if !s.resolves(next) {
		return s.createPage("").Lights.Clone()
	}
	return s.pages[next].Lights.Clone()
}
