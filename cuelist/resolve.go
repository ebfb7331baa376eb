package cuelist

import (
	"github.com/robmorgan/stagehand/utils"
)

// Levels are resolved intensities, possibly between whole percents during a crossfade.
type Levels map[string]float64

// Get returns the level of name, or zero when it is not listed.
func (l Levels) Get(name string) float64 {
	return l[name]
}

// Percent truncates every level to a whole percent.
func (l Levels) Percent() Lights {
	out := make(Lights, len(l))
	for name, level := range l {
		out[name] = int(level)
	}
	return out
}

// ResolveLights crossfades from the current page to its next page by fraction f.
// Every name listed on either side is present in the result; a name missing on one
// side counts as zero there. f is clamped to [0,1].
func (s *Show) ResolveLights(f float64) Levels {
	f = utils.Clamp(f, 0, 1)
	current := s.Current().Lights
	next := Lights{}
	if p, ok := s.pages[s.Current().Links.Next]; ok {
		next = p.Lights
	}

	out := make(Levels, len(current)+len(next))
	for name := range current {
		out[name] = utils.Mix(float64(current.Get(name)), float64(next.Get(name)), f)
	}
	for name := range next {
		if _, ok := out[name]; !ok {
			out[name] = utils.Mix(0, float64(next.Get(name)), f)
		}
	}
	return out
}
