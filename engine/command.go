package engine

import (
	"time"

	"github.com/robmorgan/stagehand/cuelist"
)

// Command is a single operator action applied to the show by the loop.
type Command struct {
	Name string

	apply func(l *Loop) error

	// navigation commands cancel a running fade
	navigates bool
}

func showCommand(name string, navigates bool, fn func(s *cuelist.Show) error) Command {
	return Command{
		Name:      name,
		navigates: navigates,
		apply: func(l *Loop) error {
			return fn(l.show)
		},
	}
}

// Advance moves to the next cue.
func Advance() Command {
	return showCommand("advance", true, func(s *cuelist.Show) error {
		s.Advance()
		return nil
	})
}

// Retreat moves to the previous cue.
func Retreat() Command {
	return showCommand("retreat", true, func(s *cuelist.Show) error {
		s.Retreat()
		return nil
	})
}

// Blackout splices in the blackout page.
func Blackout() Command {
	return showCommand("blackout", true, func(s *cuelist.Show) error {
		s.Blackout()
		return nil
	})
}

// Hals splices in the half-lights page.
func Hals() Command {
	return showCommand("hals", true, func(s *cuelist.Show) error {
		s.Hals()
		return nil
	})
}

// Interrupt turns the interrupt page into a new cue and moves to it.
func Interrupt() Command {
	return showCommand("interrupt", true, func(s *cuelist.Show) error {
		s.Interrupt()
		return nil
	})
}

// Delete unlinks the current cue.
func Delete() Command {
	return showCommand("delete", true, func(s *cuelist.Show) error {
		return s.Delete()
	})
}

// SetNext reroutes the current cue's next link.
func SetNext(id cuelist.PageID) Command {
	return showCommand("set-next", false, func(s *cuelist.Show) error {
		return s.SetNext(id)
	})
}

// Toggle steps a light on page id (NoPage for the current cue) through its three levels.
func Toggle(name string, id cuelist.PageID) Command {
	return showCommand("toggle", false, func(s *cuelist.Show) error {
		s.ToggleIntensity(name, id)
		return nil
	})
}

// TurnOff sets a light on page id (NoPage for the current cue) to zero.
func TurnOff(name string, id cuelist.PageID) Command {
	return showCommand("turn-off", false, func(s *cuelist.Show) error {
		s.TurnOff(name, id)
		return nil
	})
}

// Note replaces the current cue's note.
func Note(text string) Command {
	return showCommand("note", false, func(s *cuelist.Show) error {
		s.SetNote(text)
		return nil
	})
}

// Countdown arms the current cue's auto-advance timer and its timeout target.
func Countdown(d time.Duration, timeout cuelist.PageID) Command {
	return showCommand("countdown", false, func(s *cuelist.Show) error {
		if err := s.SetTimeout(timeout); err != nil {
			return err
		}
		s.SetCountdown(d)
		return nil
	})
}

// AdjustPreview moves the previewed page diff steps along the chain. Positive
// steps follow next links from the next cue, negative ones go back through
// previous links. Navigation resets it to the next cue.
func AdjustPreview(diff int) Command {
	return Command{
		Name: "adjust-preview",
		apply: func(l *Loop) error {
			l.previewDepth += diff
			return nil
		},
	}
}

// Save writes the show file.
func Save() Command {
	return Command{
		Name: "save",
		apply: func(l *Loop) error {
			if l.store == nil {
				return nil
			}
			return l.store.Save(l.show)
		},
	}
}

// Refresh resends the current frame even though nothing changed.
func Refresh() Command {
	return Command{
		Name:  "refresh",
		apply: func(l *Loop) error { return nil },
	}
}

// Fade starts a timed crossfade into the next cue; the loop advances when it completes.
// A zero duration uses the configured fade time.
func Fade(d time.Duration) Command {
	return Command{
		Name: "fade",
		apply: func(l *Loop) error {
			l.startFade(d)
			return nil
		},
	}
}
