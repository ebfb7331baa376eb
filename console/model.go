package console

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/stagehand/cuelist"
	"github.com/robmorgan/stagehand/engine"
	"github.com/robmorgan/stagehand/fixture"
)

// Submitter queues commands for the control loop.
type Submitter interface {
	Submit(cmd engine.Command)
}

// Target is the page the light keys edit.
type Target int

const (
	TargetCurrent Target = iota
	TargetPreview
	TargetInterrupt
)

func (t Target) String() string {
	switch t {
	case TargetPreview:
		return "preview"
	case TargetInterrupt:
		return "interrupt"
	default:
		return "current"
	}
}

// editMode is the field the text prompt is filling in.
type editMode int

const (
	editNone editMode = iota
	editNote
	editCountdown
)

type statusMsg engine.Status

type feedClosedMsg struct{}

type model struct {
	loop   Submitter
	feed   <-chan engine.Status
	lights []string

	status   engine.Status
	received bool
	cursor   int
	target   Target
	fade     progress.Model
	quitting bool

	// text prompt for notes and countdowns
	editing  editMode
	input    textinput.Model
	inputErr error
}

func newModel(loop Submitter, feed <-chan engine.Status, patch fixture.Patch) model {
	input := textinput.New()
	input.CharLimit = 120
	input.Width = 60

	return model{
		loop:   loop,
		feed:   feed,
		lights: patch.Names(),
		input:  input,
		fade: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
	}
}

func (m model) Init() tea.Cmd {
	return waitForStatus(m.feed)
}

// waitForStatus blocks on the feed and hands the next snapshot to Update.
func waitForStatus(feed <-chan engine.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-feed
		if !ok {
			return feedClosedMsg{}
		}
		return statusMsg(s)
	}
}

// targetPage is the page id light edits go to.
func (m model) targetPage() cuelist.PageID {
	switch m.target {
	case TargetPreview:
		return m.status.PreviewID
	case TargetInterrupt:
		return cuelist.InterruptPage
	default:
		return cuelist.NoPage
	}
}

// Feed returns a channel carrying the latest loop status and the callback that fills it.
// Stale snapshots are dropped so a slow console never holds up the loop.
func Feed() (<-chan engine.Status, func(engine.Status)) {
	ch := make(chan engine.Status, 1)
	return ch, func(s engine.Status) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Run shows the operator console until the user quits or ctx is done.
func Run(ctx context.Context, loop Submitter, feed <-chan engine.Status, patch fixture.Patch) error {
	p := tea.NewProgram(newModel(loop, feed, patch), tea.WithAltScreen())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	_, err := p.Run()
	return err
}
