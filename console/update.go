package console

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/stagehand/cuelist"
	"github.com/robmorgan/stagehand/engine"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing != editNone {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	case statusMsg:
		m.status = engine.Status(msg)
		m.received = true
		return m, waitForStatus(m.feed)
	case feedClosedMsg:
		m.quitting = true
		return m, tea.Quit
	default:
		if m.editing != editNone {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "pgdown", "s":
		m.loop.Submit(engine.Advance())
	case "pgup", "w":
		m.loop.Submit(engine.Retreat())
	case "b":
		m.loop.Submit(engine.Blackout())
	case " ", "h":
		m.loop.Submit(engine.Hals())
	case "i":
		m.loop.Submit(engine.Interrupt())
	case "d":
		m.loop.Submit(engine.Delete())
	case "f":
		m.loop.Submit(engine.Fade(0))
	case "r":
		m.loop.Submit(engine.Refresh())
	case "ctrl+s":
		m.loop.Submit(engine.Save())
	case "n":
		m.loop.Submit(engine.AdjustPreview(1))
	case "p":
		m.loop.Submit(engine.AdjustPreview(-1))
	case "l":
		if m.status.PreviewID != cuelist.NoPage {
			m.loop.Submit(engine.SetNext(m.status.PreviewID))
		}
	case "e":
		return m.openInput(editNote, "note> ", "what happens on this cue", m.status.Note)
	case "c":
		return m.openInput(editCountdown, "countdown> ", "5s [timeout page], or off", "")
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.lights)-1 {
			m.cursor++
		}
	case "tab":
		m.target = (m.target + 1) % 3
	case "enter", "t":
		if name, ok := m.selected(); ok {
			m.loop.Submit(engine.Toggle(name, m.targetPage()))
		}
	case "x", "backspace":
		if name, ok := m.selected(); ok {
			m.loop.Submit(engine.TurnOff(name, m.targetPage()))
		}
	}
	return m, nil
}

func (m model) openInput(mode editMode, prompt, placeholder, value string) (tea.Model, tea.Cmd) {
	m.editing = mode
	m.inputErr = nil
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	return m, m.input.Focus()
}

func (m model) closeInput() model {
	m.editing = editNone
	m.inputErr = nil
	m.input.Blur()
	m.input.Reset()
	return m
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		return m.closeInput(), nil
	case "enter":
		value := m.input.Value()
		switch m.editing {
		case editNote:
			m.loop.Submit(engine.Note(value))
		case editCountdown:
			d, timeout, err := parseCountdown(value)
			if err != nil {
				m.inputErr = err
				return m, nil
			}
			m.loop.Submit(engine.Countdown(d, timeout))
		}
		return m.closeInput(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// parseCountdown reads "<duration> [timeout page]". "off" or nothing disables the countdown.
func parseCountdown(text string) (time.Duration, cuelist.PageID, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || fields[0] == "off" {
		return cuelist.Disabled, cuelist.NoPage, nil
	}
	if len(fields) > 2 {
		return 0, cuelist.NoPage, fmt.Errorf("want a duration and at most one page, got %q", text)
	}
	d, err := time.ParseDuration(fields[0])
	if err != nil {
		return 0, cuelist.NoPage, err
	}
	if d < 0 {
		return 0, cuelist.NoPage, fmt.Errorf("countdown must not be negative, got %s", d)
	}
	timeout := cuelist.NoPage
	if len(fields) == 2 {
		timeout = cuelist.PageID(fields[1])
	}
	return d, timeout, nil
}

func (m model) selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lights) {
		return "", false
	}
	return m.lights[m.cursor], true
}
