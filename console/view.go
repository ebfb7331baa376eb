package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/stagehand/cuelist"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle    = helpStyle.Copy().UnsetMargins()
	appStyle    = lipgloss.NewStyle().Margin(1, 2, 0, 2)
)

const (
	tungstenHue   = 35.0
	tungstenSat   = 0.6
	swatchPadding = "    "
)

// swatch renders a block whose brightness follows percent.
func swatch(percent float64) string {
	v := percent / 100
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c := colorful.Hsv(tungstenHue, tungstenSat, v)
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render(swatchPadding)
}

func pageLabel(id cuelist.PageID) string {
	if id == cuelist.NoPage {
		return "-"
	}
	return string(id)
}

func (m model) View() string {
	if m.quitting {
		return "\n"
	}
	if !m.received {
		return appStyle.Render("waiting for the control loop...")
	}

	st := m.status
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Cue %s", st.Current)))
	b.WriteString(fmt.Sprintf("  next %s  preview %s (%+d)  editing %s\n",
		pageLabel(st.Next), pageLabel(st.PreviewID), st.PreviewDepth, m.target))
	if st.Note != "" {
		b.WriteString(fmt.Sprintf("%s\n", st.Note))
	}
	if st.Countdown >= 0 {
		b.WriteString(fmt.Sprintf("auto-advance in %s\n", st.Countdown.Round(100*time.Millisecond)))
	}
	if st.Fading {
		b.WriteString(fmt.Sprintf("\nfading %s\n", m.fade.ViewAs(st.FadeFraction)))
	}
	if m.editing != editNone {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.inputErr != nil {
			b.WriteString(errorStyle.Render(m.inputErr.Error()))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-10s %-4s %5s %5s %5s", "light", "", "live", "pvw", "int")))
	b.WriteString("\n")
	for i, name := range m.lights {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		live := st.Levels.Get(name)
		b.WriteString(fmt.Sprintf("%s%-10s %s %5.0f %5d %5d\n",
			marker, name, swatch(live), live, st.Preview.Get(name), st.Interrupt.Get(name)))
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("\nframes sent: %d", st.FramesSent)))
	if st.Err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(st.Err.Error()))
	}

	b.WriteString(helpStyle.Render("(s/pgdn) go  (w/pgup) back  (f) fade  (b) blackout  (space) hals  (i) interrupt  (d) delete\n" +
		"(j/k) select  (t) toggle  (x) off  (tab) edit page  (n/p) preview +/-  (l) link preview as next\n" +
		"(e) note  (c) countdown  (ctrl+s) save  (r) resend  (q) quit"))
	return appStyle.Render(b.String())
}
