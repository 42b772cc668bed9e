package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-go-golems/agentline/pkg/bus"
	"github.com/go-go-golems/agentline/pkg/tui/styles"
)

// EventLogModel is a scrollback of notable stream events, capped so a long
// session cannot grow without bound.
type EventLogModel struct {
	theme   styles.Theme
	max     int
	entries []bus.EventLogEntry

	vp viewport.Model
}

func NewEventLogModel() EventLogModel {
	m := EventLogModel{theme: styles.DefaultTheme(), max: 200}
	m.vp = viewport.New(0, 0)
	return m
}

func (m EventLogModel) WithSize(width, height int) EventLogModel {
	m.vp.Width = width
	m.vp.Height = maxInt(height-1, 0)
	m.vp.SetContent(m.render())
	return m
}

func (m EventLogModel) Append(entry bus.EventLogEntry) EventLogModel {
	m.entries = append(m.entries, entry)
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
	m.vp.SetContent(m.render())
	m.vp.GotoBottom()
	return m
}

func (m EventLogModel) Update(msg tea.Msg) (EventLogModel, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m EventLogModel) View() string {
	return m.vp.View()
}

func (m EventLogModel) render() string {
	var b strings.Builder
	for _, e := range m.entries {
		ts := e.At.Format("15:04:05")
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			m.theme.ContentDim.Render(ts),
			m.theme.SummaryStyle.Render(e.Kind),
			e.Text,
		))
	}
	return b.String()
}
