package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-go-golems/agentline/pkg/view"
)

type ViewID string

const (
	ViewTimeline ViewID = "timeline"
	ViewEvents   ViewID = "events"
)

type RootModel struct {
	width  int
	height int

	active ViewID

	timeline TimelineModel
	events   EventLogModel
}

func NewRootModel(ctrl *view.Controller) RootModel {
	return RootModel{
		active:   ViewTimeline,
		timeline: NewTimelineModel(ctrl),
		events:   NewEventLogModel(),
	}
}

func (m RootModel) Init() tea.Cmd { return m.timeline.Init() }

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.timeline = m.timeline.WithSize(v.Width, v.Height-2)
		m.events = m.events.WithSize(v.Width, v.Height-2)
		return m, nil
	case tea.KeyMsg:
		switch v.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.active == ViewTimeline {
				m.active = ViewEvents
			} else {
				m.active = ViewTimeline
			}
			return m, nil
		}
	case EventLogAppendMsg:
		m.events = m.events.Append(v.Entry)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.active {
	case ViewEvents:
		switch msg.(type) {
		case SnapshotMsg, HeaderTextMsg, spinner.TickMsg:
			m.timeline, cmd = m.timeline.Update(msg)
			return m, cmd
		}
		m.events, cmd = m.events.Update(msg)
	default:
		m.timeline, cmd = m.timeline.Update(msg)
	}
	return m, cmd
}

func (m RootModel) View() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("agentline — %s  (tab switch, q quit)\n\n", m.active))
	switch m.active {
	case ViewEvents:
		b.WriteString(m.events.View())
	default:
		b.WriteString(m.timeline.View())
	}
	return b.String()
}
