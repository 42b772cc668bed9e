package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-go-golems/agentline/pkg/timeline"
	"github.com/go-go-golems/agentline/pkg/tui/styles"
	"github.com/go-go-golems/agentline/pkg/view"
)

const maxContentLines = 6

// TimelineModel draws the reconstructed timeline: collapsed summary with a
// compact preview while streaming, or the fully expanded turn/step tree.
type TimelineModel struct {
	theme styles.Theme
	ctrl  *view.Controller
	snap  *timeline.Snapshot

	// header is the typewriter-animated header frame; empty until the first
	// animation tick arrives.
	header string

	width  int
	height int

	spin spinner.Model
	vp   viewport.Model
}

func NewTimelineModel(ctrl *view.Controller) TimelineModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := TimelineModel{
		theme: styles.DefaultTheme(),
		ctrl:  ctrl,
		spin:  sp,
	}
	m.vp = viewport.New(0, 0)
	return m
}

func (m TimelineModel) Init() tea.Cmd { return m.spin.Tick }

func (m TimelineModel) WithSize(width, height int) TimelineModel {
	m.width, m.height = width, height
	m.vp.Width = width
	m.vp.Height = maxInt(height-2, 0)
	return m
}

func (m TimelineModel) Update(msg tea.Msg) (TimelineModel, tea.Cmd) {
	switch v := msg.(type) {
	case SnapshotMsg:
		m.snap = v.Snapshot
		m.vp.SetContent(m.render())
		return m, nil
	case HeaderTextMsg:
		m.header = v.Text
		m.vp.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		switch v.String() {
		case "e":
			m.ctrl.ToggleExpanded()
			m.vp.SetContent(m.render())
			return m, nil
		case "left", "right":
			m.cycleTab(v.String() == "right")
			m.vp.SetContent(m.render())
			return m, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(v)
		m.vp.SetContent(m.render())
		return m, cmd
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// cycleTab moves the active lane of the last parallel turn.
func (m *TimelineModel) cycleTab(forward bool) {
	if m.snap == nil {
		return
	}
	for i := len(m.snap.Turns) - 1; i >= 0; i-- {
		g := m.snap.Turns[i]
		if !g.Parallel || len(g.Lanes) < 2 {
			continue
		}
		active := m.ctrl.ActiveTab(g.Turn, g.ActiveTab)
		cur := 0
		for idx, lane := range g.Lanes {
			if lane.Tab == active {
				cur = idx
			}
		}
		if forward {
			cur = (cur + 1) % len(g.Lanes)
		} else {
			cur = (cur - 1 + len(g.Lanes)) % len(g.Lanes)
		}
		m.ctrl.SelectTab(g.Turn, g.Lanes[cur].Tab)
		return
	}
}

func (m TimelineModel) View() string {
	legend := m.theme.KeybindLegend.Render("e expand · ←/→ tabs · q quit")
	return m.vp.View() + "\n" + legend
}

func (m TimelineModel) render() string {
	if m.snap == nil {
		return m.theme.SummaryStyle.Render("waiting for stream…")
	}
	v := m.ctrl.Project(m.snap)

	var b strings.Builder
	b.WriteString(m.headerLine(v))
	b.WriteString("\n")

	switch v.Mode {
	case view.ModeCompact:
		if v.Compact != nil {
			b.WriteString(m.renderStep(*v.Compact, 1))
		}
	case view.ModeExpanded:
		for _, tv := range v.Turns {
			b.WriteString(m.renderTurn(tv))
		}
	}

	if v.Answer != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.AnswerStyle.Render(v.Answer))
		b.WriteString("\n")
	}
	return b.String()
}

func (m TimelineModel) headerLine(v view.View) string {
	text := v.Header
	if m.header != "" {
		text = m.header
	}
	header := m.theme.Header.Render(text)
	if m.snap != nil && !m.snap.StreamComplete {
		header = m.spin.View() + " " + header
	}
	if v.ToolCount > 0 {
		summary := fmt.Sprintf("%d tool", v.ToolCount)
		if v.ToolCount > 1 {
			summary += "s"
		}
		if len(v.ToolNames) > 0 {
			summary += ": " + strings.Join(v.ToolNames, ", ")
		}
		header += "  " + m.theme.SummaryStyle.Render(summary)
	}
	return header
}

func (m TimelineModel) renderTurn(tv view.TurnView) string {
	var b strings.Builder
	if tv.Parallel {
		var tabs []string
		for i, label := range tv.TabLabels {
			style := m.theme.TabInactive
			if i == tv.ActiveLane {
				style = m.theme.TabActive
			}
			tabs = append(tabs, style.Render(label))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(tabs, " │ ")))
		b.WriteString("\n")
	}
	for _, sv := range tv.Steps {
		b.WriteString(m.renderStep(sv, 1))
	}
	return b.String()
}

func (m TimelineModel) renderStep(sv view.StepView, depth int) string {
	indent := strings.Repeat("  ", depth)

	style := m.theme.StepDone
	status := sv.StatusLabel
	switch {
	case sv.Cancelled:
		style = m.theme.StepStopped
	case sv.Running:
		style = m.theme.StepRunning
		status = m.spin.View() + " " + status
	case sv.StatusLabel == "Error":
		style = m.theme.StepError
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s%s %s\n", indent, sv.Icon, style.Render(status)))
	if sv.Content != "" && sv.Expanded {
		for _, line := range clipLines(sv.Content, maxContentLines) {
			b.WriteString(indent + "  " + m.theme.ContentDim.Render(line) + "\n")
		}
	}
	for _, child := range sv.Children {
		b.WriteString(m.renderStep(child, depth+1))
	}
	return b.String()
}

func clipLines(s string, max int) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > max {
		clipped := append([]string{}, lines[:max]...)
		clipped = append(clipped, "…")
		return clipped
	}
	return lines
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
