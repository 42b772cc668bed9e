// Package view projects a timeline snapshot into render-ready form: a fully
// expanded step list, a collapsed one-line summary, or a compact inline
// preview of the latest step. The engine's responsibility ends at these
// structures; pixels belong to the render layer.
package view

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-go-golems/agentline/pkg/classify"
	"github.com/go-go-golems/agentline/pkg/pace"
	"github.com/go-go-golems/agentline/pkg/timeline"
)

// Mode selects which projection the render layer should draw.
type Mode int

const (
	// ModeCollapsed shows only the one-line summary.
	ModeCollapsed Mode = iota
	// ModeCompact shows the summary plus an inline preview of the latest
	// step while the stream is still active.
	ModeCompact
	// ModeExpanded shows every turn group and step.
	ModeExpanded
)

// StepView is the render tuple for one step.
type StepView struct {
	Key         string
	Icon        string
	StatusLabel string
	Content     string
	Expanded    bool
	Cancelled   bool
	Running     bool
	Nested      bool
	Children    []StepView
}

// TurnView is one rendered turn group.
type TurnView struct {
	Turn      int
	Parallel  bool
	ActiveTab int
	// ActiveLane is the position of the active tab within TabLabels.
	ActiveLane int
	TabLabels  []string
	Steps      []StepView
}

// View is one render-ready frame.
type View struct {
	Mode      Mode
	Header    string
	ToolCount int
	ToolNames []string
	Turns     []TurnView
	Compact   *StepView
	Answer    string
}

// Labeler maps a custom tool name to a display label; optional.
type Labeler interface {
	Label(toolName string) (string, bool)
}

// Controller holds the user-facing presentation state that is not derivable
// from the packet stream: the expand toggle, per-turn tab selection, and the
// per-step completion callbacks with their minimum-visible-duration holds.
// Safe for concurrent use: minimum-visible holds complete on timer goroutines
// while Project runs on the render goroutine.
type Controller struct {
	sched   pace.Scheduler
	floor   time.Duration
	labeler Labeler

	mu        sync.Mutex
	expanded  bool
	activeTab map[int]int
	holds     map[string]*pace.MinHold
	callbacks map[string]func()
	notified  map[string]bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLabeler installs a custom-tool labeler.
func WithLabeler(l Labeler) Option {
	return func(c *Controller) { c.labeler = l }
}

// WithMinVisible overrides the transient-state floor; zero disables it for
// non-animated replay.
func WithMinVisible(d time.Duration) Option {
	return func(c *Controller) { c.floor = d }
}

func NewController(sched pace.Scheduler, opts ...Option) *Controller {
	c := &Controller{
		sched:     sched,
		floor:     pace.DefaultMinVisible,
		activeTab: map[int]int{},
		holds:     map[string]*pace.MinHold{},
		callbacks: map[string]func(){},
		notified:  map[string]bool{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ToggleExpanded flips the user expand/collapse toggle.
func (c *Controller) ToggleExpanded() {
	c.mu.Lock()
	c.expanded = !c.expanded
	c.mu.Unlock()
}

// Expanded reports the toggle state.
func (c *Controller) Expanded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded
}

// SelectTab overrides the active lane for a parallel turn.
func (c *Controller) SelectTab(turn, tab int) {
	c.mu.Lock()
	c.activeTab[turn] = tab
	c.mu.Unlock()
}

// ActiveTab returns the selected tab for a turn, or fallback when the user
// has not overridden it.
func (c *Controller) ActiveTab(turn, fallback int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tab, ok := c.activeTab[turn]; ok {
		return tab
	}
	return fallback
}

// OnStepComplete registers the completion callback for a step key. It fires
// at most once, after the step settles and its minimum-visible floor has
// elapsed.
func (c *Controller) OnStepComplete(stepKey string, fn func()) {
	c.mu.Lock()
	c.callbacks[stepKey] = fn
	c.mu.Unlock()
}

// Close cancels every pending minimum-duration hold. Required on teardown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range c.holds {
		h.Close()
	}
}

// Project turns a snapshot into the frame to render, applying the selection
// rules: user expansion wins; while the stream is active a compact preview
// of the latest step rides under the collapsed header, except for parallel
// last turns which summarize as tool names; a completed stream collapses to
// the summary line.
func (c *Controller) Project(snap *timeline.Snapshot) View {
	v := View{
		Header:    snap.HeaderText,
		ToolCount: snap.ToolCount,
		Answer:    snap.Answer,
	}
	for _, g := range snap.Turns {
		v.ToolNames = append(v.ToolNames, g.UniqueToolNames...)
	}

	c.observeCompletions(snap)

	switch {
	case c.Expanded():
		v.Mode = ModeExpanded
		for _, g := range snap.Turns {
			v.Turns = append(v.Turns, c.turnView(g))
		}
	case !snap.StreamComplete:
		last := snap.LastStep()
		lastTurn := lastTurnGroup(snap)
		if last != nil && (lastTurn == nil || !lastTurn.Parallel) {
			sv := c.stepView(last)
			v.Mode = ModeCompact
			v.Compact = &sv
		} else {
			v.Mode = ModeCollapsed
		}
	default:
		v.Mode = ModeCollapsed
	}
	return v
}

func lastTurnGroup(snap *timeline.Snapshot) *timeline.TurnGroup {
	if len(snap.Turns) == 0 {
		return nil
	}
	return snap.Turns[len(snap.Turns)-1]
}

// observeCompletions opens a minimum-visible hold the first time a step is
// seen and releases callbacks once the step settles.
func (c *Controller) observeCompletions(snap *timeline.Snapshot) {
	for _, g := range snap.Turns {
		for _, s := range g.Steps {
			c.observeStep(s)
			for _, child := range s.Children {
				c.observeStep(child)
			}
		}
	}
}

// observeStep opens the step's hold on first sight and, once the step is
// complete, arms the release. The lock is dropped before Complete: the hold
// may invoke the release synchronously when the floor has already elapsed.
func (c *Controller) observeStep(s *timeline.Step) {
	c.mu.Lock()
	if c.notified[s.Key] {
		c.mu.Unlock()
		return
	}
	hold := c.holds[s.Key]
	if hold == nil {
		hold = pace.NewMinHold(c.sched, c.floor)
		c.holds[s.Key] = hold
	}
	if !s.Complete {
		c.mu.Unlock()
		return
	}
	key := s.Key
	c.mu.Unlock()

	hold.Complete(func() {
		c.mu.Lock()
		if c.notified[key] {
			c.mu.Unlock()
			return
		}
		c.notified[key] = true
		fn := c.callbacks[key]
		c.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

func (c *Controller) turnView(g *timeline.TurnGroup) TurnView {
	tv := TurnView{Turn: g.Turn, Parallel: g.Parallel, ActiveTab: g.ActiveTab}
	c.mu.Lock()
	tab, ok := c.activeTab[g.Turn]
	c.mu.Unlock()
	if ok && g.Lane(tab) != nil {
		tv.ActiveTab = tab
	}
	if g.Parallel {
		for i, lane := range g.Lanes {
			if lane.Tab == tv.ActiveTab {
				tv.ActiveLane = i
			}
			label := fmt.Sprintf("Tab %d", lane.Tab+1)
			if len(lane.Steps) > 0 {
				if name := c.toolLabel(lane.Steps[0]); name != "" {
					label = name
				}
			}
			tv.TabLabels = append(tv.TabLabels, label)
		}
	}
	for _, s := range g.Steps {
		tv.Steps = append(tv.Steps, c.stepView(s))
	}
	return tv
}

func (c *Controller) toolLabel(s *timeline.Step) string {
	if c.labeler != nil && s.ToolName != "" {
		if label, ok := c.labeler.Label(s.ToolName); ok {
			return label
		}
	}
	return s.ToolLabel()
}

func (c *Controller) stepView(s *timeline.Step) StepView {
	sv := StepView{
		Key:       s.Key,
		Icon:      classify.Icon(s.PrimaryKind()),
		Expanded:  c.Expanded(),
		Cancelled: s.Cancelled,
		Running:   !s.Complete,
		Nested:    s.Nested,
	}
	sv.StatusLabel = c.statusLabel(s)
	sv.Content = stepContent(s)
	for _, child := range s.Children {
		sv.Children = append(sv.Children, c.stepView(child))
	}
	return sv
}

// statusLabel picks the step's status line: cancelled steps render a neutral
// stopped state instead of an in-progress shimmer.
func (c *Controller) statusLabel(s *timeline.Step) string {
	if s.Cancelled {
		return "Stopped"
	}
	if !s.Complete {
		return classify.RunningLabel(s.PrimaryKind())
	}
	switch s.Kind {
	case timeline.StepSearch:
		if n := len(s.Documents); n > 0 {
			return fmt.Sprintf("Found %d results", n)
		}
		return "Searched"
	case timeline.StepOpenURL:
		return fmt.Sprintf("Read %d sources", len(s.URLs))
	case timeline.StepImage:
		return "Generated image"
	case timeline.StepPython:
		return "Ran code"
	case timeline.StepCustomTool:
		return "Ran " + c.toolLabel(s)
	case timeline.StepReasoning:
		return "Thought"
	case timeline.StepPlan:
		return "Planned research"
	case timeline.StepResearchAgent:
		return "Researched"
	case timeline.StepReport:
		return "Wrote report"
	case timeline.StepMessage:
		return "Answered"
	case timeline.StepError:
		return "Error"
	default:
		return "Done"
	}
}

func stepContent(s *timeline.Step) string {
	switch s.Kind {
	case timeline.StepSearch:
		var parts []string
		if len(s.Queries) > 0 {
			parts = append(parts, strings.Join(s.Queries, ", "))
		}
		for _, d := range s.Documents {
			name := d.SemanticIdentifier
			if name == "" {
				name = d.DocumentID
			}
			parts = append(parts, name)
		}
		return strings.Join(parts, "\n")
	case timeline.StepOpenURL:
		return strings.Join(s.URLs, "\n")
	case timeline.StepImage:
		var urls []string
		for _, img := range s.Images {
			urls = append(urls, img.URL)
		}
		return strings.Join(urls, "\n")
	case timeline.StepPython:
		out := s.Code
		if s.Stdout != "" {
			out += "\n" + s.Stdout
		}
		if s.Stderr != "" {
			out += "\n" + s.Stderr
		}
		return strings.TrimPrefix(out, "\n")
	case timeline.StepResearchAgent:
		return s.ResearchTask
	case timeline.StepError:
		return s.ErrMessage
	default:
		if s.ErrMessage != "" {
			return s.ErrMessage
		}
		return s.Text
	}
}
