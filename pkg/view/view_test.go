package view

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/agentline/pkg/pace"
	"github.com/go-go-golems/agentline/pkg/protocol"
	"github.com/go-go-golems/agentline/pkg/timeline"
)

func pkt(turn, tab int, obj protocol.Obj) protocol.Packet {
	return protocol.Packet{
		Placement: protocol.Placement{TurnIndex: &turn, TabIndex: tab},
		Obj:       obj,
	}
}

func TestProject_ActiveStreamShowsCompactPreview(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(0))
	defer c.Close()

	snap := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 0, protocol.SearchToolQueriesDelta{Queries: []string{"go generics"}}),
	})
	v := c.Project(snap)

	require.Equal(t, ModeCompact, v.Mode)
	require.NotNil(t, v.Compact)
	require.Equal(t, "t0.l0", v.Compact.Key)
	require.True(t, v.Compact.Running)
	require.Equal(t, "Searching", v.Compact.StatusLabel)
	require.Equal(t, "go generics", v.Compact.Content)
	require.Empty(t, v.Turns)
}

func TestProject_ParallelLastTurnCollapsesToToolNames(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(0))
	defer c.Close()

	snap := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 1, protocol.OpenURLStart{}),
	})
	v := c.Project(snap)

	require.Equal(t, ModeCollapsed, v.Mode)
	require.Nil(t, v.Compact)
	require.Equal(t, []string{"Search", "Read URL"}, v.ToolNames)
}

func TestProject_CompletedStreamCollapses(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(0))
	defer c.Close()

	snap := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.MessageStart{}),
		pkt(0, 0, protocol.MessageDelta{Content: "done"}),
		pkt(0, 0, protocol.OverallStop{}),
	})
	v := c.Project(snap)

	require.Equal(t, ModeCollapsed, v.Mode)
	require.Equal(t, "Done", v.Header)
	require.Equal(t, "done", v.Answer)
}

func TestProject_ExpandToggleWins(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(0))
	defer c.Close()

	snap := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 0, protocol.SectionEnd{}),
		pkt(1, 0, protocol.ReasoningStart{}),
	})

	c.ToggleExpanded()
	v := c.Project(snap)

	require.Equal(t, ModeExpanded, v.Mode)
	require.Len(t, v.Turns, 2)
	require.Len(t, v.Turns[0].Steps, 1)
	require.Equal(t, "Searched", v.Turns[0].Steps[0].StatusLabel)
	require.Equal(t, "Thinking", v.Turns[1].Steps[0].StatusLabel)

	c.ToggleExpanded()
	v = c.Project(snap)
	require.NotEqual(t, ModeExpanded, v.Mode)
}

func TestProject_TabSelection(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(0))
	defer c.Close()

	snap := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 2, protocol.PythonToolStart{Code: "1"}),
	})
	c.ToggleExpanded()

	v := c.Project(snap)
	require.Equal(t, 0, v.Turns[0].ActiveTab)
	require.Equal(t, 0, v.Turns[0].ActiveLane)
	require.Equal(t, []string{"Search", "Run code"}, v.Turns[0].TabLabels)

	c.SelectTab(0, 2)
	v = c.Project(snap)
	require.Equal(t, 2, v.Turns[0].ActiveTab)
	require.Equal(t, 1, v.Turns[0].ActiveLane)

	// Selecting a tab with no lane falls back to the default.
	c.SelectTab(0, 7)
	v = c.Project(snap)
	require.Equal(t, 0, v.Turns[0].ActiveTab)
}

func TestProject_CancelledStepRendersStopped(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(0))
	defer c.Close()

	snap := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 0, protocol.OverallStop{}),
	})
	c.ToggleExpanded()
	v := c.Project(snap)

	require.Equal(t, "Stopped", v.Header)
	sv := v.Turns[0].Steps[0]
	require.True(t, sv.Cancelled)
	require.Equal(t, "Stopped", sv.StatusLabel)
}

type mapLabeler map[string]string

func (m mapLabeler) Label(name string) (string, bool) {
	l, ok := m[name]
	return l, ok
}

func TestProject_CustomToolLabeler(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms,
		WithMinVisible(0),
		WithLabeler(mapLabeler{"jira_lookup": "Checking Jira"}))
	defer c.Close()

	snap := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.CustomToolStart{ToolName: "jira_lookup"}),
		pkt(0, 0, protocol.SectionEnd{}),
	})
	c.ToggleExpanded()
	v := c.Project(snap)

	require.Equal(t, "Ran Checking Jira", v.Turns[0].Steps[0].StatusLabel)
}

func TestOnStepComplete_HonorsMinVisibleFloor(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(500*time.Millisecond))
	defer c.Close()

	var fired int
	c.OnStepComplete("t0.l0", func() { fired++ })

	running := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
	})
	c.Project(running)

	done := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 0, protocol.SectionEnd{}),
	})
	ms.Advance(100 * time.Millisecond)
	c.Project(done)
	require.Equal(t, 0, fired)

	ms.Advance(400 * time.Millisecond)
	require.Equal(t, 1, fired)

	// Re-projecting the settled snapshot never re-fires.
	c.Project(done)
	ms.Advance(time.Second)
	require.Equal(t, 1, fired)
}

func TestOnStepComplete_ImmediateAfterFloorElapsed(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(500*time.Millisecond))
	defer c.Close()

	var fired int
	c.OnStepComplete("t0.l0", func() { fired++ })

	running := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
	})
	c.Project(running)
	ms.Advance(2 * time.Second)

	done := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 0, protocol.SectionEnd{}),
	})
	c.Project(done)
	require.Equal(t, 1, fired)
}

// Completion holds release on timer goroutines while Project runs on the
// render goroutine; the controller must tolerate both at once and still fire
// each callback exactly once.
func TestController_ConcurrentProjectAndCompletions(t *testing.T) {
	c := NewController(pace.WallClock(), WithMinVisible(time.Millisecond))
	defer c.Close()

	const steps = 20
	var fired atomic.Int64
	packets := make([]protocol.Packet, 0, 2*steps)
	for i := 0; i < steps; i++ {
		c.OnStepComplete(fmt.Sprintf("t%d.l0", i), func() { fired.Add(1) })
		packets = append(packets,
			pkt(i, 0, protocol.SearchToolStart{}),
			pkt(i, 0, protocol.SectionEnd{}))
	}
	snap := timeline.Rebuild(packets)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		deadline := time.Now().Add(200 * time.Millisecond)
		for time.Now().Before(deadline) && fired.Load() < steps {
			c.ToggleExpanded()
			c.Project(snap)
			time.Sleep(time.Millisecond)
		}
	}()
	wg.Wait()

	require.Eventually(t, func() bool { return fired.Load() == steps },
		time.Second, 5*time.Millisecond)

	// Settled steps stay settled across further projections.
	c.Project(snap)
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int64(steps), fired.Load())
}

func TestControllerClose_CancelsPendingHolds(t *testing.T) {
	ms := pace.NewManualScheduler()
	c := NewController(ms, WithMinVisible(500*time.Millisecond))

	var fired int
	c.OnStepComplete("t0.l0", func() { fired++ })

	done := timeline.Rebuild([]protocol.Packet{
		pkt(0, 0, protocol.SearchToolStart{}),
		pkt(0, 0, protocol.SectionEnd{}),
	})
	c.Project(done)
	require.Equal(t, 1, ms.PendingCount())

	c.Close()
	require.Equal(t, 0, ms.PendingCount())
	ms.Advance(time.Second)
	require.Equal(t, 0, fired)
}
