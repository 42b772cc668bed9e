package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/agentline/pkg/protocol"
)

func TestReasoningIsActivityButNeverAnInvocation(t *testing.T) {
	for _, k := range []protocol.Kind{
		protocol.KindReasoningStart,
		protocol.KindReasoningDelta,
		protocol.KindReasoningDone,
	} {
		require.True(t, IsToolActivity(k, false), "kind %s", k)
		require.False(t, IsActualToolInvocation(k), "kind %s", k)
	}
}

func TestIsToolActivity_TerminalModes(t *testing.T) {
	// Terminal kinds count only when the caller opts in.
	require.False(t, IsToolActivity(protocol.KindSectionEnd, false))
	require.True(t, IsToolActivity(protocol.KindSectionEnd, true))
	require.False(t, IsToolActivity(protocol.KindError, false))
	require.True(t, IsToolActivity(protocol.KindError, true))

	// The stream terminal is not step activity in either mode.
	require.False(t, IsToolActivity(protocol.KindStop, false))
	require.False(t, IsToolActivity(protocol.KindStop, true))

	require.True(t, IsToolActivity(protocol.KindSearchToolStart, false))
	require.True(t, IsToolActivity(protocol.KindSearchToolStart, true))
}

func TestIsActualToolInvocation_ExcludesTerminals(t *testing.T) {
	require.False(t, IsActualToolInvocation(protocol.KindSectionEnd))
	require.False(t, IsActualToolInvocation(protocol.KindError))
	require.True(t, IsActualToolInvocation(protocol.KindPythonToolStart))
	require.True(t, IsActualToolInvocation(protocol.KindCustomToolDelta))
	require.False(t, IsActualToolInvocation(protocol.KindMessageDelta))
}

func TestIsDisplayWorthy(t *testing.T) {
	require.True(t, IsDisplayWorthy(protocol.KindMessageStart))
	require.True(t, IsDisplayWorthy(protocol.KindImageGenerationStart))
	require.True(t, IsDisplayWorthy(protocol.KindPythonToolStart))
	require.False(t, IsDisplayWorthy(protocol.KindSearchToolStart))
	require.False(t, IsDisplayWorthy(protocol.KindReasoningStart))
	require.False(t, IsDisplayWorthy(protocol.KindUnknown))
}

func TestIsSearchSpecific(t *testing.T) {
	require.True(t, IsSearchSpecific(protocol.KindSearchToolStart))
	require.True(t, IsSearchSpecific(protocol.KindSearchToolQueriesDelta))
	require.True(t, IsSearchSpecific(protocol.KindSearchToolDocumentsDelta))
	require.False(t, IsSearchSpecific(protocol.KindOpenURLStart))
}

func TestUnknownKindClassifiesAsNothing(t *testing.T) {
	k := protocol.KindUnknown
	require.False(t, IsToolActivity(k, true))
	require.False(t, IsActualToolInvocation(k))
	require.False(t, IsDisplayWorthy(k))
	require.False(t, IsSearchSpecific(k))
	require.False(t, IsTerminal(k))
	require.False(t, IsStepStart(k))
}

func TestStreamScans(t *testing.T) {
	turn := 0
	pkts := []protocol.Packet{
		{Placement: protocol.Placement{TurnIndex: &turn}, Obj: protocol.SearchToolStart{}},
		{Placement: protocol.Placement{TurnIndex: &turn}, Obj: protocol.SectionEnd{}},
	}
	require.False(t, StreamComplete(pkts))
	require.False(t, FinalAnswerComing(pkts))

	pkts = append(pkts, protocol.Packet{Obj: protocol.MessageStart{}})
	require.True(t, FinalAnswerComing(pkts))

	pkts = append(pkts, protocol.Packet{Obj: protocol.OverallStop{}})
	require.True(t, StreamComplete(pkts))
}
