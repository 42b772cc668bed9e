package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/agentline/pkg/protocol"
)

func collect(h *[]protocol.Packet) Handler {
	return func(p protocol.Packet) { *h = append(*h, p) }
}

func TestRead_DecodesLinesInOrder(t *testing.T) {
	body := strings.Join([]string{
		`{"placement":{"turn_index":0,"tab_index":0},"obj":{"type":"search_tool_start"}}`,
		``,
		`{"placement":{"turn_index":0,"tab_index":0},"obj":{"type":"search_tool_queries_delta","queries":["q1"]}}`,
		`{"placement":{"turn_index":0,"tab_index":0},"obj":{"type":"section_end"}}`,
	}, "\n")

	var got []protocol.Packet
	err := Read(context.Background(), strings.NewReader(body), collect(&got))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, protocol.KindSearchToolStart, got[0].Obj.Kind())
	require.Equal(t, protocol.SearchToolQueriesDelta{Queries: []string{"q1"}}, got[1].Obj)
	require.Equal(t, protocol.KindSectionEnd, got[2].Obj.Kind())
}

func TestRead_MalformedLineEmitsTerminalPair(t *testing.T) {
	body := `{"placement":{"turn_index":0},"obj":{"type":"reasoning_start"}}` + "\n" +
		`{not json` + "\n"

	var got []protocol.Packet
	err := Read(context.Background(), strings.NewReader(body), collect(&got))
	require.Error(t, err)
	require.Contains(t, err.Error(), protocol.ErrStreamInvalidJSON)

	require.Len(t, got, 3)
	require.Equal(t, protocol.KindReasoningStart, got[0].Obj.Kind())

	errObj, ok := got[1].Obj.(protocol.StreamError)
	require.True(t, ok)
	require.Equal(t, protocol.ErrStreamInvalidJSON, errObj.Message)
	// Synthetic terminals carry no placement.
	_, hasTurn := got[1].Placement.Turn()
	require.False(t, hasTurn)

	stop, ok := got[2].Obj.(protocol.OverallStop)
	require.True(t, ok)
	require.Equal(t, "transport_error", stop.StopReason)
}

func TestRead_UnknownKindPassesThrough(t *testing.T) {
	body := `{"placement":{"turn_index":0},"obj":{"type":"future_packet","x":1}}` + "\n"

	var got []protocol.Packet
	err := Read(context.Background(), strings.NewReader(body), collect(&got))
	require.NoError(t, err)
	require.Len(t, got, 1)
	u, ok := got[0].Obj.(protocol.Unknown)
	require.True(t, ok)
	require.Equal(t, "future_packet", u.Type)
}

func TestTail_StreamsPacketsFromEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fl, _ := w.(http.Flusher)
		lines := []string{
			`{"placement":{"turn_index":0,"tab_index":0},"obj":{"type":"message_start"}}`,
			`{"placement":{"turn_index":0,"tab_index":0},"obj":{"type":"message_delta","content":"hi"}}`,
			`{"obj":{"type":"stop"}}`,
		}
		for _, l := range lines {
			_, _ = w.Write([]byte(l + "\n"))
			if fl != nil {
				fl.Flush()
			}
		}
	}))
	defer srv.Close()

	var got []protocol.Packet
	err := Tail(context.Background(), srv.URL, collect(&got))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, protocol.MessageDelta{Content: "hi"}, got[1].Obj)
	require.Equal(t, protocol.KindStop, got[2].Obj.Kind())
}

func TestTail_BadStatusEmitsTerminalPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var got []protocol.Packet
	err := Tail(context.Background(), srv.URL, collect(&got))
	require.Error(t, err)
	require.Contains(t, err.Error(), protocol.ErrStreamBadStatus)
	require.Len(t, got, 2)
	require.Equal(t, protocol.KindError, got[0].Obj.Kind())
	require.Equal(t, protocol.KindStop, got[1].Obj.Kind())
}
