package bus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/agentline/pkg/protocol"
)

func nextEnvelope(t *testing.T, msgs <-chan *message.Message) Envelope {
	t.Helper()
	select {
	case msg := <-msgs:
		msg.Ack()
		env, err := DecodeEnvelope(msg.Payload)
		require.NoError(t, err)
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for UI envelope")
		return Envelope{}
	}
}

func startBus(t *testing.T) (*Bus, <-chan *message.Message) {
	t.Helper()
	b, err := NewInMemoryBus()
	require.NoError(t, err)
	RegisterTimelineTransformer(b)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	msgs, err := b.Subscribe(ctx, TopicUIMessages)
	require.NoError(t, err)

	go func() { _ = b.Run(ctx) }()
	select {
	case <-b.Router.Running():
	case <-time.After(2 * time.Second):
		t.Fatal("router did not start")
	}
	return b, msgs
}

func TestTransformer_PacketYieldsSnapshotAndLogLine(t *testing.T) {
	b, msgs := startBus(t)

	turn := 0
	pkt := protocol.Packet{
		Placement: protocol.Placement{TurnIndex: &turn},
		Obj:       protocol.SearchToolStart{},
	}
	require.NoError(t, b.PublishPacket(pkt))

	env := nextEnvelope(t, msgs)
	require.Equal(t, UITypeSnapshot, env.Type)
	snap, err := env.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Turns, 1)
	require.Equal(t, "Searching", snap.HeaderText)

	env = nextEnvelope(t, msgs)
	require.Equal(t, UITypeEventAppend, env.Type)
	entry, err := env.EventLog()
	require.NoError(t, err)
	require.Equal(t, "step started: Search", entry.Text)
}

func TestTransformer_SnapshotsAccumulateHistory(t *testing.T) {
	b, msgs := startBus(t)

	turn := 0
	place := protocol.Placement{TurnIndex: &turn}
	require.NoError(t, b.PublishPacket(protocol.Packet{Placement: place, Obj: protocol.SearchToolStart{}}))
	nextEnvelope(t, msgs) // snapshot
	nextEnvelope(t, msgs) // log line

	require.NoError(t, b.PublishPacket(protocol.Packet{Placement: place, Obj: protocol.SearchToolQueriesDelta{Queries: []string{"q"}}}))

	env := nextEnvelope(t, msgs)
	require.Equal(t, UITypeSnapshot, env.Type)
	snap, err := env.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Turns, 1)
	require.Len(t, snap.Turns[0].Steps, 1)
	require.Equal(t, []string{"q"}, snap.Turns[0].Steps[0].Queries)

	// Deltas are too chatty for the event log; no append follows.
	select {
	case msg := <-msgs:
		msg.Ack()
		extra, err := DecodeEnvelope(msg.Payload)
		require.NoError(t, err)
		require.NotEqual(t, UITypeEventAppend, extra.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTransformer_StreamEndedLogsLine(t *testing.T) {
	b, msgs := startBus(t)

	require.NoError(t, b.PublishStreamEnded(""))

	env := nextEnvelope(t, msgs)
	require.Equal(t, UITypeEventAppend, env.Type)
	entry, err := env.EventLog()
	require.NoError(t, err)
	require.Equal(t, "stream ended", entry.Text)
}

func TestTransformer_StreamEndedCarriesErrorText(t *testing.T) {
	b, msgs := startBus(t)

	require.NoError(t, b.PublishStreamEnded("connection reset"))

	env := nextEnvelope(t, msgs)
	require.Equal(t, UITypeEventAppend, env.Type)
	entry, err := env.EventLog()
	require.NoError(t, err)
	require.Equal(t, "stream ended: connection reset", entry.Text)
}

func TestNewEnvelope_RequiresType(t *testing.T) {
	_, err := NewEnvelope("", nil)
	require.Error(t, err)

	env, err := NewEnvelope("x", nil)
	require.NoError(t, err)
	require.Empty(t, env.Payload)
}

func TestEnvelope_TypedAccessorsRejectWrongTag(t *testing.T) {
	turn := 0
	env, err := NewEnvelope(DomainTypePacket, protocol.Packet{
		Placement: protocol.Placement{TurnIndex: &turn},
		Obj:       protocol.SearchToolStart{},
	})
	require.NoError(t, err)

	_, err = env.Snapshot()
	require.Error(t, err)
	_, err = env.EventLog()
	require.Error(t, err)
	_, err = env.StreamEnded()
	require.Error(t, err)

	pkt, err := env.Packet()
	require.NoError(t, err)
	require.Equal(t, protocol.KindSearchToolStart, pkt.Obj.Kind())
}

func TestDecodeEnvelope_RejectsUntypedFrames(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"payload":{}}`))
	require.Error(t, err)

	_, err = DecodeEnvelope([]byte(`not json`))
	require.Error(t, err)
}
