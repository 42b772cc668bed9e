package bus

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/go-go-golems/agentline/pkg/protocol"
	"github.com/go-go-golems/agentline/pkg/timeline"
)

// Envelope is the wire frame for every bus message: a type tag plus a JSON
// payload. Consumers dispatch on Type and decode through the typed
// accessors, which reject envelopes carrying the wrong tag.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(typ string, payload any) (Envelope, error) {
	if typ == "" {
		return Envelope{}, errors.New("empty envelope type")
	}
	if payload == nil {
		return Envelope{Type: typ}, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "marshal envelope payload")
	}
	return Envelope{Type: typ, Payload: b}, nil
}

// DecodeEnvelope parses one raw bus message back into an envelope.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, errors.Wrap(err, "unmarshal envelope")
	}
	if env.Type == "" {
		return Envelope{}, errors.New("envelope without type")
	}
	return env, nil
}

func (e Envelope) expect(typ string) error {
	if e.Type != typ {
		return errors.Errorf("envelope is %q, not %q", e.Type, typ)
	}
	return nil
}

// Packet decodes a stream.packet envelope.
func (e Envelope) Packet() (protocol.Packet, error) {
	if err := e.expect(DomainTypePacket); err != nil {
		return protocol.Packet{}, err
	}
	var pkt protocol.Packet
	if err := json.Unmarshal(e.Payload, &pkt); err != nil {
		return protocol.Packet{}, errors.Wrap(err, "unmarshal packet payload")
	}
	return pkt, nil
}

// streamEnded is the stream.ended payload; Error is empty on a clean end.
type streamEnded struct {
	Error string `json:"error,omitempty"`
}

// StreamEnded decodes a stream.ended envelope into its error text.
func (e Envelope) StreamEnded() (string, error) {
	if err := e.expect(DomainTypeStreamEnded); err != nil {
		return "", err
	}
	var p streamEnded
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return "", errors.Wrap(err, "unmarshal stream-ended payload")
		}
	}
	return p.Error, nil
}

// Snapshot decodes a ui.timeline.snapshot envelope.
func (e Envelope) Snapshot() (*timeline.Snapshot, error) {
	if err := e.expect(UITypeSnapshot); err != nil {
		return nil, err
	}
	var snap timeline.Snapshot
	if err := json.Unmarshal(e.Payload, &snap); err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot payload")
	}
	return &snap, nil
}

// EventLog decodes a ui.event.append envelope.
func (e Envelope) EventLog() (EventLogEntry, error) {
	if err := e.expect(UITypeEventAppend); err != nil {
		return EventLogEntry{}, err
	}
	var entry EventLogEntry
	if err := json.Unmarshal(e.Payload, &entry); err != nil {
		return EventLogEntry{}, errors.Wrap(err, "unmarshal event payload")
	}
	return entry, nil
}
