package bus

import (
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/go-go-golems/agentline/pkg/classify"
	"github.com/go-go-golems/agentline/pkg/protocol"
	"github.com/go-go-golems/agentline/pkg/timeline"
)

// EventLogEntry is one human-readable line for the UI event log.
type EventLogEntry struct {
	At   time.Time `json:"at"`
	Kind string    `json:"kind"`
	Text string    `json:"text"`
}

// RegisterTimelineTransformer folds the packet topic into timeline
// snapshots on the UI topic. The full packet history is kept and the
// snapshot is rebuilt from scratch on each arrival, so the UI topic only
// ever carries self-contained frames.
func RegisterTimelineTransformer(b *Bus) {
	var mu sync.Mutex
	var packets []protocol.Packet

	b.AddHandler("agentline-timeline-transform", TopicPackets, func(msg *message.Message) error {
		defer msg.Ack()

		env, err := DecodeEnvelope(msg.Payload)
		if err != nil {
			return err
		}

		switch env.Type {
		case DomainTypePacket:
			pkt, err := env.Packet()
			if err != nil {
				return err
			}

			mu.Lock()
			packets = append(packets, pkt)
			history := append([]protocol.Packet(nil), packets...)
			mu.Unlock()

			if err := b.PublishSnapshot(timeline.Rebuild(history)); err != nil {
				return err
			}
			if line := eventLogLine(pkt); line != "" {
				return b.PublishEventLog(EventLogEntry{
					At:   time.Now(),
					Kind: string(pkt.Obj.Kind()),
					Text: line,
				})
			}
			return nil
		case DomainTypeStreamEnded:
			errText, err := env.StreamEnded()
			if err != nil {
				return err
			}
			text := "stream ended"
			if errText != "" {
				text = "stream ended: " + errText
			}
			return b.PublishEventLog(EventLogEntry{At: time.Now(), Kind: DomainTypeStreamEnded, Text: text})
		default:
			return nil
		}
	})
}

// eventLogLine renders the packets worth a log line; deltas are too chatty.
func eventLogLine(pkt protocol.Packet) string {
	if pkt.Obj == nil {
		return ""
	}
	k := pkt.Obj.Kind()
	switch {
	case k == protocol.KindStop:
		return "stream stopped"
	case k == protocol.KindError:
		return "stream error"
	case classify.IsStepStart(k):
		if label := classify.ToolLabel(k); label != "" {
			return fmt.Sprintf("step started: %s", label)
		}
		return "answer started"
	default:
		return ""
	}
}
