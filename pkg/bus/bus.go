// Package bus wires the stream, the timeline and the display layer together
// over an in-memory watermill pub/sub: decoded packets go in on the domain
// topic, rebuilt timeline snapshots and event-log lines come out on the UI
// topic. All traffic is typed envelopes; the publish methods below are the
// only way messages enter the bus.
package bus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	gochannel "github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"

	"github.com/go-go-golems/agentline/pkg/protocol"
	"github.com/go-go-golems/agentline/pkg/timeline"
)

// Bus is the pub/sub fabric of one session. Router is exported so callers
// can gate producers on Router.Running(): the gochannel pubsub drops
// messages published before a subscription exists.
type Bus struct {
	Router *message.Router

	pubsub  *gochannel.GoChannel
	runOnce sync.Once
}

func NewInMemoryBus() (*Bus, error) {
	logger := watermill.NopLogger{}
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1024}, logger)

	r, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "new watermill router")
	}
	return &Bus{Router: r, pubsub: pubsub}, nil
}

// AddHandler attaches a consumer to a topic; it starts with Run.
func (b *Bus) AddHandler(name, topic string, handler func(*message.Message) error) {
	b.Router.AddConsumerHandler(name, topic, b.pubsub, handler)
}

// Subscribe opens a raw message channel on a topic, for consumers that live
// outside the router.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", topic)
	}
	return msgs, nil
}

func (b *Bus) Run(ctx context.Context) error {
	var runErr error
	b.runOnce.Do(func() {
		go func() {
			<-ctx.Done()
			_ = b.Router.Close()
		}()
		runErr = b.Router.Run(ctx)
	})
	return runErr
}

// PublishPacket puts one decoded packet on the domain topic.
func (b *Bus) PublishPacket(pkt protocol.Packet) error {
	env, err := NewEnvelope(DomainTypePacket, pkt)
	if err != nil {
		return err
	}
	return b.publish(TopicPackets, env)
}

// PublishStreamEnded signals that the transport is done, with an optional
// error description.
func (b *Bus) PublishStreamEnded(errText string) error {
	env, err := NewEnvelope(DomainTypeStreamEnded, streamEnded{Error: errText})
	if err != nil {
		return err
	}
	return b.publish(TopicPackets, env)
}

// PublishSnapshot puts one rebuilt frame on the UI topic.
func (b *Bus) PublishSnapshot(snap *timeline.Snapshot) error {
	env, err := NewEnvelope(UITypeSnapshot, snap)
	if err != nil {
		return err
	}
	return b.publish(TopicUIMessages, env)
}

// PublishEventLog appends one line to the UI event log.
func (b *Bus) PublishEventLog(entry EventLogEntry) error {
	env, err := NewEnvelope(UITypeEventAppend, entry)
	if err != nil {
		return err
	}
	return b.publish(TopicUIMessages, env)
}

func (b *Bus) publish(topic string, env Envelope) error {
	bts, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal envelope")
	}
	if err := b.pubsub.Publish(topic, message.NewMessage(watermill.NewUUID(), bts)); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}
	return nil
}
