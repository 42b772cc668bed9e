package tui

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-go-golems/agentline/pkg/bus"
	"github.com/go-go-golems/agentline/pkg/pace"
)

// NewHeaderAnimator builds the typewriter that retypes the header line on
// every status change, delivering frames to the program as messages.
func NewHeaderAnimator(p *tea.Program, delay time.Duration) *pace.Typewriter {
	tw := pace.NewTypewriter(pace.WallClock(), delay)
	tw.OnTick = func(s string) { p.Send(HeaderTextMsg{Text: s}) }
	tw.OnSettle = func(s string) { p.Send(HeaderTextMsg{Text: s}) }
	return tw
}

// RegisterUIForwarder bridges the UI topic into the bubbletea program. header
// may be nil when the header is not animated.
func RegisterUIForwarder(b *bus.Bus, p *tea.Program, header *pace.Typewriter) {
	b.AddHandler("agentline-ui-forward", bus.TopicUIMessages, func(msg *message.Message) error {
		defer msg.Ack()

		env, err := bus.DecodeEnvelope(msg.Payload)
		if err != nil {
			return err
		}

		switch env.Type {
		case bus.UITypeSnapshot:
			snap, err := env.Snapshot()
			if err != nil {
				return err
			}
			p.Send(SnapshotMsg{Snapshot: snap})
			if header != nil {
				header.Set(snap.HeaderText)
			}
		case bus.UITypeEventAppend:
			entry, err := env.EventLog()
			if err != nil {
				return err
			}
			p.Send(EventLogAppendMsg{Entry: entry})
		}
		return nil
	})
}
