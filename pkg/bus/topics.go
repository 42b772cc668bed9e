package bus

const (
	TopicPackets    = "agentline.packets"
	TopicUIMessages = "agentline.ui.msgs"
)

const (
	DomainTypePacket      = "stream.packet"
	DomainTypeStreamEnded = "stream.ended"
)

const (
	UITypeSnapshot    = "ui.timeline.snapshot"
	UITypeEventAppend = "ui.event.append"
)
