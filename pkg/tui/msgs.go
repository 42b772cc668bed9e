// Package tui renders timeline views in the terminal with bubbletea. It is
// one consumer of the engine's snapshots; everything it shows is derived
// from view projections, never from packet side effects.
package tui

import (
	"github.com/go-go-golems/agentline/pkg/bus"
	"github.com/go-go-golems/agentline/pkg/timeline"
)

type SnapshotMsg struct {
	Snapshot *timeline.Snapshot
}

type EventLogAppendMsg struct {
	Entry bus.EventLogEntry
}

// HeaderTextMsg carries one frame of the animated header text.
type HeaderTextMsg struct {
	Text string
}
