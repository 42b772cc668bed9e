package stream

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/agentline/pkg/protocol"
)

// TimedPacket is one replay-log entry. At is zero when the capture carried
// no timestamp; replayers then fall back to a fixed inter-packet delay.
type TimedPacket struct {
	At     time.Time
	Packet protocol.Packet
}

// capture lines are either a bare packet or an envelope with a timestamp.
// Timestamps in the wild come in several formats, so parsing is
// best-effort via dateparse.
type captureLine struct {
	At     string          `json:"at,omitempty"`
	Packet json.RawMessage `json:"packet,omitempty"`
}

// LoadFile reads a captured packet log. Lines that fail to decode are
// skipped with a warning; a capture is a debugging artifact and one bad
// line should not hide the rest of the stream.
func LoadFile(path string) ([]TimedPacket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open capture")
	}
	defer func() { _ = f.Close() }()

	var out []TimedPacket
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var env captureLine
		raw := json.RawMessage(line)
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Packet) > 0 {
			raw = env.Packet
		}

		var pkt protocol.Packet
		if err := json.Unmarshal(raw, &pkt); err != nil {
			log.Warn().Int("line", lineNo).Err(err).Msg("skipping bad capture line")
			continue
		}

		tp := TimedPacket{Packet: pkt}
		if env.At != "" {
			if t, err := dateparse.ParseAny(env.At); err == nil {
				tp.At = t
			} else {
				log.Debug().Int("line", lineNo).Str("at", env.At).Msg("unparseable capture timestamp")
			}
		}
		out = append(out, tp)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read capture")
	}
	return out, nil
}

// Packets strips the timestamps.
func Packets(in []TimedPacket) []protocol.Packet {
	out := make([]protocol.Packet, 0, len(in))
	for _, tp := range in {
		out = append(out, tp.Packet)
	}
	return out
}
