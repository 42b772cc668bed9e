package capture

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/go-go-golems/agentline/pkg/protocol"
)

// recordLine mirrors the replay loader's envelope: a timestamp plus the raw
// packet, one JSON object per line.
type recordLine struct {
	At     string          `json:"at"`
	Packet json.RawMessage `json:"packet"`
}

// Writer appends packets to a capture file as they arrive. Not safe for
// concurrent use; the stream reader delivers packets on one goroutine.
type Writer struct {
	f         *os.File
	w         *bufio.Writer
	count     int
	completed bool
}

func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "create capture file")
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one packet with the current timestamp.
func (w *Writer) Write(pkt protocol.Packet) error {
	raw, err := json.Marshal(pkt)
	if err != nil {
		return errors.Wrap(err, "marshal capture packet")
	}
	line, err := json.Marshal(recordLine{
		At:     time.Now().UTC().Format(time.RFC3339Nano),
		Packet: raw,
	})
	if err != nil {
		return errors.Wrap(err, "marshal capture line")
	}
	if _, err := w.w.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "write capture line")
	}
	w.count++
	if pkt.Obj != nil && pkt.Obj.Kind() == protocol.KindStop {
		w.completed = true
	}
	return nil
}

// Count is the number of packets written so far.
func (w *Writer) Count() int { return w.count }

// Completed reports whether the stream's stop packet was recorded.
func (w *Writer) Completed() bool { return w.completed }

func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()
		return errors.Wrap(err, "flush capture")
	}
	return errors.Wrap(w.f.Close(), "close capture")
}
