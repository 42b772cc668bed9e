// Package stream is the transport boundary: it turns an incrementally
// delivered body of newline-delimited JSON packets into ordered Packet
// values. Framing, reconnection and backpressure stay on this side of the
// line; the timeline only ever sees "packets arrive in display order, never
// retracted". Transport failures are surfaced as a terminal error packet
// followed by a stop, so the engine handles them like any other terminal
// signal.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/agentline/pkg/protocol"
)

// Handler receives each decoded packet in arrival order.
type Handler func(protocol.Packet)

const maxLineBytes = 4 * 1024 * 1024

// Read decodes newline-delimited packets from r until EOF or ctx
// cancellation. A malformed line or read failure emits a synthetic error
// packet plus a stop so the consumer's timeline terminates cleanly, then
// returns the underlying error.
func Read(ctx context.Context, r io.Reader, h Handler) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var pkt protocol.Packet
		if err := json.Unmarshal([]byte(line), &pkt); err != nil {
			log.Warn().Err(err).Msg("malformed packet line")
			emitTransportError(h, protocol.ErrStreamInvalidJSON)
			return errors.Wrapf(err, "%s: decode packet line", protocol.ErrStreamInvalidJSON)
		}
		h(pkt)
	}
	if err := sc.Err(); err != nil {
		emitTransportError(h, protocol.ErrStreamUnexpectedEOF)
		return errors.Wrapf(err, "%s: read stream", protocol.ErrStreamUnexpectedEOF)
	}
	return nil
}

// emitTransportError delivers the synthesized terminal pair. The error
// packet carries no placement, so the timeline parks it in the synthetic
// trailing turn rather than corrupting a real step.
func emitTransportError(h Handler, code string) {
	h(protocol.Packet{Obj: protocol.StreamError{Message: code}})
	h(protocol.Packet{Obj: protocol.OverallStop{StopReason: "transport_error"}})
}

// Tail attaches to an HTTP endpoint that streams packets as an incremental
// chunked body and feeds every decoded packet to h until the connection
// ends or ctx is cancelled.
func Tail(ctx context.Context, url string, h Handler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build stream request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		emitTransportError(h, protocol.ErrStreamUnexpectedEOF)
		return errors.Wrap(err, "connect stream")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		emitTransportError(h, protocol.ErrStreamBadStatus)
		return errors.Errorf("%s: stream endpoint returned %d", protocol.ErrStreamBadStatus, resp.StatusCode)
	}

	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		defer func() { _ = resp.Body.Close() }()
		return Read(ctx, resp.Body, h)
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			// Unblocks the scanner on cancellation.
			_ = resp.Body.Close()
		case <-done:
		}
		return nil
	})
	return g.Wait()
}
