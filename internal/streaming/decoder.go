// Package streaming implements the incremental decode pipeline for SSE chat
// responses: a push decoder that turns arbitrary-sized reads into discrete
// JSON payloads, and a normalizer that turns vendor-agnostic frames into
// canonical stream chunks.
package streaming

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	// SSEDataPrefix marks SSE data lines. The space after the colon is
	// optional on the wire.
	SSEDataPrefix = "data:"

	// SSEDone is the payload that terminates the logical stream.
	SSEDone = "[DONE]"
)

var dataPrefix = []byte(SSEDataPrefix)

// Decoder converts an unbounded sequence of byte reads into discrete JSON
// payloads, one per logical "data:" line. Reads may split lines at any
// byte: the partial trailing line is retained across Feed calls. The
// decoder knows nothing about chat fields; payload interpretation is the
// caller's job.
//
// A payload that is not valid JSON is logged, counted, and skipped; the
// stream keeps decoding. The [DONE] sentinel closes the decoder, and input
// after it is discarded.
type Decoder struct {
	buf       []byte
	closed    bool
	parseErrs int

	logger   *slog.Logger
	warnRate *rate.Limiter
}

// NewDecoder returns a decoder that logs skipped payloads to logger.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		logger: logger,
		// A hostile or broken backend can emit garbage on every line;
		// cap the warning volume instead of the decode throughput.
		warnRate: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Feed appends p to the internal buffer and returns the JSON payloads
// completed by this read, in order. Returned slices are detached copies and
// stay valid across later feeds.
func (d *Decoder) Feed(p []byte) [][]byte {
	if d.closed || len(p) == 0 {
		return nil
	}
	d.buf = append(d.buf, p...)

	var payloads [][]byte
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := d.buf[:i]
		d.buf = d.buf[i+1:]

		if payload, ok := d.processLine(line); ok {
			payloads = append(payloads, payload)
		}
		if d.closed {
			d.buf = nil
			break
		}
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return payloads
}

// Flush processes a trailing line that was never newline-terminated. Call
// it once when the transport reaches EOF.
func (d *Decoder) Flush() [][]byte {
	if d.closed || len(d.buf) == 0 {
		return nil
	}
	line := d.buf
	d.buf = nil
	if payload, ok := d.processLine(line); ok {
		return [][]byte{payload}
	}
	return nil
}

// Closed reports whether the [DONE] sentinel has been seen.
func (d *Decoder) Closed() bool {
	return d.closed
}

// ParseFailures returns how many malformed payloads were skipped.
func (d *Decoder) ParseFailures() int {
	return d.parseErrs
}

func (d *Decoder) processLine(line []byte) ([]byte, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false
	}
	// Comments (": keep-alive") and event/id fields are not data lines.
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if bytes.Equal(payload, []byte(SSEDone)) {
		d.closed = true
		return nil, false
	}
	if !json.Valid(payload) {
		d.parseErrs++
		if d.warnRate.Allow() {
			d.logger.Warn("skipping malformed stream payload",
				slog.Int("length", len(payload)),
				slog.Int("total_skipped", d.parseErrs))
		}
		return nil, false
	}
	// Detach from the read buffer: later feeds append into the same
	// backing array.
	return append([]byte(nil), payload...), true
}
