package llmcast

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/llmcast/llmcast/internal/metrics"
	"github.com/llmcast/llmcast/internal/streaming"
	llmerrors "github.com/llmcast/llmcast/pkg/errors"
	"github.com/llmcast/llmcast/pkg/types"
)

// StreamReader pulls normalized chunks off an open chat stream. Recv
// returns content chunks in arrival order, then exactly one chunk with
// Done set, then io.EOF. Context cancellation mid-stream drains into the
// same terminal shape instead of surfacing an error; only transport and
// HTTP-level failures make Recv return a non-EOF error.
//
// A StreamReader is not safe for concurrent Recv calls. To interrupt a
// blocked Recv, cancel the context passed to ChatStream; Close from
// another goroutine also unblocks it.
type StreamReader struct {
	ctx    context.Context
	client *Client
	span   trace.Span
	model  string

	raw     io.ReadCloser
	payload io.ReadCloser
	dec     *streaming.Decoder
	norm    *streaming.Normalizer

	buf     []byte
	pending []types.StreamChunk
	err     error

	start         time.Time
	ttft          time.Duration
	parseFailures int
	finished      bool
	closed        atomic.Bool
}

func newStreamReader(ctx context.Context, c *Client, span trace.Span, raw, payload io.ReadCloser, model string, start time.Time) *StreamReader {
	return &StreamReader{
		ctx:     ctx,
		client:  c,
		span:    span,
		model:   model,
		raw:     raw,
		payload: payload,
		dec:     streaming.NewDecoder(c.logger),
		norm:    streaming.NewNormalizer(),
		buf:     make([]byte, 4096),
		start:   start,
	}
}

// Recv returns the next chunk. After the terminal Done chunk it returns
// io.EOF forever.
func (r *StreamReader) Recv() (types.StreamChunk, error) {
	for {
		if len(r.pending) > 0 {
			chunk := r.pending[0]
			r.pending = r.pending[1:]
			return chunk, nil
		}
		if r.err != nil {
			return types.StreamChunk{}, r.err
		}
		if r.ctx.Err() != nil {
			r.terminate()
			continue
		}

		n, err := r.payload.Read(r.buf)
		if n > 0 {
			for _, line := range r.dec.Feed(r.buf[:n]) {
				r.enqueue(line)
			}
			r.syncParseFailures()
			if r.dec.Closed() {
				r.terminate()
				continue
			}
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				for _, line := range r.dec.Flush() {
					r.enqueue(line)
				}
				r.syncParseFailures()
				r.terminate()
			case r.ctx.Err() != nil || isCancellation(err) || r.closed.Load():
				r.terminate()
			default:
				r.fail(llmerrors.NewNetworkError(r.client.desc.Name, "stream read failed", err))
			}
		}
	}
}

// TTFT returns the time from request start to the first emitted chunk, or
// zero if nothing was emitted yet.
func (r *StreamReader) TTFT() time.Duration {
	return r.ttft
}

// ParseFailures returns the number of malformed frames skipped so far.
func (r *StreamReader) ParseFailures() int {
	return r.dec.ParseFailures()
}

// Close abandons the stream and releases the connection. It is idempotent;
// Recv returns io.EOF afterwards.
func (r *StreamReader) Close() error {
	r.closeBody()
	if r.err == nil {
		r.err = io.EOF
	}
	r.pending = nil
	r.finish(nil)
	return nil
}

// enqueue decodes one SSE payload into a wire frame, runs it through the
// normalizer, and queues the resulting chunk if the frame was text-bearing.
func (r *StreamReader) enqueue(line []byte) {
	var wire types.ChatCompletionChunk
	if err := json.Unmarshal(line, &wire); err != nil {
		// The decoder checked JSON syntax; shape mismatches land here.
		r.client.metrics.RecordParseFailure(r.client.desc.Name)
		return
	}

	chunk, ok := r.norm.Observe(frameFromWire(wire))
	if !ok {
		return
	}

	if r.ttft == 0 {
		r.ttft = time.Since(r.start)
		r.client.metrics.RecordFirstToken(r.client.desc.Name, r.ttft)
	}
	kind := metrics.ChunkContent
	if chunk.Content == "" && chunk.ReasoningContent != "" {
		kind = metrics.ChunkReasoning
	}
	r.client.metrics.RecordChunk(r.client.desc.Name, kind)
	r.pending = append(r.pending, chunk)
}

// terminate ends the stream on the clean path: emit the terminal Done
// chunk exactly once, then make Recv report io.EOF.
func (r *StreamReader) terminate() {
	if chunk, ok := r.norm.Terminate(); ok {
		if r.ttft == 0 {
			r.ttft = time.Since(r.start)
		}
		r.client.metrics.RecordChunk(r.client.desc.Name, metrics.ChunkDone)
		r.pending = append(r.pending, chunk)
	}
	r.err = io.EOF
	r.finish(nil)
}

func (r *StreamReader) fail(err error) {
	r.err = err
	r.finish(err)
}

// finish runs once per stream: it settles metrics and tracing and releases
// the connection.
func (r *StreamReader) finish(err error) {
	if r.finished {
		return
	}
	r.finished = true

	r.client.metrics.StreamEnded(r.client.desc.Name)
	r.client.metrics.RecordRequest(r.client.desc.Name, metrics.OpChatStream,
		metrics.StatusLabel(err), time.Since(r.start))

	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
	}
	r.span.End()
	r.closeBody()

	r.client.logger.Debug("stream finished",
		"model", r.model,
		"duration", time.Since(r.start),
		"ttft", r.ttft,
		"parse_failures", r.dec.ParseFailures(),
		"error", err)
}

func (r *StreamReader) closeBody() {
	if r.closed.Swap(true) {
		return
	}
	r.payload.Close()
	r.raw.Close()
}

// syncParseFailures forwards decoder-level skips to the metrics recorder.
func (r *StreamReader) syncParseFailures() {
	for n := r.dec.ParseFailures(); r.parseFailures < n; r.parseFailures++ {
		r.client.metrics.RecordParseFailure(r.client.desc.Name)
	}
}

func frameFromWire(wire types.ChatCompletionChunk) streaming.Frame {
	frame := streaming.Frame{Model: wire.Model, Usage: wire.Usage}
	if len(wire.Choices) > 0 {
		choice := wire.Choices[0]
		frame.Content = choice.Delta.Content
		frame.Reasoning = choice.Delta.ReasoningText()
		if choice.FinishReason != nil {
			frame.FinishReason = *choice.FinishReason
		}
	}
	return frame
}

// isCancellation reports whether err stems from the caller's context being
// canceled or timing out, as opposed to a transport failure.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
