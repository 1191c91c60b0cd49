package llmcast

import (
	"context"
	"errors"
	"io"

	"github.com/llmcast/llmcast/pkg/types"
)

// StreamCallbacks receives the output of a SendStream call. All callbacks
// run on a single goroutine, in order. For every stream exactly one of
// OnComplete or OnError fires, after the last OnChunk. Nil fields are
// skipped.
type StreamCallbacks struct {
	// OnChunk is invoked for every chunk, including the terminal Done one.
	OnChunk func(chunk types.StreamChunk)
	// OnComplete fires once when the stream ends cleanly. Cancellation
	// counts as a clean end.
	OnComplete func()
	// OnError fires once when the stream fails before completing.
	OnError func(err error)
}

func (cb StreamCallbacks) chunk(c types.StreamChunk) {
	if cb.OnChunk != nil {
		cb.OnChunk(c)
	}
}

func (cb StreamCallbacks) complete() {
	if cb.OnComplete != nil {
		cb.OnComplete()
	}
}

func (cb StreamCallbacks) fail(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// CancelHandle controls a stream started with SendStream.
type CancelHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the stream. The stream still winds down normally: decoded
// chunks drain, the terminal Done chunk is delivered, and OnComplete fires.
// Cancel never routes to OnError.
func (h *CancelHandle) Cancel() {
	h.cancel()
}

// Done is closed after the final callback has returned.
func (h *CancelHandle) Done() <-chan struct{} {
	return h.done
}

// SendStream opens a chat stream and dispatches it to cb on a dedicated
// goroutine. It returns immediately; configuration and capability problems
// are reported through cb.OnError rather than a return value, so callers
// have a single error path to handle.
func (c *Client) SendStream(ctx context.Context, msgs []types.Message, cb StreamCallbacks, opts ...RequestOption) *CancelHandle {
	ctx, cancel := context.WithCancel(ctx)
	handle := &CancelHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(handle.done)
		defer cancel()

		reader, err := c.ChatStream(ctx, msgs, opts...)
		if err != nil {
			// A cancel that lands before the stream opens is still a
			// clean end, not a failure.
			if isCancellation(err) || ctx.Err() != nil {
				cb.complete()
			} else {
				cb.fail(err)
			}
			return
		}
		defer reader.Close()

		for {
			chunk, err := reader.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					cb.complete()
				} else {
					cb.fail(err)
				}
				return
			}
			cb.chunk(chunk)
		}
	}()

	return handle
}
