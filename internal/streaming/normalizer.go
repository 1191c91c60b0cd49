package streaming

import (
	"github.com/llmcast/llmcast/pkg/types"
)

// Frame is the vendor-agnostic vocabulary the normalizer consumes. The
// client maps each decoded payload into "has content / has reasoning / has
// finish marker" plus metadata; vendor wire shapes never reach this layer.
type Frame struct {
	Content      string
	Reasoning    string
	Model        string
	FinishReason string
	Usage        *types.Usage
}

// IsEmpty reports whether the frame carries neither text nor metadata
// (role-only deltas, keep-alives).
func (f Frame) IsEmpty() bool {
	return f.Content == "" && f.Reasoning == "" &&
		f.Model == "" && f.FinishReason == "" && f.Usage == nil
}

// reasoningState tracks the reasoning-to-content transition within one
// request. ReasoningComplete is terminal: later reasoning deltas still
// surface their text but never re-arm the transition signal.
type reasoningState int

const (
	stateNoReasoning reasoningState = iota
	stateReasoningActive
	stateReasoningComplete
)

// Normalizer is the per-request state machine that classifies frames into
// canonical chunks. One Normalizer serves exactly one stream.
//
// Text-bearing frames emit a chunk immediately. Metadata (model, finish
// reason, usage) accumulates silently, including usage-only trailer frames,
// and is delivered on the terminal chunk. Terminate emits that single
// Done chunk; it fires once, whether termination came from the [DONE]
// sentinel, transport EOF, or cancellation. Frames observed after
// termination are dropped.
type Normalizer struct {
	state        reasoningState
	model        string
	finishReason string
	usage        *types.Usage
	terminated   bool
}

// NewNormalizer returns a normalizer in its initial state.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Observe consumes one frame. The returned chunk is valid only when ok is
// true; terminal chunks never come from Observe.
func (n *Normalizer) Observe(f Frame) (types.StreamChunk, bool) {
	if n.terminated {
		return types.StreamChunk{}, false
	}

	if f.Model != "" {
		n.model = f.Model
	}
	if f.FinishReason != "" {
		n.finishReason = f.FinishReason
	}
	if f.Usage != nil {
		n.usage = f.Usage
	}

	hasContent := f.Content != ""
	hasReasoning := f.Reasoning != ""
	if !hasContent && !hasReasoning {
		return types.StreamChunk{}, false
	}

	chunk := types.StreamChunk{
		Content:          f.Content,
		ReasoningContent: f.Reasoning,
	}
	switch {
	case hasReasoning:
		if n.state == stateNoReasoning {
			n.state = stateReasoningActive
		}
	case n.state == stateReasoningActive:
		// First content-only frame after reasoning: the one place
		// ReasoningDone is raised mid-stream.
		n.state = stateReasoningComplete
		chunk.ReasoningDone = true
	}
	return chunk, true
}

// Terminate emits the terminal chunk: Done set, empty content, accumulated
// metadata. ok is false when the normalizer already terminated. A stream
// that ended while reasoning was still active carries ReasoningDone here so
// the boundary signal is always delivered exactly once.
func (n *Normalizer) Terminate() (types.StreamChunk, bool) {
	if n.terminated {
		return types.StreamChunk{}, false
	}
	n.terminated = true

	chunk := types.StreamChunk{
		Done:         true,
		Model:        n.model,
		FinishReason: n.finishReason,
		Usage:        n.usage,
	}
	if n.state == stateReasoningActive {
		n.state = stateReasoningComplete
		chunk.ReasoningDone = true
	}
	return chunk, true
}

// Terminated reports whether the terminal chunk has been emitted.
func (n *Normalizer) Terminated() bool {
	return n.terminated
}
