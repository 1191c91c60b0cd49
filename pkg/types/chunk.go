package types

// Usage contains token accounting for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk is the canonical unit of streamed output, independent of the
// provider wire format.
//
// For any single request exactly one chunk has Done set, it carries the
// accumulated model/finish-reason/usage metadata, and it is the last chunk
// emitted. ReasoningDone is set exactly once per stream: on the first
// content-only chunk after reasoning deltas, or on the terminal chunk when
// the stream ended while reasoning was still active.
type StreamChunk struct {
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
	Done             bool   `json:"done,omitempty"`
	ReasoningDone    bool   `json:"reasoning_done,omitempty"`
	Model            string `json:"model,omitempty"`
	FinishReason     string `json:"finish_reason,omitempty"`
	Usage            *Usage `json:"usage,omitempty"`
}
