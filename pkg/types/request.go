// Package types defines the core data structures for chat streaming and
// embedding requests. Wire types follow OpenAI's API shapes; StreamChunk is
// the provider-independent canonical output unit.
package types

// ChatRequest is the OpenAI-compatible chat completion request body.
// Chat is streaming-only in this client, so Stream is always set.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}
