package types

import (
	"fmt"

	"github.com/goccy/go-json"
)

// EmbeddingInput is the input of an embedding request: a single string or
// an array of strings. Custom JSON marshaling infers which form is set so
// the wire carries the plain OpenAI shape.
type EmbeddingInput struct {
	// Text is a single string input.
	Text *string `json:"-"`
	// Texts is an array of string inputs.
	Texts []string `json:"-"`
}

// NewEmbeddingInputFromString creates an EmbeddingInput from a single string.
func NewEmbeddingInputFromString(s string) *EmbeddingInput {
	return &EmbeddingInput{Text: &s}
}

// NewEmbeddingInputFromStrings creates an EmbeddingInput from a string slice.
func NewEmbeddingInputFromStrings(ss []string) *EmbeddingInput {
	return &EmbeddingInput{Texts: ss}
}

// UnmarshalJSON tries string first, then []string.
func (e *EmbeddingInput) UnmarshalJSON(data []byte) error {
	e.Text = nil
	e.Texts = nil

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Text = &s
		return nil
	}

	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		e.Texts = ss
		return nil
	}

	return fmt.Errorf("input must be a string or an array of strings")
}

// MarshalJSON enforces that exactly one form is set.
func (e *EmbeddingInput) MarshalJSON() ([]byte, error) {
	if e.Text != nil && e.Texts != nil {
		return nil, fmt.Errorf("embedding input must set exactly one of Text or Texts")
	}
	if e.Text != nil {
		return json.Marshal(*e.Text)
	}
	if e.Texts != nil {
		return json.Marshal(e.Texts)
	}
	return nil, fmt.Errorf("embedding input is empty")
}

// Count returns the number of input items.
func (e *EmbeddingInput) Count() int {
	if e.Text != nil {
		return 1
	}
	return len(e.Texts)
}

// Validate checks that the input is non-empty.
func (e *EmbeddingInput) Validate() error {
	if e.Text != nil {
		if *e.Text == "" {
			return fmt.Errorf("input string cannot be empty")
		}
		return nil
	}
	if e.Texts != nil {
		if len(e.Texts) == 0 {
			return fmt.Errorf("input array cannot be empty")
		}
		for i, s := range e.Texts {
			if s == "" {
				return fmt.Errorf("input array contains empty string at index %d", i)
			}
		}
		return nil
	}
	return fmt.Errorf("input cannot be nil")
}

// EmbeddingRequest is the OpenAI-compatible embedding request body.
// Dimensions is attached only for providers that declare support for it.
type EmbeddingRequest struct {
	Model      string          `json:"model"`
	Input      *EmbeddingInput `json:"input"`
	Dimensions int             `json:"dimensions,omitempty"`
}

// EmbeddingResponse is the OpenAI-compatible embedding response body.
type EmbeddingResponse struct {
	Object string            `json:"object"`
	Data   []EmbeddingObject `json:"data"`
	Model  string            `json:"model"`
	Usage  Usage             `json:"usage"`
}

// EmbeddingObject is a single embedding vector in the response.
type EmbeddingObject struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// EmbeddingResult is the canonical per-input embedding output.
//
// Dimensions always equals len(Vector): when a provider ignores a requested
// dimensions override, the result reports what was actually returned. When
// the backend only reports aggregate usage for a batch, TokensUsed is the
// aggregate divided across the batch items.
type EmbeddingResult struct {
	Vector     []float64 `json:"vector"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	TokensUsed int       `json:"tokens_used"`
}
