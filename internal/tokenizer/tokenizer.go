// Package tokenizer provides token counting helpers for LLM requests.
package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/llmcast/llmcast/pkg/types"
)

var (
	encodingCache sync.Map
	defaultOnce   sync.Once
	defaultEnc    *tiktoken.Tiktoken
)

// CountTextTokens returns the token count for the given text using tiktoken.
// If no encoding is available, it falls back to a conservative len/4 estimate.
func CountTextTokens(model, text string) int {
	if text == "" {
		return 0
	}
	enc := getEncoding(model)
	if enc == nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateMessageTokens estimates prompt tokens for a chat conversation.
// It counts role and content per message, adds a small per-message
// formatting overhead, and a reply primer.
func EstimateMessageTokens(model string, messages []types.Message) int {
	if len(messages) == 0 {
		return 0
	}

	total := 0
	for _, msg := range messages {
		total += CountTextTokens(model, string(msg.Role))
		total += CountTextTokens(model, msg.Content)
		// Small overhead per message for role/formatting tokens.
		total += 2
	}

	// Small reply primer overhead used by common chat formats.
	total += 3
	return total
}

// EstimateEmbeddingTokens estimates tokens for an embedding request input.
func EstimateEmbeddingTokens(model string, req *types.EmbeddingRequest) int {
	if req == nil || req.Input == nil {
		return 0
	}

	total := 0
	if req.Input.Text != nil {
		total += CountTextTokens(model, *req.Input.Text)
	}
	for _, text := range req.Input.Texts {
		total += CountTextTokens(model, text)
	}
	return total
}

func getEncoding(model string) *tiktoken.Tiktoken {
	base := normalizeModelName(model)
	if cached, ok := encodingCache.Load(base); ok {
		if enc, ok := cached.(*tiktoken.Tiktoken); ok {
			return enc
		}
		return getDefaultEncoding()
	}

	enc, err := tiktoken.EncodingForModel(base)
	if err != nil {
		enc = getDefaultEncoding()
	}
	if enc != nil {
		encodingCache.Store(base, enc)
	}
	return enc
}

func getDefaultEncoding() *tiktoken.Tiktoken {
	defaultOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			defaultEnc = enc
		}
	})
	return defaultEnc
}

// normalizeModelName strips router-style owner prefixes such as
// "deepseek/deepseek-chat" down to the bare model name.
func normalizeModelName(model string) string {
	if model == "" {
		return model
	}
	if idx := strings.LastIndex(model, "/"); idx >= 0 && idx+1 < len(model) {
		return model[idx+1:]
	}
	return model
}
