// Package openrouter declares the OpenRouter aggregation backend.
// API reference: https://openrouter.ai/docs
package openrouter

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists commonly routed OpenRouter model IDs.
var Models = []string{
	"openrouter/auto",
	"anthropic/claude-3.5-sonnet",
	"openai/gpt-4o",
	"meta-llama/llama-3.1-70b-instruct",
}

// Descriptor declares OpenRouter's endpoints and quirks. OpenRouter sends
// reasoning deltas under the nonstandard reasoning field, which the stream
// normalizer folds into the canonical reasoning content. The attribution
// headers are recommended by OpenRouter for API traffic.
var Descriptor = provider.Descriptor{
	Name:             "openrouter",
	Label:            "OpenRouter",
	DefaultBaseURL:   "https://openrouter.ai/api/v1",
	DefaultChatModel: "openrouter/auto",
	Capabilities:     provider.Capabilities{Chat: true},
	RequiresAPIKey:   true,
	ExtraHeaders: map[string]string{
		"HTTP-Referer": "https://github.com/llmcast/llmcast",
		"X-Title":      "llmcast",
	},
}

// New builds a client for OpenRouter.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
