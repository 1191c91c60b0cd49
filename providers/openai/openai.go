// Package openai declares the OpenAI backend.
// API reference: https://platform.openai.com/docs/api-reference
package openai

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists commonly used OpenAI model IDs.
var Models = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4.1",
	"gpt-4.1-mini",
	"o3-mini",
	"text-embedding-3-small",
	"text-embedding-3-large",
}

// Descriptor declares OpenAI's endpoints and capabilities. The
// text-embedding-3 family honors the dimensions override.
var Descriptor = provider.Descriptor{
	Name:                  "openai",
	Label:                 "OpenAI",
	DefaultBaseURL:        "https://api.openai.com/v1",
	DefaultChatModel:      "gpt-4o-mini",
	DefaultEmbeddingModel: "text-embedding-3-small",
	Capabilities:          provider.Capabilities{Chat: true, Embedding: true},
	RequiresAPIKey:        true,
	SupportsDimensions:    true,
}

// New builds a client for OpenAI.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
