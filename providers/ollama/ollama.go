// Package ollama declares the Ollama local backend.
// API reference: https://github.com/ollama/ollama/blob/main/docs/openai.md
package ollama

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists model IDs commonly pulled into a local Ollama instance.
var Models = []string{
	"llama3.2",
	"qwen2.5",
	"mistral",
	"nomic-embed-text",
	"mxbai-embed-large",
}

// Descriptor declares the local Ollama endpoint. Ollama serves an
// OpenAI-compatible API without authentication, so no key is required.
var Descriptor = provider.Descriptor{
	Name:                  "ollama",
	Label:                 "Ollama",
	DefaultBaseURL:        "http://localhost:11434/v1",
	DefaultChatModel:      "llama3.2",
	DefaultEmbeddingModel: "nomic-embed-text",
	Capabilities:          provider.Capabilities{Chat: true, Embedding: true},
	RequiresAPIKey:        false,
}

// New builds a client for a local Ollama instance.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
