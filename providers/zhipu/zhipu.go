// Package zhipu declares the Zhipu AI (GLM) backend.
// API reference: https://open.bigmodel.cn/dev/api
package zhipu

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists the available Zhipu model IDs.
var Models = []string{
	"glm-4-plus",
	"glm-4-flash",
	"glm-4-long",
	"embedding-2",
	"embedding-3",
}

// Descriptor declares Zhipu's endpoints and quirks. The GLM chat API
// rejects consecutive same-role messages, and embedding-3 honors the
// dimensions override.
var Descriptor = provider.Descriptor{
	Name:                  "zhipu",
	Label:                 "Zhipu AI",
	DefaultBaseURL:        "https://open.bigmodel.cn/api/paas/v4",
	DefaultChatModel:      "glm-4-flash",
	DefaultEmbeddingModel: "embedding-3",
	Capabilities:          provider.Capabilities{Chat: true, Embedding: true},
	RequiresAPIKey:        true,
	SupportsDimensions:    true,
	StrictRoleAlternation: true,
}

// New builds a client for Zhipu AI.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
