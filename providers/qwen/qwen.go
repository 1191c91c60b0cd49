// Package qwen declares the Alibaba Cloud Qwen (DashScope) backend via its
// OpenAI-compatible mode.
// API reference: https://help.aliyun.com/zh/model-studio/developer-reference
package qwen

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists commonly used Qwen model IDs.
var Models = []string{
	"qwen-max",
	"qwen-plus",
	"qwen-turbo",
	"text-embedding-v3",
}

// Descriptor declares the DashScope compatible-mode endpoints.
// text-embedding-v3 honors the dimensions override.
var Descriptor = provider.Descriptor{
	Name:                  "qwen",
	Label:                 "Qwen",
	DefaultBaseURL:        "https://dashscope.aliyuncs.com/compatible-mode/v1",
	DefaultChatModel:      "qwen-plus",
	DefaultEmbeddingModel: "text-embedding-v3",
	Capabilities:          provider.Capabilities{Chat: true, Embedding: true},
	RequiresAPIKey:        true,
	SupportsDimensions:    true,
}

// New builds a client for Qwen.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
