// Package siliconflow declares the SiliconFlow backend.
// API reference: https://docs.siliconflow.cn/api-reference
package siliconflow

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists commonly used SiliconFlow model IDs.
var Models = []string{
	"deepseek-ai/DeepSeek-V3",
	"Qwen/Qwen2.5-72B-Instruct",
	"Qwen/Qwen2.5-7B-Instruct",
	"BAAI/bge-m3",
	"BAAI/bge-large-zh-v1.5",
}

// Descriptor declares SiliconFlow's endpoints and capabilities.
var Descriptor = provider.Descriptor{
	Name:                  "siliconflow",
	Label:                 "SiliconFlow",
	DefaultBaseURL:        "https://api.siliconflow.cn/v1",
	DefaultChatModel:      "Qwen/Qwen2.5-7B-Instruct",
	DefaultEmbeddingModel: "BAAI/bge-m3",
	Capabilities:          provider.Capabilities{Chat: true, Embedding: true},
	RequiresAPIKey:        true,
}

// New builds a client for SiliconFlow.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
