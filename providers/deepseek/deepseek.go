// Package deepseek declares the DeepSeek backend.
// API reference: https://platform.deepseek.com/api-docs
package deepseek

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists the available DeepSeek model IDs.
var Models = []string{
	"deepseek-chat",
	"deepseek-reasoner",
}

// Descriptor declares DeepSeek's endpoints and quirks. The reasoner models
// reject histories with consecutive same-role turns, so message
// normalization runs before dispatch. Reasoning deltas arrive as
// reasoning_content frames.
var Descriptor = provider.Descriptor{
	Name:                  "deepseek",
	Label:                 "DeepSeek",
	DefaultBaseURL:        "https://api.deepseek.com/v1",
	DefaultChatModel:      "deepseek-chat",
	Capabilities:          provider.Capabilities{Chat: true},
	RequiresAPIKey:        true,
	StrictRoleAlternation: true,
}

// New builds a client for DeepSeek.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
