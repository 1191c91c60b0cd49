// Package moonshot declares the Moonshot AI (Kimi) backend.
// API reference: https://platform.moonshot.cn/docs/api-reference
package moonshot

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists the available Moonshot model IDs.
var Models = []string{
	"moonshot-v1-8k",
	"moonshot-v1-32k",
	"moonshot-v1-128k",
	"kimi-latest",
}

// Descriptor declares Moonshot's endpoints and capabilities.
var Descriptor = provider.Descriptor{
	Name:             "moonshot",
	Label:            "Moonshot AI",
	DefaultBaseURL:   "https://api.moonshot.cn/v1",
	DefaultChatModel: "moonshot-v1-8k",
	Capabilities:     provider.Capabilities{Chat: true},
	RequiresAPIKey:   true,
}

// New builds a client for Moonshot AI.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
