// Package groq declares the Groq backend.
// API reference: https://console.groq.com/docs/api-reference
package groq

import (
	"github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/pkg/provider"
)

// Models lists commonly used Groq model IDs.
var Models = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"mixtral-8x7b-32768",
}

// Descriptor declares Groq's endpoints and capabilities.
var Descriptor = provider.Descriptor{
	Name:             "groq",
	Label:            "Groq",
	DefaultBaseURL:   "https://api.groq.com/openai/v1",
	DefaultChatModel: "llama-3.3-70b-versatile",
	Capabilities:     provider.Capabilities{Chat: true},
	RequiresAPIKey:   true,
}

// New builds a client for Groq.
func New(opts ...llmcast.Option) (*llmcast.Client, error) {
	return llmcast.New(Descriptor, opts...)
}
