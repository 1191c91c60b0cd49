// Package provider defines the static descriptor describing a backend and
// the mutable client configuration. Vendor variation is descriptor data,
// not subtypes: one client parametrized by a Descriptor serves every
// OpenAI-compatible backend.
package provider

import (
	"fmt"

	llmerrors "github.com/llmcast/llmcast/pkg/errors"
)

// Capability is an operation a provider can declare support for.
type Capability string

const (
	CapabilityChat      Capability = "chat"
	CapabilityEmbedding Capability = "embedding"
)

// Capabilities is the set of operations a provider declares.
type Capabilities struct {
	Chat      bool `json:"chat" yaml:"chat"`
	Embedding bool `json:"embedding" yaml:"embedding"`
}

// Has reports whether the set contains op.
func (c Capabilities) Has(op Capability) bool {
	switch op {
	case CapabilityChat:
		return c.Chat
	case CapabilityEmbedding:
		return c.Embedding
	}
	return false
}

// Default endpoint paths, relative to the base URL.
const (
	DefaultChatEndpoint      = "/chat/completions"
	DefaultEmbeddingEndpoint = "/embeddings"
	DefaultModelsEndpoint    = "/models"
)

// Descriptor is the static, data-only declaration of a backend. Descriptors
// are immutable after construction and owned by the registry.
type Descriptor struct {
	// Name is the unique registry key, e.g. "deepseek".
	Name string
	// Label is the human-readable display name.
	Label string

	DefaultBaseURL        string
	DefaultChatModel      string
	DefaultEmbeddingModel string

	Capabilities Capabilities

	// Endpoint paths; empty fields fall back to the defaults above.
	ChatEndpoint      string
	EmbeddingEndpoint string
	ModelsEndpoint    string

	// RequiresAPIKey is false for local backends such as Ollama.
	RequiresAPIKey bool

	// SupportsDimensions marks providers that honor the embedding
	// dimensions override. For every other provider the override is
	// dropped before the request body is built.
	SupportsDimensions bool

	// StrictRoleAlternation marks providers that reject histories with
	// consecutive same-role messages. The client normalizes messages
	// before dispatching to such backends.
	StrictRoleAlternation bool

	// ExtraHeaders are attached to every request to this provider.
	ExtraHeaders map[string]string
}

// Supports reports whether the descriptor declares op.
func (d Descriptor) Supports(op Capability) bool {
	return d.Capabilities.Has(op)
}

// Require is the capability gate. It returns a typed capability error when
// op is not declared and must be called before any network activity.
func (d Descriptor) Require(op Capability) error {
	if d.Capabilities.Has(op) {
		return nil
	}
	return llmerrors.NewCapabilityError(d.Name, string(op))
}

// Normalized returns a copy with endpoint defaults filled in.
func (d Descriptor) Normalized() Descriptor {
	if d.ChatEndpoint == "" {
		d.ChatEndpoint = DefaultChatEndpoint
	}
	if d.EmbeddingEndpoint == "" {
		d.EmbeddingEndpoint = DefaultEmbeddingEndpoint
	}
	if d.ModelsEndpoint == "" {
		d.ModelsEndpoint = DefaultModelsEndpoint
	}
	if d.Label == "" {
		d.Label = d.Name
	}
	return d
}

// Validate checks the descriptor is complete enough to register.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor name is required")
	}
	if d.DefaultBaseURL != "" {
		if err := ValidateBaseURL(d.DefaultBaseURL); err != nil {
			return fmt.Errorf("descriptor %s: %w", d.Name, err)
		}
	}
	if !d.Capabilities.Chat && !d.Capabilities.Embedding {
		return fmt.Errorf("descriptor %s declares no capabilities", d.Name)
	}
	return nil
}
