// Package llmcast is a streaming-first client for OpenAI-compatible LLM
// backends. One Client, parametrized by a provider Descriptor, serves every
// backend: vendor variation lives in descriptor data (endpoints, quirks,
// capabilities), not in per-vendor subclasses.
//
// Chat output arrives as a stream of normalized chunks regardless of how the
// provider frames its SSE wire format. Every stream ends with exactly one
// terminal chunk carrying the accumulated model, finish reason, and usage;
// context cancellation drains into that same terminal shape instead of an
// error. Single malformed frames are skipped, not fatal.
//
// Basic usage:
//
//	client, err := llmcast.New(deepseek.Descriptor,
//		llmcast.WithAPIKey("env://DEEPSEEK_API_KEY"),
//		llmcast.WithModel("deepseek-chat"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	stream, err := client.ChatStream(ctx, []llmcast.Message{
//		llmcast.UserMessage("Explain SSE in one paragraph."),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for {
//		chunk, err := stream.Recv()
//		if err != nil { // io.EOF after the terminal chunk
//			break
//		}
//		fmt.Print(chunk.Content)
//	}
//
// API keys are secret references resolved per request: env://VAR reads an
// environment variable, vault://path#field reads HashiCorp Vault, and
// anything without a scheme is used literally.
package llmcast

import (
	"github.com/llmcast/llmcast/internal/observability"
	llmerrors "github.com/llmcast/llmcast/pkg/errors"
	"github.com/llmcast/llmcast/pkg/provider"
	"github.com/llmcast/llmcast/pkg/types"
)

// Version is the current release of the module.
const Version = "0.3.0"

// Core types re-exported so most callers only import this package.
type (
	// Message is a single chat turn.
	Message = types.Message
	// Role identifies the author of a message.
	Role = types.Role
	// StreamChunk is the canonical unit of streamed output.
	StreamChunk = types.StreamChunk
	// Usage holds token accounting for a request.
	Usage = types.Usage
	// EmbeddingResult is the canonical per-input embedding output.
	EmbeddingResult = types.EmbeddingResult

	// Descriptor declares a backend: endpoints, capabilities, quirks.
	Descriptor = provider.Descriptor
	// Capabilities is the operation set a backend declares.
	Capabilities = provider.Capabilities
	// ProviderConfig is the mutable per-client configuration.
	ProviderConfig = provider.Config

	// LLMError is the unified error type for all client operations.
	LLMError = llmerrors.LLMError
)

// Message roles.
const (
	RoleSystem    = types.RoleSystem
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant
)

// Capability names used in descriptors and capability errors.
const (
	CapabilityChat      = provider.CapabilityChat
	CapabilityEmbedding = provider.CapabilityEmbedding
)

// Error type constants carried in LLMError.Type.
const (
	ErrTypeConfiguration  = llmerrors.TypeConfiguration
	ErrTypeCapability     = llmerrors.TypeCapability
	ErrTypeNetwork        = llmerrors.TypeNetwork
	ErrTypeAuthentication = llmerrors.TypeAuthentication
	ErrTypeRateLimit      = llmerrors.TypeRateLimit
	ErrTypeProvider       = llmerrors.TypeProvider
	ErrTypeParse          = llmerrors.TypeParse
	ErrTypeValidation     = llmerrors.TypeValidation
	ErrTypeNotFound       = llmerrors.TypeNotFound
)

// Message constructors.
var (
	SystemMessage    = types.SystemMessage
	UserMessage      = types.UserMessage
	AssistantMessage = types.AssistantMessage
)

// Error predicates.
var (
	IsConfigurationError = llmerrors.IsConfiguration
	IsCapabilityError    = llmerrors.IsCapability
	IsNetworkError       = llmerrors.IsNetwork
	IsValidationError    = llmerrors.IsValidation
	IsNotFoundError      = llmerrors.IsNotFound
)

// ContextWithRequestID returns a context whose requests carry the given
// X-Request-ID value instead of a generated one. Useful for correlating
// client calls with an application's own request tracing.
var ContextWithRequestID = observability.ContextWithRequestID
