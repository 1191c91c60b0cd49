// Package errors defines the unified error taxonomy for client operations.
// Everything a provider backend can do wrong is mapped onto these types so
// callers never branch on vendor-specific shapes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// LLMError is a standardized error for an LLM client operation.
// It carries enough for error handling, logging, and user display.
type LLMError struct {
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	// Index points at the offending message for validation errors.
	Index int `json:"index,omitempty"`
	// Retryable is advisory metadata for callers; this client never
	// retries on its own.
	Retryable bool  `json:"-"`
	Err       error `json:"-"`
}

// Error implements the error interface.
func (e *LLMError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (provider=%s, code=%d)",
			e.Type, e.Message, e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s (provider=%s)", e.Type, e.Message, e.Provider)
}

// Unwrap exposes the underlying cause, if any.
func (e *LLMError) Unwrap() error {
	return e.Err
}

// Error type constants.
const (
	TypeConfiguration  = "configuration_error"
	TypeCapability     = "capability_error"
	TypeNetwork        = "network_error"
	TypeAuthentication = "authentication_error"
	TypeRateLimit      = "rate_limit_error"
	TypeProvider       = "provider_error"
	TypeParse          = "parse_error"
	TypeValidation     = "validation_error"
	TypeNotFound       = "not_found_error"
)

// NewConfigurationError reports missing or unusable client configuration
// (absent API key, empty base URL, unresolvable secret reference). It is
// raised before any network I/O.
func NewConfigurationError(provider, message string) *LLMError {
	return &LLMError{
		Message:   message,
		Type:      TypeConfiguration,
		Provider:  provider,
		Retryable: false,
	}
}

// NewCapabilityError reports an operation the provider descriptor does not
// declare. It is raised before any network I/O.
func NewCapabilityError(provider, operation string) *LLMError {
	return &LLMError{
		Message:   fmt.Sprintf("provider does not support %s", operation),
		Type:      TypeCapability,
		Provider:  provider,
		Retryable: false,
	}
}

// NewNetworkError reports a transport-level failure (connection refused,
// TLS failure, unexpected EOF before the stream terminator).
func NewNetworkError(provider, message string, err error) *LLMError {
	return &LLMError{
		Message:   message,
		Type:      TypeNetwork,
		Provider:  provider,
		Retryable: true,
		Err:       err,
	}
}

// NewParseError reports a malformed payload. Single malformed stream frames
// are recovered in place and never surface through this type; it is used
// for unparseable non-stream response bodies.
func NewParseError(provider, message string, err error) *LLMError {
	return &LLMError{
		Message:   message,
		Type:      TypeParse,
		Provider:  provider,
		Retryable: false,
		Err:       err,
	}
}

// NewValidationError reports invalid input, carrying the index of the
// offending element where one exists (message-ordering violations).
func NewValidationError(index int, message string) *LLMError {
	return &LLMError{
		Message:   message,
		Type:      TypeValidation,
		Index:     index,
		Retryable: false,
	}
}

// NewNotFoundError reports an unknown provider or model.
func NewNotFoundError(provider, message string) *LLMError {
	return &LLMError{
		StatusCode: http.StatusNotFound,
		Message:    message,
		Type:       TypeNotFound,
		Provider:   provider,
		Retryable:  false,
	}
}

// wireError is the OpenAI-compatible error envelope most backends return.
type wireError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// FromHTTPStatus maps a non-2xx provider response onto the taxonomy. The
// body, when it parses as the OpenAI error envelope, supplies the message;
// otherwise a truncated copy of the raw body is used.
func FromHTTPStatus(provider, model string, statusCode int, body []byte) *LLMError {
	message := extractMessage(body)
	if message == "" {
		message = http.StatusText(statusCode)
	}

	e := &LLMError{
		StatusCode: statusCode,
		Message:    message,
		Provider:   provider,
		Model:      model,
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Type = TypeAuthentication
	case statusCode == http.StatusNotFound:
		e.Type = TypeNotFound
	case statusCode == http.StatusTooManyRequests:
		e.Type = TypeRateLimit
		e.Retryable = true
	case statusCode >= 500:
		e.Type = TypeProvider
		e.Retryable = true
	default:
		e.Type = TypeNetwork
	}
	return e
}

func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var we wireError
	if err := json.Unmarshal(body, &we); err == nil && we.Error.Message != "" {
		return we.Error.Message
	}
	const maxRaw = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxRaw {
		s = s[:maxRaw]
	}
	return s
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return hasType(err, TypeConfiguration) }

// IsCapability reports whether err is a capability error.
func IsCapability(err error) bool { return hasType(err, TypeCapability) }

// IsNetwork reports whether err is a network, authentication, rate limit,
// or provider-side error, i.e. anything raised by a live backend.
func IsNetwork(err error) bool {
	return hasType(err, TypeNetwork) || hasType(err, TypeAuthentication) ||
		hasType(err, TypeRateLimit) || hasType(err, TypeProvider)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return hasType(err, TypeValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return hasType(err, TypeNotFound) }

func hasType(err error, t string) bool {
	var le *LLMError
	if errors.As(err, &le) {
		return le.Type == t
	}
	return false
}
