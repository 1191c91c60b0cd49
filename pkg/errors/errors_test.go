package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		body          string
		wantType      string
		wantRetryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, TypeAuthentication, false},
		{"forbidden", http.StatusForbidden, "", TypeAuthentication, false},
		{"not found", http.StatusNotFound, "", TypeNotFound, false},
		{"rate limited", http.StatusTooManyRequests, "", TypeRateLimit, true},
		{"internal", http.StatusInternalServerError, "", TypeProvider, true},
		{"bad gateway", http.StatusBadGateway, "", TypeProvider, true},
		{"bad request", http.StatusBadRequest, "", TypeNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromHTTPStatus("openai", "gpt-4o", tt.statusCode, []byte(tt.body))
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.wantRetryable)
			}
			if err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.statusCode)
			}
		})
	}

	t.Run("message from error envelope", func(t *testing.T) {
		err := FromHTTPStatus("deepseek", "", 401, []byte(`{"error":{"message":"invalid api key","type":"authentication_error"}}`))
		if err.Message != "invalid api key" {
			t.Errorf("Message = %q, want body message", err.Message)
		}
	})

	t.Run("raw body fallback is truncated", func(t *testing.T) {
		raw := strings.Repeat("x", 1000)
		err := FromHTTPStatus("deepseek", "", 500, []byte(raw))
		if len(err.Message) > 256 {
			t.Errorf("Message length = %d, want <= 256", len(err.Message))
		}
	})

	t.Run("empty body falls back to status text", func(t *testing.T) {
		err := FromHTTPStatus("openai", "", 503, nil)
		if err.Message != http.StatusText(503) {
			t.Errorf("Message = %q, want %q", err.Message, http.StatusText(503))
		}
	})
}

func TestErrorMessageFormat(t *testing.T) {
	err := FromHTTPStatus("openai", "gpt-4o", 429, nil)
	msg := err.Error()
	for _, s := range []string{TypeRateLimit, "openai", "429"} {
		if !strings.Contains(msg, s) {
			t.Errorf("error message should contain %q, got %q", s, msg)
		}
	}

	cfg := NewConfigurationError("zhipu", "api key is not set")
	if !strings.Contains(cfg.Error(), "api key is not set") {
		t.Errorf("configuration error should carry its message, got %q", cfg.Error())
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"configuration", NewConfigurationError("p", "m"), IsConfiguration, true},
		{"capability", NewCapabilityError("p", "embedding"), IsCapability, true},
		{"validation", NewValidationError(2, "m"), IsValidation, true},
		{"not found", NewNotFoundError("p", "m"), IsNotFound, true},
		{"network", NewNetworkError("p", "m", nil), IsNetwork, true},
		{"auth is network-family", FromHTTPStatus("p", "", 401, nil), IsNetwork, true},
		{"capability is not network", NewCapabilityError("p", "chat"), IsNetwork, false},
		{"plain error", errors.New("boom"), IsConfiguration, false},
		{"nil", nil, IsValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("wrapped errors are still recognized", func(t *testing.T) {
		err := fmt.Errorf("request failed: %w", NewCapabilityError("ollama", "embedding"))
		if !IsCapability(err) {
			t.Error("IsCapability should see through wrapping")
		}
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("openai", "request failed", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestValidationIndex(t *testing.T) {
	err := NewValidationError(3, "consecutive messages share a role")
	var le *LLMError
	if !errors.As(err, &le) {
		t.Fatal("expected *LLMError")
	}
	if le.Index != 3 {
		t.Errorf("Index = %d, want 3", le.Index)
	}
}
