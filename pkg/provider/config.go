package provider

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the mutable per-client configuration. It is updated only
// through Client.Configure; every request works from an immutable snapshot
// taken at call start, so in-flight streams never observe a live edit.
type Config struct {
	// APIKey may be a literal token or a secret reference such as
	// env://DEEPSEEK_API_KEY or vault://secret/data/llm#key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	BaseURL        string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model          string `json:"model,omitempty" yaml:"model,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`

	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`

	// Timeout bounds non-streaming calls (embeddings, probes). Streaming
	// requests are bounded by their context instead.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Dimensions requests a specific embedding width from providers that
	// support the override.
	Dimensions int `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// Merge returns c with the non-zero fields of o applied on top.
func (c Config) Merge(o Config) Config {
	if o.APIKey != "" {
		c.APIKey = o.APIKey
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.EmbeddingModel != "" {
		c.EmbeddingModel = o.EmbeddingModel
	}
	if o.Temperature != nil {
		c.Temperature = o.Temperature
	}
	if o.MaxTokens != 0 {
		c.MaxTokens = o.MaxTokens
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.Dimensions != 0 {
		c.Dimensions = o.Dimensions
	}
	return c
}

// WithDescriptorDefaults fills unset fields from the descriptor.
func (c Config) WithDescriptorDefaults(d Descriptor) Config {
	if c.BaseURL == "" {
		c.BaseURL = d.DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = d.DefaultChatModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = d.DefaultEmbeddingModel
	}
	return c
}

// ValidateBaseURL checks a provider base URL. Loopback hosts are fine here;
// local backends such as Ollama are a supported deployment.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url scheme %q (must be http or https)", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("invalid base_url host %q", u.Host)
	}
	if u.User != nil {
		return fmt.Errorf("base_url must not contain userinfo")
	}
	return nil
}
