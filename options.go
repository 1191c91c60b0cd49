package llmcast

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/llmcast/llmcast/internal/metrics"
	"github.com/llmcast/llmcast/pkg/provider"
)

// ClientConfig holds all configuration for a llmcast client.
type ClientConfig struct {
	// InitialConfig is the provider configuration applied before any
	// Configure call. Unset fields fall back to descriptor defaults.
	InitialConfig provider.Config

	// HTTP
	Timeout    time.Duration
	HTTPClient *http.Client

	// Logging
	Logger *slog.Logger

	// Metrics
	Metrics metrics.Recorder

	// Tracing
	TracerProvider trace.TracerProvider
}

// Option is a function that configures the Client.
type Option func(*ClientConfig)

// defaultConfig returns sensible defaults.
func defaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
		Metrics: metrics.Nop{},
	}
}

// WithConfig sets the initial provider configuration.
//
// Example:
//
//	client, err := llmcast.New(deepseek.Descriptor,
//	    llmcast.WithConfig(llmcast.ProviderConfig{
//	        APIKey: "env://DEEPSEEK_API_KEY",
//	        Model:  "deepseek-reasoner",
//	    }),
//	)
func WithConfig(cfg provider.Config) Option {
	return func(c *ClientConfig) {
		c.InitialConfig = cfg
	}
}

// WithAPIKey sets the API key. The value may be a literal token or a
// secret reference such as env://DEEPSEEK_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *ClientConfig) {
		c.InitialConfig.APIKey = key
	}
}

// WithBaseURL overrides the provider's default base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *ClientConfig) {
		c.InitialConfig.BaseURL = baseURL
	}
}

// WithModel sets the default chat model for this client.
func WithModel(model string) Option {
	return func(c *ClientConfig) {
		c.InitialConfig.Model = model
	}
}

// WithTimeout bounds non-streaming calls (embeddings, config probes).
// Streaming requests are bounded by their context instead, since a
// healthy stream can legitimately outlive any fixed timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client. Use this to inject proxies
// or a shared transport; by default the client builds its own pooled
// transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ClientConfig) {
		c.HTTPClient = hc
	}
}

// WithLogger sets the logger for the client.
// The logger is used for debug, info, and error messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithPrometheus registers llmcast collectors with reg and records
// request and stream metrics to them. A nil reg uses the default
// registerer.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *ClientConfig) {
		c.Metrics = metrics.NewPrometheus(reg)
	}
}

// WithTracerProvider enables request spans through the given provider.
// Without it the client emits no spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *ClientConfig) {
		c.TracerProvider = tp
	}
}

// requestOptions carries per-call overrides on top of the config
// snapshot taken at call start.
type requestOptions struct {
	model          string
	embeddingModel string
	temperature    *float64
	maxTokens      int
	dimensions     int
}

// RequestOption overrides configuration for a single call.
type RequestOption func(*requestOptions)

// WithRequestModel selects the chat model for this call only.
func WithRequestModel(model string) RequestOption {
	return func(o *requestOptions) {
		o.model = model
	}
}

// WithRequestTemperature sets the sampling temperature for this call only.
func WithRequestTemperature(t float64) RequestOption {
	return func(o *requestOptions) {
		o.temperature = &t
	}
}

// WithRequestMaxTokens caps the completion length for this call only.
func WithRequestMaxTokens(n int) RequestOption {
	return func(o *requestOptions) {
		o.maxTokens = n
	}
}

// WithRequestEmbeddingModel selects the embedding model for this call only.
func WithRequestEmbeddingModel(model string) RequestOption {
	return func(o *requestOptions) {
		o.embeddingModel = model
	}
}

// WithRequestDimensions requests a specific embedding width for this
// call only. Providers that do not support the override have it dropped
// before the request is built.
func WithRequestDimensions(dims int) RequestOption {
	return func(o *requestOptions) {
		o.dimensions = dims
	}
}

func applyRequestOptions(opts []RequestOption) requestOptions {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}
