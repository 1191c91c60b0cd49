package llmcast

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/llmcast/llmcast/internal/httputil"
	"github.com/llmcast/llmcast/internal/metrics"
	"github.com/llmcast/llmcast/internal/observability"
	"github.com/llmcast/llmcast/internal/secret"
	"github.com/llmcast/llmcast/internal/tokenizer"
	llmerrors "github.com/llmcast/llmcast/pkg/errors"
	"github.com/llmcast/llmcast/pkg/messages"
	"github.com/llmcast/llmcast/pkg/provider"
	"github.com/llmcast/llmcast/pkg/types"
)

// Client talks to one OpenAI-compatible backend described by a Descriptor.
// All methods are safe for concurrent use: configuration lives behind an
// atomic pointer, and every request works from the snapshot current at the
// moment the call starts. A Configure during an in-flight stream affects
// the next request, never the running one.
type Client struct {
	desc       provider.Descriptor
	cfg        atomic.Pointer[provider.Config]
	httpClient *http.Client
	logger     *slog.Logger
	secrets    *secret.Manager
	metrics    metrics.Recorder
	tracer     trace.Tracer
}

// New builds a client for the backend described by desc. The descriptor is
// normalized (endpoint defaults filled in) and validated before use.
func New(desc provider.Descriptor, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	desc = desc.Normalized()
	if err := desc.Validate(); err != nil {
		return nil, llmerrors.NewConfigurationError(desc.Name, err.Error())
	}

	initial := cfg.InitialConfig
	if initial.Timeout == 0 {
		initial.Timeout = cfg.Timeout
	}
	if initial.BaseURL != "" {
		if err := provider.ValidateBaseURL(initial.BaseURL); err != nil {
			return nil, llmerrors.NewConfigurationError(desc.Name, err.Error())
		}
	}

	c := &Client{
		desc:    desc,
		logger:  cfg.Logger.With("provider", desc.Name),
		secrets: secret.NewDefaultManager(cfg.Logger),
		metrics: cfg.Metrics,
	}
	c.cfg.Store(&initial)

	c.httpClient = cfg.HTTPClient
	if c.httpClient == nil {
		// No client-level timeout: a healthy stream can run for minutes.
		// Non-streaming calls bound themselves with a context deadline.
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	if cfg.TracerProvider != nil {
		c.tracer = cfg.TracerProvider.Tracer("github.com/llmcast/llmcast")
	} else {
		c.tracer = noop.NewTracerProvider().Tracer("github.com/llmcast/llmcast")
	}

	c.logger.Debug("client initialized",
		"base_url", initial.BaseURL,
		"model", initial.Model,
		"api_key", observability.RedactKey(initial.APIKey))
	return c, nil
}

// Descriptor returns the static backend description the client was built with.
func (c *Client) Descriptor() provider.Descriptor {
	return c.desc
}

// Config returns a copy of the current configuration snapshot.
func (c *Client) Config() provider.Config {
	return *c.cfg.Load()
}

// Configure merges the non-zero fields of patch into the stored
// configuration and swaps the result in atomically. It has no network
// effect; in-flight requests keep the snapshot they started with.
func (c *Client) Configure(patch provider.Config) error {
	if patch.BaseURL != "" {
		if err := provider.ValidateBaseURL(patch.BaseURL); err != nil {
			return llmerrors.NewConfigurationError(c.desc.Name, err.Error())
		}
	}
	for {
		cur := c.cfg.Load()
		merged := cur.Merge(patch)
		if c.cfg.CompareAndSwap(cur, &merged) {
			c.logger.Debug("configuration updated",
				"model", merged.Model,
				"base_url", merged.BaseURL,
				"api_key", observability.RedactKey(merged.APIKey))
			return nil
		}
	}
}

// ChatStream opens a streaming chat completion and returns a reader over
// the normalized chunks. The returned reader yields zero or more content
// chunks followed by exactly one terminal chunk with Done set, then io.EOF.
// Canceling ctx mid-stream drains into the same terminal-chunk-then-EOF
// shape rather than an error.
func (c *Client) ChatStream(ctx context.Context, msgs []types.Message, opts ...RequestOption) (*StreamReader, error) {
	start := time.Now()
	reader, err := c.openStream(ctx, start, msgs, applyRequestOptions(opts))
	if err != nil {
		c.metrics.RecordRequest(c.desc.Name, metrics.OpChatStream, metrics.StatusLabel(err), time.Since(start))
		return nil, err
	}
	return reader, nil
}

func (c *Client) openStream(ctx context.Context, start time.Time, msgs []types.Message, ropts requestOptions) (*StreamReader, error) {
	if err := c.desc.Require(provider.CapabilityChat); err != nil {
		return nil, err
	}

	cfg := *c.cfg.Load()

	cleaned, err := c.prepareMessages(msgs)
	if err != nil {
		return nil, err
	}

	model := ropts.model
	if model == "" {
		model = cfg.Model
	}
	if model == "" {
		model = c.desc.DefaultChatModel
	}
	if model == "" {
		return nil, llmerrors.NewConfigurationError(c.desc.Name, "no chat model configured")
	}

	base, err := c.resolveBaseURL(cfg)
	if err != nil {
		return nil, err
	}
	apiKey, err := c.resolveAPIKey(ctx, cfg)
	if err != nil {
		return nil, err
	}

	body := types.ChatRequest{
		Model:       model,
		Messages:    cleaned,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Stream:      true,
	}
	if ropts.temperature != nil {
		body.Temperature = ropts.temperature
	}
	if ropts.maxTokens > 0 {
		body.MaxTokens = ropts.maxTokens
	}

	ctx, span := c.tracer.Start(ctx, "llmcast.chat_stream", trace.WithAttributes(
		attribute.String("llm.provider", c.desc.Name),
		attribute.String("llm.model", model),
	))

	req, err := c.newRequest(ctx, http.MethodPost, base+c.desc.ChatEndpoint, body, apiKey)
	if err != nil {
		span.End()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("opening chat stream",
		"model", model,
		"messages", len(cleaned),
		"request_id", req.Header.Get(observability.RequestIDHeader))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.End()
		return nil, llmerrors.NewNetworkError(c.desc.Name, "chat stream request failed", err)
	}

	if resp.StatusCode >= 400 {
		httpErr := c.httpError(model, resp)
		resp.Body.Close()
		span.End()
		return nil, httpErr
	}

	payload, err := httputil.DecompressedReader(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		resp.Body.Close()
		span.End()
		return nil, llmerrors.NewParseError(c.desc.Name, "unsupported response encoding", err)
	}

	c.metrics.StreamStarted(c.desc.Name)
	return newStreamReader(ctx, c, span, resp.Body, payload, model, start), nil
}

// prepareMessages applies the hygiene pipeline required by the backend.
// Reasoning is always stripped before dispatch; the transient field never
// goes back on the wire. Backends that reject consecutive same-role turns
// additionally get the full normalize pass.
func (c *Client) prepareMessages(msgs []types.Message) ([]types.Message, error) {
	if len(msgs) == 0 {
		return nil, llmerrors.NewValidationError(-1, "messages must not be empty")
	}

	if !c.desc.StrictRoleAlternation {
		return messages.StripReasoning(msgs), nil
	}

	cleaned, report := messages.Normalize(msgs)
	if report.Dropped > 0 || report.Collapsed > 0 {
		c.logger.Debug("normalized message history",
			"dropped", report.Dropped,
			"collapsed", report.Collapsed)
	}
	if len(cleaned) == 0 {
		return nil, llmerrors.NewValidationError(-1, "no valid messages after cleaning")
	}
	if err := messages.ValidateOrder(cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// CreateEmbedding embeds a single text. It is shorthand for a one-element
// CreateEmbeddings call.
func (c *Client) CreateEmbedding(ctx context.Context, text string, opts ...RequestOption) (types.EmbeddingResult, error) {
	results, err := c.CreateEmbeddings(ctx, []string{text}, opts...)
	if err != nil {
		return types.EmbeddingResult{}, err
	}
	return results[0], nil
}

// CreateEmbeddings embeds a batch of texts. Results are returned in input
// order. When the backend reports only aggregate token usage, the total is
// divided across the batch with the remainder charged to the first item.
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string, opts ...RequestOption) ([]types.EmbeddingResult, error) {
	start := time.Now()
	results, err := c.createEmbeddings(ctx, texts, applyRequestOptions(opts))
	c.metrics.RecordRequest(c.desc.Name, metrics.OpEmbedding, metrics.StatusLabel(err), time.Since(start))
	return results, err
}

func (c *Client) createEmbeddings(ctx context.Context, texts []string, ropts requestOptions) ([]types.EmbeddingResult, error) {
	if err := c.desc.Require(provider.CapabilityEmbedding); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, llmerrors.NewValidationError(-1, "embedding input must not be empty")
	}
	for i, t := range texts {
		if t == "" {
			return nil, llmerrors.NewValidationError(i, "embedding input contains an empty string")
		}
	}

	cfg := *c.cfg.Load()

	model := ropts.embeddingModel
	if model == "" {
		model = cfg.EmbeddingModel
	}
	if model == "" {
		model = c.desc.DefaultEmbeddingModel
	}
	if model == "" {
		return nil, llmerrors.NewConfigurationError(c.desc.Name, "no embedding model configured")
	}

	base, err := c.resolveBaseURL(cfg)
	if err != nil {
		return nil, err
	}
	apiKey, err := c.resolveAPIKey(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var input *types.EmbeddingInput
	if len(texts) == 1 {
		input = types.NewEmbeddingInputFromString(texts[0])
	} else {
		input = types.NewEmbeddingInputFromStrings(texts)
	}

	body := types.EmbeddingRequest{Model: model, Input: input}
	dims := ropts.dimensions
	if dims == 0 {
		dims = cfg.Dimensions
	}
	if dims > 0 {
		if c.desc.SupportsDimensions {
			body.Dimensions = dims
		} else {
			c.logger.Debug("dropping dimensions override, provider does not support it",
				"dimensions", dims)
		}
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "llmcast.create_embeddings", trace.WithAttributes(
		attribute.String("llm.provider", c.desc.Name),
		attribute.String("llm.model", model),
		attribute.Int("llm.input_count", len(texts)),
	))
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodPost, base+c.desc.EmbeddingEndpoint, body, apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, llmerrors.NewNetworkError(c.desc.Name, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.httpError(model, resp)
	}

	payload, err := httputil.DecompressedReader(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, llmerrors.NewParseError(c.desc.Name, "unsupported response encoding", err)
	}
	defer payload.Close()

	data, err := httputil.ReadLimitedBody(payload, httputil.DefaultMaxResponseBodyBytes)
	if err != nil {
		return nil, llmerrors.NewParseError(c.desc.Name, "read embedding response", err)
	}

	var parsed types.EmbeddingResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, llmerrors.NewParseError(c.desc.Name, "decode embedding response", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, llmerrors.NewParseError(c.desc.Name,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(parsed.Data)), nil)
	}

	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}

	per := parsed.Usage.TotalTokens / len(texts)
	rem := parsed.Usage.TotalTokens % len(texts)

	results := make([]types.EmbeddingResult, len(texts))
	for pos, obj := range parsed.Data {
		idx := obj.Index
		if idx < 0 || idx >= len(results) {
			idx = pos
		}
		tokens := per
		if idx == 0 {
			tokens += rem
		}
		results[idx] = types.EmbeddingResult{
			Vector:     obj.Embedding,
			Model:      respModel,
			Dimensions: len(obj.Embedding),
			TokensUsed: tokens,
		}
	}

	c.logger.Debug("embeddings created",
		"model", respModel,
		"inputs", len(texts),
		"total_tokens", parsed.Usage.TotalTokens)
	return results, nil
}

// ValidateConfig probes the configured endpoint with a models listing and
// reports whether it answered successfully. It never returns an error: a
// missing key, a bad base URL, or an unreachable host are all just false.
func (c *Client) ValidateConfig(ctx context.Context) bool {
	start := time.Now()
	ok := c.validateConfig(ctx)
	status := "ok"
	if !ok {
		status = "unreachable"
	}
	c.metrics.RecordRequest(c.desc.Name, metrics.OpValidate, status, time.Since(start))
	return ok
}

func (c *Client) validateConfig(ctx context.Context) bool {
	cfg := *c.cfg.Load()

	base, err := c.resolveBaseURL(cfg)
	if err != nil {
		c.logger.Debug("config probe skipped", "reason", err)
		return false
	}
	apiKey, err := c.resolveAPIKey(ctx, cfg)
	if err != nil {
		c.logger.Debug("config probe skipped", "reason", err)
		return false
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, http.MethodGet, base+c.desc.ModelsEndpoint, nil, apiKey)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("config probe request failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, httputil.DefaultMaxErrorBodyBytes))

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.logger.Debug("config probe finished", "status", resp.StatusCode, "ok", ok)
	return ok
}

// EstimateTokens approximates the prompt token count of msgs under the
// currently configured chat model's encoding. Purely local.
func (c *Client) EstimateTokens(msgs []types.Message) int {
	cfg := *c.cfg.Load()
	model := cfg.Model
	if model == "" {
		model = c.desc.DefaultChatModel
	}
	return tokenizer.EstimateMessageTokens(model, msgs)
}

// Close releases pooled connections and shuts down the secret backends.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return c.secrets.Close()
}

func (c *Client) resolveBaseURL(cfg provider.Config) (string, error) {
	base := cfg.BaseURL
	if base == "" {
		base = c.desc.DefaultBaseURL
	}
	if base == "" {
		return "", llmerrors.NewConfigurationError(c.desc.Name, "base URL is not configured")
	}
	return strings.TrimRight(base, "/"), nil
}

// resolveAPIKey turns the configured key (literal or secret reference) into
// a bearer token. Backends that do not require a key may run without one.
func (c *Client) resolveAPIKey(ctx context.Context, cfg provider.Config) (string, error) {
	if cfg.APIKey == "" {
		if c.desc.RequiresAPIKey {
			return "", llmerrors.NewConfigurationError(c.desc.Name, "api key is not configured")
		}
		return "", nil
	}
	key, err := c.secrets.Get(ctx, cfg.APIKey)
	if err != nil {
		return "", llmerrors.NewConfigurationError(c.desc.Name, fmt.Sprintf("resolve api key: %v", err))
	}
	if key == "" && c.desc.RequiresAPIKey {
		return "", llmerrors.NewConfigurationError(c.desc.Name, "api key resolved to an empty value")
	}
	return key, nil
}

// newRequest builds an HTTP request with the headers every provider call
// shares. Accept-Encoding is set explicitly, which disables the transport's
// transparent gzip; response bodies go through DecompressedReader instead.
func (c *Client) newRequest(ctx context.Context, method, url string, payload any, apiKey string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, llmerrors.NewParseError(c.desc.Name, "encode request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, llmerrors.NewConfigurationError(c.desc.Name, fmt.Sprintf("build request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", httputil.AcceptEncoding)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = observability.NewRequestID()
	}
	req.Header.Set(observability.RequestIDHeader, requestID)
	for k, v := range c.desc.ExtraHeaders {
		req.Header.Set(k, v)
	}
	return req, nil
}

// httpError reads a bounded amount of the (possibly compressed) error body
// and maps the status code onto the error taxonomy. The caller still owns
// the response body.
func (c *Client) httpError(model string, resp *http.Response) error {
	reader, err := httputil.DecompressedReader(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return llmerrors.FromHTTPStatus(c.desc.Name, model, resp.StatusCode, nil)
	}
	body, _ := httputil.ReadLimitedBody(reader, httputil.DefaultMaxErrorBodyBytes)
	reader.Close()
	return llmerrors.FromHTTPStatus(c.desc.Name, model, resp.StatusCode, body)
}
