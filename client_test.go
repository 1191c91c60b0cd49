package llmcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/llmcast/llmcast/internal/mockllm"
	llmerrors "github.com/llmcast/llmcast/pkg/errors"
	"github.com/llmcast/llmcast/pkg/provider"
	"github.com/llmcast/llmcast/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDescriptor declares a full-capability backend rooted at baseURL.
func testDescriptor(baseURL string) provider.Descriptor {
	return provider.Descriptor{
		Name:                  "mock",
		Label:                 "Mock",
		DefaultBaseURL:        baseURL,
		DefaultChatModel:      "mock-chat",
		DefaultEmbeddingModel: "mock-embed",
		Capabilities:          provider.Capabilities{Chat: true, Embedding: true},
		SupportsDimensions:    true,
	}
}

func newTestClient(t *testing.T, desc provider.Descriptor, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(testLogger())}, opts...)
	client, err := New(desc, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// startMock runs the fake provider API and returns it with a matching client.
func startMock(t *testing.T, mock *mockllm.Server, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	return newTestClient(t, testDescriptor(srv.URL+"/v1"), opts...)
}

func collectChunks(t *testing.T, reader *StreamReader) []types.StreamChunk {
	t.Helper()
	var chunks []types.StreamChunk
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			return chunks
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		chunks = append(chunks, chunk)
	}
}

func assembleContent(chunks []types.StreamChunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Content)
	}
	return sb.String()
}

// writeSSE emits raw data lines followed by the stream terminator.
func writeSSE(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, f := range frames {
		fmt.Fprintf(w, "data: %s\n\n", f)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

const minimalFrame = `{"model":"mock-chat","choices":[{"delta":{"content":"ok"},"finish_reason":"stop"}]}`

func TestNew_RejectsInvalidDescriptor(t *testing.T) {
	_, err := New(provider.Descriptor{Name: "bad"}, WithLogger(testLogger()))
	if !llmerrors.IsConfiguration(err) {
		t.Fatalf("New() with no capabilities = %v, want configuration error", err)
	}

	_, err = New(provider.Descriptor{}, WithLogger(testLogger()))
	if !llmerrors.IsConfiguration(err) {
		t.Fatalf("New() with no name = %v, want configuration error", err)
	}
}

func TestNew_RejectsInvalidInitialBaseURL(t *testing.T) {
	desc := testDescriptor("http://localhost:9999/v1")
	_, err := New(desc, WithLogger(testLogger()), WithBaseURL("ftp://example.com"))
	if !llmerrors.IsConfiguration(err) {
		t.Fatalf("New() with ftp base URL = %v, want configuration error", err)
	}
}

func TestClient_Configure_MergesAndValidates(t *testing.T) {
	client := newTestClient(t, testDescriptor("http://localhost:9999/v1"),
		WithAPIKey("sk-initial"), WithModel("model-a"))

	if err := client.Configure(ProviderConfig{Model: "model-b"}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	cfg := client.Config()
	if cfg.Model != "model-b" {
		t.Errorf("Model = %q, want %q", cfg.Model, "model-b")
	}
	if cfg.APIKey != "sk-initial" {
		t.Errorf("APIKey = %q, want untouched %q", cfg.APIKey, "sk-initial")
	}

	err := client.Configure(ProviderConfig{BaseURL: "ftp://example.com"})
	if !llmerrors.IsConfiguration(err) {
		t.Fatalf("Configure() with ftp base URL = %v, want configuration error", err)
	}
	if got := client.Config().BaseURL; got != "http://localhost:9999/v1" {
		t.Errorf("BaseURL after rejected patch = %q, want unchanged", got)
	}
}

func TestClient_Configure_DoesNotAffectDispatchedRequest(t *testing.T) {
	var mu sync.Mutex
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		models = append(models, req.Model)
		mu.Unlock()
		writeSSE(w, minimalFrame)
	}))
	defer srv.Close()

	client := newTestClient(t, testDescriptor(srv.URL+"/v1"), WithModel("model-a"))

	reader, err := client.ChatStream(context.Background(), []types.Message{types.UserMessage("hi")})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	// Reconfigure while the first stream is still open. The snapshot taken
	// at call start must keep the first request on model-a.
	if err := client.Configure(ProviderConfig{Model: "model-b"}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	collectChunks(t, reader)

	reader, err = client.ChatStream(context.Background(), []types.Message{types.UserMessage("hi")})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}
	collectChunks(t, reader)

	mu.Lock()
	got := append([]string(nil), models...)
	mu.Unlock()
	if len(got) != 2 || got[0] != "model-a" || got[1] != "model-b" {
		t.Errorf("request models = %v, want [model-a model-b]", got)
	}
}

func TestClient_ValidateConfig(t *testing.T) {
	client := startMock(t, mockllm.NewServer())
	if !client.ValidateConfig(context.Background()) {
		t.Error("ValidateConfig() = false against healthy backend, want true")
	}
}

func TestClient_ValidateConfig_FalseOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, testDescriptor(srv.URL+"/v1"))
	if client.ValidateConfig(context.Background()) {
		t.Error("ValidateConfig() = true on 500, want false")
	}
}

func TestClient_ValidateConfig_FalseOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL + "/v1"
	srv.Close()

	client := newTestClient(t, testDescriptor(base))
	if client.ValidateConfig(context.Background()) {
		t.Error("ValidateConfig() = true against closed server, want false")
	}
}

func TestClient_ValidateConfig_FalseWithoutRequiredKey(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	desc := testDescriptor(srv.URL + "/v1")
	desc.RequiresAPIKey = true
	client := newTestClient(t, desc)

	if client.ValidateConfig(context.Background()) {
		t.Error("ValidateConfig() = true without required key, want false")
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hits = %d, want 0 (no network before key resolution)", n)
	}
}

func TestClient_EstimateTokens(t *testing.T) {
	client := newTestClient(t, testDescriptor("http://localhost:9999/v1"))

	if got := client.EstimateTokens(nil); got != 0 {
		t.Errorf("EstimateTokens(nil) = %d, want 0", got)
	}

	short := client.EstimateTokens([]types.Message{types.UserMessage("hi")})
	long := client.EstimateTokens([]types.Message{
		types.UserMessage("a considerably longer message with many more words in it"),
	})
	if short <= 0 {
		t.Errorf("EstimateTokens(short) = %d, want > 0", short)
	}
	if long <= short {
		t.Errorf("EstimateTokens: long = %d, short = %d, want long > short", long, short)
	}
}

func TestClient_PrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := startMock(t, mockllm.NewServer(), WithPrometheus(reg))

	reader, err := client.ChatStream(context.Background(), []types.Message{types.UserMessage("hi")})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}
	collectChunks(t, reader)

	if _, err := client.CreateEmbedding(context.Background(), "metric me"); err != nil {
		t.Fatalf("CreateEmbedding() error = %v", err)
	}

	n, err := testutil.GatherAndCount(reg,
		"llmcast_requests_total",
		"llmcast_stream_chunks_total",
		"llmcast_time_to_first_token_seconds",
		"llmcast_request_duration_seconds")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n == 0 {
		t.Fatal("no samples gathered for request metrics")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "llmcast_active_streams" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if v := m.GetGauge().GetValue(); v != 0 {
				t.Errorf("active streams gauge = %v after stream end, want 0", v)
			}
		}
	}
}

func TestClient_CloseReleasesResources(t *testing.T) {
	client, err := New(testDescriptor("http://localhost:9999/v1"), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
