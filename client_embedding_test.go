package llmcast

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/llmcast/llmcast/internal/mockllm"
	llmerrors "github.com/llmcast/llmcast/pkg/errors"
	"github.com/llmcast/llmcast/pkg/provider"
)

func TestClient_CreateEmbedding_Single(t *testing.T) {
	client := startMock(t, mockllm.NewServer())

	result, err := client.CreateEmbedding(context.Background(), "embed this")
	if err != nil {
		t.Fatalf("CreateEmbedding() error = %v", err)
	}

	if len(result.Vector) == 0 {
		t.Fatal("empty vector")
	}
	if result.Dimensions != len(result.Vector) {
		t.Errorf("Dimensions = %d, want len(Vector) = %d", result.Dimensions, len(result.Vector))
	}
	if result.Model != "mock-embed" {
		t.Errorf("Model = %q, want %q", result.Model, "mock-embed")
	}

	again, err := client.CreateEmbedding(context.Background(), "embed this")
	if err != nil {
		t.Fatalf("CreateEmbedding() second call error = %v", err)
	}
	for i := range result.Vector {
		if result.Vector[i] != again.Vector[i] {
			t.Fatalf("vector not deterministic at index %d", i)
		}
	}
}

func TestClient_CreateEmbeddings_BatchUsageSplit(t *testing.T) {
	client := startMock(t, mockllm.NewServer())

	texts := []string{"alpha beta gamma delta", "epsilon zeta", "eta"}
	results, err := client.CreateEmbeddings(context.Background(), texts)
	if err != nil {
		t.Fatalf("CreateEmbeddings() error = %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("got %d results, want %d", len(results), len(texts))
	}

	// The mock reports aggregate usage of len(text)/4 per input: 5+3+0 = 8.
	// Split is total/n with the remainder charged to the first item.
	wantTokens := []int{4, 2, 2}
	total := 0
	for i, r := range results {
		if r.TokensUsed != wantTokens[i] {
			t.Errorf("result %d TokensUsed = %d, want %d", i, r.TokensUsed, wantTokens[i])
		}
		total += r.TokensUsed
		if r.Dimensions != len(r.Vector) {
			t.Errorf("result %d Dimensions = %d, want len(Vector) = %d", i, r.Dimensions, len(r.Vector))
		}
	}
	if total != 8 {
		t.Errorf("split tokens sum = %d, want the aggregate 8", total)
	}

	// Different inputs embed differently.
	same := true
	for i := range results[0].Vector {
		if results[0].Vector[i] != results[1].Vector[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct inputs produced identical vectors")
	}
}

func TestClient_CreateEmbeddings_DimensionsHonored(t *testing.T) {
	client := startMock(t, mockllm.NewServer())

	results, err := client.CreateEmbeddings(context.Background(), []string{"sized"},
		WithRequestDimensions(16))
	if err != nil {
		t.Fatalf("CreateEmbeddings() error = %v", err)
	}
	if got := len(results[0].Vector); got != 16 {
		t.Errorf("vector width = %d, want requested 16", got)
	}
	if results[0].Dimensions != 16 {
		t.Errorf("Dimensions = %d, want 16", results[0].Dimensions)
	}
}

func TestClient_CreateEmbeddings_DimensionsDroppedWhenUnsupported(t *testing.T) {
	bodyCh := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodyCh <- data
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"object":"list","model":"mock-embed","data":[{"object":"embedding","embedding":[0.25,-0.5],"index":0}],"usage":{"prompt_tokens":3,"total_tokens":3}}`)
	}))
	defer srv.Close()

	desc := testDescriptor(srv.URL + "/v1")
	desc.SupportsDimensions = false
	client := newTestClient(t, desc)

	results, err := client.CreateEmbeddings(context.Background(), []string{"sized"},
		WithRequestDimensions(256))
	if err != nil {
		t.Fatalf("CreateEmbeddings() error = %v", err)
	}

	var sent map[string]any
	if err := json.Unmarshal(<-bodyCh, &sent); err != nil {
		t.Fatalf("unmarshal captured body: %v", err)
	}
	if _, ok := sent["dimensions"]; ok {
		t.Error("dimensions override reached the wire for a provider without support")
	}

	// The result reports what actually came back, not what was asked for.
	if results[0].Dimensions != 2 {
		t.Errorf("Dimensions = %d, want 2 (returned width)", results[0].Dimensions)
	}
}

func TestClient_CreateEmbeddings_InputValidation(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := newTestClient(t, testDescriptor(srv.URL+"/v1"))

	_, err := client.CreateEmbeddings(context.Background(), nil)
	if !llmerrors.IsValidation(err) {
		t.Errorf("CreateEmbeddings(nil) error = %v, want validation error", err)
	}

	_, err = client.CreateEmbeddings(context.Background(), []string{"fine", ""})
	if !llmerrors.IsValidation(err) {
		t.Errorf("CreateEmbeddings with empty item = %v, want validation error", err)
	}
	var le *llmerrors.LLMError
	if errors.As(err, &le) && le.Index != 1 {
		t.Errorf("validation error Index = %d, want 1", le.Index)
	}

	if n := hits.Load(); n != 0 {
		t.Errorf("server hits = %d, want 0", n)
	}
}

func TestClient_CreateEmbeddings_CapabilityGate(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	desc := testDescriptor(srv.URL + "/v1")
	desc.Capabilities = provider.Capabilities{Chat: true}
	client := newTestClient(t, desc)

	_, err := client.CreateEmbedding(context.Background(), "nope")
	if !llmerrors.IsCapability(err) {
		t.Fatalf("CreateEmbedding() error = %v, want capability error", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hits = %d, want 0", n)
	}
}

func TestClient_CreateEmbeddings_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"object":"list","model":"mock-embed","data":[],"usage":{"total_tokens":0}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, testDescriptor(srv.URL+"/v1"))

	_, err := client.CreateEmbeddings(context.Background(), []string{"one", "two"})
	if err == nil {
		t.Fatal("CreateEmbeddings() succeeded on a short response")
	}
	var le *llmerrors.LLMError
	if !errors.As(err, &le) || le.Type != llmerrors.TypeParse {
		t.Errorf("error = %v, want parse error", err)
	}
	if !strings.Contains(le.Message, "expected 2 embeddings") {
		t.Errorf("message = %q, want count mismatch detail", le.Message)
	}
}

func TestClient_CreateEmbeddings_HTTPError(t *testing.T) {
	mock := mockllm.NewServer()
	mock.FailStatus = http.StatusUnauthorized
	client := startMock(t, mock)

	_, err := client.CreateEmbedding(context.Background(), "denied")
	var le *llmerrors.LLMError
	if !errors.As(err, &le) || le.Type != llmerrors.TypeAuthentication {
		t.Fatalf("error = %v, want authentication error", err)
	}
}

func TestClient_CreateEmbeddings_ResultsFollowResponseIndexes(t *testing.T) {
	// The backend answers out of order; results must land by index.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"object":"list","model":"mock-embed","data":[
			{"object":"embedding","embedding":[2.0],"index":1},
			{"object":"embedding","embedding":[1.0],"index":0}
		],"usage":{"total_tokens":4}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, testDescriptor(srv.URL+"/v1"))

	results, err := client.CreateEmbeddings(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("CreateEmbeddings() error = %v", err)
	}
	if results[0].Vector[0] != 1.0 || results[1].Vector[0] != 2.0 {
		t.Errorf("results not reordered by index: %v, %v", results[0].Vector, results[1].Vector)
	}
	if results[0].TokensUsed != 2 || results[1].TokensUsed != 2 {
		t.Errorf("token split = [%d %d], want [2 2]", results[0].TokensUsed, results[1].TokensUsed)
	}
}
