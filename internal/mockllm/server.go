// Package mockllm provides an OpenAI-compatible fake server for tests
// and local development. It simulates streaming chat completions,
// embeddings, and common failure modes without real API calls.
package mockllm

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/llmcast/llmcast/pkg/types"
)

// Server is a fake LLM API server. The zero value streams a short
// canned completion; knobs select latency and failure behavior.
type Server struct {
	// Latency delays each response to simulate upstream processing.
	Latency time.Duration

	// ChunkDelay spaces out stream frames.
	ChunkDelay time.Duration

	// ReasoningChunks are emitted as reasoning_content deltas before
	// the content chunks.
	ReasoningChunks []string

	// ContentChunks override the default streamed content.
	ContentChunks []string

	// MalformedFrameAt injects a non-JSON line before the Nth content
	// frame (0-based). Negative disables injection.
	MalformedFrameAt int

	// UsageTrailer appends a usage-only frame after the finish frame,
	// mirroring OpenAI's include_usage behavior.
	UsageTrailer bool

	// FailStatus, when non-zero, makes the chat and embedding
	// endpoints return an error envelope with this status code.
	FailStatus int

	// RequireAuth rejects requests without an Authorization header.
	RequireAuth bool

	// EmbeddingDimensions is the vector size used when the request
	// does not ask for specific dimensions.
	EmbeddingDimensions int

	// RequestCount tracks requests across all endpoints.
	RequestCount atomic.Int64
}

// NewServer returns a server with no injected latency or failures.
func NewServer() *Server {
	return &Server{
		MalformedFrameAt:    -1,
		EmbeddingDimensions: 8,
	}
}

var defaultChunks = []string{"Hello", "!", " This", " is", " a", " mock", " streaming", " response", "."}

// Handler returns the HTTP handler for the fake API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/chat/completions", s.handleChatCompletions)
	r.Post("/v1/embeddings", s.handleEmbeddings)
	r.Get("/v1/models", s.handleModels)
	r.Get("/health", s.handleHealth)
	return r
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	s.RequestCount.Add(1)

	if !s.authorized(w, r) {
		return
	}

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "invalid_request_error")
		return
	}

	if s.FailStatus != 0 {
		writeError(w, s.FailStatus, "injected failure", "server_error")
		return
	}

	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}

	if req.Stream {
		s.streamCompletion(w, req)
		return
	}

	resp := map[string]any{
		"id":      fmt.Sprintf("chatcmpl-mock-%d", time.Now().UnixNano()),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       types.AssistantMessage(strings.Join(s.contentChunks(), "")),
				"finish_reason": "stop",
			},
		},
		"usage": s.usageFor(req.Messages),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) streamCompletion(w http.ResponseWriter, req types.ChatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id := fmt.Sprintf("chatcmpl-mock-%d", time.Now().UnixNano())
	created := time.Now().Unix()

	frame := func(delta types.StreamDelta, finish *string, usage *types.Usage) types.ChatCompletionChunk {
		chunk := types.ChatCompletionChunk{
			ID:      id,
			Object:  "chat.completion.chunk",
			Created: created,
			Model:   req.Model,
			Usage:   usage,
		}
		if usage == nil {
			chunk.Choices = []types.StreamChoice{{Delta: delta, FinishReason: finish}}
		} else {
			chunk.Choices = []types.StreamChoice{}
		}
		return chunk
	}

	emit := func(chunk types.ChatCompletionChunk) {
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
		if s.ChunkDelay > 0 {
			time.Sleep(s.ChunkDelay)
		}
	}

	for _, reasoning := range s.ReasoningChunks {
		emit(frame(types.StreamDelta{ReasoningContent: reasoning}, nil, nil))
	}

	chunks := s.contentChunks()
	finish := "stop"
	for i, content := range chunks {
		if i == s.MalformedFrameAt {
			fmt.Fprintf(w, "data: {not json\n\n")
			flusher.Flush()
		}
		var fin *string
		if i == len(chunks)-1 && !s.UsageTrailer {
			fin = &finish
		}
		emit(frame(types.StreamDelta{Content: content}, fin, nil))
	}

	if s.UsageTrailer {
		emit(frame(types.StreamDelta{}, &finish, nil))
		usage := s.usageFor(req.Messages)
		emit(frame(types.StreamDelta{}, nil, &usage))
	}

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	s.RequestCount.Add(1)

	if !s.authorized(w, r) {
		return
	}

	var req types.EmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "invalid_request_error")
		return
	}

	if s.FailStatus != 0 {
		writeError(w, s.FailStatus, "injected failure", "server_error")
		return
	}

	if req.Input == nil || req.Input.Count() == 0 {
		writeError(w, http.StatusBadRequest, "input must not be empty", "invalid_request_error")
		return
	}

	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}

	dims := req.Dimensions
	if dims <= 0 {
		dims = s.EmbeddingDimensions
	}

	var texts []string
	if req.Input.Text != nil {
		texts = []string{*req.Input.Text}
	} else {
		texts = req.Input.Texts
	}

	resp := types.EmbeddingResponse{
		Object: "list",
		Model:  req.Model,
		Data:   make([]types.EmbeddingObject, len(texts)),
	}
	tokens := 0
	for i, text := range texts {
		resp.Data[i] = types.EmbeddingObject{
			Object:    "embedding",
			Embedding: deterministicVector(text, dims),
			Index:     i,
		}
		tokens += len(text) / 4
	}
	resp.Usage = types.Usage{PromptTokens: tokens, TotalTokens: tokens}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.RequestCount.Add(1)

	if !s.authorized(w, r) {
		return
	}

	resp := types.ModelsResponse{
		Object: "list",
		Data: []types.Model{
			{ID: "mock-chat", Object: "model", OwnedBy: "mockllm"},
			{ID: "mock-reasoner", Object: "model", OwnedBy: "mockllm"},
			{ID: "mock-embed", Object: "model", OwnedBy: "mockllm"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":        "ok",
		"request_count": s.RequestCount.Load(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.RequireAuth && r.Header.Get("Authorization") == "" {
		writeError(w, http.StatusUnauthorized, "missing API key", "authentication_error")
		return false
	}
	return true
}

func (s *Server) contentChunks() []string {
	if len(s.ContentChunks) > 0 {
		return s.ContentChunks
	}
	return defaultChunks
}

func (s *Server) usageFor(messages []types.Message) types.Usage {
	prompt := 0
	for _, m := range messages {
		prompt += len(m.Content) / 4 // Rough estimate: 4 chars per token
	}
	completion := 0
	for _, c := range s.contentChunks() {
		completion += len(c)/4 + 1
	}
	return types.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

func writeError(w http.ResponseWriter, status int, message, errType string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
		},
	})
}

// deterministicVector derives a stable pseudo-random vector from text so
// repeated requests embed identically.
func deterministicVector(text string, dims int) []float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float64, dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(seed%2000)/1000 - 1
	}
	return vec
}
