package tokenizer

import (
	"testing"

	"github.com/llmcast/llmcast/pkg/types"
)

func TestCountTextTokensEmpty(t *testing.T) {
	if got := CountTextTokens("gpt-4o", ""); got != 0 {
		t.Fatalf("CountTextTokens(empty) = %d, want 0", got)
	}
}

func TestCountTextTokensConsistency(t *testing.T) {
	short := CountTextTokens("gpt-4o", "hello")
	long := CountTextTokens("gpt-4o", "hello hello hello hello hello hello")

	if short <= 0 {
		t.Fatalf("CountTextTokens(short) = %d, want > 0", short)
	}
	if long <= short {
		t.Fatalf("longer text should count more tokens: short=%d long=%d", short, long)
	}
	if again := CountTextTokens("gpt-4o", "hello"); again != short {
		t.Fatalf("repeated count differs: %d vs %d", again, short)
	}
}

func TestEstimateMessageTokens(t *testing.T) {
	messages := []types.Message{
		types.SystemMessage("You are a helpful assistant."),
		types.UserMessage("What is the capital of France?"),
	}

	want := 0
	for _, msg := range messages {
		want += CountTextTokens("gpt-4o", string(msg.Role))
		want += CountTextTokens("gpt-4o", msg.Content)
		want += 2
	}
	want += 3

	if got := EstimateMessageTokens("gpt-4o", messages); got != want {
		t.Fatalf("EstimateMessageTokens() = %d, want %d", got, want)
	}
}

func TestEstimateMessageTokensEmpty(t *testing.T) {
	if got := EstimateMessageTokens("gpt-4o", nil); got != 0 {
		t.Fatalf("EstimateMessageTokens(nil) = %d, want 0", got)
	}
}

func TestEstimateEmbeddingTokensStringInput(t *testing.T) {
	req := &types.EmbeddingRequest{
		Model: "text-embedding-3-small",
		Input: types.NewEmbeddingInputFromString("hello world"),
	}

	got := EstimateEmbeddingTokens(req.Model, req)
	want := CountTextTokens(req.Model, "hello world")

	if got != want {
		t.Fatalf("EstimateEmbeddingTokens() = %d, want %d", got, want)
	}
}

func TestEstimateEmbeddingTokensStringArrayInput(t *testing.T) {
	texts := []string{"hello world", "embedding tokens"}
	req := &types.EmbeddingRequest{
		Model: "text-embedding-3-small",
		Input: types.NewEmbeddingInputFromStrings(texts),
	}

	got := EstimateEmbeddingTokens(req.Model, req)
	want := CountTextTokens(req.Model, texts[0]) + CountTextTokens(req.Model, texts[1])

	if got != want {
		t.Fatalf("EstimateEmbeddingTokens() = %d, want %d", got, want)
	}
}

func TestEstimateEmbeddingTokensNil(t *testing.T) {
	if got := EstimateEmbeddingTokens("text-embedding-3-small", nil); got != 0 {
		t.Fatalf("EstimateEmbeddingTokens(nil) = %d, want 0", got)
	}
	if got := EstimateEmbeddingTokens("text-embedding-3-small", &types.EmbeddingRequest{}); got != 0 {
		t.Fatalf("EstimateEmbeddingTokens(empty) = %d, want 0", got)
	}
}

func TestNormalizeModelName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deepseek/deepseek-chat", "deepseek-chat"},
		{"openrouter/anthropic/claude-3", "claude-3"},
		{"gpt-4o", "gpt-4o"},
		{"openai/", "openai/"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeModelName(tt.in); got != tt.want {
			t.Fatalf("normalizeModelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
