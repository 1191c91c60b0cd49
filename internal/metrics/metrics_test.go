package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	llmerrors "github.com/llmcast/llmcast/pkg/errors"
)

func TestPrometheusRecordRequest(t *testing.T) {
	rec := NewPrometheus(prometheus.NewRegistry())

	rec.RecordRequest("deepseek", OpChatStream, "ok", 120*time.Millisecond)
	rec.RecordRequest("deepseek", OpChatStream, "ok", 80*time.Millisecond)
	rec.RecordRequest("deepseek", OpEmbedding, "rate_limit_error", 10*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(rec.requestsTotal.WithLabelValues("deepseek", OpChatStream, "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.requestsTotal.WithLabelValues("deepseek", OpEmbedding, "rate_limit_error")))
	require.Equal(t, 2, testutil.CollectAndCount(rec.requestDuration))
}

func TestPrometheusStreamLifecycle(t *testing.T) {
	rec := NewPrometheus(prometheus.NewRegistry())

	rec.StreamStarted("openai")
	require.Equal(t, 1.0, testutil.ToFloat64(rec.activeStreams.WithLabelValues("openai")))

	rec.RecordChunk("openai", ChunkReasoning)
	rec.RecordChunk("openai", ChunkContent)
	rec.RecordChunk("openai", ChunkContent)
	rec.RecordChunk("openai", ChunkDone)
	rec.RecordParseFailure("openai")
	rec.RecordFirstToken("openai", 300*time.Millisecond)

	rec.StreamEnded("openai")
	require.Equal(t, 0.0, testutil.ToFloat64(rec.activeStreams.WithLabelValues("openai")))

	require.Equal(t, 2.0, testutil.ToFloat64(rec.streamChunks.WithLabelValues("openai", ChunkContent)))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.streamChunks.WithLabelValues("openai", ChunkReasoning)))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.streamChunks.WithLabelValues("openai", ChunkDone)))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.parseFailures.WithLabelValues("openai")))
	require.Equal(t, 1, testutil.CollectAndCount(rec.timeToFirstToken))
}

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "ok", StatusLabel(nil))

	rateLimited := llmerrors.FromHTTPStatus("openai", "gpt-4o", 429, nil)
	require.Equal(t, "rate_limit_error", StatusLabel(rateLimited))

	wrapped := fmt.Errorf("chat: %w", rateLimited)
	require.Equal(t, "rate_limit_error", StatusLabel(wrapped))

	require.Equal(t, "error", StatusLabel(errors.New("boom")))
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = Nop{}
	rec.RecordRequest("p", OpChatStream, "ok", time.Second)
	rec.RecordFirstToken("p", time.Second)
	rec.RecordChunk("p", ChunkContent)
	rec.RecordParseFailure("p")
	rec.StreamStarted("p")
	rec.StreamEnded("p")
}
