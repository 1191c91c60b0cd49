// Package metrics provides Prometheus metrics collection for llmcast
// clients. It tracks request outcomes, latencies, and streaming health
// per provider.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	llmerrors "github.com/llmcast/llmcast/pkg/errors"
)

const namespace = "llmcast"

// LatencyBuckets defines histogram buckets for latency metrics (in seconds).
// The upper buckets cover slow streaming completions.
var LatencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
	10.0, 20.0, 30.0, 60.0, 120.0, 300.0,
}

// Chunk kinds reported to RecordChunk.
const (
	ChunkContent   = "content"
	ChunkReasoning = "reasoning"
	ChunkDone      = "done"
)

// Operation names used as the operation label.
const (
	OpChatStream = "chat_stream"
	OpEmbedding  = "embedding"
	OpValidate   = "validate"
)

// Recorder receives client events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordRequest(provider, operation, status string, duration time.Duration)
	RecordFirstToken(provider string, ttft time.Duration)
	RecordChunk(provider, kind string)
	RecordParseFailure(provider string)
	StreamStarted(provider string)
	StreamEnded(provider string)
}

// Nop is a Recorder that discards all events.
type Nop struct{}

func (Nop) RecordRequest(string, string, string, time.Duration) {}
func (Nop) RecordFirstToken(string, time.Duration)              {}
func (Nop) RecordChunk(string, string)                          {}
func (Nop) RecordParseFailure(string)                           {}
func (Nop) StreamStarted(string)                                {}
func (Nop) StreamEnded(string)                                  {}

// StatusLabel converts a request error into a low-cardinality status label.
// Successful requests report "ok"; typed failures report their error type.
func StatusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var le *llmerrors.LLMError
	if errors.As(err, &le) {
		return le.Type
	}
	return "error"
}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	timeToFirstToken *prometheus.HistogramVec
	streamChunks     *prometheus.CounterVec
	parseFailures    *prometheus.CounterVec
	activeStreams    *prometheus.GaugeVec
}

// NewPrometheus registers the llmcast collectors with reg and returns a
// Recorder writing to them. A nil reg uses the default registerer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Prometheus{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of provider requests",
			},
			[]string{"provider", "operation", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end request latency in seconds",
				Buckets:   LatencyBuckets,
			},
			[]string{"provider", "operation"},
		),
		timeToFirstToken: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "time_to_first_token_seconds",
				Help:      "Time to first token for streaming requests",
				Buckets:   LatencyBuckets,
			},
			[]string{"provider"},
		),
		streamChunks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_chunks_total",
				Help:      "Stream chunks delivered, by kind",
			},
			[]string{"provider", "kind"},
		),
		parseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_parse_errors_total",
				Help:      "Malformed stream lines skipped during decoding",
			},
			[]string{"provider"},
		),
		activeStreams: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_streams",
				Help:      "Streams currently open",
			},
			[]string{"provider"},
		),
	}
}

func (p *Prometheus) RecordRequest(provider, operation, status string, duration time.Duration) {
	p.requestsTotal.WithLabelValues(provider, operation, status).Inc()
	p.requestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

func (p *Prometheus) RecordFirstToken(provider string, ttft time.Duration) {
	p.timeToFirstToken.WithLabelValues(provider).Observe(ttft.Seconds())
}

func (p *Prometheus) RecordChunk(provider, kind string) {
	p.streamChunks.WithLabelValues(provider, kind).Inc()
}

func (p *Prometheus) RecordParseFailure(provider string) {
	p.parseFailures.WithLabelValues(provider).Inc()
}

func (p *Prometheus) StreamStarted(provider string) {
	p.activeStreams.WithLabelValues(provider).Inc()
}

func (p *Prometheus) StreamEnded(provider string) {
	p.activeStreams.WithLabelValues(provider).Dec()
}
