// Command mockllm runs a standalone OpenAI-compatible mock backend. It is
// handy for demos and for exercising the CLI without credentials:
//
//	mockllm --addr :8080 --chunk-delay 40ms &
//	llmcast chat -p ollama ... (with base_url pointed at http://localhost:8080/v1)
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/llmcast/llmcast/internal/mockllm"
	"github.com/llmcast/llmcast/internal/observability"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address")
		latency    = flag.Duration("latency", 0, "delay before the first byte of each response")
		chunkDelay = flag.Duration("chunk-delay", 25*time.Millisecond, "delay between stream chunks")
		reasoning  = flag.Bool("reasoning", false, "emit reasoning deltas before content")
		usage      = flag.Bool("usage", true, "emit a usage trailer frame")
		auth       = flag.Bool("auth", false, "reject requests without a bearer token")
	)
	flag.Parse()

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:  slog.LevelInfo,
		Output: os.Stderr,
	})

	mock := mockllm.NewServer()
	mock.Latency = *latency
	mock.ChunkDelay = *chunkDelay
	mock.UsageTrailer = *usage
	mock.RequireAuth = *auth
	if *reasoning {
		mock.ReasoningChunks = []string{"Thinking about ", "the question..."}
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("mock backend listening", "addr", *addr, "chunk_delay", chunkDelay.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("mock backend stopped", "requests_served", mock.RequestCount.Load())
}
