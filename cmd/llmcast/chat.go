package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	llmcast "github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/internal/config"
)

var (
	flagInteractive bool
	flagSystem      string
)

var reasoningColor = color.New(color.Faint)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Stream a chat completion",
	Long: `Stream a chat completion to stdout.

With a prompt argument the command sends one turn and exits. Without one,
or with --interactive, it opens a REPL that keeps conversation history.
Reasoning deltas from thinking models are rendered dimmed.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, logger, err := buildClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if flagInteractive || len(args) == 0 {
			return runInteractive(ctx, client, cfg, logger)
		}

		var history []llmcast.Message
		if flagSystem != "" {
			history = append(history, llmcast.SystemMessage(flagSystem))
		}
		history = append(history, llmcast.UserMessage(strings.Join(args, " ")))

		_, err = streamTurn(ctx, client, history)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	chatCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "start an interactive session")
	chatCmd.Flags().StringVarP(&flagSystem, "system", "s", "", "system prompt for the conversation")
}

// streamTurn runs one request and renders chunks as they arrive. It returns
// the assembled assistant reply so callers can extend the history with it.
// A context cancelled mid-stream still drains to the terminal chunk, so an
// interrupted turn returns the partial reply without an error.
func streamTurn(ctx context.Context, client *llmcast.Client, history []llmcast.Message) (string, error) {
	reader, err := client.ChatStream(ctx, history)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var reply strings.Builder
	for {
		chunk, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println()
			return reply.String(), err
		}
		if chunk.ReasoningContent != "" {
			reasoningColor.Fprint(os.Stdout, chunk.ReasoningContent)
		}
		if chunk.ReasoningDone {
			fmt.Println()
		}
		if chunk.Content != "" {
			fmt.Print(chunk.Content)
			reply.WriteString(chunk.Content)
		}
		if chunk.Done {
			fmt.Println()
			if flagVerbose && chunk.Usage != nil {
				fmt.Fprintf(os.Stderr, "usage: prompt=%d completion=%d total=%d ttft=%s\n",
					chunk.Usage.PromptTokens, chunk.Usage.CompletionTokens,
					chunk.Usage.TotalTokens, reader.TTFT().Round(time.Millisecond))
			}
		}
	}
	return reply.String(), nil
}

func runInteractive(ctx context.Context, client *llmcast.Client, cfg *config.Config, logger *slog.Logger) error {
	providerName := resolveProviderName(cfg)

	// With a config file on disk, pick up edits to this provider's section
	// without restarting the session. In-flight turns keep the settings they
	// started with.
	if flagConfig != "" {
		mgr, err := config.NewManager(flagConfig, logger)
		if err != nil {
			return err
		}
		defer mgr.Close()
		mgr.OnChange(func(next *config.Config) {
			provCfg, ok := next.Provider(providerName)
			if !ok {
				return
			}
			if err := client.Configure(provCfg); err != nil {
				logger.Warn("ignoring config update", "error", err)
			}
		})
		if err := mgr.Watch(ctx); err != nil {
			logger.Warn("config watch unavailable", "error", err)
		}
	}

	prompt := color.New(color.FgCyan, color.Bold).Sprint("you> ")
	fmt.Printf("chatting with %s (/quit to exit, /reset to clear history, /tokens for an estimate)\n", providerName)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var history []llmcast.Message
	if flagSystem != "" {
		history = append(history, llmcast.SystemMessage(flagSystem))
	}
	base := len(history)

	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			history = history[:base]
			fmt.Println("history cleared")
			continue
		case "/tokens":
			fmt.Printf("%d messages, ~%d tokens\n", len(history), client.EstimateTokens(history))
			continue
		}

		history = append(history, llmcast.UserMessage(line))
		reply, err := streamTurn(ctx, client, history)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(os.Stderr, "error:", err)
			history = history[:len(history)-1]
			continue
		}
		history = append(history, llmcast.AssistantMessage(reply))
	}
}
