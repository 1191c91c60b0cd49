package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	llmcast "github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/internal/config"
	"github.com/llmcast/llmcast/internal/observability"
	"github.com/llmcast/llmcast/providers"
)

var (
	flagConfig   string
	flagProvider string
	flagModel    string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "llmcast",
	Short:         "Streaming client for OpenAI-compatible LLM backends",
	Version:       llmcast.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "", "provider to use (see 'llmcast providers')")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "model override for this invocation")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging and usage reports")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(validateCmd)
}

func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadFromFile(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", flagConfig, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := observability.ParseLevel(cfg.Logging.Level)
	if flagVerbose {
		level = slog.LevelDebug
	}
	return observability.NewLogger(observability.LoggerConfig{
		Level:      level,
		Output:     os.Stderr,
		JSONFormat: cfg.Logging.Format == "json",
	})
}

func resolveProviderName(cfg *config.Config) string {
	if flagProvider != "" {
		return flagProvider
	}
	if cfg.DefaultProvider != "" {
		return cfg.DefaultProvider
	}
	return "ollama"
}

// buildClient assembles a client from flags and the optional config file.
// Flag values win over config file entries.
func buildClient() (*llmcast.Client, *config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)
	name := resolveProviderName(cfg)

	opts := []llmcast.Option{llmcast.WithLogger(logger)}
	if provCfg, ok := cfg.Provider(name); ok {
		opts = append(opts, llmcast.WithConfig(provCfg))
	}
	if flagModel != "" {
		opts = append(opts, llmcast.WithModel(flagModel))
	}

	client, err := providers.New(name, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return client, cfg, logger, nil
}
