package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	llmcast "github.com/llmcast/llmcast"
	"github.com/llmcast/llmcast/providers"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Probe provider reachability and credentials",
	Long: `Probe each configured provider with a lightweight authenticated request.

With --provider only that provider is checked; otherwise every provider
named in the config file is probed, falling back to the default provider
when no config file is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		names := cfg.Names()
		if flagProvider != "" {
			names = []string{flagProvider}
		} else if len(names) == 0 {
			names = []string{resolveProviderName(cfg)}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var failed int
		for _, name := range names {
			opts := []llmcast.Option{llmcast.WithLogger(logger)}
			if provCfg, ok := cfg.Provider(name); ok {
				opts = append(opts, llmcast.WithConfig(provCfg))
			}
			client, err := providers.New(name, opts...)
			if err != nil {
				fmt.Printf("%s %-14s %v\n", color.RedString("✗"), name, err)
				failed++
				continue
			}
			if client.ValidateConfig(ctx) {
				fmt.Printf("%s %-14s reachable\n", color.GreenString("✓"), name)
			} else {
				fmt.Printf("%s %-14s unreachable or rejected credentials\n", color.RedString("✗"), name)
				failed++
			}
			client.Close()
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d providers failed validation", failed, len(names))
		}
		return nil
	},
}
