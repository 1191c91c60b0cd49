package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/llmcast/llmcast/providers"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the built-in provider catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		bold := color.New(color.Bold)
		for _, name := range providers.Names() {
			desc, ok := providers.Lookup(name)
			if !ok {
				continue
			}
			var caps []string
			if desc.Capabilities.Chat {
				caps = append(caps, "chat")
			}
			if desc.Capabilities.Embedding {
				caps = append(caps, "embedding")
			}
			bold.Printf("%-14s", desc.Name)
			fmt.Printf(" %-22s %-12s model=%s  %s\n",
				desc.Label, strings.Join(caps, "+"), desc.DefaultChatModel, desc.DefaultBaseURL)
		}
		return nil
	},
}
