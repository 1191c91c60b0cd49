package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	llmcast "github.com/llmcast/llmcast"
)

var (
	flagDimensions int
	flagJSON       bool
)

var embedCmd = &cobra.Command{
	Use:   "embed <text> [text...]",
	Short: "Create embeddings for one or more texts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, _, err := buildClient()
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var opts []llmcast.RequestOption
		if flagDimensions > 0 {
			opts = append(opts, llmcast.WithRequestDimensions(flagDimensions))
		}

		results, err := client.CreateEmbeddings(ctx, args, opts...)
		if err != nil {
			return err
		}
		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for i, res := range results {
			fmt.Printf("[%d] %s  model=%s dims=%d tokens=%d\n",
				i, preview(res.Vector), res.Model, res.Dimensions, res.TokensUsed)
		}
		return nil
	},
}

func init() {
	embedCmd.Flags().IntVar(&flagDimensions, "dimensions", 0, "requested vector width (providers that support it)")
	embedCmd.Flags().BoolVar(&flagJSON, "json", false, "print full vectors as JSON")
}

func preview(vec []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i == 4 {
			b.WriteString(", ...")
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%.4f", v)
	}
	b.WriteByte(']')
	return b.String()
}
