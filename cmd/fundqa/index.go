package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the passage index and persist the vector cache",
	Long: `Load records, render passages and compute every passage vector.
With vector_cache.type set to file or sqlite the vectors are persisted so
later runs skip embedding.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	p, err := buildPipeline(appCfg, logger)
	if err != nil {
		return err
	}
	stats := p.Stats()
	if err := p.Close(); err != nil {
		return fmt.Errorf("failed to persist vector cache: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "passages:   %d\n", stats.Passages)
	fmt.Fprintf(out, "funds:      %d\n", stats.Products)
	fmt.Fprintf(out, "vectorizer: %s (dim %d)\n", stats.Vectorizer, stats.Dimension)
	if appCfg.VectorCache.Type != "none" {
		fmt.Fprintf(out, "cache:      %s %s\n", appCfg.VectorCache.Type, appCfg.VectorCache.Path)
	}
	return nil
}
