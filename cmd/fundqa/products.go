package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the funds present in the index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := buildPipeline(appCfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()

		out := cmd.OutOrStdout()
		names := p.ListProducts()
		if len(names) == 0 {
			fmt.Fprintln(out, "No funds indexed.")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}
