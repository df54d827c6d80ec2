package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fundqa/internal/config"
	"fundqa/internal/domain"
)

var (
	askProduct string
	askTopK    int
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProduct, "product", "p", "", "restrict retrieval to this fund (fuzzy matched)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(appCfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), config.Seconds(appCfg.Server.RequestTimeoutSecs))
	defer cancel()
	resp := p.Query(ctx, strings.Join(args, " "), askProduct, askTopK)

	out := cmd.OutOrStdout()
	if askJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printResponse(out, resp)
	return nil
}

func printResponse(w io.Writer, r domain.Response) {
	fmt.Fprintln(w, r.Answer)
	fmt.Fprintln(w)
	if r.Rejected {
		fmt.Fprintf(w, "rejected: %s\n", r.RejectionReason)
		return
	}
	fmt.Fprintf(w, "confidence: %.3f\n", r.Confidence)
	for i, s := range r.Sources {
		fmt.Fprintf(w, "  [%d] %s / %s (%.3f)\n", i+1, s.ProductName, s.Category, s.Similarity)
	}
}
