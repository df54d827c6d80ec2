package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fundqa/internal/config"
	"fundqa/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Q&A HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(appCfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	addr := appCfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	timeout := config.Seconds(appCfg.Server.RequestTimeoutSecs)
	api := httpapi.NewServer(p, httpapi.Options{
		CORSOrigin:     appCfg.Server.CORSOrigin,
		RequestTimeout: timeout,
		DefaultTopK:    appCfg.Retrieval.TopK,
		MaxTopK:        appCfg.Retrieval.MaxTopK,
	}, logger)

	srv := &http.Server{
		Addr:         addr,
		Handler:      api,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		stats := p.Stats()
		logger.Info("api server starting", "addr", addr, "passages", stats.Passages, "funds", stats.Products)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
