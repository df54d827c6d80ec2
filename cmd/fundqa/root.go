package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fundqa/internal/config"
)

var (
	cfgPath  string
	logLevel string

	appCfg *config.AppConfig
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fundqa",
	Short: "Factual mutual fund Q&A over scraped fund records",
	Long: `fundqa answers factual questions (expense ratio, exit load, minimum SIP,
lock-in, riskometer, benchmark) about a fixed set of mutual funds.

Opinionated questions and questions containing personal data are refused.
Answers are short and carry a citation link to the official source.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml or ~/.config/fundqa/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	// API keys may live in .env; a missing file is fine.
	_ = godotenv.Load()

	var err error
	if cfgPath == "" {
		appCfg, _, err = config.LoadDefault()
	} else {
		appCfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		appCfg.Log.Level = logLevel
	}
	logger, err = newLogger(cmd.ErrOrStderr(), appCfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// quietLogger is used by interactive commands so log lines do not tear the UI.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
