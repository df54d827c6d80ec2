package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds retries of throttled calls. The delay doubles after
// each attempt starting at BaseDelay.
type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: 2 * time.Second}
}

type retrying struct {
	next   Generator
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry wraps g so ErrRateLimited failures are retried with exponential
// backoff. Every other error is returned immediately.
func WithRetry(g Generator, cfg RetryConfig, logger *slog.Logger) Generator {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultRetryConfig().Attempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetryConfig().BaseDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retrying{next: g, cfg: cfg, logger: logger}
}

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = r.cfg.BaseDelay << uint(r.cfg.Attempts)
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.Attempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotifyWithData(func() (string, error) {
		attempt++
		out, err := r.next.Generate(ctx, prompt)
		if err != nil && !errors.Is(err, ErrRateLimited) {
			return "", backoff.Permanent(err)
		}
		return out, err
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn("generation rate limited, backing off",
			"attempt", attempt,
			"max_attempts", r.cfg.Attempts,
			"wait", wait,
			"error", err,
		)
	})
}
