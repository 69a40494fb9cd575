package genai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig mirrors the environment-driven knobs of §6/§4.1.
type RetryConfig struct {
	MaxAttempts int
	WaitInitial time.Duration
	WaitMax     time.Duration
}

func (c RetryConfig) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.WaitInitial
	b.MaxInterval = c.WaitMax
	return b
}

// retryableOp runs fn under the configured retry envelope. onRetry is
// invoked once per retry attempt (not per call) so callers can feed the
// named metrics (retries_classify, retries_extract) of §4.1. isRetryableError
// decides whether an error should trigger another attempt; a non-retryable
// error is wrapped in backoff.Permanent so the library stops immediately.
func retryableOp(ctx context.Context, cfg RetryConfig, onRetry func(), fn func() (string, error)) (string, error) {
	attempt := 0
	op := func() (string, error) {
		if attempt > 0 {
			onRetry()
		}
		attempt++
		out, err := fn()
		if err != nil && !isRetryableError(err) {
			return "", backoff.Permanent(err)
		}
		return out, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(uint(maxInt(cfg.MaxAttempts, 1))),
	)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// statusCoder is implemented by transportError; used instead of string
// sniffing wherever the provider is ours, falling back to message
// substrings for anything else (timeouts, transport-level connection
// errors) the way the teacher's isRetryableError does.
type statusCoder interface {
	StatusCode() int
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		if code == 429 || code == 503 || (code >= 500 && code < 600) {
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "resource_exhausted"):
		return true
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "context deadline exceeded"):
		return true
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"):
		return true
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "rate_limit"):
		return true
	}
	return false
}
