package investigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RetryConfig holds retry behavior for investigation API calls. The
// core pipeline never retries; resilience against transient API
// failures lives here at the boundary.
type RetryConfig struct {
	MaxRetries        int           // Maximum number of retries (default: 3)
	InitialBackoff    time.Duration // Initial backoff duration (default: 1s)
	MaxBackoff        time.Duration // Maximum backoff duration (default: 30s)
	BackoffMultiplier float64       // Backoff multiplier (default: 2.0)
	Timeout           time.Duration // Per-attempt timeout (default: 120s)
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		Timeout:           120 * time.Second,
	}
}

// retryWithBackoff runs fn with exponential backoff on retriable
// failures. Context cancellation and non-retriable errors abort
// immediately.
func (inv *Investigator) retryWithBackoff(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error
	backoff := inv.retry.InitialBackoff

	for attempt := 0; attempt <= inv.retry.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, inv.retry.Timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetriableError(err) {
			return fmt.Errorf("%s failed: %w", operation, err)
		}
		if attempt == inv.retry.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", operation, ctx.Err())
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * inv.retry.BackoffMultiplier)
		if backoff > inv.retry.MaxBackoff {
			backoff = inv.retry.MaxBackoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, inv.retry.MaxRetries+1, lastErr)
}

// isRetriableError distinguishes transient API failures worth retrying
// from permanent ones (auth, malformed request) that will only fail
// again.
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit",
		"overloaded",
		"timeout",
		"connection reset",
		"connection refused",
		"temporarily unavailable",
		"status 429",
		"status 500",
		"status 502",
		"status 503",
		"status 529",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
