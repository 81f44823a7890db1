package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/dgallion1/doctoc/internal/pathstore"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *pathstore.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	// Transport failures (refused connections, resets) surface as *url.Error.
	var ue *url.Error
	return errors.As(err, &ue)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
