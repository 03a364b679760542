package download

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/tdika/zoom-recording-downloader/internal/httpx"
)

// RetryPolicy bounds download attempts and spaces them out with
// exponential backoff. The same policy drives every download call
// site, so the terminal-vs-retryable boundary lives in one place.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, first try included.
	MaxAttempts int

	// Cooldown is the delay before the first retry.
	Cooldown time.Duration

	// Exponent multiplies the delay after each failed attempt.
	Exponent float64
}

// Backoff returns how long to wait after the given failed attempt
// (1-based). A server's Retry-After hint, when longer, wins over the
// computed backoff.
func (p RetryPolicy) Backoff(attempt int, err error) time.Duration {
	cooldown := time.Duration(float64(p.Cooldown) * math.Pow(p.Exponent, float64(attempt-1)))

	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > cooldown {
		return statusErr.RetryAfter
	}
	return cooldown
}

// Retryable reports whether a failed attempt is worth repeating.
//
// Server-side trouble (5xx), throttling (429) and request timeouts
// (408) are transient. Any other 4xx is terminal: the token or
// permissions are wrong, or the recording is passcode protected, and
// repeating the request cannot fix that. 401 is nominally terminal too
// but the worker refreshes the token and retries before this predicate
// is consulted. Transport-level failures (connection reset, timeout)
// are retryable unless the context itself is done.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code >= 500:
			return true
		case statusErr.Code == http.StatusTooManyRequests:
			return true
		case statusErr.Code == http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}

	return true
}
