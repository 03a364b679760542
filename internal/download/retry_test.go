package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/tdika/zoom-recording-downloader/internal/httpx"
)

func TestRetryPolicy_Backoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Cooldown: time.Second, Exponent: 2.0}

	tests := []struct {
		name    string
		attempt int
		err     error
		want    time.Duration
	}{
		{"first attempt", 1, errors.New("boom"), time.Second},
		{"second attempt", 2, errors.New("boom"), 2 * time.Second},
		{"third attempt", 3, errors.New("boom"), 4 * time.Second},
		{
			"retry-after wins when longer",
			1,
			&httpx.StatusError{Code: 429, RetryAfter: 17 * time.Second},
			17 * time.Second,
		},
		{
			"retry-after ignored when shorter",
			3,
			&httpx.StatusError{Code: 429, RetryAfter: time.Second},
			4 * time.Second,
		},
		{
			"wrapped retry-after still honored",
			1,
			fmt.Errorf("downloading: %w", &httpx.StatusError{Code: 503, RetryAfter: 30 * time.Second}),
			30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Backoff(tt.attempt, tt.err); got != tt.want {
				t.Errorf("Backoff(%d, %v) = %v, want %v", tt.attempt, tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"internal server error", &httpx.StatusError{Code: 500}, true},
		{"bad gateway", &httpx.StatusError{Code: 502}, true},
		{"service unavailable", &httpx.StatusError{Code: 503}, true},
		{"too many requests", &httpx.StatusError{Code: http.StatusTooManyRequests}, true},
		{"request timeout", &httpx.StatusError{Code: http.StatusRequestTimeout}, true},
		{"forbidden", &httpx.StatusError{Code: http.StatusForbidden}, false},
		{"not found", &httpx.StatusError{Code: http.StatusNotFound}, false},
		{"unauthorized", &httpx.StatusError{Code: http.StatusUnauthorized}, false},
		{"wrapped status error", fmt.Errorf("downloading: %w", &httpx.StatusError{Code: 500}), true},
		{"transport error", errors.New("connection reset by peer"), true},
		{"context canceled", context.Canceled, false},
		{"wrapped context deadline", fmt.Errorf("downloading: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %t, want %t", tt.err, got, tt.want)
			}
		})
	}
}
