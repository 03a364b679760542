// Package httpx provides the HTTP client used for streaming recording
// downloads.
//
// The Client in this package handles:
//   - File downloads streamed to disk with progress tracking
//   - File size retrieval via HEAD requests
//   - Status-aware errors so callers can tell retryable failures apart
//
// # Basic Usage
//
//	client := httpx.NewClient(time.Hour)
//
//	written, err := client.DownloadFile(ctx, url, "/videos/rec.mp4", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Error Classification
//
// Non-2xx responses come back as *StatusError carrying the status code
// and any Retry-After hint:
//
//	var statusErr *httpx.StatusError
//	if errors.As(err, &statusErr) && statusErr.Code == 403 {
//	    // terminal, don't retry
//	}
package httpx
