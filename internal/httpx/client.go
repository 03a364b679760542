package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const defaultUserAgent = "zoom-recording-downloader"

// StatusError reports a non-2xx response on a raw HTTP fetch. The
// status code lets callers decide whether the failure is worth
// retrying.
type StatusError struct {
	// Code is the HTTP status code.
	Code int

	// Status is the full status line, e.g. "503 Service Unavailable".
	Status string

	// RetryAfter is the server's Retry-After hint, 0 when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Client wraps HTTP operations for streaming file downloads.
//
// Client provides:
//   - A stable User-Agent header
//   - Timeout handling
//   - File download streamed to disk with progress tracking
//   - File size retrieval via HEAD requests
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a download client. The timeout bounds one whole
// download, so it should be generous; zero means no timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// GetFileSize returns the size of a file at the given URL via HEAD
// request.
//
// This is useful for checking whether a local file already matches the
// expected size before re-downloading it.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, newStatusError(resp)
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile downloads a file to the specified path with optional
// progress callback, returning the number of bytes written.
//
// The content is streamed to disk via io.Copy, so peak memory stays
// bounded regardless of file size. The destination file is only created
// once the server has answered 2xx; a non-2xx response returns a
// StatusError and touches nothing on disk.
//
// Example:
//
//	written, err := client.DownloadFile(ctx, url, "/videos/rec.mp4", func(written, total int64) {
//	    if total > 0 {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    }
//	})
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, newStatusError(resp)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	return io.Copy(writer, resp.Body)
}

func newStatusError(resp *http.Response) *StatusError {
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	statusErr := &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
	}
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			statusErr.RetryAfter = time.Duration(seconds) * time.Second
		}
	}
	return statusErr
}
