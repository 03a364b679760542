package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClient_DownloadFile(t *testing.T) {
	content := strings.Repeat("video-bytes ", 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "rec.mp4")
	client := NewClient(10 * time.Second)

	var lastWritten int64
	written, err := client.DownloadFile(context.Background(), server.URL, destPath, func(written, total int64) {
		lastWritten = written
	})
	if err != nil {
		t.Fatal(err)
	}

	if written != int64(len(content)) {
		t.Errorf("written = %d, want %d", written, len(content))
	}
	if lastWritten != int64(len(content)) {
		t.Errorf("final progress = %d, want %d", lastWritten, len(content))
	}

	data, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Error("downloaded content does not match served content")
	}
}

func TestClient_DownloadFile_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "rec.mp4")
	client := NewClient(10 * time.Second)

	_, err := client.DownloadFile(context.Background(), server.URL, destPath, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Errorf("Code = %d, want 429", statusErr.Code)
	}
	if statusErr.RetryAfter != 17*time.Second {
		t.Errorf("RetryAfter = %v, want 17s", statusErr.RetryAfter)
	}

	// No partial file on a refused download.
	if _, err := os.Stat(destPath); !os.IsNotExist(err) {
		t.Errorf("destination file should not exist after a non-2xx response")
	}
}

func TestClient_GetFileSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "42")
	}))
	defer server.Close()

	client := NewClient(10 * time.Second)
	size, err := client.GetFileSize(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if size != 42 {
		t.Errorf("size = %d, want 42", size)
	}
}

func TestProgressWriter(t *testing.T) {
	var buf strings.Builder
	var updates []int64

	pw := &ProgressWriter{
		Writer: &buf,
		Total:  10,
		OnUpdate: func(written, total int64) {
			updates = append(updates, written)
		},
	}

	pw.Write([]byte("hello"))
	pw.Write([]byte("world"))

	if buf.String() != "helloworld" {
		t.Errorf("buffer = %q, want helloworld", buf.String())
	}
	if len(updates) != 2 || updates[0] != 5 || updates[1] != 10 {
		t.Errorf("updates = %v, want [5 10]", updates)
	}
}
