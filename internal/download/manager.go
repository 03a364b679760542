package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tdika/zoom-recording-downloader/internal/config"
	"github.com/tdika/zoom-recording-downloader/internal/httpx"
	ioutils "github.com/tdika/zoom-recording-downloader/internal/io"
	"github.com/tdika/zoom-recording-downloader/internal/manifest"
	"github.com/tdika/zoom-recording-downloader/internal/model"
	"github.com/tdika/zoom-recording-downloader/internal/zoom"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a progress update from the pipeline.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Summary aggregates the terminal outcome of a run.
type Summary struct {
	Succeeded int
	Failed    int
	Dir       string
}

// Manager coordinates the whole batch: token acquisition, user and
// recording enumeration, flattening, the urls.txt manifest, and the
// bounded download pool.
type Manager struct {
	settings   *config.Settings
	tokens     *zoom.TokenProvider
	api        *zoom.Client
	httpClient *httpx.Client
	policy     RetryPolicy

	downloadDir string
	users       []model.User
	tasks       []*model.DownloadTask

	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)

	mu      sync.Mutex
	results []*model.DownloadResult
}

// NewManager creates a new download Manager. The run's download
// directory is resolved immediately so every later step agrees on it.
func NewManager(settings *config.Settings, creds *config.Credentials, onProgress func(ProgressEvent)) *Manager {
	tokens := zoom.NewTokenProvider(creds, &http.Client{Timeout: settings.RequestTimeout()})

	return &Manager{
		settings:   settings,
		tokens:     tokens,
		api:        zoom.NewClient(tokens, settings),
		httpClient: httpx.NewClient(settings.DownloadTimeout()),
		policy: RetryPolicy{
			MaxAttempts: settings.DownloadMaxRetries,
			Cooldown:    time.Duration(settings.DownloadRetryCooldown * float64(time.Second)),
			Exponent:    settings.DownloadRetryExponent,
		},
		downloadDir: settings.ResolveDownloadDir(time.Now()),
		onProgress:  onProgress,
	}
}

// DownloadDir returns the timestamped directory this run downloads
// into.
func (m *Manager) DownloadDir() string {
	return m.downloadDir
}

// Tasks returns the flattened download tasks discovered by Initialize.
func (m *Manager) Tasks() []*model.DownloadTask {
	return m.tasks
}

// Initialize authenticates, enumerates all users and their recordings
// across the trailing months, and flattens the result into download
// tasks.
//
// Recording enumeration fans out over (user, window) pairs in a
// bounded pool; a failed pair is logged and skipped so one flaky month
// never aborts the run. Only rejected credentials abort.
func (m *Manager) Initialize(ctx context.Context) error {
	if _, err := m.tokens.Token(ctx); err != nil {
		return err
	}

	users, err := m.api.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	m.users = users
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d user(s)", len(users)), Level: LevelInfo})

	windows := model.MonthWindows(time.Now(), m.settings.MonthsBack)

	var (
		meetingsMu  sync.Mutex
		allMeetings []*model.Meeting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentEnumerations)

	for _, user := range users {
		for _, window := range windows {
			g.Go(func() error {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Checking %s: %s", user.Email, window), Level: LevelVerbose})

				meetings, err := m.api.ListRecordings(gctx, user.ID, window)
				if err != nil {
					// Rejected credentials cannot heal mid-run, and a
					// cancelled run should stop; anything else only costs
					// this one (user, window) pair.
					var authErr *zoom.AuthError
					if errors.As(err, &authErr) {
						return err
					}
					if gctx.Err() != nil {
						return gctx.Err()
					}
					m.progress(ProgressEvent{Message: fmt.Sprintf("Error enumerating %s (%s): %v", user.Email, window, err), Level: LevelWarning})
					return nil
				}

				if len(meetings) > 0 {
					meetingsMu.Lock()
					allMeetings = append(allMeetings, meetings...)
					meetingsMu.Unlock()
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// The window buffers (past months ending a day into the next month,
	// the current-month lookahead, the extra next-month window) overlap,
	// so a meeting dated on an overlap day comes back from two queries.
	// Keep one instance per meeting or every file would yield two tasks
	// racing for the same destination path.
	allMeetings = dedupeMeetings(allMeetings)

	// Newest first, so the most recent recordings land on disk before
	// the long tail of old ones.
	sort.Slice(allMeetings, func(i, j int) bool {
		return allMeetings[i].StartTime.After(allMeetings[j].StartTime)
	})

	accessToken, err := m.api.AccessToken(ctx)
	if err != nil {
		return err
	}

	m.tasks = model.FlattenTasks(allMeetings, accessToken, &model.TaskConfig{DownloadDir: m.downloadDir})
	atomic.StoreInt32(&m.totalFiles, int32(len(m.tasks)))
	var totalBytes int64
	for _, task := range m.tasks {
		totalBytes += task.FileSize
	}
	atomic.StoreInt64(&m.totalBytes, totalBytes)

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found %d video file(s) across %d meeting(s)", len(m.tasks), len(allMeetings)),
		Level:   LevelInfo,
	})

	return nil
}

// WriteManifest creates the download directory and writes the urls.txt
// listing of every task, returning the manifest path. It runs before
// StartDownloads so the listing survives even a fully failed run.
func (m *Manager) WriteManifest() (string, error) {
	if err := ioutils.EnsureDir(m.downloadDir); err != nil {
		return "", err
	}

	path := filepath.Join(m.downloadDir, manifest.FileName)
	if err := manifest.Write(path, m.tasks); err != nil {
		return "", err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Wrote manifest: %s", path), Level: LevelInfo})
	return path, nil
}

// StartDownloads runs all tasks through the bounded download pool. A
// task failure never aborts its siblings; the outcome of every task is
// recorded and available via Results and Summary.
func (m *Manager) StartDownloads(ctx context.Context) error {
	if len(m.tasks) == 0 {
		m.progress(ProgressEvent{Message: "No videos to download", Level: LevelInfo})
		return nil
	}

	if err := ioutils.EnsureDir(m.downloadDir); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentDownloads)

	for _, task := range m.tasks {
		g.Go(func() error {
			result := m.downloadTask(gctx, task)
			m.appendResult(result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// Workers record failures instead of returning them, so a cancelled
	// context has to surface here.
	return ctx.Err()
}

// Results returns the recorded outcome of every completed task.
func (m *Manager) Results() []*model.DownloadResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.DownloadResult(nil), m.results...)
}

// Summary tallies results into the final success/failure counts.
func (m *Manager) Summary() Summary {
	summary := Summary{Dir: m.downloadDir}
	for _, result := range m.Results() {
		if result.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// dedupeMeetings drops repeat instances of the same meeting, keeping
// the first seen. The UUID identifies one recorded instance; meetings
// without one fall back to the (ID, start time) pair.
func dedupeMeetings(meetings []*model.Meeting) []*model.Meeting {
	seen := make(map[string]struct{}, len(meetings))
	unique := meetings[:0]
	for _, meeting := range meetings {
		key := meeting.UUID
		if key == "" {
			key = meeting.ID + "|" + meeting.StartTime.Format(time.RFC3339)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, meeting)
	}
	return unique
}

func (m *Manager) appendResult(result *model.DownloadResult) {
	m.mu.Lock()
	m.results = append(m.results, result)
	m.mu.Unlock()
}

// downloadTask drives one task through its state machine: attempts run
// until success, a terminal error, or an exhausted retry budget.
func (m *Manager) downloadTask(ctx context.Context, task *model.DownloadTask) *model.DownloadResult {
	// The API sometimes reports file_size 0. A HEAD gets the real size
	// so the skip-existing and completeness checks still work; failing
	// to learn it just disables those checks for this task.
	if task.FileSize == 0 {
		if token, err := m.tokens.Token(ctx); err == nil {
			if size, err := m.httpClient.GetFileSize(ctx, withAccessToken(task.URL, token.AccessToken)); err == nil {
				task.FileSize = size
			}
		}
	}

	// Already on disk from a previous run with a plausible size: count
	// it as done instead of pulling gigabytes again.
	if m.existsWithExpectedSize(task) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", task.FileName), Level: LevelVerbose})
		atomic.AddInt32(&m.downloadedFiles, 1)
		atomic.AddInt64(&m.receivedBytes, task.FileSize)
		return &model.DownloadResult{Task: task, State: model.TaskSucceeded}
	}

	var lastErr error
	attempt := 0
	for attempt < m.policy.MaxAttempts {
		attempt++

		token, err := m.tokens.Token(ctx)
		if err != nil {
			return &model.DownloadResult{Task: task, State: model.TaskFailed, Attempts: attempt, Err: err}
		}

		written, err := m.attemptDownload(ctx, task, token.AccessToken)
		if err == nil {
			atomic.AddInt32(&m.downloadedFiles, 1)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", task.FileName), Level: LevelSuccess})
			return &model.DownloadResult{Task: task, State: model.TaskSucceeded, Attempts: attempt, BytesWritten: written}
		}
		lastErr = err

		var statusErr *httpx.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			// Token went stale mid-run. Refresh once (coalesced across
			// workers seeing the same expiry) and retry with the new one.
			if _, refreshErr := m.tokens.Invalidate(ctx, token); refreshErr != nil {
				return &model.DownloadResult{Task: task, State: model.TaskFailed, Attempts: attempt, Err: refreshErr}
			}
			continue
		}

		if !Retryable(err) || attempt == m.policy.MaxAttempts {
			break
		}

		cooldown := m.policy.Backoff(attempt, err)
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Retry %d/%d for %s in %s: %v", attempt, m.policy.MaxAttempts, task.FileName, cooldown.Round(time.Millisecond), err),
			Level:   LevelWarning,
		})
		if waitErr := wait(ctx, cooldown); waitErr != nil {
			break
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Failed: %s - %v", task.FileName, lastErr), Level: LevelError})
	return &model.DownloadResult{Task: task, State: model.TaskFailed, Attempts: attempt, Err: lastErr}
}

// attemptDownload performs one streaming download attempt, cleaning up
// any partial file on failure.
func (m *Manager) attemptDownload(ctx context.Context, task *model.DownloadTask, accessToken string) (int64, error) {
	var attemptBytes int64
	onChunk := func(written, total int64) {
		atomic.AddInt64(&m.receivedBytes, written-attemptBytes)
		attemptBytes = written
	}

	written, err := m.httpClient.DownloadFile(ctx, withAccessToken(task.URL, accessToken), task.Path, onChunk)
	if err == nil && task.FileSize > 0 && written < expectedMinimum(task.FileSize, m.settings.AllowedFileSizeDifference) {
		err = fmt.Errorf("incomplete download: %d of %d bytes", written, task.FileSize)
	}
	if err != nil {
		// Roll back this attempt's byte count and remove the partial
		// file so a retry starts clean.
		atomic.AddInt64(&m.receivedBytes, -attemptBytes)
		_ = ioutils.RemoveIfExists(task.Path)
		return 0, err
	}

	return written, nil
}

// existsWithExpectedSize reports whether the destination file already
// holds the expected content, within the configured size tolerance.
func (m *Manager) existsWithExpectedSize(task *model.DownloadTask) bool {
	info, err := os.Stat(task.Path)
	if err != nil || task.FileSize <= 0 {
		return false
	}

	diff := float64(info.Size()-task.FileSize) / float64(task.FileSize)
	return math.Abs(diff) <= m.settings.AllowedFileSizeDifference
}

func expectedMinimum(fileSize int64, tolerance float64) int64 {
	return int64(float64(fileSize) * (1 - tolerance))
}

// withAccessToken rewrites the access_token query parameter so retries
// after a refresh carry the new token.
func withAccessToken(rawURL, accessToken string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	query.Set("access_token", accessToken)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func wait(ctx context.Context, cooldown time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cooldown):
		return nil
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
