package model

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// videoFileType is the only file type that is flattened into download
// tasks. Audio-only and chat transcript files are skipped.
const videoFileType = "mp4"

// maxTopicLen bounds the topic portion of a filename so the full path
// stays well under Windows MAX_PATH even for long meeting titles.
const maxTopicLen = 120

// TaskConfig holds the settings FlattenTasks needs to compute
// destination paths.
type TaskConfig struct {
	// DownloadDir is the directory all task paths are rooted in.
	DownloadDir string
}

// DownloadTask is the unit of work for the download pool, derived 1:1
// from a video-typed RecordingFile.
//
// The destination filename is a deterministic function of
// (topic, date, recording type, file ID):
//
//	{topic}_{date}_{recording-type}_{fileID}.mp4
//
// Including the file ID guarantees that no two tasks of a run share a
// filename, even when two files of the same meeting share topic, date
// and type.
type DownloadTask struct {
	// MeetingID identifies the meeting this file belongs to.
	MeetingID string

	// Topic is the meeting title (unsanitized, for display).
	Topic string

	// Date is the meeting start date as YYYY-MM-DD.
	Date string

	// FileID is the recording file identifier.
	FileID string

	// RecordingType tags which view the file represents. May be empty.
	RecordingType string

	// FileSize is the expected size in bytes, 0 if unknown.
	FileSize int64

	// Duration is the meeting length in minutes.
	Duration int

	// URL is the authenticated download URL, ready to GET.
	URL string

	// FileName is the computed destination filename.
	FileName string

	// Path is the full destination path (DownloadDir + FileName).
	Path string
}

// TaskState tracks a task through the download state machine.
type TaskState int

const (
	// TaskPending means the task has not been picked up by a worker.
	TaskPending TaskState = iota

	// TaskInProgress means a download attempt is running.
	TaskInProgress

	// TaskRetrying means the last attempt failed with a retryable error
	// and the task is waiting out its backoff cooldown.
	TaskRetrying

	// TaskSucceeded is terminal: the file is on disk.
	TaskSucceeded

	// TaskFailed is terminal: the retry budget is exhausted or the
	// failure was non-retryable.
	TaskFailed
)

// DownloadResult records the terminal outcome of one task.
type DownloadResult struct {
	// Task is the task this result belongs to.
	Task *DownloadTask

	// State is TaskSucceeded or TaskFailed.
	State TaskState

	// Attempts is how many download attempts were made.
	Attempts int

	// BytesWritten is the number of bytes written to disk.
	BytesWritten int64

	// Err holds the last error for failed tasks, nil on success.
	Err error
}

// Succeeded reports whether the task completed successfully.
func (r *DownloadResult) Succeeded() bool {
	return r.State == TaskSucceeded
}

// FlattenTasks expands meetings into download tasks, one per video file
// with a non-empty download URL. It is a pure function: no I/O, no
// shared state.
//
// The access token (and the meeting passcode, when present) is appended
// to each download URL so the task can be fetched without further
// authentication plumbing.
func FlattenTasks(meetings []*Meeting, accessToken string, cfg *TaskConfig) []*DownloadTask {
	var tasks []*DownloadTask
	for _, meeting := range meetings {
		for _, file := range meeting.Files {
			if !strings.EqualFold(file.FileType, videoFileType) {
				continue
			}
			if file.DownloadURL == "" {
				continue
			}
			tasks = append(tasks, newTask(meeting, file, accessToken, cfg))
		}
	}
	return tasks
}

func newTask(meeting *Meeting, file RecordingFile, accessToken string, cfg *TaskConfig) *DownloadTask {
	task := &DownloadTask{
		MeetingID:     meeting.ID,
		Topic:         meeting.Topic,
		Date:          meeting.Date(),
		FileID:        file.ID,
		RecordingType: file.RecordingType,
		FileSize:      file.FileSize,
		Duration:      meeting.Duration,
		URL:           authenticateURL(file.DownloadURL, accessToken, meeting.Passcode),
	}

	task.FileName = task.parseFileName()
	task.Path = filepath.Join(cfg.DownloadDir, task.FileName)

	return task
}

// parseFileName computes the destination filename for this task.
func (t *DownloadTask) parseFileName() string {
	topic := t.Topic
	if topic == "" {
		topic = "Untitled"
	}
	safeTopic := sanitizeFileName(topic)
	if len(safeTopic) > maxTopicLen {
		safeTopic = strings.TrimRight(safeTopic[:maxTopicLen], " .")
	}

	if t.RecordingType != "" {
		safeType := strings.ReplaceAll(sanitizeFileName(t.RecordingType), "_", "-")
		return fmt.Sprintf("%s_%s_%s_%s.mp4", safeTopic, t.Date, safeType, t.FileID)
	}
	return fmt.Sprintf("%s_%s_%s.mp4", safeTopic, t.Date, t.FileID)
}

// authenticateURL appends the access token and passcode to a download
// URL, preserving any query parameters already present.
func authenticateURL(rawURL, accessToken, passcode string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsed.Query()
	query.Set("access_token", accessToken)
	if passcode != "" {
		query.Set("passcode", passcode)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// sanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Leading and trailing whitespace is removed
func sanitizeFileName(name string) string {
	// Replace invalid path/file characters
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	// Remove trailing dots
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	// Replace multiple whitespace with single space
	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	return strings.Trim(name, " ")
}
