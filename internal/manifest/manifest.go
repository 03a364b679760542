// Package manifest renders the urls.txt artifact: a plain-text listing
// of every discovered download task, written before downloads begin so
// a human can audit the run or fetch stragglers manually.
package manifest

import (
	"fmt"
	"strings"

	ioutils "github.com/tdika/zoom-recording-downloader/internal/io"
	"github.com/tdika/zoom-recording-downloader/internal/model"
)

// FileName is the manifest's conventional filename inside the download
// directory.
const FileName = "urls.txt"

// Build generates the manifest content for a set of tasks.
//
// Each task contributes a numbered entry with its meeting metadata,
// destination filename and authenticated URL:
//
//	1. Weekly Sync (2026-03-10) [speaker_view]
//	   file: Weekly Sync_2026-03-10_speaker-view_f1.mp4
//	   id: f1  size: 1048576 bytes  duration: 45 min
//	   url: https://...
func Build(tasks []*model.DownloadTask) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %d download task(s)\n\n", len(tasks))

	for i, task := range tasks {
		typeInfo := ""
		if task.RecordingType != "" {
			typeInfo = fmt.Sprintf(" [%s]", task.RecordingType)
		}
		fmt.Fprintf(&sb, "%d. %s (%s)%s\n", i+1, task.Topic, task.Date, typeInfo)
		fmt.Fprintf(&sb, "   file: %s\n", task.FileName)
		fmt.Fprintf(&sb, "   id: %s  size: %d bytes  duration: %d min\n", task.FileID, task.FileSize, task.Duration)
		fmt.Fprintf(&sb, "   url: %s\n\n", task.URL)
	}

	return sb.String()
}

// Write renders the manifest and writes it to path.
func Write(path string, tasks []*model.DownloadTask) error {
	return ioutils.WriteFile(path, []byte(Build(tasks)))
}
