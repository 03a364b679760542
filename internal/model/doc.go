// Package model defines the core data structures used throughout
// the zoom-recording-downloader application.
//
// # Meetings and files
//
// Meeting and RecordingFile mirror the recording metadata returned by
// the cloud API; they are immutable snapshots of a single response.
//
// # Download tasks
//
// FlattenTasks turns meetings into DownloadTasks, one per video file:
//
//	tasks := model.FlattenTasks(meetings, token, &model.TaskConfig{
//	    DownloadDir: "/videos/raw/2026-08-26_15-04-05",
//	})
//	fmt.Println(tasks[0].Path) // Where the file will be saved
//
// Destination filenames are derived from topic, date, recording type
// and file ID, sanitized for the filesystem, and guaranteed unique
// within a run.
//
// # Time windows
//
// MonthWindows produces the month-long date ranges the recordings
// endpoint is queried with, covering the trailing year:
//
//	windows := model.MonthWindows(time.Now(), 12)
package model
