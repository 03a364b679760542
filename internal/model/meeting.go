package model

import "time"

// User is one account member as returned by the user list endpoint.
//
// Users are immutable snapshots of a single enumeration call; they only
// carry what the recording enumeration needs.
type User struct {
	// ID is the provider-side user identifier.
	ID string

	// Email is the user's login email, used for log context.
	Email string
}

// RecordingFile is a single downloadable file belonging to a meeting
// recording. A meeting typically has several files: one MP4 per view
// (speaker, gallery, shared screen) plus audio-only and chat transcript
// files.
type RecordingFile struct {
	// ID uniquely identifies the file within its meeting. Across a
	// whole run the unique key is the (meeting ID, file ID) pair.
	ID string

	// FileType is the provider's file type tag, e.g. "MP4", "M4A", "CHAT".
	FileType string

	// RecordingType tags which view the file represents, e.g.
	// "shared_screen_with_speaker_view". May be empty.
	RecordingType string

	// FileSize is the size in bytes as reported by the API, 0 if unknown.
	FileSize int64

	// DownloadURL is the unauthenticated download URL. Empty when the
	// file is not downloadable.
	DownloadURL string
}

// Meeting is one recorded meeting session with its metadata and files.
//
// Meetings are created from a single API response and never mutated;
// they are folded into DownloadTasks and then discarded.
type Meeting struct {
	// ID is the numeric meeting identifier, as a string.
	ID string

	// UUID is the per-instance meeting UUID.
	UUID string

	// Topic is the meeting title.
	Topic string

	// StartTime is when the meeting started.
	StartTime time.Time

	// Duration is the meeting length in minutes.
	Duration int

	// Passcode protects playback/download of the recording, if set.
	Passcode string

	// Files are the recording files attached to this meeting.
	Files []RecordingFile
}

// Date returns the meeting start date formatted for filenames and
// display, or "unknown_date" when the start time is missing.
func (m *Meeting) Date() string {
	if m.StartTime.IsZero() {
		return "unknown_date"
	}
	return m.StartTime.Format("2006-01-02")
}
