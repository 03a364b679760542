package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tdika/zoom-recording-downloader/internal/model"
)

// JSONRecordingFile is one file entry within a meeting recording.
type JSONRecordingFile struct {
	ID            string    `json:"id"`
	MeetingID     string    `json:"meeting_id"`
	FileType      string    `json:"file_type"`
	FileExtension string    `json:"file_extension"`
	FileSize      int64     `json:"file_size"`
	DownloadURL   string    `json:"download_url"`
	PlayURL       string    `json:"play_url"`
	Status        string    `json:"status"`
	RecordingType string    `json:"recording_type"`
	RecordingEnd  time.Time `json:"recording_end"`
}

// JSONMeeting is one recorded meeting from the recordings list
// endpoint.
//
// The meeting ID arrives as a JSON number; json.Number keeps it intact
// as the string identifier the rest of the code uses. The playback
// passcode has shown up under several field names across API versions,
// so all of them are carried.
type JSONMeeting struct {
	UUID                  string              `json:"uuid"`
	ID                    json.Number         `json:"id"`
	Topic                 string              `json:"topic"`
	StartTime             time.Time           `json:"start_time"`
	Duration              int                 `json:"duration"`
	TotalSize             int64               `json:"total_size"`
	RecordingCount        int                 `json:"recording_count"`
	RecordingPlayPasscode string              `json:"recording_play_passcode"`
	Password              string              `json:"password"`
	Passcode              string              `json:"passcode"`
	RecordingFiles        []JSONRecordingFile `json:"recording_files"`
}

// RecordingListPage is one page of the paginated recordings response.
type RecordingListPage struct {
	From          string        `json:"from"`
	To            string        `json:"to"`
	PageSize      int           `json:"page_size"`
	TotalRecords  int           `json:"total_records"`
	NextPageToken string        `json:"next_page_token"`
	Meetings      []JSONMeeting `json:"meetings"`
}

// ToMeetings converts the page's entries to model meetings.
func (p *RecordingListPage) ToMeetings() []*model.Meeting {
	meetings := make([]*model.Meeting, 0, len(p.Meetings))
	for i := range p.Meetings {
		meetings = append(meetings, p.Meetings[i].ToMeeting())
	}
	return meetings
}

// ToMeeting converts a JSONMeeting to a model.Meeting.
func (jm *JSONMeeting) ToMeeting() *model.Meeting {
	meeting := &model.Meeting{
		ID:        jm.ID.String(),
		UUID:      jm.UUID,
		Topic:     jm.Topic,
		StartTime: jm.StartTime,
		Duration:  jm.Duration,
		Passcode:  jm.passcode(),
	}

	for _, jf := range jm.RecordingFiles {
		meeting.Files = append(meeting.Files, model.RecordingFile{
			ID:            jf.ID,
			FileType:      strings.ToUpper(jf.FileType),
			RecordingType: jf.RecordingType,
			FileSize:      jf.FileSize,
			DownloadURL:   jf.DownloadURL,
		})
	}

	return meeting
}

// passcode picks the first populated passcode field.
func (jm *JSONMeeting) passcode() string {
	for _, candidate := range []string{jm.RecordingPlayPasscode, jm.Password, jm.Passcode} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
