package download

import "time"

// Format describes the requested output container.
type Format string

const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
)

// Status describes where a job is in its lifecycle.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusPaused      Status = "paused"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
)

// Subtitle is one subtitle artifact produced alongside the media file.
type Subtitle struct {
	Language string `json:"language"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Job is the full lifecycle record of one submitted download request.
type Job struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	Title     string     `json:"title,omitempty"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	Duration  string     `json:"duration,omitempty"`
	Quality   string     `json:"quality"`
	Format    Format     `json:"format"`
	Status    Status     `json:"status"`
	Progress  int        `json:"progress"`
	FileSize  int64      `json:"file_size,omitempty"`
	FilePath  string     `json:"file_path,omitempty"`
	Error     string     `json:"error_message,omitempty"`
	Subtitles []Subtitle `json:"subtitles,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

// Clone returns a copy safe to hand out to readers.
func (j *Job) Clone() *Job {
	out := *j
	if j.Subtitles != nil {
		out.Subtitles = append([]Subtitle(nil), j.Subtitles...)
	}
	return &out
}

// CanTransition enforces the allowed state machine edges.
// Completed and error are terminal; paused may still reach a terminal
// state because an in-flight retrieval is never interrupted.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusDownloading || to == StatusError
	case StatusDownloading:
		return to == StatusPaused || to == StatusCompleted || to == StatusError
	case StatusPaused:
		return to == StatusDownloading || to == StatusCompleted || to == StatusError
	default:
		return false
	}
}

// ValidFormat reports whether the submitted format value is supported.
func ValidFormat(f Format) bool {
	return f == FormatVideo || f == FormatAudio
}
