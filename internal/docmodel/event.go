package docmodel

// EventKind tags a ProgressEvent's variant.
type EventKind string

const (
	EventFileStarted   EventKind = "file_started"
	EventFileCompleted EventKind = "file_completed"
	EventDirStarted    EventKind = "dir_started"
	EventDirCompleted  EventKind = "dir_completed"
	EventProgress      EventKind = "progress"
	EventCompleted     EventKind = "completed"
	EventError         EventKind = "error"
	EventCancelled     EventKind = "cancelled"
)

// ProgressEvent is the tagged message broadcast over the Progress Bus.
// Paths are always forward-slash relative paths.
type ProgressEvent struct {
	Kind EventKind `json:"type"`

	Path string `json:"path,omitempty"` // file_started/completed, dir_started/completed

	Progress     int      `json:"progress,omitempty"`      // progress
	CurrentFiles []string `json:"currentFiles,omitempty"`  // progress
	Stats        *Stats   `json:"stats,omitempty"`         // progress, completed

	Message string `json:"message,omitempty"` // error
}
