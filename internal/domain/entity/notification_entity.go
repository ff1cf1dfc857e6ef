package entity

import "time"

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient, non-blocking message for the UI (a toast).
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Action  string    `json:"action,omitempty"`
	PostID  string    `json:"post_id,omitempty"`
	At      time.Time `json:"at"`
}
