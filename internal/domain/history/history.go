// Package history defines the append-only audit trail entities and the
// ordered history level controlling how much of it is recorded.
package history

import (
	"strings"
	"time"
)

// Level is the configured history threshold. Levels are totally ordered.
type Level int

const (
	LevelNone Level = iota
	LevelActivity
	LevelAudit
	LevelFull
)

// ParseLevel maps a config string to a Level. Unknown strings map to audit,
// the engine default.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "none":
		return LevelNone
	case "activity":
		return LevelActivity
	case "full":
		return LevelFull
	default:
		return LevelAudit
	}
}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelActivity:
		return "activity"
	case LevelFull:
		return "full"
	default:
		return "audit"
	}
}

// Action names a recorded task operation.
type Action string

const (
	ActionAddUserLink      Action = "AddUserLink"
	ActionDeleteUserLink   Action = "DeleteUserLink"
	ActionAddGroupLink     Action = "AddGroupLink"
	ActionDeleteGroupLink  Action = "DeleteGroupLink"
	ActionAddComment       Action = "AddComment"
	ActionAddAttachment    Action = "AddAttachment"
	ActionDeleteAttachment Action = "DeleteAttachment"
	ActionAssign           Action = "Assign"
	ActionClaim            Action = "Claim"
	ActionDelegate         Action = "Delegate"
	ActionResolve          Action = "Resolve"
	ActionComplete         Action = "Complete"
	ActionDelete           Action = "Delete"
)

// PartsMarker joins event message parts into the single-line message. It is
// a character not expected to occur in user content.
const PartsMarker = "§"

// Event is one immutable audit trail entry.
type Event struct {
	ID                string    `json:"id"`
	TaskID            string    `json:"task_id"`
	ProcessInstanceID string    `json:"process_instance_id,omitempty"`
	Action            Action    `json:"action"`
	Message           string    `json:"message"`
	UserID            string    `json:"user_id,omitempty"`
	Time              time.Time `json:"time"`
}

// JoinParts builds the stored single-line message from typed parts.
func JoinParts(parts []string) string {
	return strings.Join(parts, PartsMarker)
}

// MessageParts exposes the individual parts of the joined message.
func (e *Event) MessageParts() []string {
	if e.Message == "" {
		return nil
	}
	return strings.Split(e.Message, PartsMarker)
}

// Comment is an immutable free-text note on a task.
type Comment struct {
	ID                string    `json:"id"`
	TaskID            string    `json:"task_id"`
	ProcessInstanceID string    `json:"process_instance_id,omitempty"`
	UserID            string    `json:"user_id,omitempty"`
	Message           string    `json:"message"`
	Time              time.Time `json:"time"`
}

// Attachment is a task-owned reference to external content.
type Attachment struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreateTime  time.Time `json:"create_time"`
}
