// Package identity defines user/group relationships attached to a task.
package identity

import (
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
)

// LinkType classifies an identity link. Beyond the well-known types, any
// custom string is permitted.
type LinkType string

const (
	LinkAssignee  LinkType = "assignee"
	LinkOwner     LinkType = "owner"
	LinkCandidate LinkType = "candidate"
)

// Link relates exactly one user or one group to a task. A task may hold any
// number of candidate links but (TaskID, UserID|GroupID, Type) is unique.
type Link struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	Type       LinkType  `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	GroupID    string    `json:"group_id,omitempty"`
	CreateTime time.Time `json:"create_time"`
}

// Validate checks the exactly-one-principal invariant.
func (l *Link) Validate() error {
	if l.TaskID == "" {
		return domain.Validationf("identity link requires a task id")
	}
	if l.Type == "" {
		return domain.Validationf("identity link requires a type")
	}
	if l.UserID == "" && l.GroupID == "" {
		return domain.Validationf("identity link requires a user id or a group id")
	}
	if l.UserID != "" && l.GroupID != "" {
		return domain.Validationf("identity link must not carry both a user id and a group id")
	}
	return nil
}

// Same reports whether two links denote the same relationship, ignoring id
// and timestamps. Adding a duplicate is a no-op.
func (l *Link) Same(o *Link) bool {
	return l.TaskID == o.TaskID && l.Type == o.Type && l.UserID == o.UserID && l.GroupID == o.GroupID
}
