// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/Strob0t/TaskForge/internal/domain/filter"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
)

// Store is the port interface for the task persistence layer. It is a
// transactional row store: writes go through InTx when they must land
// atomically, and reads are plain range scans the query layer filters
// in process.
//
// UpdateTask and UpdateFilter apply optimistic concurrency control: the
// write matches both id and the revision the caller read, reports
// domain.ErrConflict when no row matched, and bumps the in-memory
// revision only on success.
type Store interface {
	// Tasks
	InsertTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (*task.Task, error)
	ListTasks(ctx context.Context) ([]task.Task, error)
	ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error)

	// Variables
	GetVariable(ctx context.Context, scope variable.Ref, name string) (*variable.Variable, error)
	ListVariables(ctx context.Context, scope variable.Ref) ([]variable.Variable, error)
	UpsertVariable(ctx context.Context, v *variable.Variable) error
	DeleteVariable(ctx context.Context, scope variable.Ref, name string) error
	DeleteVariables(ctx context.Context, scope variable.Ref) error

	// Identity links
	InsertLink(ctx context.Context, l *identity.Link) error
	DeleteLink(ctx context.Context, l *identity.Link) error
	ListLinks(ctx context.Context, taskID string) ([]identity.Link, error)
	DeleteLinksForTask(ctx context.Context, taskID string) error

	// History
	InsertEvent(ctx context.Context, e *history.Event) error
	ListEvents(ctx context.Context, taskID string) ([]history.Event, error)
	InsertComment(ctx context.Context, c *history.Comment) error
	GetComment(ctx context.Context, id string) (*history.Comment, error)
	ListComments(ctx context.Context, taskID string) ([]history.Comment, error)
	DeleteCommentsForTask(ctx context.Context, taskID string) error
	InsertAttachment(ctx context.Context, a *history.Attachment) error
	GetAttachment(ctx context.Context, id string) (*history.Attachment, error)
	ListAttachments(ctx context.Context, taskID string) ([]history.Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error
	DeleteAttachmentsForTask(ctx context.Context, taskID string) error

	// Saved filters
	InsertFilter(ctx context.Context, f *filter.Filter) error
	UpdateFilter(ctx context.Context, f *filter.Filter) error
	GetFilter(ctx context.Context, id string) (*filter.Filter, error)
	ListFilters(ctx context.Context, owner string) ([]filter.Filter, error)
	DeleteFilter(ctx context.Context, id string) error

	// InTx runs fn against a transactional view of the store. Every write
	// fn performs commits or rolls back as one unit.
	InTx(ctx context.Context, fn func(Store) error) error
}
