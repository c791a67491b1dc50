package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// HistoryService exposes the audit trail, comments, and attachments of a
// task. Reads below history level audit return empty results, never an
// error, so callers behave the same at every level.
type HistoryService struct {
	cmd      *Commands
	store    database.Store
	recorder *Recorder
	clock    clock.Clock
}

func NewHistoryService(cmd *Commands, store database.Store, recorder *Recorder, clk clock.Clock) *HistoryService {
	if clk == nil {
		clk = clock.System{}
	}
	return &HistoryService{cmd: cmd, store: store, recorder: recorder, clock: clk}
}

// Events lists the recorded user operation events of a task, oldest first.
func (s *HistoryService) Events(ctx context.Context, taskID string) ([]history.Event, error) {
	if s.recorder.Level() < history.LevelAudit {
		return nil, nil
	}
	return s.store.ListEvents(ctx, taskID)
}

// AddComment attaches a comment to the task. Below history level audit the
// comment is dropped and a nil comment is returned.
func (s *HistoryService) AddComment(ctx context.Context, taskID, message string) (*history.Comment, error) {
	if message == "" {
		return nil, domain.Validationf("comment message must not be empty")
	}
	var out *history.Comment
	err := s.cmd.Execute(ctx, "history.add_comment", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		c, err := s.recorder.Comment(ctx, tx, t, actingUser(ctx), message)
		if err != nil || c == nil {
			return err
		}
		if err := s.recorder.Event(ctx, tx, t, history.ActionAddComment, actingUser(ctx)); err != nil {
			return err
		}
		now := s.clock.Now()
		t.LastUpdated = &now
		if err := tx.UpdateTask(ctx, t); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// Comments lists the comments of a task.
func (s *HistoryService) Comments(ctx context.Context, taskID string) ([]history.Comment, error) {
	if s.recorder.Level() < history.LevelAudit {
		return nil, nil
	}
	return s.store.ListComments(ctx, taskID)
}

// GetComment loads one comment by id.
func (s *HistoryService) GetComment(ctx context.Context, id string) (*history.Comment, error) {
	if s.recorder.Level() < history.LevelAudit {
		return nil, nil
	}
	return s.store.GetComment(ctx, id)
}

// AddAttachment stores attachment metadata on the task. The row itself is
// written at every history level; only the audit event is gated.
func (s *HistoryService) AddAttachment(ctx context.Context, taskID, name, description, url string) (*history.Attachment, error) {
	if name == "" {
		return nil, domain.Validationf("attachment name must not be empty")
	}
	a := &history.Attachment{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		Name:        name,
		Description: description,
		URL:         url,
		CreateTime:  s.clock.Now(),
	}
	err := s.cmd.Execute(ctx, "history.add_attachment", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := tx.InsertAttachment(ctx, a); err != nil {
			return err
		}
		if err := s.recorder.Event(ctx, tx, t, history.ActionAddAttachment, actingUser(ctx), name); err != nil {
			return err
		}
		now := s.clock.Now()
		t.LastUpdated = &now
		return tx.UpdateTask(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Attachments lists the attachments of a task.
func (s *HistoryService) Attachments(ctx context.Context, taskID string) ([]history.Attachment, error) {
	return s.store.ListAttachments(ctx, taskID)
}

// GetAttachment loads one attachment by id.
func (s *HistoryService) GetAttachment(ctx context.Context, id string) (*history.Attachment, error) {
	return s.store.GetAttachment(ctx, id)
}

// DeleteAttachment removes an attachment. The delete is idempotent.
func (s *HistoryService) DeleteAttachment(ctx context.Context, id string) error {
	return s.cmd.Execute(ctx, "history.delete_attachment", func(tx database.Store) error {
		a, err := tx.GetAttachment(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.DeleteAttachment(ctx, id); err != nil {
			return err
		}
		// The owning task may already be gone; the attachment row then
		// lingers as history and no revision bump applies.
		t, err := tx.GetTask(ctx, a.TaskID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.recorder.Event(ctx, tx, t, history.ActionDeleteAttachment, actingUser(ctx), a.Name); err != nil {
			return err
		}
		now := s.clock.Now()
		t.LastUpdated = &now
		return tx.UpdateTask(ctx, t)
	})
}
