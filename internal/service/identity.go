package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/database"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
)

// LinkService manages identity links on tasks. Adding a link the task
// already holds is a total no-op: no revision bump, no audit entry.
// Removing a link bumps the task whether or not the link existed; the
// store's delete is idempotent either way.
type LinkService struct {
	cmd      *Commands
	store    database.Store
	recorder *Recorder
	tasks    *TaskService
	clock    clock.Clock
}

func NewLinkService(cmd *Commands, store database.Store, recorder *Recorder, tasks *TaskService, clk clock.Clock) *LinkService {
	if clk == nil {
		clk = clock.System{}
	}
	return &LinkService{cmd: cmd, store: store, recorder: recorder, tasks: tasks, clock: clk}
}

// AddCandidateUser adds a candidate user link.
func (s *LinkService) AddCandidateUser(ctx context.Context, taskID, userID string) error {
	return s.AddUserLink(ctx, taskID, userID, identity.LinkCandidate)
}

// AddCandidateGroup adds a candidate group link.
func (s *LinkService) AddCandidateGroup(ctx context.Context, taskID, groupID string) error {
	return s.AddGroupLink(ctx, taskID, groupID, identity.LinkCandidate)
}

// AddUserLink adds a user link of the given type.
func (s *LinkService) AddUserLink(ctx context.Context, taskID, userID string, typ identity.LinkType) error {
	return s.add(ctx, &identity.Link{TaskID: taskID, Type: typ, UserID: userID})
}

// AddGroupLink adds a group link of the given type.
func (s *LinkService) AddGroupLink(ctx context.Context, taskID, groupID string, typ identity.LinkType) error {
	return s.add(ctx, &identity.Link{TaskID: taskID, Type: typ, GroupID: groupID})
}

// DeleteCandidateUser removes a candidate user link.
func (s *LinkService) DeleteCandidateUser(ctx context.Context, taskID, userID string) error {
	return s.DeleteUserLink(ctx, taskID, userID, identity.LinkCandidate)
}

// DeleteCandidateGroup removes a candidate group link.
func (s *LinkService) DeleteCandidateGroup(ctx context.Context, taskID, groupID string) error {
	return s.DeleteGroupLink(ctx, taskID, groupID, identity.LinkCandidate)
}

// DeleteUserLink removes a user link of the given type.
func (s *LinkService) DeleteUserLink(ctx context.Context, taskID, userID string, typ identity.LinkType) error {
	return s.delete(ctx, &identity.Link{TaskID: taskID, Type: typ, UserID: userID})
}

// DeleteGroupLink removes a group link of the given type.
func (s *LinkService) DeleteGroupLink(ctx context.Context, taskID, groupID string, typ identity.LinkType) error {
	return s.delete(ctx, &identity.Link{TaskID: taskID, Type: typ, GroupID: groupID})
}

// Links lists the identity links of a task.
func (s *LinkService) Links(ctx context.Context, taskID string) ([]identity.Link, error) {
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.store.ListLinks(ctx, taskID)
}

func (s *LinkService) add(ctx context.Context, l *identity.Link) error {
	if err := l.Validate(); err != nil {
		return err
	}
	var assigned string
	err := s.cmd.Execute(ctx, "link.add", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, l.TaskID)
		if err != nil {
			return err
		}
		existing, err := tx.ListLinks(ctx, l.TaskID)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].Same(l) {
				return nil
			}
		}
		l.ID = uuid.NewString()
		l.CreateTime = s.clock.Now()
		if err := tx.InsertLink(ctx, l); err != nil {
			return err
		}
		// An assignee link expressed through the link API keeps the task
		// field in sync.
		if l.Type == identity.LinkAssignee && l.UserID != "" {
			t.SetAssignee(l.UserID)
			assigned = l.UserID
		}
		now := s.clock.Now()
		t.LastUpdated = &now
		if err := tx.UpdateTask(ctx, t); err != nil {
			return err
		}
		return s.recorder.Event(ctx, tx, t, addAction(l), actingUser(ctx), linkParts(l)...)
	})
	if err != nil {
		return err
	}
	if assigned != "" {
		s.tasks.publish(ctx, messagequeue.SubjectTaskAssigned, messagequeue.TaskAssignedPayload{
			TaskID:   l.TaskID,
			Assignee: assigned,
		})
	}
	return nil
}

func (s *LinkService) delete(ctx context.Context, l *identity.Link) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return s.cmd.Execute(ctx, "link.delete", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, l.TaskID)
		if err != nil {
			return err
		}
		if err := tx.DeleteLink(ctx, l); err != nil {
			return err
		}
		now := s.clock.Now()
		t.LastUpdated = &now
		if err := tx.UpdateTask(ctx, t); err != nil {
			return err
		}
		return s.recorder.Event(ctx, tx, t, deleteAction(l), actingUser(ctx), linkParts(l)...)
	})
}

func addAction(l *identity.Link) history.Action {
	if l.GroupID != "" {
		return history.ActionAddGroupLink
	}
	return history.ActionAddUserLink
}

func deleteAction(l *identity.Link) history.Action {
	if l.GroupID != "" {
		return history.ActionDeleteGroupLink
	}
	return history.ActionDeleteUserLink
}

// linkParts records the principal and link type as message parts.
func linkParts(l *identity.Link) []string {
	if l.GroupID != "" {
		return []string{l.GroupID, string(l.Type)}
	}
	return []string{l.UserID, string(l.Type)}
}
