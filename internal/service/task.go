package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
	"github.com/Strob0t/TaskForge/internal/expr"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/database"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
)

// TaskService implements the task lifecycle: create, save, claim, delegate,
// resolve, complete, suspend, delete. Lifecycle messages are published after
// the owning transaction commits; a publish failure is logged, never fatal.
type TaskService struct {
	cmd      *Commands
	store    database.Store
	recorder *Recorder
	queue    messagequeue.Queue
	clock    clock.Clock
	engine   config.Engine
	log      *slog.Logger
}

// NewTaskService creates a task service. queue may be nil when no broker is
// configured.
func NewTaskService(cmd *Commands, store database.Store, recorder *Recorder, queue messagequeue.Queue, clk clock.Clock, engine config.Engine, log *slog.Logger) *TaskService {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{cmd: cmd, store: store, recorder: recorder, queue: queue, clock: clk, engine: engine, log: log}
}

// Create returns a new unsaved task. Revision stays 0 until the first Save.
func (s *TaskService) Create() *task.Task {
	return &task.Task{
		ID:         uuid.NewString(),
		Priority:   task.DefaultPriority,
		CreateTime: s.clock.Now(),
	}
}

// Save inserts the task on its first call (Revision 0) and updates it on
// every later call. The first successful save leaves Revision at 1.
func (s *TaskService) Save(ctx context.Context, t *task.Task) error {
	if t.ID == task.GenericResourceID {
		return domain.Validationf("task id %q is reserved", task.GenericResourceID)
	}
	if t.Standalone() && !s.engine.StandaloneTasks {
		return domain.NotAllowedf("standalone tasks are disabled")
	}
	insert := t.Revision == 0
	err := s.cmd.Execute(ctx, "task.save", func(tx database.Store) error {
		if insert {
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			if t.CreateTime.IsZero() {
				t.CreateTime = s.clock.Now()
			}
			if t.ParentTaskID != "" {
				if _, err := tx.GetTask(ctx, t.ParentTaskID); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return domain.Validationf("parent task %s does not exist", t.ParentTaskID)
					}
					return err
				}
			}
			t.Revision = 1
			if err := tx.InsertTask(ctx, t); err != nil {
				t.Revision = 0
				return err
			}
		} else {
			now := s.clock.Now()
			t.LastUpdated = &now
			if err := tx.UpdateTask(ctx, t); err != nil {
				return err
			}
		}
		return s.syncIdentity(ctx, tx, t)
	})
	if err != nil {
		return err
	}
	if insert {
		s.publish(ctx, messagequeue.SubjectTaskCreated, messagequeue.TaskCreatedPayload{
			TaskID:     t.ID,
			Name:       t.Name,
			Assignee:   t.Assignee,
			TenantID:   t.TenantID,
			CreateTime: t.CreateTime,
		})
	}
	return nil
}

// Claim assigns the task to userID. Claiming a task already held by someone
// else is a conflict; claiming a task one already holds is a no-op.
func (s *TaskService) Claim(ctx context.Context, id, userID string) error {
	var claimed *task.Task
	err := s.cmd.Execute(ctx, "task.claim", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if t.Suspended {
			return domain.NotAllowedf("task %s is suspended", id)
		}
		if t.Assignee == userID {
			return nil
		}
		if t.Assignee != "" {
			return domain.Conflictf("task %s is already claimed by %s", id, t.Assignee)
		}
		t.SetAssignee(userID)
		if err := s.update(ctx, tx, t); err != nil {
			return err
		}
		if err := s.recorder.Event(ctx, tx, t, history.ActionClaim, actingUser(ctx), "assignee", userID); err != nil {
			return err
		}
		claimed = t
		return nil
	})
	if err != nil || claimed == nil {
		return err
	}
	s.publish(ctx, messagequeue.SubjectTaskAssigned, messagequeue.TaskAssignedPayload{
		TaskID:   id,
		Assignee: userID,
	})
	return nil
}

// SetAssignee assigns or releases (empty userID) the task unconditionally.
func (s *TaskService) SetAssignee(ctx context.Context, id, userID string) error {
	var previous string
	err := s.cmd.Execute(ctx, "task.assign", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		previous = t.Assignee
		t.SetAssignee(userID)
		if err := s.update(ctx, tx, t); err != nil {
			return err
		}
		return s.recorder.Event(ctx, tx, t, history.ActionAssign, actingUser(ctx), "assignee", userID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, messagequeue.SubjectTaskAssigned, messagequeue.TaskAssignedPayload{
		TaskID:   id,
		Assignee: userID,
		Previous: previous,
	})
	return nil
}

// SetOwner sets the task owner.
func (s *TaskService) SetOwner(ctx context.Context, id, userID string) error {
	return s.cmd.Execute(ctx, "task.set_owner", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		t.Owner = userID
		return s.update(ctx, tx, t)
	})
}

// SetPriority sets the task priority.
func (s *TaskService) SetPriority(ctx context.Context, id string, priority int) error {
	return s.cmd.Execute(ctx, "task.set_priority", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		t.Priority = priority
		return s.update(ctx, tx, t)
	})
}

// Delegate hands the task to userID; the current assignee becomes its owner.
func (s *TaskService) Delegate(ctx context.Context, id, userID string) error {
	err := s.cmd.Execute(ctx, "task.delegate", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if t.Suspended {
			return domain.NotAllowedf("task %s is suspended", id)
		}
		t.Delegate(userID)
		if err := s.update(ctx, tx, t); err != nil {
			return err
		}
		return s.recorder.Event(ctx, tx, t, history.ActionDelegate, actingUser(ctx), "assignee", userID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, messagequeue.SubjectTaskAssigned, messagequeue.TaskAssignedPayload{
		TaskID:   id,
		Assignee: userID,
	})
	return nil
}

// Resolve returns a delegated task to its owner.
func (s *TaskService) Resolve(ctx context.Context, id string) error {
	return s.cmd.Execute(ctx, "task.resolve", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		t.Resolve()
		if err := s.update(ctx, tx, t); err != nil {
			return err
		}
		return s.recorder.Event(ctx, tx, t, history.ActionResolve, actingUser(ctx))
	})
}

// Complete finishes the task and removes its runtime state with delete
// reason "completed". Completion is the one removal path open to tasks on
// running instances. History rows survive; only runtime rows go.
func (s *TaskService) Complete(ctx context.Context, id string) error {
	var assignee string
	err := s.cmd.Execute(ctx, "task.complete", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if t.Suspended {
			return domain.NotAllowedf("task %s is suspended", id)
		}
		if err := s.recorder.Event(ctx, tx, t, history.ActionComplete, actingUser(ctx)); err != nil {
			return err
		}
		assignee = t.Assignee
		return s.remove(ctx, tx, t, "completed", false)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, messagequeue.SubjectTaskCompleted, messagequeue.TaskCompletedPayload{
		TaskID:   id,
		Assignee: assignee,
	})
	return nil
}

// Suspend blocks claim, delegate, and complete on the task until Activate.
func (s *TaskService) Suspend(ctx context.Context, id string) error {
	return s.setSuspended(ctx, id, true)
}

// Activate lifts a suspension.
func (s *TaskService) Activate(ctx context.Context, id string) error {
	return s.setSuspended(ctx, id, false)
}

func (s *TaskService) setSuspended(ctx context.Context, id string, suspended bool) error {
	return s.cmd.Execute(ctx, "task.suspend", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if t.Suspended == suspended {
			return nil
		}
		t.Suspended = suspended
		return s.update(ctx, tx, t)
	})
}

// Delete removes the task; its subtasks stay behind as orphans. Deleting an
// absent id succeeds silently. Tasks attached to a running process or case
// instance may only leave through Complete. With cascade the comments and
// attachments go too; without it they stay behind as history.
func (s *TaskService) Delete(ctx context.Context, id string, cascade bool, reason string) error {
	return s.DeleteTasks(ctx, []string{id}, cascade, reason)
}

// DeleteTasks removes several tasks in one transaction.
func (s *TaskService) DeleteTasks(ctx context.Context, ids []string, cascade bool, reason string) error {
	if reason == "" {
		reason = s.engine.DefaultDeleteReason
	}
	var deleted []string
	err := s.cmd.Execute(ctx, "task.delete", func(tx database.Store) error {
		deleted = deleted[:0]
		for _, id := range ids {
			t, err := tx.GetTask(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if t.Running() {
				return domain.NotAllowedf("task %s belongs to a running instance and can only be completed", id)
			}
			if err := s.recorder.Event(ctx, tx, t, history.ActionDelete, actingUser(ctx), "reason", reason); err != nil {
				return err
			}
			if err := s.remove(ctx, tx, t, reason, cascade); err != nil {
				return err
			}
			deleted = append(deleted, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range deleted {
		s.publish(ctx, messagequeue.SubjectTaskDeleted, messagequeue.TaskDeletedPayload{
			TaskID: id,
			Reason: reason,
		})
	}
	return nil
}

// Get loads a task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// SubTasks lists the direct subtasks of a task.
func (s *TaskService) SubTasks(ctx context.Context, parentID string) ([]task.Task, error) {
	return s.store.ListSubtasks(ctx, parentID)
}

// update stamps LastUpdated and writes the task under the revision check.
func (s *TaskService) update(ctx context.Context, tx database.Store, t *task.Task) error {
	now := s.clock.Now()
	t.LastUpdated = &now
	if err := tx.UpdateTask(ctx, t); err != nil {
		return err
	}
	return s.syncIdentity(ctx, tx, t)
}

// remove deletes the task's runtime rows. Subtasks are left in place as
// orphans; they stay queryable and must be deleted on their own.
func (s *TaskService) remove(ctx context.Context, tx database.Store, t *task.Task, reason string, cascade bool) error {
	t.DeleteReason = reason
	if err := tx.DeleteVariables(ctx, variable.Ref{ID: t.ID, Type: variable.ScopeTask}); err != nil {
		return err
	}
	if err := tx.DeleteLinksForTask(ctx, t.ID); err != nil {
		return err
	}
	if cascade {
		if err := tx.DeleteCommentsForTask(ctx, t.ID); err != nil {
			return err
		}
		if err := tx.DeleteAttachmentsForTask(ctx, t.ID); err != nil {
			return err
		}
	}
	return tx.DeleteTask(ctx, t.ID)
}

// syncIdentity mirrors the assignee and owner fields into identity links so
// involvement queries see them alongside candidate links.
func (s *TaskService) syncIdentity(ctx context.Context, tx database.Store, t *task.Task) error {
	links, err := tx.ListLinks(ctx, t.ID)
	if err != nil {
		return err
	}
	want := map[identity.LinkType]string{
		identity.LinkAssignee: t.Assignee,
		identity.LinkOwner:    t.Owner,
	}
	for i := range links {
		l := links[i]
		user, tracked := want[l.Type]
		if !tracked {
			continue
		}
		if l.UserID == user {
			delete(want, l.Type)
			continue
		}
		if err := tx.DeleteLink(ctx, &l); err != nil {
			return err
		}
	}
	for typ, user := range want {
		if user == "" {
			continue
		}
		l := &identity.Link{
			ID:         uuid.NewString(),
			TaskID:     t.ID,
			Type:       typ,
			UserID:     user,
			CreateTime: s.clock.Now(),
		}
		if err := tx.InsertLink(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		s.log.Warn("publish event", "subject", subject, "error", err)
	}
}

// actingUser resolves the authenticated user for audit attribution.
// Anonymous calls record an empty user id.
func actingUser(ctx context.Context) string {
	auth, ok := expr.AuthenticationFrom(ctx)
	if !ok {
		return ""
	}
	return auth.UserID
}
