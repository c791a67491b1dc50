package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
	"github.com/Strob0t/TaskForge/internal/expr"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
)

func TestSaveInsertThenUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	tk.Name = "review invoice"
	if tk.Revision != 0 {
		t.Fatalf("unsaved task revision = %d, want 0", tk.Revision)
	}
	if tk.Priority != task.DefaultPriority {
		t.Fatalf("priority = %d, want %d", tk.Priority, task.DefaultPriority)
	}
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if tk.Revision != 1 {
		t.Fatalf("after first save revision = %d, want 1", tk.Revision)
	}

	tk.Description = "supplier invoice 4711"
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if tk.Revision != 2 {
		t.Fatalf("after second save revision = %d, want 2", tk.Revision)
	}
	if tk.LastUpdated == nil || !tk.LastUpdated.Equal(f.clock.T) {
		t.Fatalf("LastUpdated = %v, want %v", tk.LastUpdated, f.clock.T)
	}

	if got := f.queue.messages(messagequeue.SubjectTaskCreated); len(got) != 1 {
		t.Fatalf("tasks.created messages = %d, want 1", len(got))
	}
}

func TestSaveReservedID(t *testing.T) {
	f := newFixture(t)
	tk := f.tasks.Create()
	tk.ID = task.GenericResourceID
	err := f.tasks.Save(context.Background(), tk)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("save with reserved id: %v, want validation error", err)
	}
}

func TestSaveStandaloneDisabled(t *testing.T) {
	engine := config.Defaults().Engine
	engine.StandaloneTasks = false
	f := newFixture(t, withEngine(engine))
	err := f.tasks.Save(context.Background(), f.tasks.Create())
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Fatalf("standalone save: %v, want not-allowed error", err)
	}
}

func TestSaveMissingParent(t *testing.T) {
	f := newFixture(t)
	tk := f.tasks.Create()
	tk.ParentTaskID = "no-such-task"
	err := f.tasks.Save(context.Background(), tk)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("save with missing parent: %v, want validation error", err)
	}
	if tk.Revision != 0 {
		t.Fatalf("failed save bumped revision to %d", tk.Revision)
	}
}

func TestOptimisticLockingOnConcurrentSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	stale := tk.Clone()
	tk.Priority = 80
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("winning save: %v", err)
	}

	stale.Priority = 20
	err := f.tasks.Save(ctx, stale)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale save: %v, want conflict", err)
	}

	got, err := f.tasks.Get(ctx, tk.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Priority != 80 {
		t.Fatalf("priority = %d, want the winning writer's 80", got.Priority)
	}
}

func TestClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := f.tasks.Claim(ctx, tk.ID, "kermit"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	// Claiming one's own task again is a no-op.
	if err := f.tasks.Claim(ctx, tk.ID, "kermit"); err != nil {
		t.Fatalf("re-claim by holder: %v", err)
	}
	err := f.tasks.Claim(ctx, tk.ID, "gonzo")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("claim of held task: %v, want conflict", err)
	}

	got, err := f.tasks.Get(ctx, tk.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Assignee != "kermit" {
		t.Fatalf("assignee = %q, want kermit", got.Assignee)
	}
	if msgs := f.queue.messages(messagequeue.SubjectTaskAssigned); len(msgs) != 1 {
		t.Fatalf("tasks.assigned messages = %d, want 1", len(msgs))
	}
}

func TestClaimSuspended(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.tasks.Suspend(ctx, tk.ID); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if err := f.tasks.Claim(ctx, tk.ID, "kermit"); !errors.Is(err, domain.ErrNotAllowed) {
		t.Fatalf("claim suspended: %v, want not-allowed", err)
	}
	if err := f.tasks.Activate(ctx, tk.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := f.tasks.Claim(ctx, tk.ID, "kermit"); err != nil {
		t.Fatalf("claim after activate: %v", err)
	}
}

func TestDelegateAndResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	tk.Assignee = "kermit"
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := f.tasks.Delegate(ctx, tk.ID, "gonzo"); err != nil {
		t.Fatalf("delegate: %v", err)
	}
	got, _ := f.tasks.Get(ctx, tk.ID)
	if got.Assignee != "gonzo" || got.Owner != "kermit" || got.DelegationState != task.DelegationPending {
		t.Fatalf("after delegate: assignee=%q owner=%q state=%q", got.Assignee, got.Owner, got.DelegationState)
	}

	if err := f.tasks.Resolve(ctx, tk.ID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, _ = f.tasks.Get(ctx, tk.ID)
	if got.Assignee != "kermit" || got.DelegationState != task.DelegationResolved {
		t.Fatalf("after resolve: assignee=%q state=%q", got.Assignee, got.DelegationState)
	}
}

func TestDeleteAbsentIsSilent(t *testing.T) {
	f := newFixture(t)
	if err := f.tasks.Delete(context.Background(), "no-such-task", false, ""); err != nil {
		t.Fatalf("delete of absent task: %v, want nil", err)
	}
	if msgs := f.queue.messages(messagequeue.SubjectTaskDeleted); len(msgs) != 0 {
		t.Fatalf("published %d delete messages for a no-op", len(msgs))
	}
}

func TestDeleteRunningTaskRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	tk.ExecutionID = "exec-1"
	tk.ProcessInstance = "proc-1"
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	for _, cascade := range []bool{false, true} {
		err := f.tasks.Delete(ctx, tk.ID, cascade, "cleanup")
		if !errors.Is(err, domain.ErrNotAllowed) {
			t.Fatalf("delete(cascade=%v) of running task: %v, want not-allowed", cascade, err)
		}
	}

	// Complete is the one removal path open to a running task.
	if err := f.tasks.Complete(ctx, tk.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.tasks.Get(ctx, tk.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after complete: %v, want not-found", err)
	}
	if msgs := f.queue.messages(messagequeue.SubjectTaskCompleted); len(msgs) != 1 {
		t.Fatalf("tasks.completed messages = %d, want 1", len(msgs))
	}
}

func TestDeleteRemovesDependentRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.vars.SetLocal(ctx, tk.ID, "amount", variable.Long(250)); err != nil {
		t.Fatalf("set variable: %v", err)
	}
	if err := f.links.AddCandidateGroup(ctx, tk.ID, "accounting"); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if _, err := f.hist.AddComment(ctx, tk.ID, "looks fine"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if err := f.tasks.Delete(ctx, tk.ID, true, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if v, err := f.store.GetVariable(ctx, variable.Ref{ID: tk.ID, Type: variable.ScopeTask}, "amount"); err == nil {
		t.Fatalf("variable survived cascade delete: %+v", v)
	}
	links, err := f.store.ListLinks(ctx, tk.ID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("%d links survived cascade delete", len(links))
	}
	comments, err := f.store.ListComments(ctx, tk.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("%d comments survived cascade delete", len(comments))
	}

	msgs := f.queue.messages(messagequeue.SubjectTaskDeleted)
	if len(msgs) != 1 {
		t.Fatalf("tasks.deleted messages = %d, want 1", len(msgs))
	}
}

func TestDeleteOrphansSubtasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.tasks.Create()
	if err := f.tasks.Save(ctx, parent); err != nil {
		t.Fatalf("save parent: %v", err)
	}
	child := f.tasks.Create()
	child.ParentTaskID = parent.ID
	if err := f.tasks.Save(ctx, child); err != nil {
		t.Fatalf("save child: %v", err)
	}

	if err := f.tasks.Delete(ctx, parent.ID, true, ""); err != nil {
		t.Fatalf("delete parent: %v", err)
	}
	if _, err := f.tasks.Get(ctx, parent.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("parent still present after delete: %v", err)
	}

	// The subtask stays behind as an orphan and can be deleted on its own.
	got, err := f.tasks.Get(ctx, child.ID)
	if err != nil {
		t.Fatalf("orphaned subtask gone after parent delete: %v", err)
	}
	if got.ParentTaskID != parent.ID {
		t.Fatalf("orphan parent id = %q, want %q", got.ParentTaskID, parent.ID)
	}
	if err := f.tasks.Delete(ctx, child.ID, false, ""); err != nil {
		t.Fatalf("delete orphan: %v", err)
	}
	if _, err := f.tasks.Get(ctx, child.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("orphan still present after delete: %v", err)
	}
}

func TestDeleteRecordsDefaultReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}
	ctx = expr.WithAuthentication(ctx, expr.Authentication{UserID: "fozzie"})
	if err := f.tasks.Delete(ctx, tk.ID, false, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events, err := f.store.ListEvents(ctx, tk.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var deleteEvent *history.Event
	for i := range events {
		if events[i].Action == history.ActionDelete {
			deleteEvent = &events[i]
		}
	}
	if deleteEvent == nil {
		t.Fatal("no delete event recorded")
	}
	if deleteEvent.UserID != "fozzie" {
		t.Fatalf("delete event user = %q, want fozzie", deleteEvent.UserID)
	}
	parts := deleteEvent.MessageParts()
	if len(parts) != 2 || parts[1] != "deleted" {
		t.Fatalf("delete event parts = %v, want default reason", parts)
	}
}

func TestAssigneeSyncedToIdentityLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.tasks.Create()
	tk.Assignee = "kermit"
	tk.Owner = "piggy"
	if err := f.tasks.Save(ctx, tk); err != nil {
		t.Fatalf("save: %v", err)
	}

	links, err := f.links.Links(ctx, tk.ID)
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	byType := map[string]string{}
	for _, l := range links {
		byType[string(l.Type)] = l.UserID
	}
	if byType["assignee"] != "kermit" || byType["owner"] != "piggy" {
		t.Fatalf("identity links out of sync: %v", byType)
	}

	if err := f.tasks.SetAssignee(ctx, tk.ID, ""); err != nil {
		t.Fatalf("release: %v", err)
	}
	links, _ = f.links.Links(ctx, tk.ID)
	for _, l := range links {
		if l.Type == "assignee" {
			t.Fatalf("assignee link survived release: %+v", l)
		}
	}
}
