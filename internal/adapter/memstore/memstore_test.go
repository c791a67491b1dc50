package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

func newTask(id string) *task.Task {
	return &task.Task{
		ID:         id,
		Name:       "review",
		Priority:   task.DefaultPriority,
		CreateTime: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpdateTaskOptimisticLocking(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.InsertTask(ctx, newTask("t1")); err != nil {
		t.Fatalf("InsertTask: %v", err)
	}

	a, err := s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	b := a.Clone()

	a.Name = "first writer"
	if err := s.UpdateTask(ctx, a); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if a.Revision != 1 {
		t.Errorf("revision after update = %d, want 1", a.Revision)
	}

	b.Name = "second writer"
	if err := s.UpdateTask(ctx, b); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale update error = %v, want ErrConflict", err)
	}

	got, err := s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Name != "first writer" {
		t.Errorf("surviving name = %q, want first writer", got.Name)
	}
}

func TestUpdateMissingTaskConflicts(t *testing.T) {
	s := New()
	err := s.UpdateTask(context.Background(), newTask("ghost"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.InsertTask(ctx, newTask("t1")); err != nil {
		t.Fatalf("InsertTask: %v", err)
	}

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx database.Store) error {
		if err := tx.DeleteTask(ctx, "t1"); err != nil {
			return err
		}
		if err := tx.InsertTask(ctx, newTask("t2")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}

	if _, err := s.GetTask(ctx, "t1"); err != nil {
		t.Errorf("t1 should survive rollback, got %v", err)
	}
	if _, err := s.GetTask(ctx, "t2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("t2 should be rolled back, got %v", err)
	}
}

func TestInTxCommitsAtomically(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.InTx(ctx, func(tx database.Store) error {
		if err := tx.InsertTask(ctx, newTask("t1")); err != nil {
			return err
		}
		return tx.UpsertVariable(ctx, &variable.Variable{
			ID: "v1", ScopeID: "t1", ScopeType: variable.ScopeTask,
			Name: "amount", Local: true, Value: variable.Integer(7),
		})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	if _, err := s.GetTask(ctx, "t1"); err != nil {
		t.Fatalf("GetTask after commit: %v", err)
	}
	scope := variable.Ref{ID: "t1", Type: variable.ScopeTask}
	v, err := s.GetVariable(ctx, scope, "amount")
	if err != nil {
		t.Fatalf("GetVariable after commit: %v", err)
	}
	if v.Value.Int != 7 {
		t.Errorf("amount = %d, want 7", v.Value.Int)
	}
}

func TestVariableScopeIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	taskScope := variable.Ref{ID: "x", Type: variable.ScopeTask}
	execScope := variable.Ref{ID: "x", Type: variable.ScopeExecution}

	set := func(scope variable.Ref, val variable.Value) {
		t.Helper()
		err := s.UpsertVariable(ctx, &variable.Variable{
			ID: scope.ID + "/" + string(scope.Type), ScopeID: scope.ID,
			ScopeType: scope.Type, Name: "n", Value: val,
		})
		if err != nil {
			t.Fatalf("UpsertVariable: %v", err)
		}
	}
	set(taskScope, variable.String("task"))
	set(execScope, variable.String("exec"))

	v, err := s.GetVariable(ctx, taskScope, "n")
	if err != nil {
		t.Fatalf("GetVariable: %v", err)
	}
	if v.Value.Str != "task" {
		t.Errorf("task-scope value = %q, want task", v.Value.Str)
	}

	if err := s.DeleteVariables(ctx, taskScope); err != nil {
		t.Fatalf("DeleteVariables: %v", err)
	}
	if _, err := s.GetVariable(ctx, execScope, "n"); err != nil {
		t.Errorf("execution-scope variable should survive task-scope delete: %v", err)
	}
}

func TestDeleteLinkIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	l := &identity.Link{ID: "l1", TaskID: "t1", Type: identity.LinkCandidate, UserID: "kermit"}
	if err := s.InsertLink(ctx, l); err != nil {
		t.Fatalf("InsertLink: %v", err)
	}
	if err := s.DeleteLink(ctx, l); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if err := s.DeleteLink(ctx, l); err != nil {
		t.Fatalf("second DeleteLink should be a no-op: %v", err)
	}
	links, err := s.ListLinks(ctx, "t1")
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("links = %d, want 0", len(links))
	}
}

func TestGetTaskReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.InsertTask(ctx, newTask("t1")); err != nil {
		t.Fatalf("InsertTask: %v", err)
	}
	a, _ := s.GetTask(ctx, "t1")
	a.Name = "mutated"
	b, _ := s.GetTask(ctx, "t1")
	if b.Name != "review" {
		t.Errorf("store row mutated through returned pointer: %q", b.Name)
	}
}
