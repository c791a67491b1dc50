package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// VariableService reads and writes task variables with scope-chain
// resolution: a non-local read falls back from the task scope to the owning
// execution or case execution scope, and a non-local write on a process or
// case task passes through to that parent scope. Every variable mutation
// reached through a task bumps the task's revision in the same transaction.
type VariableService struct {
	cmd   *Commands
	store database.Store
	clock clock.Clock
}

func NewVariableService(cmd *Commands, store database.Store, clk clock.Clock) *VariableService {
	if clk == nil {
		clk = clock.System{}
	}
	return &VariableService{cmd: cmd, store: store, clock: clk}
}

// Get resolves a variable along the scope chain. A missing variable is not
// an error; the returned value is nil.
func (s *VariableService) Get(ctx context.Context, taskID, name string) (*variable.Value, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	v, err := s.lookup(ctx, s.store, variable.Ref{ID: t.ID, Type: variable.ScopeTask}, name)
	if err != nil || v != nil {
		return v, err
	}
	parent, ok := parentScope(t)
	if !ok {
		return nil, nil
	}
	return s.lookup(ctx, s.store, parent, name)
}

// GetLocal reads a variable from the task's own scope only.
func (s *VariableService) GetLocal(ctx context.Context, taskID, name string) (*variable.Value, error) {
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.lookup(ctx, s.store, variable.Ref{ID: taskID, Type: variable.ScopeTask}, name)
}

// GetAll returns the task's visible variables, parent scope first so local
// values shadow inherited ones. names, when non-empty, restricts the result.
func (s *VariableService) GetAll(ctx context.Context, taskID string, names ...string) (map[string]variable.Value, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]variable.Value)
	if parent, ok := parentScope(t); ok {
		if err := s.collect(ctx, parent, out); err != nil {
			return nil, err
		}
	}
	if err := s.collect(ctx, variable.Ref{ID: t.ID, Type: variable.ScopeTask}, out); err != nil {
		return nil, err
	}
	if len(names) > 0 {
		keep := make(map[string]struct{}, len(names))
		for _, n := range names {
			keep[n] = struct{}{}
		}
		for n := range out {
			if _, ok := keep[n]; !ok {
				delete(out, n)
			}
		}
	}
	return out, nil
}

// Set writes a variable through the scope chain: on a process or case task
// the value lands in the parent scope, on a standalone task in the task
// scope.
func (s *VariableService) Set(ctx context.Context, taskID, name string, val variable.Value) error {
	return s.set(ctx, taskID, name, val, false)
}

// SetLocal writes a variable into the task's own scope.
func (s *VariableService) SetLocal(ctx context.Context, taskID, name string, val variable.Value) error {
	return s.set(ctx, taskID, name, val, true)
}

func (s *VariableService) set(ctx context.Context, taskID, name string, val variable.Value, local bool) error {
	if name == "" {
		return domain.Validationf("variable name must not be empty")
	}
	return s.cmd.Execute(ctx, "variable.set", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		scope := variable.Ref{ID: t.ID, Type: variable.ScopeTask}
		if !local {
			if parent, ok := parentScope(t); ok {
				scope = parent
			}
		}
		v := &variable.Variable{
			ID:         uuid.NewString(),
			ScopeID:    scope.ID,
			ScopeType:  scope.Type,
			Name:       name,
			Local:      local,
			Value:      val,
			CreateTime: s.clock.Now(),
		}
		if err := tx.UpsertVariable(ctx, v); err != nil {
			return err
		}
		return s.touch(ctx, tx, t)
	})
}

// Remove deletes a variable along the scope chain. Removing an absent
// variable succeeds without bumping the task.
func (s *VariableService) Remove(ctx context.Context, taskID, name string) error {
	return s.remove(ctx, taskID, name, false)
}

// RemoveLocal deletes a variable from the task's own scope.
func (s *VariableService) RemoveLocal(ctx context.Context, taskID, name string) error {
	return s.remove(ctx, taskID, name, true)
}

func (s *VariableService) remove(ctx context.Context, taskID, name string, local bool) error {
	return s.cmd.Execute(ctx, "variable.remove", func(tx database.Store) error {
		t, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		scopes := []variable.Ref{{ID: t.ID, Type: variable.ScopeTask}}
		if !local {
			if parent, ok := parentScope(t); ok {
				scopes = append(scopes, parent)
			}
		}
		for _, scope := range scopes {
			v, err := s.lookup(ctx, tx, scope, name)
			if err != nil {
				return err
			}
			if v == nil {
				continue
			}
			if err := tx.DeleteVariable(ctx, scope, name); err != nil {
				return err
			}
			return s.touch(ctx, tx, t)
		}
		return nil
	})
}

// SetAt writes a variable directly into an arbitrary scope with no task
// involved, for seeding execution and case scopes.
func (s *VariableService) SetAt(ctx context.Context, scope variable.Ref, name string, val variable.Value) error {
	if name == "" {
		return domain.Validationf("variable name must not be empty")
	}
	return s.cmd.Execute(ctx, "variable.set_at", func(tx database.Store) error {
		return tx.UpsertVariable(ctx, &variable.Variable{
			ID:         uuid.NewString(),
			ScopeID:    scope.ID,
			ScopeType:  scope.Type,
			Name:       name,
			Local:      scope.Type == variable.ScopeTask,
			Value:      val,
			CreateTime: s.clock.Now(),
		})
	})
}

func (s *VariableService) lookup(ctx context.Context, st database.Store, scope variable.Ref, name string) (*variable.Value, error) {
	v, err := st.GetVariable(ctx, scope, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	val := v.Value
	return &val, nil
}

func (s *VariableService) collect(ctx context.Context, scope variable.Ref, into map[string]variable.Value) error {
	vars, err := s.store.ListVariables(ctx, scope)
	if err != nil {
		return err
	}
	for i := range vars {
		into[vars[i].Name] = vars[i].Value
	}
	return nil
}

// touch bumps the task revision so concurrent task writers observe the
// variable change as a conflicting modification.
func (s *VariableService) touch(ctx context.Context, tx database.Store, t *task.Task) error {
	now := s.clock.Now()
	t.LastUpdated = &now
	return tx.UpdateTask(ctx, t)
}

func parentScope(t *task.Task) (variable.Ref, bool) {
	switch {
	case t.ExecutionID != "":
		return variable.Ref{ID: t.ExecutionID, Type: variable.ScopeExecution}, true
	case t.CaseExecutionID != "":
		return variable.Ref{ID: t.CaseExecutionID, Type: variable.ScopeCaseExecution}, true
	}
	return variable.Ref{}, false
}
