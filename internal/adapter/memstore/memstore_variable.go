package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
)

func keyOf(scope variable.Ref, name string) varKey {
	return varKey{scopeType: scope.Type, scopeID: scope.ID, name: name}
}

func getVariable(a accessor, scope variable.Ref, name string) (*variable.Variable, error) {
	var out *variable.Variable
	err := a.read(func(tb *tables) error {
		v, ok := tb.variables[keyOf(scope, name)]
		if !ok {
			return fmt.Errorf("variable %s in %s %s: %w", name, scope.Type, scope.ID, domain.ErrNotFound)
		}
		out = cloneVariable(v)
		return nil
	})
	return out, err
}

func listVariables(a accessor, scope variable.Ref) ([]variable.Variable, error) {
	var out []variable.Variable
	err := a.read(func(tb *tables) error {
		for k, v := range tb.variables {
			if k.scopeType == scope.Type && k.scopeID == scope.ID {
				out = append(out, *cloneVariable(v))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func upsertVariable(a accessor, v *variable.Variable) error {
	return a.write(func(tb *tables) error {
		tb.variables[keyOf(v.Scope(), v.Name)] = cloneVariable(v)
		return nil
	})
}

func deleteVariable(a accessor, scope variable.Ref, name string) error {
	return a.write(func(tb *tables) error {
		delete(tb.variables, keyOf(scope, name))
		return nil
	})
}

func deleteVariables(a accessor, scope variable.Ref) error {
	return a.write(func(tb *tables) error {
		for k := range tb.variables {
			if k.scopeType == scope.Type && k.scopeID == scope.ID {
				delete(tb.variables, k)
			}
		}
		return nil
	})
}

func (s *Store) GetVariable(ctx context.Context, scope variable.Ref, name string) (*variable.Variable, error) {
	return getVariable(s, scope, name)
}
func (s *Store) ListVariables(ctx context.Context, scope variable.Ref) ([]variable.Variable, error) {
	return listVariables(s, scope)
}
func (s *Store) UpsertVariable(ctx context.Context, v *variable.Variable) error {
	return upsertVariable(s, v)
}
func (s *Store) DeleteVariable(ctx context.Context, scope variable.Ref, name string) error {
	return deleteVariable(s, scope, name)
}
func (s *Store) DeleteVariables(ctx context.Context, scope variable.Ref) error {
	return deleteVariables(s, scope)
}

func (t *txStore) GetVariable(ctx context.Context, scope variable.Ref, name string) (*variable.Variable, error) {
	return getVariable(t, scope, name)
}
func (t *txStore) ListVariables(ctx context.Context, scope variable.Ref) ([]variable.Variable, error) {
	return listVariables(t, scope)
}
func (t *txStore) UpsertVariable(ctx context.Context, v *variable.Variable) error {
	return upsertVariable(t, v)
}
func (t *txStore) DeleteVariable(ctx context.Context, scope variable.Ref, name string) error {
	return deleteVariable(t, scope, name)
}
func (t *txStore) DeleteVariables(ctx context.Context, scope variable.Ref) error {
	return deleteVariables(t, scope)
}

// --- identity links ---------------------------------------------------------

func insertLink(a accessor, l *identity.Link) error {
	return a.write(func(tb *tables) error {
		cl := *l
		tb.links[l.ID] = &cl
		return nil
	})
}

// deleteLink removes the link matching task, type, and principal. Absence
// is not an error: link deletion is idempotent.
func deleteLink(a accessor, l *identity.Link) error {
	return a.write(func(tb *tables) error {
		for id, cur := range tb.links {
			if cur.Same(l) {
				delete(tb.links, id)
			}
		}
		return nil
	})
}

func listLinks(a accessor, taskID string) ([]identity.Link, error) {
	var out []identity.Link
	err := a.read(func(tb *tables) error {
		for _, l := range tb.links {
			if l.TaskID == taskID {
				out = append(out, *l)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func deleteLinksForTask(a accessor, taskID string) error {
	return a.write(func(tb *tables) error {
		for id, l := range tb.links {
			if l.TaskID == taskID {
				delete(tb.links, id)
			}
		}
		return nil
	})
}

func (s *Store) InsertLink(ctx context.Context, l *identity.Link) error { return insertLink(s, l) }
func (s *Store) DeleteLink(ctx context.Context, l *identity.Link) error { return deleteLink(s, l) }
func (s *Store) ListLinks(ctx context.Context, taskID string) ([]identity.Link, error) {
	return listLinks(s, taskID)
}
func (s *Store) DeleteLinksForTask(ctx context.Context, taskID string) error {
	return deleteLinksForTask(s, taskID)
}

func (t *txStore) InsertLink(ctx context.Context, l *identity.Link) error { return insertLink(t, l) }
func (t *txStore) DeleteLink(ctx context.Context, l *identity.Link) error { return deleteLink(t, l) }
func (t *txStore) ListLinks(ctx context.Context, taskID string) ([]identity.Link, error) {
	return listLinks(t, taskID)
}
func (t *txStore) DeleteLinksForTask(ctx context.Context, taskID string) error {
	return deleteLinksForTask(t, taskID)
}
