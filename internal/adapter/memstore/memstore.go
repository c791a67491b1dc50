// Package memstore is an in-memory implementation of the database store
// port. It backs tests and single-process deployments. Transactions take a
// deep copy of all tables and swap it in on commit, so a failed command
// leaves nothing behind.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/filter"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

type varKey struct {
	scopeType variable.ScopeType
	scopeID   string
	name      string
}

type tables struct {
	tasks       map[string]*task.Task
	variables   map[varKey]*variable.Variable
	links       map[string]*identity.Link
	events      []history.Event
	comments    map[string]*history.Comment
	attachments map[string]*history.Attachment
	filters     map[string]*filter.Filter
}

func newTables() *tables {
	return &tables{
		tasks:       make(map[string]*task.Task),
		variables:   make(map[varKey]*variable.Variable),
		links:       make(map[string]*identity.Link),
		comments:    make(map[string]*history.Comment),
		attachments: make(map[string]*history.Attachment),
		filters:     make(map[string]*filter.Filter),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for id, tk := range t.tasks {
		c.tasks[id] = tk.Clone()
	}
	for k, v := range t.variables {
		c.variables[k] = cloneVariable(v)
	}
	for id, l := range t.links {
		cl := *l
		c.links[id] = &cl
	}
	c.events = append(c.events, t.events...)
	for id, cm := range t.comments {
		cc := *cm
		c.comments[id] = &cc
	}
	for id, a := range t.attachments {
		ca := *a
		c.attachments[id] = &ca
	}
	for id, f := range t.filters {
		cf := *f
		cf.Payload = append([]byte(nil), f.Payload...)
		c.filters[id] = &cf
	}
	return c
}

func cloneVariable(v *variable.Variable) *variable.Variable {
	c := *v
	if v.Value.Time != nil {
		t := *v.Value.Time
		c.Value.Time = &t
	}
	c.Value.Raw = append([]byte(nil), v.Value.Raw...)
	return &c
}

// Store is the locked, committed view. All reads and single writes lock;
// InTx clones the tables under the lock, runs the function against the
// clone, and swaps it in when the function succeeds.
type Store struct {
	mu   sync.RWMutex
	data *tables
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newTables()}
}

func (s *Store) read(fn func(*tables) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(fn func(*tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// InTx runs fn against a transactional copy of the store.
func (s *Store) InTx(ctx context.Context, fn func(database.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.data.clone()
	if err := fn(&txStore{data: staged}); err != nil {
		return err
	}
	s.data = staged
	return nil
}

// txStore is the unlocked view handed to a transaction function. Tx bodies
// run single-threaded under the store lock.
type txStore struct {
	data *tables
}

func (t *txStore) read(fn func(*tables) error) error  { return fn(t.data) }
func (t *txStore) write(fn func(*tables) error) error { return fn(t.data) }

// InTx inside a transaction joins the enclosing one.
func (t *txStore) InTx(ctx context.Context, fn func(database.Store) error) error {
	return fn(t)
}

// accessor lets the shared operation set run against either view.
type accessor interface {
	read(func(*tables) error) error
	write(func(*tables) error) error
}

var (
	_ database.Store = (*Store)(nil)
	_ database.Store = (*txStore)(nil)
)

// --- tasks ------------------------------------------------------------------

func insertTask(a accessor, t *task.Task) error {
	return a.write(func(tb *tables) error {
		if _, exists := tb.tasks[t.ID]; exists {
			return domain.Validationf("task %s already exists", t.ID)
		}
		tb.tasks[t.ID] = t.Clone()
		return nil
	})
}

func updateTask(a accessor, t *task.Task) error {
	return a.write(func(tb *tables) error {
		cur, ok := tb.tasks[t.ID]
		if !ok || cur.Revision != t.Revision {
			return domain.ErrConflict
		}
		t.Revision++
		tb.tasks[t.ID] = t.Clone()
		return nil
	})
}

func deleteTask(a accessor, id string) error {
	return a.write(func(tb *tables) error {
		if _, ok := tb.tasks[id]; !ok {
			return domain.ErrNotFound
		}
		delete(tb.tasks, id)
		return nil
	})
}

func getTask(a accessor, id string) (*task.Task, error) {
	var out *task.Task
	err := a.read(func(tb *tables) error {
		t, ok := tb.tasks[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

func listTasks(a accessor) ([]task.Task, error) {
	var out []task.Task
	err := a.read(func(tb *tables) error {
		for _, t := range tb.tasks {
			out = append(out, *t.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func listSubtasks(a accessor, parentID string) ([]task.Task, error) {
	var out []task.Task
	err := a.read(func(tb *tables) error {
		for _, t := range tb.tasks {
			if t.ParentTaskID == parentID {
				out = append(out, *t.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (s *Store) InsertTask(ctx context.Context, t *task.Task) error { return insertTask(s, t) }
func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error { return updateTask(s, t) }
func (s *Store) DeleteTask(ctx context.Context, id string) error    { return deleteTask(s, id) }
func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	return getTask(s, id)
}
func (s *Store) ListTasks(ctx context.Context) ([]task.Task, error) { return listTasks(s) }
func (s *Store) ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error) {
	return listSubtasks(s, parentID)
}

func (t *txStore) InsertTask(ctx context.Context, tk *task.Task) error { return insertTask(t, tk) }
func (t *txStore) UpdateTask(ctx context.Context, tk *task.Task) error { return updateTask(t, tk) }
func (t *txStore) DeleteTask(ctx context.Context, id string) error     { return deleteTask(t, id) }
func (t *txStore) GetTask(ctx context.Context, id string) (*task.Task, error) {
	return getTask(t, id)
}
func (t *txStore) ListTasks(ctx context.Context) ([]task.Task, error) { return listTasks(t) }
func (t *txStore) ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error) {
	return listSubtasks(t, parentID)
}
