package service

import (
	"context"
	"sync"
	"testing"
	"time"

	staticdir "github.com/Strob0t/TaskForge/internal/adapter/directory"
	"github.com/Strob0t/TaskForge/internal/adapter/memstore"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/expr"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
)

// mockQueue records published messages in memory.
type mockQueue struct {
	mu        sync.Mutex
	published []mockMessage
}

type mockMessage struct {
	Subject string
	Data    []byte
}

func (m *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, mockMessage{Subject: subject, Data: data})
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (m *mockQueue) Drain() error      { return nil }
func (m *mockQueue) Close() error      { return nil }
func (m *mockQueue) IsConnected() bool { return true }

func (m *mockQueue) messages(subject string) []mockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mockMessage
	for _, msg := range m.published {
		if msg.Subject == subject {
			out = append(out, msg)
		}
	}
	return out
}

// fixture wires all services over the in-memory store.
type fixture struct {
	store   *memstore.Store
	queue   *mockQueue
	dir     *staticdir.Static
	clock   clock.Fixed
	engine  config.Engine
	tasks   *TaskService
	vars    *VariableService
	links   *LinkService
	hist    *HistoryService
	queries *QueryService
	filters *FilterService
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	engine config.Engine
	level  history.Level
}

func withEngine(e config.Engine) fixtureOption {
	return func(c *fixtureConfig) { c.engine = e }
}

func withHistoryLevel(l history.Level) fixtureOption {
	return func(c *fixtureConfig) { c.level = l }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	fc := fixtureConfig{
		engine: config.Defaults().Engine,
		level:  history.LevelAudit,
	}
	for _, opt := range opts {
		opt(&fc)
	}
	f := &fixture{
		store:  memstore.New(),
		queue:  &mockQueue{},
		dir:    staticdir.NewStatic(),
		clock:  clock.Fixed{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		engine: fc.engine,
	}
	cmd := NewCommands(f.store, nil, nil)
	rec := NewRecorder(fc.level, f.clock)
	f.tasks = NewTaskService(cmd, f.store, rec, f.queue, f.clock, f.engine, nil)
	f.vars = NewVariableService(cmd, f.store, f.clock)
	f.links = NewLinkService(cmd, f.store, rec, f.tasks, f.clock)
	f.hist = NewHistoryService(cmd, f.store, rec, f.clock)
	f.queries = NewQueryService(f.store, f.dir, expr.NewSandboxed(), f.clock, f.engine, nil, nil)
	f.filters = NewFilterService(cmd, f.store, f.queries, f.clock)
	return f
}

var _ messagequeue.Queue = (*mockQueue)(nil)
