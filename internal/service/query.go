package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	adapterotel "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/query"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
	"github.com/Strob0t/TaskForge/internal/expr"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/database"
	"github.com/Strob0t/TaskForge/internal/port/directory"
)

// hydrateWorkers bounds the per-query row hydration fan-out.
const hydrateWorkers = 8

// QueryService executes task queries in process: it scans the task rows,
// hydrates each with its variables and identity links concurrently, and
// applies the query's criteria, sort keys, and paging over the snapshots.
//
// Expression criteria are resolved exactly once per execution, after the
// origin toggle check and before any store access, so a rejected query has
// no side effects.
type QueryService struct {
	store   database.Store
	dir     directory.Directory
	eval    expr.Evaluator
	clock   clock.Clock
	engine  config.Engine
	metrics *adapterotel.Metrics
	log     *slog.Logger
}

func NewQueryService(store database.Store, dir directory.Directory, eval expr.Evaluator, clk clock.Clock, engine config.Engine, metrics *adapterotel.Metrics, log *slog.Logger) *QueryService {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &QueryService{store: store, dir: dir, eval: eval, clock: clk, engine: engine, metrics: metrics, log: log}
}

// List returns every matching task in query order.
func (s *QueryService) List(ctx context.Context, q *query.TaskQuery) ([]task.Task, error) {
	rows, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.materialize(rows, q), nil
}

// ListPage returns one page of matching tasks. A negative offset or a
// non-positive page size yields an empty page, not an error.
func (s *QueryService) ListPage(ctx context.Context, q *query.TaskQuery, offset, limit int) ([]task.Task, error) {
	if offset < 0 || limit <= 0 {
		return nil, nil
	}
	rows, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return s.materialize(rows[offset:end], q), nil
}

// Count returns the number of matching tasks.
func (s *QueryService) Count(ctx context.Context, q *query.TaskQuery) (int, error) {
	rows, err := s.run(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// SingleResult returns the single matching task, nil when nothing matches,
// and a validation error when the query is ambiguous.
func (s *QueryService) SingleResult(ctx context.Context, q *query.TaskQuery) (*task.Task, error) {
	rows, err := s.run(ctx, q)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		out := s.materialize(rows, q)
		return &out[0], nil
	default:
		return nil, domain.Validationf("query returned %d results where at most one was expected", len(rows))
	}
}

func (s *QueryService) run(ctx context.Context, q *query.TaskQuery) ([]*query.Row, error) {
	start := s.clock.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q = q.Clone()
	if q.HasExpressions() {
		if err := s.resolveExpressions(ctx, q); err != nil {
			return nil, err
		}
	}
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.hydrate(ctx, tasks)
	if err != nil {
		return nil, err
	}
	groups, err := s.memberships(ctx, q, rows)
	if err != nil {
		return nil, err
	}
	matched := rows[:0]
	for _, r := range rows {
		if q.Matches(r, groups) {
			matched = append(matched, r)
		}
	}
	keys := q.Sorts()
	sort.SliceStable(matched, func(i, j int) bool {
		return query.Compare(matched[i], matched[j], keys) < 0
	})
	s.observe(ctx, s.clock.Now().Sub(start))
	return matched, nil
}

// resolveExpressions enforces the origin toggle, then substitutes every
// expression criterion with its evaluated value.
func (s *QueryService) resolveExpressions(ctx context.Context, q *query.TaskQuery) error {
	allowed := s.engine.AdhocExpressions
	if q.Origin() == query.OriginStored {
		allowed = s.engine.StoredExpressions
	}
	if !allowed {
		return domain.Securityf("%s queries with expressions are disabled", q.Origin())
	}
	ec, err := s.evalContext(ctx)
	if err != nil {
		return err
	}
	return q.ResolveExpressions(func(e string) (any, error) {
		return s.eval.Evaluate(e, ec)
	})
}

func (s *QueryService) evalContext(ctx context.Context) (expr.Context, error) {
	sc := expr.StaticContext{Time: s.clock.Now()}
	auth, ok := expr.AuthenticationFrom(ctx)
	if !ok {
		return sc, nil
	}
	sc.User = auth.UserID
	sc.Groups = auth.Groups
	if len(sc.Groups) == 0 && s.dir != nil && sc.User != "" {
		groups, err := s.dir.GroupsForUser(ctx, sc.User)
		if err != nil {
			return sc, err
		}
		sc.Groups = groups
	}
	return sc, nil
}

// hydrate loads the variables and links of each task concurrently.
func (s *QueryService) hydrate(ctx context.Context, tasks []task.Task) ([]*query.Row, error) {
	rows := make([]*query.Row, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateWorkers)
	for i := range tasks {
		i := i
		g.Go(func() error {
			r, err := s.hydrateRow(gctx, &tasks[i])
			if err != nil {
				return err
			}
			rows[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *QueryService) hydrateRow(ctx context.Context, t *task.Task) (*query.Row, error) {
	r := &query.Row{Task: t}
	var err error
	if r.TaskVars, err = s.scopeVars(ctx, variable.Ref{ID: t.ID, Type: variable.ScopeTask}); err != nil {
		return nil, err
	}
	if t.ExecutionID != "" {
		if r.ProcessVars, err = s.scopeVars(ctx, variable.Ref{ID: t.ExecutionID, Type: variable.ScopeExecution}); err != nil {
			return nil, err
		}
	}
	if t.CaseExecutionID != "" {
		if r.CaseVars, err = s.scopeVars(ctx, variable.Ref{ID: t.CaseExecutionID, Type: variable.ScopeCaseExecution}); err != nil {
			return nil, err
		}
	}
	if r.Links, err = s.store.ListLinks(ctx, t.ID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *QueryService) scopeVars(ctx context.Context, scope variable.Ref) (map[string]variable.Value, error) {
	vars, err := s.store.ListVariables(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string]variable.Value, len(vars))
	for i := range vars {
		out[vars[i].Name] = vars[i].Value
	}
	return out, nil
}

// memberships resolves group membership for every user a candidate-user
// criterion names, so candidate-group links match those users too.
func (s *QueryService) memberships(ctx context.Context, q *query.TaskQuery, rows []*query.Row) (query.Memberships, error) {
	users := make(map[string]struct{})
	crit := append([]*query.Criteria{q.Root()}, q.OrGroups()...)
	for _, c := range crit {
		if c.CandidateUser.Val != nil && *c.CandidateUser.Val != "" {
			users[*c.CandidateUser.Val] = struct{}{}
		}
	}
	if len(users) == 0 || s.dir == nil {
		return nil, nil
	}
	out := make(query.Memberships, len(users))
	for u := range users {
		groups, err := s.dir.GroupsForUser(ctx, u)
		if err != nil {
			return nil, err
		}
		out[u] = groups
	}
	return out, nil
}

// materialize copies the row tasks out, stripping form keys unless the
// query asked for them.
func (s *QueryService) materialize(rows []*query.Row, q *query.TaskQuery) []task.Task {
	if len(rows) == 0 {
		return nil
	}
	out := make([]task.Task, len(rows))
	for i, r := range rows {
		out[i] = *r.Task
		if !q.InitializeFormKeysRequested() {
			out[i].FormKey = ""
		}
	}
	return out
}

func (s *QueryService) observe(ctx context.Context, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.QueriesExecuted.Add(ctx, 1)
	s.metrics.QueryDuration.Record(ctx, elapsed.Seconds())
}
