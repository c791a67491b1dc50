package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every store
// method works inside and outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements database.Store using PostgreSQL.
type Store struct {
	db   querier
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

var _ database.Store = (*Store)(nil)

// InTx runs fn against a transactional store view. A nested call joins the
// enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(database.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- Tasks ---

const taskColumns = `id, revision, name, description, priority, assignee, owner, delegation_state,
	due_date, follow_up_date, last_updated, create_time, parent_task_id, execution_id,
	process_instance_id, case_instance_id, case_execution_id, tenant_id, form_key, suspended`

func scanTask(row scannable) (task.Task, error) {
	var t task.Task
	err := row.Scan(&t.ID, &t.Revision, &t.Name, &t.Description, &t.Priority, &t.Assignee, &t.Owner,
		&t.DelegationState, &t.DueDate, &t.FollowUpDate, &t.LastUpdated, &t.CreateTime,
		&t.ParentTaskID, &t.ExecutionID, &t.ProcessInstance, &t.CaseInstanceID, &t.CaseExecutionID,
		&t.TenantID, &t.FormKey, &t.Suspended)
	return t, err
}

func (s *Store) InsertTask(ctx context.Context, t *task.Task) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO tasks (id, revision, name, description, priority, assignee, owner, delegation_state,
			due_date, follow_up_date, last_updated, create_time, parent_task_id, execution_id,
			process_instance_id, case_instance_id, case_execution_id, tenant_id, form_key, suspended)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		t.ID, t.Revision, t.Name, t.Description, t.Priority, t.Assignee, t.Owner, t.DelegationState,
		t.DueDate, t.FollowUpDate, t.LastUpdated, t.CreateTime, t.ParentTaskID, t.ExecutionID,
		t.ProcessInstance, t.CaseInstanceID, t.CaseExecutionID, t.TenantID, t.FormKey, t.Suspended)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return nil
}

// UpdateTask writes the task only when the stored revision still matches
// the one the caller read. Zero rows affected means a concurrent writer
// won, reported as domain.ErrConflict.
func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tasks SET revision = revision + 1, name = $2, description = $3, priority = $4,
			assignee = $5, owner = $6, delegation_state = $7, due_date = $8, follow_up_date = $9,
			last_updated = $10, parent_task_id = $11, execution_id = $12, process_instance_id = $13,
			case_instance_id = $14, case_execution_id = $15, tenant_id = $16, form_key = $17, suspended = $18
		 WHERE id = $1 AND revision = $19`,
		t.ID, t.Name, t.Description, t.Priority, t.Assignee, t.Owner, t.DelegationState,
		t.DueDate, t.FollowUpDate, t.LastUpdated, t.ParentTaskID, t.ExecutionID, t.ProcessInstance,
		t.CaseInstanceID, t.CaseExecutionID, t.TenantID, t.FormKey, t.Suspended, t.Revision)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task %s: %w", t.ID, domain.ErrConflict)
	}
	t.Revision++
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete task %s", id)
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", id)
	}
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]task.Task, error) {
	return s.queryTasks(ctx, "list tasks", `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

func (s *Store) ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error) {
	return s.queryTasks(ctx, fmt.Sprintf("list subtasks of %s", parentID),
		`SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = $1 ORDER BY id`, parentID)
}

// queryTasks runs a task-row query, wrapping failures with the caller's
// operation label.
func (s *Store) queryTasks(ctx context.Context, op, sql string, args ...any) ([]task.Task, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}
