package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
)

// --- Variables ---

// Variable values travel as JSONB; the typed payload round-trips through
// the domain's own JSON form.

func scanVariable(row scannable) (variable.Variable, error) {
	var (
		v   variable.Variable
		raw []byte
	)
	if err := row.Scan(&v.ID, &v.ScopeID, &v.ScopeType, &v.Name, &v.Local, &raw, &v.CreateTime); err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v.Value); err != nil {
		return v, fmt.Errorf("decode variable %s value: %w", v.Name, err)
	}
	return v, nil
}

func (s *Store) GetVariable(ctx context.Context, scope variable.Ref, name string) (*variable.Variable, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, scope_id, scope_type, name, local, value, create_time
		 FROM variables WHERE scope_id = $1 AND scope_type = $2 AND name = $3`,
		scope.ID, scope.Type, name)
	v, err := scanVariable(row)
	if err != nil {
		return nil, notFoundWrap(err, "get variable %s in %s %s", name, scope.Type, scope.ID)
	}
	return &v, nil
}

func (s *Store) ListVariables(ctx context.Context, scope variable.Ref) ([]variable.Variable, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, scope_id, scope_type, name, local, value, create_time
		 FROM variables WHERE scope_id = $1 AND scope_type = $2 ORDER BY name`,
		scope.ID, scope.Type)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	defer rows.Close()

	var vars []variable.Variable
	for rows.Next() {
		v, err := scanVariable(rows)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

func (s *Store) UpsertVariable(ctx context.Context, v *variable.Variable) error {
	valueJSON, err := json.Marshal(v.Value)
	if err != nil {
		return fmt.Errorf("marshal variable %s value: %w", v.Name, err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO variables (id, scope_id, scope_type, name, local, value, create_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (scope_id, scope_type, name)
		 DO UPDATE SET local = EXCLUDED.local, value = EXCLUDED.value`,
		v.ID, v.ScopeID, v.ScopeType, v.Name, v.Local, valueJSON, v.CreateTime)
	if err != nil {
		return fmt.Errorf("upsert variable %s: %w", v.Name, err)
	}
	return nil
}

func (s *Store) DeleteVariable(ctx context.Context, scope variable.Ref, name string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM variables WHERE scope_id = $1 AND scope_type = $2 AND name = $3`,
		scope.ID, scope.Type, name)
	if err != nil {
		return fmt.Errorf("delete variable %s: %w", name, err)
	}
	return nil
}

func (s *Store) DeleteVariables(ctx context.Context, scope variable.Ref) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM variables WHERE scope_id = $1 AND scope_type = $2`,
		scope.ID, scope.Type)
	if err != nil {
		return fmt.Errorf("delete variables in %s %s: %w", scope.Type, scope.ID, err)
	}
	return nil
}

// --- Identity links ---

func (s *Store) InsertLink(ctx context.Context, l *identity.Link) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO identity_links (id, task_id, type, user_id, group_id, create_time)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.TaskID, l.Type, l.UserID, l.GroupID, l.CreateTime)
	if err != nil {
		return fmt.Errorf("insert identity link for task %s: %w", l.TaskID, err)
	}
	return nil
}

// DeleteLink is idempotent: deleting an absent link is not an error.
func (s *Store) DeleteLink(ctx context.Context, l *identity.Link) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM identity_links WHERE task_id = $1 AND type = $2 AND user_id = $3 AND group_id = $4`,
		l.TaskID, l.Type, l.UserID, l.GroupID)
	if err != nil {
		return fmt.Errorf("delete identity link for task %s: %w", l.TaskID, err)
	}
	return nil
}

func (s *Store) ListLinks(ctx context.Context, taskID string) ([]identity.Link, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, task_id, type, user_id, group_id, create_time
		 FROM identity_links WHERE task_id = $1 ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list identity links: %w", err)
	}
	defer rows.Close()

	var links []identity.Link
	for rows.Next() {
		var l identity.Link
		if err := rows.Scan(&l.ID, &l.TaskID, &l.Type, &l.UserID, &l.GroupID, &l.CreateTime); err != nil {
			return nil, fmt.Errorf("scan identity link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (s *Store) DeleteLinksForTask(ctx context.Context, taskID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM identity_links WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("delete identity links for task %s: %w", taskID, err)
	}
	return nil
}
