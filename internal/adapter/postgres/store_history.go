package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/TaskForge/internal/domain/history"
)

// --- History events ---

func (s *Store) InsertEvent(ctx context.Context, e *history.Event) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO history_events (id, task_id, process_instance_id, action, message, user_id, time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.TaskID, e.ProcessInstanceID, e.Action, e.Message, e.UserID, e.Time)
	if err != nil {
		return fmt.Errorf("insert history event for task %s: %w", e.TaskID, err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, taskID string) ([]history.Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, task_id, process_instance_id, action, message, user_id, time
		 FROM history_events WHERE task_id = $1 ORDER BY time, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list history events: %w", err)
	}
	defer rows.Close()

	var events []history.Event
	for rows.Next() {
		var e history.Event
		if err := rows.Scan(&e.ID, &e.TaskID, &e.ProcessInstanceID, &e.Action, &e.Message, &e.UserID, &e.Time); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// --- Comments ---

func (s *Store) InsertComment(ctx context.Context, c *history.Comment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO comments (id, task_id, process_instance_id, user_id, message, time)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.TaskID, c.ProcessInstanceID, c.UserID, c.Message, c.Time)
	if err != nil {
		return fmt.Errorf("insert comment for task %s: %w", c.TaskID, err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*history.Comment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, task_id, process_instance_id, user_id, message, time
		 FROM comments WHERE id = $1`, id)
	var c history.Comment
	if err := row.Scan(&c.ID, &c.TaskID, &c.ProcessInstanceID, &c.UserID, &c.Message, &c.Time); err != nil {
		return nil, notFoundWrap(err, "get comment %s", id)
	}
	return &c, nil
}

func (s *Store) ListComments(ctx context.Context, taskID string) ([]history.Comment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, task_id, process_instance_id, user_id, message, time
		 FROM comments WHERE task_id = $1 ORDER BY time, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []history.Comment
	for rows.Next() {
		var c history.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.ProcessInstanceID, &c.UserID, &c.Message, &c.Time); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) DeleteCommentsForTask(ctx context.Context, taskID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM comments WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("delete comments for task %s: %w", taskID, err)
	}
	return nil
}

// --- Attachments ---

func (s *Store) InsertAttachment(ctx context.Context, a *history.Attachment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO attachments (id, task_id, name, description, url, create_time)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.TaskID, a.Name, a.Description, a.URL, a.CreateTime)
	if err != nil {
		return fmt.Errorf("insert attachment for task %s: %w", a.TaskID, err)
	}
	return nil
}

func (s *Store) GetAttachment(ctx context.Context, id string) (*history.Attachment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, task_id, name, description, url, create_time
		 FROM attachments WHERE id = $1`, id)
	var a history.Attachment
	if err := row.Scan(&a.ID, &a.TaskID, &a.Name, &a.Description, &a.URL, &a.CreateTime); err != nil {
		return nil, notFoundWrap(err, "get attachment %s", id)
	}
	return &a, nil
}

func (s *Store) ListAttachments(ctx context.Context, taskID string) ([]history.Attachment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, task_id, name, description, url, create_time
		 FROM attachments WHERE task_id = $1 ORDER BY create_time, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []history.Attachment
	for rows.Next() {
		var a history.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Name, &a.Description, &a.URL, &a.CreateTime); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (s *Store) DeleteAttachment(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete attachment %s", id)
}

func (s *Store) DeleteAttachmentsForTask(ctx context.Context, taskID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM attachments WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("delete attachments for task %s: %w", taskID, err)
	}
	return nil
}
