package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskForge/internal/domain/history"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// Recorder writes user operation events and comments to the audit trail.
// Entries are produced only at history level audit or above; below that
// every call is a silent no-op so callers never have to check the level.
type Recorder struct {
	level history.Level
	clock clock.Clock
}

func NewRecorder(level history.Level, clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.System{}
	}
	return &Recorder{level: level, clock: clk}
}

// Level reports the configured history level.
func (r *Recorder) Level() history.Level {
	return r.level
}

// Event appends a user operation event for t. parts are joined into the
// message with the section marker.
func (r *Recorder) Event(ctx context.Context, tx database.Store, t *task.Task, action history.Action, userID string, parts ...string) error {
	if r.level < history.LevelAudit {
		return nil
	}
	ev := &history.Event{
		ID:                uuid.NewString(),
		TaskID:            t.ID,
		ProcessInstanceID: t.ProcessInstance,
		Action:            action,
		Message:           history.JoinParts(parts),
		UserID:            userID,
		Time:              r.clock.Now(),
	}
	return tx.InsertEvent(ctx, ev)
}

// Comment persists a task comment. Comment rows share the audit gate with
// events: below level audit nothing is written.
func (r *Recorder) Comment(ctx context.Context, tx database.Store, t *task.Task, userID, message string) (*history.Comment, error) {
	if r.level < history.LevelAudit {
		return nil, nil
	}
	c := &history.Comment{
		ID:                uuid.NewString(),
		TaskID:            t.ID,
		ProcessInstanceID: t.ProcessInstance,
		UserID:            userID,
		Message:           message,
		Time:              r.clock.Now(),
	}
	if err := tx.InsertComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
