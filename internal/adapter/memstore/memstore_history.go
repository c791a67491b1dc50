package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/filter"
	"github.com/Strob0t/TaskForge/internal/domain/history"
)

func insertEvent(a accessor, e *history.Event) error {
	return a.write(func(tb *tables) error {
		tb.events = append(tb.events, *e)
		return nil
	})
}

func listEvents(a accessor, taskID string) ([]history.Event, error) {
	var out []history.Event
	err := a.read(func(tb *tables) error {
		for _, e := range tb.events {
			if e.TaskID == taskID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

func insertComment(a accessor, c *history.Comment) error {
	return a.write(func(tb *tables) error {
		cc := *c
		tb.comments[c.ID] = &cc
		return nil
	})
}

func getComment(a accessor, id string) (*history.Comment, error) {
	var out *history.Comment
	err := a.read(func(tb *tables) error {
		c, ok := tb.comments[id]
		if !ok {
			return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		cc := *c
		out = &cc
		return nil
	})
	return out, err
}

func listComments(a accessor, taskID string) ([]history.Comment, error) {
	var out []history.Comment
	err := a.read(func(tb *tables) error {
		for _, c := range tb.comments {
			if c.TaskID == taskID {
				out = append(out, *c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, err
}

func deleteCommentsForTask(a accessor, taskID string) error {
	return a.write(func(tb *tables) error {
		for id, c := range tb.comments {
			if c.TaskID == taskID {
				delete(tb.comments, id)
			}
		}
		return nil
	})
}

func insertAttachment(a accessor, at *history.Attachment) error {
	return a.write(func(tb *tables) error {
		ca := *at
		tb.attachments[at.ID] = &ca
		return nil
	})
}

func getAttachment(a accessor, id string) (*history.Attachment, error) {
	var out *history.Attachment
	err := a.read(func(tb *tables) error {
		at, ok := tb.attachments[id]
		if !ok {
			return fmt.Errorf("attachment %s: %w", id, domain.ErrNotFound)
		}
		ca := *at
		out = &ca
		return nil
	})
	return out, err
}

func listAttachments(a accessor, taskID string) ([]history.Attachment, error) {
	var out []history.Attachment
	err := a.read(func(tb *tables) error {
		for _, at := range tb.attachments {
			if at.TaskID == taskID {
				out = append(out, *at)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreateTime.Before(out[j].CreateTime) })
	return out, err
}

func deleteAttachment(a accessor, id string) error {
	return a.write(func(tb *tables) error {
		if _, ok := tb.attachments[id]; !ok {
			return fmt.Errorf("attachment %s: %w", id, domain.ErrNotFound)
		}
		delete(tb.attachments, id)
		return nil
	})
}

func deleteAttachmentsForTask(a accessor, taskID string) error {
	return a.write(func(tb *tables) error {
		for id, at := range tb.attachments {
			if at.TaskID == taskID {
				delete(tb.attachments, id)
			}
		}
		return nil
	})
}

func (s *Store) InsertEvent(ctx context.Context, e *history.Event) error { return insertEvent(s, e) }
func (s *Store) ListEvents(ctx context.Context, taskID string) ([]history.Event, error) {
	return listEvents(s, taskID)
}
func (s *Store) InsertComment(ctx context.Context, c *history.Comment) error {
	return insertComment(s, c)
}
func (s *Store) GetComment(ctx context.Context, id string) (*history.Comment, error) {
	return getComment(s, id)
}
func (s *Store) ListComments(ctx context.Context, taskID string) ([]history.Comment, error) {
	return listComments(s, taskID)
}
func (s *Store) DeleteCommentsForTask(ctx context.Context, taskID string) error {
	return deleteCommentsForTask(s, taskID)
}
func (s *Store) DeleteAttachmentsForTask(ctx context.Context, taskID string) error {
	return deleteAttachmentsForTask(s, taskID)
}
func (s *Store) InsertAttachment(ctx context.Context, a *history.Attachment) error {
	return insertAttachment(s, a)
}
func (s *Store) GetAttachment(ctx context.Context, id string) (*history.Attachment, error) {
	return getAttachment(s, id)
}
func (s *Store) ListAttachments(ctx context.Context, taskID string) ([]history.Attachment, error) {
	return listAttachments(s, taskID)
}
func (s *Store) DeleteAttachment(ctx context.Context, id string) error {
	return deleteAttachment(s, id)
}

func (t *txStore) InsertEvent(ctx context.Context, e *history.Event) error {
	return insertEvent(t, e)
}
func (t *txStore) ListEvents(ctx context.Context, taskID string) ([]history.Event, error) {
	return listEvents(t, taskID)
}
func (t *txStore) InsertComment(ctx context.Context, c *history.Comment) error {
	return insertComment(t, c)
}
func (t *txStore) GetComment(ctx context.Context, id string) (*history.Comment, error) {
	return getComment(t, id)
}
func (t *txStore) ListComments(ctx context.Context, taskID string) ([]history.Comment, error) {
	return listComments(t, taskID)
}
func (t *txStore) DeleteCommentsForTask(ctx context.Context, taskID string) error {
	return deleteCommentsForTask(t, taskID)
}
func (t *txStore) DeleteAttachmentsForTask(ctx context.Context, taskID string) error {
	return deleteAttachmentsForTask(t, taskID)
}
func (t *txStore) InsertAttachment(ctx context.Context, a *history.Attachment) error {
	return insertAttachment(t, a)
}
func (t *txStore) GetAttachment(ctx context.Context, id string) (*history.Attachment, error) {
	return getAttachment(t, id)
}
func (t *txStore) ListAttachments(ctx context.Context, taskID string) ([]history.Attachment, error) {
	return listAttachments(t, taskID)
}
func (t *txStore) DeleteAttachment(ctx context.Context, id string) error {
	return deleteAttachment(t, id)
}

// --- saved filters ----------------------------------------------------------

func insertFilter(a accessor, f *filter.Filter) error {
	return a.write(func(tb *tables) error {
		if _, exists := tb.filters[f.ID]; exists {
			return domain.Validationf("filter %s already exists", f.ID)
		}
		cf := *f
		cf.Payload = append([]byte(nil), f.Payload...)
		tb.filters[f.ID] = &cf
		return nil
	})
}

func updateFilter(a accessor, f *filter.Filter) error {
	return a.write(func(tb *tables) error {
		cur, ok := tb.filters[f.ID]
		if !ok || cur.Revision != f.Revision {
			return domain.ErrConflict
		}
		f.Revision++
		cf := *f
		cf.Payload = append([]byte(nil), f.Payload...)
		tb.filters[f.ID] = &cf
		return nil
	})
}

func getFilter(a accessor, id string) (*filter.Filter, error) {
	var out *filter.Filter
	err := a.read(func(tb *tables) error {
		f, ok := tb.filters[id]
		if !ok {
			return fmt.Errorf("filter %s: %w", id, domain.ErrNotFound)
		}
		cf := *f
		cf.Payload = append([]byte(nil), f.Payload...)
		out = &cf
		return nil
	})
	return out, err
}

func listFilters(a accessor, owner string) ([]filter.Filter, error) {
	var out []filter.Filter
	err := a.read(func(tb *tables) error {
		for _, f := range tb.filters {
			if owner == "" || f.Owner == owner {
				cf := *f
				cf.Payload = append([]byte(nil), f.Payload...)
				out = append(out, cf)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func deleteFilter(a accessor, id string) error {
	return a.write(func(tb *tables) error {
		if _, ok := tb.filters[id]; !ok {
			return fmt.Errorf("filter %s: %w", id, domain.ErrNotFound)
		}
		delete(tb.filters, id)
		return nil
	})
}

func (s *Store) InsertFilter(ctx context.Context, f *filter.Filter) error { return insertFilter(s, f) }
func (s *Store) UpdateFilter(ctx context.Context, f *filter.Filter) error { return updateFilter(s, f) }
func (s *Store) GetFilter(ctx context.Context, id string) (*filter.Filter, error) {
	return getFilter(s, id)
}
func (s *Store) ListFilters(ctx context.Context, owner string) ([]filter.Filter, error) {
	return listFilters(s, owner)
}
func (s *Store) DeleteFilter(ctx context.Context, id string) error { return deleteFilter(s, id) }

func (t *txStore) InsertFilter(ctx context.Context, f *filter.Filter) error {
	return insertFilter(t, f)
}
func (t *txStore) UpdateFilter(ctx context.Context, f *filter.Filter) error {
	return updateFilter(t, f)
}
func (t *txStore) GetFilter(ctx context.Context, id string) (*filter.Filter, error) {
	return getFilter(t, id)
}
func (t *txStore) ListFilters(ctx context.Context, owner string) ([]filter.Filter, error) {
	return listFilters(t, owner)
}
func (t *txStore) DeleteFilter(ctx context.Context, id string) error { return deleteFilter(t, id) }
