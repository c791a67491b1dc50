package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/filter"
)

// --- Saved filters ---

func (s *Store) InsertFilter(ctx context.Context, f *filter.Filter) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO filters (id, revision, name, owner, payload, created)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.Revision, f.Name, f.Owner, f.Payload, f.Created)
	if err != nil {
		return fmt.Errorf("insert filter %s: %w", f.ID, err)
	}
	return nil
}

func (s *Store) UpdateFilter(ctx context.Context, f *filter.Filter) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE filters SET revision = revision + 1, name = $2, owner = $3, payload = $4
		 WHERE id = $1 AND revision = $5`,
		f.ID, f.Name, f.Owner, f.Payload, f.Revision)
	if err != nil {
		return fmt.Errorf("update filter %s: %w", f.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update filter %s: %w", f.ID, domain.ErrConflict)
	}
	f.Revision++
	return nil
}

func (s *Store) GetFilter(ctx context.Context, id string) (*filter.Filter, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, revision, name, owner, payload, created FROM filters WHERE id = $1`, id)
	var f filter.Filter
	if err := row.Scan(&f.ID, &f.Revision, &f.Name, &f.Owner, &f.Payload, &f.Created); err != nil {
		return nil, notFoundWrap(err, "get filter %s", id)
	}
	return &f, nil
}

// ListFilters returns the filters owned by owner; an empty owner lists all.
func (s *Store) ListFilters(ctx context.Context, owner string) ([]filter.Filter, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, revision, name, owner, payload, created
		 FROM filters WHERE $1 = '' OR owner = $1 ORDER BY name`, owner)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	var filters []filter.Filter
	for rows.Next() {
		var f filter.Filter
		if err := rows.Scan(&f.ID, &f.Revision, &f.Name, &f.Owner, &f.Payload, &f.Created); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

func (s *Store) DeleteFilter(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM filters WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete filter %s", id)
}
