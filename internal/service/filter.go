package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/filter"
	"github.com/Strob0t/TaskForge/internal/domain/query"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/port/clock"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// FilterService persists named queries and re-executes them. A query loaded
// from a filter carries the stored origin, so its expressions answer to the
// stored-expression toggle rather than the ad-hoc one.
type FilterService struct {
	cmd     *Commands
	store   database.Store
	queries *QueryService
	clock   clock.Clock
}

func NewFilterService(cmd *Commands, store database.Store, queries *QueryService, clk clock.Clock) *FilterService {
	if clk == nil {
		clk = clock.System{}
	}
	return &FilterService{cmd: cmd, store: store, queries: queries, clock: clk}
}

// Save inserts the filter on its first call (Revision 0) and updates it
// under the revision check on later calls.
func (s *FilterService) Save(ctx context.Context, f *filter.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.cmd.Execute(ctx, "filter.save", func(tx database.Store) error {
		if f.Revision == 0 {
			if f.ID == "" {
				f.ID = uuid.NewString()
			}
			if f.Created.IsZero() {
				f.Created = s.clock.Now()
			}
			f.Revision = 1
			if err := tx.InsertFilter(ctx, f); err != nil {
				f.Revision = 0
				return err
			}
			return nil
		}
		return tx.UpdateFilter(ctx, f)
	})
}

// Get loads a filter by id.
func (s *FilterService) Get(ctx context.Context, id string) (*filter.Filter, error) {
	return s.store.GetFilter(ctx, id)
}

// List returns filters, restricted to one owner when owner is non-empty.
func (s *FilterService) List(ctx context.Context, owner string) ([]filter.Filter, error) {
	return s.store.ListFilters(ctx, owner)
}

// Delete removes a filter. Deleting an absent filter succeeds.
func (s *FilterService) Delete(ctx context.Context, id string) error {
	return s.cmd.Execute(ctx, "filter.delete", func(tx database.Store) error {
		err := tx.DeleteFilter(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	})
}

// ExecuteList runs the filter's stored query and returns the matching tasks.
func (s *FilterService) ExecuteList(ctx context.Context, id string) ([]task.Task, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.queries.List(ctx, q)
}

// ExecutePage runs the filter's stored query with paging.
func (s *FilterService) ExecutePage(ctx context.Context, id string, offset, limit int) ([]task.Task, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.queries.ListPage(ctx, q, offset, limit)
}

// ExecuteCount runs the filter's stored query and returns the match count.
func (s *FilterService) ExecuteCount(ctx context.Context, id string) (int, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.queries.Count(ctx, q)
}

// ExecuteSingle runs the filter's stored query expecting at most one match.
func (s *FilterService) ExecuteSingle(ctx context.Context, id string) (*task.Task, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.queries.SingleResult(ctx, q)
}

func (s *FilterService) load(ctx context.Context, id string) (*query.TaskQuery, error) {
	f, err := s.store.GetFilter(ctx, id)
	if err != nil {
		return nil, err
	}
	return f.Query()
}
