// Package filter models saved task filters: a named, owned query payload
// that can be stored once and re-executed later.
package filter

import (
	"encoding/json"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/query"
)

// Filter is a persisted task query under a user-chosen name.
type Filter struct {
	ID       string    `json:"id"`
	Revision int64     `json:"revision"`
	Name     string    `json:"name"`
	Owner    string    `json:"owner,omitempty"`
	Payload  []byte    `json:"payload"`
	Created  time.Time `json:"created"`
}

// Validate checks the fields a filter needs before it can be stored.
func (f *Filter) Validate() error {
	if f.Name == "" {
		return domain.Validationf("filter name must not be empty")
	}
	if len(f.Payload) == 0 {
		return domain.Validationf("filter %q has no query payload", f.Name)
	}
	if !json.Valid(f.Payload) {
		return domain.Validationf("filter %q payload is not valid JSON", f.Name)
	}
	return nil
}

// Query deserializes the stored payload into an executable query. The
// result is marked stored so the executor applies the stored-expression
// policy to it.
func (f *Filter) Query() (*query.TaskQuery, error) {
	q := query.New()
	if err := q.UnmarshalJSON(f.Payload); err != nil {
		return nil, err
	}
	q.MarkStored()
	return q, nil
}

// SetQuery serializes the query into the filter payload.
func (f *Filter) SetQuery(q *query.TaskQuery) error {
	data, err := q.MarshalJSON()
	if err != nil {
		return err
	}
	f.Payload = data
	return nil
}
