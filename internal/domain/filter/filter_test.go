package filter

import (
	"errors"
	"testing"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/query"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		ok     bool
	}{
		{"valid", Filter{Name: "mine", Payload: []byte(`{"root":{}}`)}, true},
		{"empty name", Filter{Payload: []byte(`{"root":{}}`)}, false},
		{"no payload", Filter{Name: "mine"}, false},
		{"invalid json", Filter{Name: "mine", Payload: []byte(`{`)}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSetQueryThenQuery(t *testing.T) {
	q := query.New().TaskMinPriority(80).OrderByTaskPriority().Desc()

	var f Filter
	f.Name = "high priority"
	if err := f.SetQuery(q); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	restored, err := f.Query()
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if restored.Origin() != query.OriginStored {
		t.Fatalf("origin = %s, want stored", restored.Origin())
	}
	if restored.Root().MinPriority == nil || *restored.Root().MinPriority != 80 {
		t.Fatalf("criteria lost: %+v", restored.Root())
	}
	if len(restored.Sorts()) != 1 || !restored.Sorts()[0].Desc {
		t.Fatalf("sorts lost: %+v", restored.Sorts())
	}
}

func TestQueryRejectsMalformedPayload(t *testing.T) {
	f := Filter{Name: "broken", Payload: []byte(`{"root": []}`)}
	if _, err := f.Query(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
