package identity

import (
	"errors"
	"testing"

	"github.com/Strob0t/TaskForge/internal/domain"
)

func TestLinkValidate(t *testing.T) {
	tests := []struct {
		name string
		link Link
		ok   bool
	}{
		{"user candidate", Link{TaskID: "t1", Type: LinkCandidate, UserID: "kermit"}, true},
		{"group candidate", Link{TaskID: "t1", Type: LinkCandidate, GroupID: "accounting"}, true},
		{"custom type", Link{TaskID: "t1", Type: "reviewer", UserID: "kermit"}, true},
		{"missing task", Link{Type: LinkCandidate, UserID: "kermit"}, false},
		{"missing type", Link{TaskID: "t1", UserID: "kermit"}, false},
		{"no principal", Link{TaskID: "t1", Type: LinkCandidate}, false},
		{"both principals", Link{TaskID: "t1", Type: LinkCandidate, UserID: "kermit", GroupID: "accounting"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.link.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLinkSameIgnoresIDAndTime(t *testing.T) {
	a := Link{ID: "1", TaskID: "t1", Type: LinkCandidate, UserID: "kermit"}
	b := Link{ID: "2", TaskID: "t1", Type: LinkCandidate, UserID: "kermit"}
	if !a.Same(&b) {
		t.Fatal("links differing only in id should be the same relationship")
	}

	c := b
	c.Type = LinkAssignee
	if a.Same(&c) {
		t.Fatal("links with different types should differ")
	}
}
