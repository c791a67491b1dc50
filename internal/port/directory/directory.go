// Package directory defines the group membership port (interface).
package directory

import "context"

// Directory resolves group memberships for candidate queries. A user is a
// candidate for a task when the task carries a candidate link for the user
// directly or for any group the directory reports.
type Directory interface {
	GroupsForUser(ctx context.Context, userID string) ([]string, error)
}
