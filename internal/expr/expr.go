// Package expr evaluates the restricted expressions accepted by query
// criteria, of the form ${...}. The language is deliberately small: the
// current principal, the current time, quoted string literals, and day or
// hour offsets on time values. Nothing else resolves.
package expr

import (
	"context"
	"time"
)

// Context supplies the ambient values an expression may reference.
type Context interface {
	// CurrentUser returns the authenticated user id, empty when anonymous.
	CurrentUser() string
	// CurrentUserGroups returns the group ids of the authenticated user.
	CurrentUserGroups() []string
	// Now returns the evaluation time.
	Now() time.Time
}

// Evaluator turns an expression string into a literal value.
type Evaluator interface {
	Evaluate(expression string, ctx Context) (any, error)
}

// Authentication identifies the principal a request runs as.
type Authentication struct {
	UserID string
	Groups []string
}

type authKey struct{}

// WithAuthentication attaches the principal to the request context.
func WithAuthentication(ctx context.Context, auth Authentication) context.Context {
	return context.WithValue(ctx, authKey{}, auth)
}

// AuthenticationFrom extracts the principal, if one was attached.
func AuthenticationFrom(ctx context.Context) (Authentication, bool) {
	auth, ok := ctx.Value(authKey{}).(Authentication)
	return auth, ok
}

// StaticContext is a fixed-value Context, used by the services to bind a
// request's principal and the engine clock to one evaluation.
type StaticContext struct {
	User   string
	Groups []string
	Time   time.Time
}

func (c StaticContext) CurrentUser() string          { return c.User }
func (c StaticContext) CurrentUserGroups() []string  { return c.Groups }
func (c StaticContext) Now() time.Time               { return c.Time }
