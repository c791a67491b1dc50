package variable

import "time"

// ScopeType identifies the kind of entity owning a variable scope.
type ScopeType string

const (
	ScopeTask          ScopeType = "task"
	ScopeExecution     ScopeType = "execution"
	ScopeCaseExecution ScopeType = "case-execution"
)

// Ref identifies one variable scope.
type Ref struct {
	ID   string    `json:"id"`
	Type ScopeType `json:"type"`
}

// Variable is one typed key/value row. (ScopeID, ScopeType, Name) is unique.
// Local rows are visible only at their exact scope; non-local rows are also
// visible to descendant task scopes through scope-chain resolution.
type Variable struct {
	ID         string    `json:"id"`
	ScopeID    string    `json:"scope_id"`
	ScopeType  ScopeType `json:"scope_type"`
	Name       string    `json:"name"`
	Local      bool      `json:"local"`
	Value      Value     `json:"value"`
	CreateTime time.Time `json:"create_time"`
}

// Scope returns the reference of the owning scope.
func (v *Variable) Scope() Ref {
	return Ref{ID: v.ScopeID, Type: v.ScopeType}
}
