package query

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
)

// payload is the serialized form of a finished query, used by saved filters.
type payload struct {
	Root         Criteria    `json:"root"`
	OrGroups     []*Criteria `json:"or_groups,omitempty"`
	Sorts        []SortKey   `json:"sorts,omitempty"`
	InitFormKeys bool        `json:"initialize_form_keys,omitempty"`
}

// MarshalJSON serializes the builder state. Open OR groups and latched
// builder errors are not serializable.
func (q *TaskQuery) MarshalJSON() ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(payload{
		Root:         q.root,
		OrGroups:     q.orGroups,
		Sorts:        q.sorts,
		InitFormKeys: q.initFormKeys,
	})
}

// UnmarshalJSON restores a serialized query. The origin is left ad-hoc;
// loading from a saved filter marks the query stored.
func (q *TaskQuery) UnmarshalJSON(data []byte) error {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: malformed query payload: %v", domain.ErrValidation, err)
	}
	for _, k := range p.Sorts {
		if k.Field == SortByVariable && k.VarName == "" {
			return domain.Validationf("query payload sort key missing variable name")
		}
	}
	q.root = p.Root
	q.orGroups = p.OrGroups
	q.sorts = p.Sorts
	q.initFormKeys = p.InitFormKeys
	q.current = &q.root
	q.inOr = false
	q.err = nil
	q.origin = OriginAdhoc
	return nil
}

// Clone returns a deep copy. The executor resolves expressions on a clone so
// each execution re-evaluates against the current principal and clock.
func (q *TaskQuery) Clone() *TaskQuery {
	c := &TaskQuery{
		root:         *cloneCriteria(&q.root),
		sorts:        append([]SortKey(nil), q.sorts...),
		initFormKeys: q.initFormKeys,
		origin:       q.origin,
		err:          q.err,
	}
	for _, g := range q.orGroups {
		c.orGroups = append(c.orGroups, cloneCriteria(g))
	}
	c.current = &c.root
	return c
}

func cloneCriteria(c *Criteria) *Criteria {
	out := *c
	out.CandidateGroupIn = append([]string(nil), c.CandidateGroupIn...)
	out.TenantIDIn = append([]string(nil), c.TenantIDIn...)
	out.Variables = append([]VariableFilter(nil), c.Variables...)
	return &out
}

// ResolveExpressions evaluates every expression slot into its literal slot
// using the supplied evaluator. String criteria require a string result,
// temporal criteria a time result.
func (q *TaskQuery) ResolveExpressions(eval func(expr string) (any, error)) error {
	for _, g := range q.groups() {
		if err := g.resolve(eval); err != nil {
			return err
		}
	}
	return nil
}

func (c *Criteria) resolve(eval func(expr string) (any, error)) error {
	strTerms := []*StringTerm{&c.Assignee, &c.Owner, &c.CandidateUser, &c.CandidateGroup, &c.InvolvedUser}
	for _, t := range strTerms {
		if t.Expr == "" {
			continue
		}
		v, err := eval(t.Expr)
		if err != nil {
			return err
		}
		s, ok := v.(string)
		if !ok {
			return domain.Validationf("expression %q evaluated to %T, expected a string", t.Expr, v)
		}
		t.setVal(s)
	}
	timeTerms := []*TimeTerm{&c.CreatedBefore, &c.CreatedAfter, &c.DueDate, &c.DueBefore, &c.DueAfter, &c.FollowUpDate, &c.FollowUpBefore, &c.FollowUpAfter}
	for _, t := range timeTerms {
		if t.Expr == "" {
			continue
		}
		v, err := eval(t.Expr)
		if err != nil {
			return err
		}
		ts, ok := v.(time.Time)
		if !ok {
			return domain.Validationf("expression %q evaluated to %T, expected a time", t.Expr, v)
		}
		t.setVal(ts)
	}
	return nil
}
