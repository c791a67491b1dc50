package query

import (
	"regexp"
	"strings"

	"github.com/Strob0t/TaskForge/internal/domain/identity"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
)

// Row is a hydrated snapshot of one task and the denormalized data the
// predicate tree reads: variables per scope and identity links.
type Row struct {
	Task        *task.Task
	TaskVars    map[string]variable.Value
	ProcessVars map[string]variable.Value
	CaseVars    map[string]variable.Value
	Links       []identity.Link
}

// Memberships maps a user id to the groups it belongs to. The executor
// resolves memberships for every candidate-user criterion before matching.
type Memberships map[string][]string

// Matches evaluates the query's predicate tree against one row. The query
// must be expression-free (see ResolveExpressions): expression slots still
// holding text never match.
func (q *TaskQuery) Matches(r *Row, groups Memberships) bool {
	if !q.root.matches(r, groups, true) {
		return false
	}
	for _, g := range q.orGroups {
		if !g.matches(r, groups, false) {
			return false
		}
	}
	return true
}

// matches evaluates one criteria group. Conjunctive groups require every set
// criterion to hold; disjunctive groups require at least one, and an empty
// group is a no-op.
func (c *Criteria) matches(r *Row, groups Memberships, conjunctive bool) bool {
	results := c.results(r, groups)
	if !conjunctive && len(results) == 0 {
		return true
	}
	for _, ok := range results {
		if conjunctive && !ok {
			return false
		}
		if !conjunctive && ok {
			return true
		}
	}
	return conjunctive
}

// results evaluates every set criterion of the group in isolation.
func (c *Criteria) results(r *Row, groups Memberships) []bool {
	t := r.Task
	var out []bool
	add := func(ok bool) { out = append(out, ok) }

	if c.TaskID != nil {
		add(t.ID == *c.TaskID)
	}
	if c.Name != nil {
		add(t.Name == *c.Name)
	}
	if c.NameLike != nil {
		add(likeMatch(*c.NameLike, t.Name))
	}
	if c.Description != nil {
		add(t.Description == *c.Description)
	}
	if c.DescriptionLike != nil {
		add(likeMatch(*c.DescriptionLike, t.Description))
	}
	if c.Priority != nil {
		add(t.Priority == *c.Priority)
	}
	if c.MinPriority != nil {
		add(t.Priority >= *c.MinPriority)
	}
	if c.MaxPriority != nil {
		add(t.Priority <= *c.MaxPriority)
	}
	if c.Assignee.Val != nil {
		add(t.Assignee == *c.Assignee.Val)
	} else if c.Assignee.Expr != "" {
		add(false)
	}
	if c.AssigneeLike != nil {
		add(t.Assignee != "" && likeMatch(*c.AssigneeLike, t.Assignee))
	}
	if c.Unassigned != nil {
		add((t.Assignee == "") == *c.Unassigned)
	}
	if c.Owner.Val != nil {
		add(t.Owner == *c.Owner.Val)
	} else if c.Owner.Expr != "" {
		add(false)
	}
	if c.DelegationState != nil {
		add(t.DelegationState == *c.DelegationState)
	}
	if c.CandidateUser.Val != nil {
		add(matchCandidateUser(r, *c.CandidateUser.Val, groups, c.IncludeAssigned))
	} else if c.CandidateUser.Expr != "" {
		add(false)
	}
	if c.CandidateGroup.Val != nil {
		add(matchCandidateGroups(r, []string{*c.CandidateGroup.Val}, c.IncludeAssigned))
	} else if c.CandidateGroup.Expr != "" {
		add(false)
	}
	if len(c.CandidateGroupIn) > 0 {
		add(matchCandidateGroups(r, c.CandidateGroupIn, c.IncludeAssigned))
	}
	if c.WithCandidateGroups {
		add(hasCandidate(r, false, c.IncludeAssigned))
	}
	if c.WithoutCandidateGroups {
		add(len(candidateGroupsOf(r)) == 0)
	}
	if c.WithCandidateUsers {
		add(hasCandidate(r, true, c.IncludeAssigned))
	}
	if c.WithoutCandidateUsers {
		add(len(candidateUsersOf(r)) == 0)
	}
	if c.InvolvedUser.Val != nil {
		add(involved(r, *c.InvolvedUser.Val))
	} else if c.InvolvedUser.Expr != "" {
		add(false)
	}
	if c.ProcessInstanceID != nil {
		add(t.ProcessInstance == *c.ProcessInstanceID)
	}
	if c.ExecutionID != nil {
		add(t.ExecutionID == *c.ExecutionID)
	}
	if c.CaseInstanceID != nil {
		add(t.CaseInstanceID == *c.CaseInstanceID)
	}
	if c.CaseExecutionID != nil {
		add(t.CaseExecutionID == *c.CaseExecutionID)
	}
	if c.ParentTaskID != nil {
		add(t.ParentTaskID == *c.ParentTaskID)
	}
	if len(c.TenantIDIn) > 0 {
		add(contains(c.TenantIDIn, t.TenantID))
	}
	if c.WithoutTenantID {
		add(t.TenantID == "")
	}
	if c.CreatedBefore.Val != nil {
		add(t.CreateTime.Before(*c.CreatedBefore.Val))
	} else if c.CreatedBefore.Expr != "" {
		add(false)
	}
	if c.CreatedAfter.Val != nil {
		add(t.CreateTime.After(*c.CreatedAfter.Val))
	} else if c.CreatedAfter.Expr != "" {
		add(false)
	}
	addTime := func(term TimeTerm, ok func() bool) {
		if term.Val != nil {
			out = append(out, ok())
		} else if term.Expr != "" {
			out = append(out, false)
		}
	}
	addTime(c.DueDate, func() bool { return t.DueDate != nil && t.DueDate.Equal(*c.DueDate.Val) })
	addTime(c.DueBefore, func() bool { return t.DueDate != nil && t.DueDate.Before(*c.DueBefore.Val) })
	addTime(c.DueAfter, func() bool { return t.DueDate != nil && t.DueDate.After(*c.DueAfter.Val) })
	addTime(c.FollowUpDate, func() bool { return t.FollowUpDate != nil && t.FollowUpDate.Equal(*c.FollowUpDate.Val) })
	addTime(c.FollowUpBefore, func() bool { return t.FollowUpDate != nil && t.FollowUpDate.Before(*c.FollowUpBefore.Val) })
	addTime(c.FollowUpAfter, func() bool { return t.FollowUpDate != nil && t.FollowUpDate.After(*c.FollowUpAfter.Val) })
	if c.Suspended != nil {
		add(t.Suspended == *c.Suspended)
	}
	for _, vf := range c.Variables {
		add(vf.matches(r))
	}
	return out
}

// matches evaluates one variable comparison. A missing variable or a stored
// type outside the comparison's domain never matches.
func (vf *VariableFilter) matches(r *Row) bool {
	var vars map[string]variable.Value
	switch vf.Scope {
	case VarScopeTask:
		vars = r.TaskVars
	case VarScopeCase:
		vars = r.CaseVars
	default:
		vars = r.ProcessVars
	}
	stored, ok := vars[vf.Name]
	if !ok {
		return false
	}
	switch vf.Op {
	case OpEqual:
		return stored.Equal(vf.Value)
	case OpNotEqual:
		return !stored.Equal(vf.Value)
	case OpLike:
		return stored.Type == variable.TypeString && likeMatch(vf.Value.Str, stored.Str)
	default:
		cmp, comparable := stored.Compare(vf.Value)
		if !comparable {
			return false
		}
		switch vf.Op {
		case OpGreaterThan:
			return cmp > 0
		case OpGreaterOrEqual:
			return cmp >= 0
		case OpLessThan:
			return cmp < 0
		case OpLessOrEqual:
			return cmp <= 0
		}
		return false
	}
}

func candidateUsersOf(r *Row) []string {
	var out []string
	for _, l := range r.Links {
		if l.Type == identity.LinkCandidate && l.UserID != "" {
			out = append(out, l.UserID)
		}
	}
	return out
}

func candidateGroupsOf(r *Row) []string {
	var out []string
	for _, l := range r.Links {
		if l.Type == identity.LinkCandidate && l.GroupID != "" {
			out = append(out, l.GroupID)
		}
	}
	return out
}

// matchCandidateUser matches tasks where the user is a direct candidate or a
// member of a candidate group. Assigned tasks are excluded unless opted in.
func matchCandidateUser(r *Row, userID string, groups Memberships, includeAssigned bool) bool {
	if r.Task.Assignee != "" && !includeAssigned {
		return false
	}
	if contains(candidateUsersOf(r), userID) {
		return true
	}
	cg := candidateGroupsOf(r)
	for _, g := range groups[userID] {
		if contains(cg, g) {
			return true
		}
	}
	return false
}

func matchCandidateGroups(r *Row, groupIDs []string, includeAssigned bool) bool {
	if r.Task.Assignee != "" && !includeAssigned {
		return false
	}
	cg := candidateGroupsOf(r)
	for _, g := range groupIDs {
		if contains(cg, g) {
			return true
		}
	}
	return false
}

func hasCandidate(r *Row, users bool, includeAssigned bool) bool {
	if r.Task.Assignee != "" && !includeAssigned {
		return false
	}
	if users {
		return len(candidateUsersOf(r)) > 0
	}
	return len(candidateGroupsOf(r)) > 0
}

// involved matches the user appearing in any identity link or as the
// task's assignee or owner.
func involved(r *Row, userID string) bool {
	if r.Task.Assignee == userID || r.Task.Owner == userID {
		return true
	}
	for _, l := range r.Links {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// likeMatch implements SQL LIKE semantics: % matches any run, _ matches one
// character; everything else is literal. Case-sensitive.
func likeMatch(pattern, s string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
