// Package query implements the composable task query: a predicate tree of
// an implicit top-level conjunction plus disjunction groups, typed variable
// comparisons, expression-valued criteria, and multi-key sorting.
package query

import (
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/variable"
)

// Origin records how a query reached the executor. Stored queries are
// re-executed saved filters; everything else is ad-hoc. The two expression
// toggles are keyed off this.
type Origin string

const (
	OriginAdhoc  Origin = "adhoc"
	OriginStored Origin = "stored"
)

// Operator is a typed comparison operator for variable criteria.
type Operator string

const (
	OpEqual          Operator = "eq"
	OpNotEqual       Operator = "neq"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpLike           Operator = "like"
)

func (o Operator) relational() bool {
	switch o {
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		return true
	default:
		return false
	}
}

// VarScope selects which variable scope a criterion or sort key reads.
type VarScope string

const (
	VarScopeTask    VarScope = "task"
	VarScopeProcess VarScope = "process"
	VarScopeCase    VarScope = "case"
)

// VariableFilter is one typed comparison against a named variable.
type VariableFilter struct {
	Name  string         `json:"name"`
	Op    Operator       `json:"op"`
	Value variable.Value `json:"value"`
	Scope VarScope       `json:"scope"`
}

// StringTerm holds a string criterion with a literal and an expression slot.
// Setting one slot clears the other; the last setter wins.
type StringTerm struct {
	Val  *string `json:"val,omitempty"`
	Expr string  `json:"expr,omitempty"`
}

func (t *StringTerm) setVal(v string) { t.Val = &v; t.Expr = "" }
func (t *StringTerm) setExpr(e string) {
	t.Val = nil
	t.Expr = e
}

// set reports whether either slot carries a value.
func (t *StringTerm) set() bool { return t.Val != nil || t.Expr != "" }

// TimeTerm is the timestamp counterpart of StringTerm.
type TimeTerm struct {
	Val  *time.Time `json:"val,omitempty"`
	Expr string     `json:"expr,omitempty"`
}

func (t *TimeTerm) setVal(v time.Time) { t.Val = &v; t.Expr = "" }
func (t *TimeTerm) setExpr(e string) {
	t.Val = nil
	t.Expr = e
}
func (t *TimeTerm) set() bool { return t.Val != nil || t.Expr != "" }

// Criteria is one predicate group. At the top level its set members are
// conjoined; inside a disjunction group at least one set member must match.
type Criteria struct {
	TaskID                 *string               `json:"task_id,omitempty"`
	Name                   *string               `json:"name,omitempty"`
	NameLike               *string               `json:"name_like,omitempty"`
	Description            *string               `json:"description,omitempty"`
	DescriptionLike        *string               `json:"description_like,omitempty"`
	Priority               *int                  `json:"priority,omitempty"`
	MinPriority            *int                  `json:"min_priority,omitempty"`
	MaxPriority            *int                  `json:"max_priority,omitempty"`
	Assignee               StringTerm            `json:"assignee,omitzero"`
	AssigneeLike           *string               `json:"assignee_like,omitempty"`
	Unassigned             *bool                 `json:"unassigned,omitempty"`
	Owner                  StringTerm            `json:"owner,omitzero"`
	DelegationState        *task.DelegationState `json:"delegation_state,omitempty"`
	CandidateUser          StringTerm            `json:"candidate_user,omitzero"`
	CandidateGroup         StringTerm            `json:"candidate_group,omitzero"`
	CandidateGroupIn       []string              `json:"candidate_group_in,omitempty"`
	WithCandidateGroups    bool                  `json:"with_candidate_groups,omitempty"`
	WithoutCandidateGroups bool                  `json:"without_candidate_groups,omitempty"`
	WithCandidateUsers     bool                  `json:"with_candidate_users,omitempty"`
	WithoutCandidateUsers  bool                  `json:"without_candidate_users,omitempty"`
	IncludeAssigned        bool                  `json:"include_assigned,omitempty"`
	InvolvedUser           StringTerm            `json:"involved_user,omitzero"`
	ProcessInstanceID      *string               `json:"process_instance_id,omitempty"`
	ExecutionID            *string               `json:"execution_id,omitempty"`
	CaseInstanceID         *string               `json:"case_instance_id,omitempty"`
	CaseExecutionID        *string               `json:"case_execution_id,omitempty"`
	ParentTaskID           *string               `json:"parent_task_id,omitempty"`
	TenantIDIn             []string              `json:"tenant_id_in,omitempty"`
	WithoutTenantID        bool                  `json:"without_tenant_id,omitempty"`
	CreatedBefore          TimeTerm              `json:"created_before,omitzero"`
	CreatedAfter           TimeTerm              `json:"created_after,omitzero"`
	DueDate                TimeTerm              `json:"due_date,omitzero"`
	DueBefore              TimeTerm              `json:"due_before,omitzero"`
	DueAfter               TimeTerm              `json:"due_after,omitzero"`
	FollowUpDate           TimeTerm              `json:"follow_up_date,omitzero"`
	FollowUpBefore         TimeTerm              `json:"follow_up_before,omitzero"`
	FollowUpAfter          TimeTerm              `json:"follow_up_after,omitzero"`
	Suspended              *bool                 `json:"suspended,omitempty"`
	Variables              []VariableFilter      `json:"variables,omitempty"`
}

// hasCandidatePredicate reports whether any candidate-user/-group criterion
// is present, the precondition for IncludeAssignedTasks.
func (c *Criteria) hasCandidatePredicate() bool {
	return c.CandidateUser.set() || c.CandidateGroup.set() || len(c.CandidateGroupIn) > 0 ||
		c.WithCandidateGroups || c.WithCandidateUsers
}

// expressions returns pointers to every expression slot in the group.
func (c *Criteria) expressionTerms() []*string {
	var out []*string
	for _, t := range []*StringTerm{&c.Assignee, &c.Owner, &c.CandidateUser, &c.CandidateGroup, &c.InvolvedUser} {
		if t.Expr != "" {
			out = append(out, &t.Expr)
		}
	}
	for _, t := range []*TimeTerm{&c.CreatedBefore, &c.CreatedAfter, &c.DueDate, &c.DueBefore, &c.DueAfter, &c.FollowUpDate, &c.FollowUpBefore, &c.FollowUpAfter} {
		if t.Expr != "" {
			out = append(out, &t.Expr)
		}
	}
	return out
}

// SortField names a sort key target.
type SortField string

const (
	SortByID              SortField = "id"
	SortByName            SortField = "name"
	SortByDescription     SortField = "description"
	SortByPriority        SortField = "priority"
	SortByAssignee        SortField = "assignee"
	SortByCreateTime      SortField = "create_time"
	SortByDueDate         SortField = "due_date"
	SortByFollowUpDate    SortField = "follow_up_date"
	SortByLastUpdated     SortField = "last_updated"
	SortByProcessInstance SortField = "process_instance_id"
	SortByCaseInstance    SortField = "case_instance_id"
	SortByTenantID        SortField = "tenant_id"
	SortByVariable        SortField = "variable"
)

// SortKey is one entry of the stable multi-key ordering.
type SortKey struct {
	Field    SortField     `json:"field"`
	Desc     bool          `json:"desc,omitempty"`
	VarName  string        `json:"var_name,omitempty"`
	VarType  variable.Type `json:"var_type,omitempty"`
	VarScope VarScope      `json:"var_scope,omitempty"`
}

// TaskQuery is the fluent builder. Builder calls are chainable; the first
// validation error latches and every subsequent call is a no-op. Err exposes
// the latched error and execution surfaces it again before touching the
// store.
type TaskQuery struct {
	root     Criteria
	orGroups []*Criteria
	current  *Criteria
	inOr     bool

	sorts        []SortKey
	initFormKeys bool
	origin       Origin
	err          error
}

// New returns an empty ad-hoc query matching every task.
func New() *TaskQuery {
	q := &TaskQuery{origin: OriginAdhoc}
	q.current = &q.root
	return q
}

// Err returns the first validation error recorded by a builder call.
func (q *TaskQuery) Err() error { return q.err }

// Origin reports whether the query is ad-hoc or a re-executed stored filter.
func (q *TaskQuery) Origin() Origin { return q.origin }

// MarkStored flags the query as a re-executed saved filter.
func (q *TaskQuery) MarkStored() { q.origin = OriginStored }

// Root exposes the top-level criteria group (read-only use).
func (q *TaskQuery) Root() *Criteria { return &q.root }

// OrGroups exposes the disjunction groups (read-only use).
func (q *TaskQuery) OrGroups() []*Criteria { return q.orGroups }

// Sorts returns the ordered sort keys.
func (q *TaskQuery) Sorts() []SortKey { return q.sorts }

// InitializeFormKeysRequested reports whether form keys should be populated
// on returned tasks.
func (q *TaskQuery) InitializeFormKeysRequested() bool { return q.initFormKeys }

func (q *TaskQuery) fail(format string, args ...any) *TaskQuery {
	if q.err == nil {
		q.err = domain.Validationf(format, args...)
	}
	return q
}

// failed reports whether the builder is latched; callers skip mutation then.
func (q *TaskQuery) failed() bool { return q.err != nil }

// BeginOr opens a disjunction group. Nesting is not supported.
func (q *TaskQuery) BeginOr() *TaskQuery {
	if q.failed() {
		return q
	}
	if q.inOr {
		return q.fail("invalid query usage: cannot set beginOr() within 'or' query")
	}
	g := &Criteria{}
	q.orGroups = append(q.orGroups, g)
	q.current = g
	q.inOr = true
	return q
}

// EndOr closes the open disjunction group.
func (q *TaskQuery) EndOr() *TaskQuery {
	if q.failed() {
		return q
	}
	if !q.inOr {
		return q.fail("invalid query usage: cannot set endOr() before beginOr()")
	}
	q.current = &q.root
	q.inOr = false
	return q
}

// notInOr latches an error when op is called inside an open OR group.
func (q *TaskQuery) notInOr(op string) bool {
	if q.failed() {
		return false
	}
	if q.inOr {
		q.fail("invalid query usage: cannot set %s within 'or' query", op)
		return false
	}
	return true
}

// --- plain criteria -------------------------------------------------------

func (q *TaskQuery) TaskID(id string) *TaskQuery {
	if !q.failed() {
		q.current.TaskID = &id
	}
	return q
}

func (q *TaskQuery) TaskName(name string) *TaskQuery {
	if !q.failed() {
		q.current.Name = &name
	}
	return q
}

func (q *TaskQuery) TaskNameLike(pattern string) *TaskQuery {
	if !q.failed() {
		q.current.NameLike = &pattern
	}
	return q
}

func (q *TaskQuery) TaskDescription(desc string) *TaskQuery {
	if !q.failed() {
		q.current.Description = &desc
	}
	return q
}

func (q *TaskQuery) TaskDescriptionLike(pattern string) *TaskQuery {
	if !q.failed() {
		q.current.DescriptionLike = &pattern
	}
	return q
}

func (q *TaskQuery) TaskPriority(p int) *TaskQuery {
	if !q.failed() {
		q.current.Priority = &p
	}
	return q
}

func (q *TaskQuery) TaskMinPriority(p int) *TaskQuery {
	if !q.failed() {
		q.current.MinPriority = &p
	}
	return q
}

func (q *TaskQuery) TaskMaxPriority(p int) *TaskQuery {
	if !q.failed() {
		q.current.MaxPriority = &p
	}
	return q
}

func (q *TaskQuery) TaskAssignee(userID string) *TaskQuery {
	if !q.failed() {
		q.current.Assignee.setVal(userID)
	}
	return q
}

func (q *TaskQuery) TaskAssigneeExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.Assignee.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) TaskAssigneeLike(pattern string) *TaskQuery {
	if !q.failed() {
		q.current.AssigneeLike = &pattern
	}
	return q
}

func (q *TaskQuery) TaskUnassigned() *TaskQuery {
	if !q.failed() {
		t := true
		q.current.Unassigned = &t
	}
	return q
}

func (q *TaskQuery) TaskAssigned() *TaskQuery {
	if !q.failed() {
		f := false
		q.current.Unassigned = &f
	}
	return q
}

func (q *TaskQuery) TaskOwner(userID string) *TaskQuery {
	if !q.failed() {
		q.current.Owner.setVal(userID)
	}
	return q
}

func (q *TaskQuery) TaskOwnerExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.Owner.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) TaskDelegationState(s task.DelegationState) *TaskQuery {
	if !q.failed() {
		q.current.DelegationState = &s
	}
	return q
}

func (q *TaskQuery) TaskInvolvedUser(userID string) *TaskQuery {
	if !q.failed() {
		q.current.InvolvedUser.setVal(userID)
	}
	return q
}

func (q *TaskQuery) TaskInvolvedUserExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.InvolvedUser.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) ProcessInstanceID(id string) *TaskQuery {
	if !q.failed() {
		q.current.ProcessInstanceID = &id
	}
	return q
}

func (q *TaskQuery) ExecutionID(id string) *TaskQuery {
	if !q.failed() {
		q.current.ExecutionID = &id
	}
	return q
}

func (q *TaskQuery) CaseInstanceID(id string) *TaskQuery {
	if !q.failed() {
		q.current.CaseInstanceID = &id
	}
	return q
}

func (q *TaskQuery) CaseExecutionID(id string) *TaskQuery {
	if !q.failed() {
		q.current.CaseExecutionID = &id
	}
	return q
}

func (q *TaskQuery) TaskParentTaskID(id string) *TaskQuery {
	if !q.failed() {
		q.current.ParentTaskID = &id
	}
	return q
}

func (q *TaskQuery) TenantIDIn(ids ...string) *TaskQuery {
	if q.failed() {
		return q
	}
	if len(ids) == 0 {
		return q.fail("tenantIdIn requires at least one tenant id")
	}
	q.current.TenantIDIn = ids
	return q
}

func (q *TaskQuery) WithoutTenantID() *TaskQuery {
	if !q.failed() {
		q.current.WithoutTenantID = true
	}
	return q
}

func (q *TaskQuery) Active() *TaskQuery {
	if !q.failed() {
		f := false
		q.current.Suspended = &f
	}
	return q
}

func (q *TaskQuery) Suspended() *TaskQuery {
	if !q.failed() {
		t := true
		q.current.Suspended = &t
	}
	return q
}

// --- temporal criteria ----------------------------------------------------

func (q *TaskQuery) TaskCreatedBefore(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.CreatedBefore.setVal(t)
	}
	return q
}

func (q *TaskQuery) TaskCreatedBeforeExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.CreatedBefore.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) TaskCreatedAfter(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.CreatedAfter.setVal(t)
	}
	return q
}

func (q *TaskQuery) TaskCreatedAfterExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.CreatedAfter.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) DueDate(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.DueDate.setVal(t)
	}
	return q
}

func (q *TaskQuery) DueDateExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.DueDate.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) DueBefore(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.DueBefore.setVal(t)
	}
	return q
}

func (q *TaskQuery) DueBeforeExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.DueBefore.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) DueAfter(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.DueAfter.setVal(t)
	}
	return q
}

func (q *TaskQuery) DueAfterExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.DueAfter.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) FollowUpDate(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.FollowUpDate.setVal(t)
	}
	return q
}

func (q *TaskQuery) FollowUpDateExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.FollowUpDate.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) FollowUpBefore(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.FollowUpBefore.setVal(t)
	}
	return q
}

func (q *TaskQuery) FollowUpBeforeExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.FollowUpBefore.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) FollowUpAfter(t time.Time) *TaskQuery {
	if !q.failed() {
		q.current.FollowUpAfter.setVal(t)
	}
	return q
}

func (q *TaskQuery) FollowUpAfterExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.FollowUpAfter.setExpr(expr)
	}
	return q
}

// --- candidate criteria ---------------------------------------------------

func (q *TaskQuery) TaskCandidateUser(userID string) *TaskQuery {
	if !q.failed() {
		q.current.CandidateUser.setVal(userID)
	}
	return q
}

func (q *TaskQuery) TaskCandidateUserExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.CandidateUser.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) TaskCandidateGroup(groupID string) *TaskQuery {
	if !q.failed() {
		q.current.CandidateGroup.setVal(groupID)
	}
	return q
}

func (q *TaskQuery) TaskCandidateGroupExpression(expr string) *TaskQuery {
	if !q.failed() {
		q.current.CandidateGroup.setExpr(expr)
	}
	return q
}

func (q *TaskQuery) TaskCandidateGroupIn(groupIDs ...string) *TaskQuery {
	if q.failed() {
		return q
	}
	if len(groupIDs) == 0 {
		return q.fail("taskCandidateGroupIn requires at least one group id")
	}
	q.current.CandidateGroupIn = groupIDs
	return q
}

func (q *TaskQuery) WithCandidateGroups() *TaskQuery {
	if q.notInOr("withCandidateGroups()") {
		q.current.WithCandidateGroups = true
	}
	return q
}

func (q *TaskQuery) WithoutCandidateGroups() *TaskQuery {
	if q.notInOr("withoutCandidateGroups()") {
		q.current.WithoutCandidateGroups = true
	}
	return q
}

func (q *TaskQuery) WithCandidateUsers() *TaskQuery {
	if q.notInOr("withCandidateUsers()") {
		q.current.WithCandidateUsers = true
	}
	return q
}

func (q *TaskQuery) WithoutCandidateUsers() *TaskQuery {
	if q.notInOr("withoutCandidateUsers()") {
		q.current.WithoutCandidateUsers = true
	}
	return q
}

// IncludeAssignedTasks disables the default exclusion of assigned tasks from
// candidate-based results. A candidate criterion must already be present.
func (q *TaskQuery) IncludeAssignedTasks() *TaskQuery {
	if q.failed() {
		return q
	}
	if !q.current.hasCandidatePredicate() {
		return q.fail("calling includeAssignedTasks() is invalid unless a candidate user or candidate group criterion is set before")
	}
	q.current.IncludeAssigned = true
	return q
}

// InitializeFormKeys opts into populating form keys on returned tasks.
func (q *TaskQuery) InitializeFormKeys() *TaskQuery {
	if q.notInOr("initializeFormKeys()") {
		q.initFormKeys = true
	}
	return q
}

// --- variable criteria ----------------------------------------------------

func (q *TaskQuery) variableFilter(scope VarScope, name string, op Operator, v variable.Value) *TaskQuery {
	if q.failed() {
		return q
	}
	if name == "" {
		return q.fail("variable criterion requires a name")
	}
	if op.relational() && !variable.RelationalSupported(v.Type) {
		return q.fail("variables of type %s cannot be used in relational comparisons", v.Type)
	}
	q.current.Variables = append(q.current.Variables, VariableFilter{Name: name, Op: op, Value: v, Scope: scope})
	return q
}

func (q *TaskQuery) TaskVariableValueEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeTask, name, OpEqual, v)
}

func (q *TaskQuery) TaskVariableValueNotEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeTask, name, OpNotEqual, v)
}

func (q *TaskQuery) TaskVariableValueGreaterThan(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeTask, name, OpGreaterThan, v)
}

func (q *TaskQuery) TaskVariableValueGreaterThanOrEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeTask, name, OpGreaterOrEqual, v)
}

func (q *TaskQuery) TaskVariableValueLessThan(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeTask, name, OpLessThan, v)
}

func (q *TaskQuery) TaskVariableValueLessThanOrEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeTask, name, OpLessOrEqual, v)
}

func (q *TaskQuery) TaskVariableValueLike(name, pattern string) *TaskQuery {
	return q.variableFilter(VarScopeTask, name, OpLike, variable.String(pattern))
}

func (q *TaskQuery) ProcessVariableValueEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeProcess, name, OpEqual, v)
}

func (q *TaskQuery) ProcessVariableValueNotEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeProcess, name, OpNotEqual, v)
}

func (q *TaskQuery) ProcessVariableValueGreaterThan(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeProcess, name, OpGreaterThan, v)
}

func (q *TaskQuery) ProcessVariableValueGreaterThanOrEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeProcess, name, OpGreaterOrEqual, v)
}

func (q *TaskQuery) ProcessVariableValueLessThan(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeProcess, name, OpLessThan, v)
}

func (q *TaskQuery) ProcessVariableValueLessThanOrEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeProcess, name, OpLessOrEqual, v)
}

func (q *TaskQuery) ProcessVariableValueLike(name, pattern string) *TaskQuery {
	return q.variableFilter(VarScopeProcess, name, OpLike, variable.String(pattern))
}

func (q *TaskQuery) CaseInstanceVariableValueEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeCase, name, OpEqual, v)
}

func (q *TaskQuery) CaseInstanceVariableValueNotEquals(name string, v variable.Value) *TaskQuery {
	return q.variableFilter(VarScopeCase, name, OpNotEqual, v)
}

// --- sorting --------------------------------------------------------------

func (q *TaskQuery) orderBy(field SortField, op string) *TaskQuery {
	if q.notInOr(op) {
		q.sorts = append(q.sorts, SortKey{Field: field})
	}
	return q
}

func (q *TaskQuery) OrderByTaskID() *TaskQuery   { return q.orderBy(SortByID, "orderByTaskId()") }
func (q *TaskQuery) OrderByTaskName() *TaskQuery { return q.orderBy(SortByName, "orderByTaskName()") }
func (q *TaskQuery) OrderByTaskDescription() *TaskQuery {
	return q.orderBy(SortByDescription, "orderByTaskDescription()")
}
func (q *TaskQuery) OrderByTaskPriority() *TaskQuery {
	return q.orderBy(SortByPriority, "orderByTaskPriority()")
}
func (q *TaskQuery) OrderByTaskAssignee() *TaskQuery {
	return q.orderBy(SortByAssignee, "orderByTaskAssignee()")
}
func (q *TaskQuery) OrderByTaskCreateTime() *TaskQuery {
	return q.orderBy(SortByCreateTime, "orderByTaskCreateTime()")
}
func (q *TaskQuery) OrderByDueDate() *TaskQuery { return q.orderBy(SortByDueDate, "orderByDueDate()") }
func (q *TaskQuery) OrderByFollowUpDate() *TaskQuery {
	return q.orderBy(SortByFollowUpDate, "orderByFollowUpDate()")
}
func (q *TaskQuery) OrderByLastUpdated() *TaskQuery {
	return q.orderBy(SortByLastUpdated, "orderByLastUpdated()")
}
func (q *TaskQuery) OrderByProcessInstanceID() *TaskQuery {
	return q.orderBy(SortByProcessInstance, "orderByProcessInstanceId()")
}
func (q *TaskQuery) OrderByCaseInstanceID() *TaskQuery {
	return q.orderBy(SortByCaseInstance, "orderByCaseInstanceId()")
}
func (q *TaskQuery) OrderByTenantID() *TaskQuery {
	return q.orderBy(SortByTenantID, "orderByTenantId()")
}

func (q *TaskQuery) orderByVariable(scope VarScope, name string, hint variable.Type, op string) *TaskQuery {
	if !q.notInOr(op) {
		return q
	}
	if name == "" {
		return q.fail("%s requires a variable name", op)
	}
	if !variable.SortSupported(hint) {
		return q.fail("cannot sort by variables of type %s", hint)
	}
	q.sorts = append(q.sorts, SortKey{Field: SortByVariable, VarName: name, VarType: hint, VarScope: scope})
	return q
}

// OrderByProcessVariable sorts by an execution-scope variable. The declared
// type hint is validated eagerly; unsupported hints fail before execution.
func (q *TaskQuery) OrderByProcessVariable(name string, hint variable.Type) *TaskQuery {
	return q.orderByVariable(VarScopeProcess, name, hint, "orderByProcessVariable()")
}

// OrderByTaskVariable sorts by a task-local variable.
func (q *TaskQuery) OrderByTaskVariable(name string, hint variable.Type) *TaskQuery {
	return q.orderByVariable(VarScopeTask, name, hint, "orderByTaskVariable()")
}

// OrderByCaseExecutionVariable sorts by a case-execution-scope variable.
func (q *TaskQuery) OrderByCaseExecutionVariable(name string, hint variable.Type) *TaskQuery {
	return q.orderByVariable(VarScopeCase, name, hint, "orderByCaseExecutionVariable()")
}

// Asc marks the most recent sort key ascending.
func (q *TaskQuery) Asc() *TaskQuery {
	if q.failed() {
		return q
	}
	if len(q.sorts) == 0 {
		return q.fail("you should call any of the orderBy methods first before specifying a direction")
	}
	q.sorts[len(q.sorts)-1].Desc = false
	return q
}

// Desc marks the most recent sort key descending.
func (q *TaskQuery) Desc() *TaskQuery {
	if q.failed() {
		return q
	}
	if len(q.sorts) == 0 {
		return q.fail("you should call any of the orderBy methods first before specifying a direction")
	}
	q.sorts[len(q.sorts)-1].Desc = true
	return q
}

// Validate returns the latched builder error plus structural checks that can
// only run once building is finished.
func (q *TaskQuery) Validate() error {
	if q.err != nil {
		return q.err
	}
	if q.inOr {
		return domain.Validationf("invalid query usage: beginOr() was not closed with endOr()")
	}
	return nil
}

// HasExpressions reports whether any criterion carries an unevaluated
// expression, in the top-level group or any disjunction group.
func (q *TaskQuery) HasExpressions() bool {
	if len(q.root.expressionTerms()) > 0 {
		return true
	}
	for _, g := range q.orGroups {
		if len(g.expressionTerms()) > 0 {
			return true
		}
	}
	return false
}

// groups returns the top-level group followed by all disjunction groups.
func (q *TaskQuery) groups() []*Criteria {
	out := []*Criteria{&q.root}
	out = append(out, q.orGroups...)
	return out
}
