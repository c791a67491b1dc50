// Package task defines the Task domain entity and its delegation state machine.
package task

import "time"

// GenericResourceID is reserved for wildcard authorization rules and may
// never be used as a task id.
const GenericResourceID = "*"

// DelegationState tracks the delegation lifecycle of a task.
// The zero value means the task has never been delegated.
type DelegationState string

const (
	DelegationNone     DelegationState = ""
	DelegationPending  DelegationState = "PENDING"
	DelegationResolved DelegationState = "RESOLVED"
)

// Task represents a unit of human work. A Task with neither ExecutionID nor
// CaseExecutionID is a standalone task.
//
// Revision is the optimistic-lock counter: 0 until the first save, then
// incremented by exactly 1 on every successful write that touches the task
// or any of its dependent rows (variables, identity links, comments,
// attachments).
type Task struct {
	ID              string          `json:"id"`
	Revision        int             `json:"revision"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Priority        int             `json:"priority"`
	Assignee        string          `json:"assignee,omitempty"`
	Owner           string          `json:"owner,omitempty"`
	DelegationState DelegationState `json:"delegation_state,omitempty"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	FollowUpDate    *time.Time      `json:"follow_up_date,omitempty"`
	CreateTime      time.Time       `json:"create_time"`
	LastUpdated     *time.Time      `json:"last_updated,omitempty"`
	ParentTaskID    string          `json:"parent_task_id,omitempty"`
	ExecutionID     string          `json:"execution_id,omitempty"`
	ProcessInstance string          `json:"process_instance_id,omitempty"`
	CaseInstanceID  string          `json:"case_instance_id,omitempty"`
	CaseExecutionID string          `json:"case_execution_id,omitempty"`
	TenantID        string          `json:"tenant_id,omitempty"`
	FormKey         string          `json:"form_key,omitempty"`
	Suspended       bool            `json:"suspended"`
	DeleteReason    string          `json:"-"`
}

// DefaultPriority is assigned to newly created tasks.
const DefaultPriority = 50

// Standalone reports whether the task is attached to no process or case
// execution.
func (t *Task) Standalone() bool {
	return t.ExecutionID == "" && t.CaseExecutionID == ""
}

// Running reports whether the task belongs to a running process or case
// instance and therefore may only be removed by that instance.
func (t *Task) Running() bool {
	return !t.Standalone()
}

// SetAssignee assigns the task. Clearing the assignee while a delegation is
// in flight is an explicit override and resets the delegation state.
func (t *Task) SetAssignee(userID string) {
	if userID == "" && t.DelegationState != DelegationNone {
		t.DelegationState = DelegationNone
	}
	t.Assignee = userID
}

// Delegate hands the task to userID. The current assignee becomes the owner
// unless an owner is already set.
func (t *Task) Delegate(userID string) {
	t.DelegationState = DelegationPending
	if t.Owner == "" {
		t.Owner = t.Assignee
	}
	t.Assignee = userID
}

// Resolve returns a delegated task to its owner.
func (t *Task) Resolve() {
	t.DelegationState = DelegationResolved
	t.Assignee = t.Owner
}

// Clone returns a deep copy. Callers hold clones across transactions to
// exercise the optimistic-lock revision check.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.FollowUpDate != nil {
		d := *t.FollowUpDate
		c.FollowUpDate = &d
	}
	if t.LastUpdated != nil {
		d := *t.LastUpdated
		c.LastUpdated = &d
	}
	return &c
}
