package messagequeue

import "time"

// TaskCreatedPayload is the schema for tasks.created messages.
type TaskCreatedPayload struct {
	TaskID     string    `json:"task_id"`
	Name       string    `json:"name"`
	Assignee   string    `json:"assignee,omitempty"`
	TenantID   string    `json:"tenant_id,omitempty"`
	CreateTime time.Time `json:"create_time"`
}

// TaskAssignedPayload is the schema for tasks.assigned messages. Assignee
// is empty when the task was released rather than claimed.
type TaskAssignedPayload struct {
	TaskID   string `json:"task_id"`
	Assignee string `json:"assignee"`
	Previous string `json:"previous,omitempty"`
}

// TaskCompletedPayload is the schema for tasks.completed messages.
type TaskCompletedPayload struct {
	TaskID   string `json:"task_id"`
	Assignee string `json:"assignee,omitempty"`
}

// TaskDeletedPayload is the schema for tasks.deleted messages.
type TaskDeletedPayload struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
}
