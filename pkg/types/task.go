// Package types defines the wire types exchanged with the task-manager
// service: tasks, user profiles, authentication payloads, and the realtime
// event envelope. All JSON field names match the server contract.
package types

import "time"

// TaskPriority is the urgency bucket assigned to a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Task is a task as returned by the server. The server is authoritative:
// clients replace their copy wholesale on every confirmed response.
type Task struct {
	TaskID      string       `json:"taskID"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskInput is the payload for creating a task. Status and priority default
// server-side when omitted.
type TaskInput struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
}
