package models

import "time"

// Task states.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task priorities.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// StatusChange is one entry of a task's status history.
type StatusChange struct {
	Status    string    `json:"status" firestore:"status"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// Task is an internal to-do item. StatusHistory is append-only and ordered by time.
type Task struct {
	ID            string         `json:"id" firestore:"-"`
	UserID        string         `json:"userId" firestore:"userId"`
	Title         string         `json:"title" firestore:"title"`
	Description   string         `json:"description,omitempty" firestore:"description,omitempty"`
	Status        string         `json:"status" firestore:"status"`
	Priority      string         `json:"priority" firestore:"priority"`
	DueDate       *time.Time     `json:"dueDate,omitempty" firestore:"dueDate,omitempty"`
	StatusHistory []StatusChange `json:"statusHistory" firestore:"statusHistory"`
	CreatedAt     time.Time      `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" firestore:"updatedAt"`
}

func (t *Task) GetID() string               { return t.ID }
func (t *Task) SetID(id string)             { t.ID = id }
func (t *Task) GetTenantID() string         { return t.UserID }
func (t *Task) SetTenantID(tenantID string) { t.UserID = tenantID }

// CompletedAt returns the time of the first transition into completed, if any.
func (t *Task) CompletedAt() (time.Time, bool) {
	for _, change := range t.StatusHistory {
		if change.Status == TaskStatusCompleted {
			return change.Timestamp, true
		}
	}
	return time.Time{}, false
}
