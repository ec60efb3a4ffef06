package model

import "time"

// Status is the persisted task status. "Overdue" is never stored; it is
// derived at read time from the due date and the current clock.
type Status string

const (
	StatusToDo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the storable statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority ranks a task's urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a raw store row. The store assigns the ID at insert time and
// CreatedByID never changes afterwards.
type Task struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    Priority `gorm:"default:medium"`
	Status      Status   `gorm:"default:todo;index"`
	CreatedByID string   `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Assignments []Assignment `gorm:"foreignKey:TaskID"`
	Comments    []Comment    `gorm:"foreignKey:TaskID"`
}

// Assignment links a task to one assignee profile.
type Assignment struct {
	ID        uint   `gorm:"primaryKey"`
	TaskID    string `gorm:"index:idx_task_assignee,unique"`
	UserID    string `gorm:"index:idx_task_assignee,unique"`
	CreatedAt time.Time
}

// AssigneeIDs returns the raw assignee identifiers in stored order.
func (t *Task) AssigneeIDs() []string {
	ids := make([]string, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}

// IsAssignee reports whether userID belongs to the task's assignee set.
// It checks raw identifiers, so membership holds even when the matching
// profile cannot be resolved.
func (t *Task) IsAssignee(userID string) bool {
	for _, a := range t.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
