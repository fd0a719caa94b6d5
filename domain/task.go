package domain

import "time"

// Status is a kanban column. Every status may move to every other one;
// Completed is not terminal.
type Status string

const (
	StatusTodo       Status = "To-Do"
	StatusInProgress Status = "In-Progress"
	StatusCompleted  Status = "Completed"
)

// Valid reports whether s is one of the three board columns.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a single board item. ProjectID is fixed at creation; Status is
// the only field a drag-and-drop move touches.
type Task struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"task_name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	EndDate   string    `json:"end_date"`
}
