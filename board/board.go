// Package board holds the kanban view state for a single project and
// keeps it synchronized with the external store. Every mutation follows
// the update-after-confirm policy: the store write happens first, and
// view state changes only when the write succeeded, so a failed
// operation never leaves a partial apply behind.
package board

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard-api/domain"
)

// TaskStore is the slice of persistence the board needs. All queries are
// scoped to one project; cross-project reads never happen here.
type TaskStore interface {
	FetchTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	FindTasksByName(ctx context.Context, projectID, name string) ([]domain.Task, error)
	GetTask(ctx context.Context, projectID, taskID string) (domain.Task, error)
	InsertTask(ctx context.Context, task domain.Task) error
	UpdateTask(ctx context.Context, task domain.Task) error
	UpdateTaskStatus(ctx context.Context, projectID, taskID string, status domain.Status) error
	DeleteTask(ctx context.Context, projectID, taskID string) error
}

// Board is the task list of one project as the caller currently sees it.
type Board struct {
	store     TaskStore
	projectID string
	tasks     []domain.Task
}

// New creates an empty board for the project. List populates it.
func New(store TaskStore, projectID string) *Board {
	return &Board{store: store, projectID: projectID}
}

// Tasks returns a copy of the current view state.
func (b *Board) Tasks() []domain.Task {
	out := make([]domain.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// List fetches all tasks for the project, newest first, and replaces the
// view state. On failure the previous view state is kept and the error
// is surfaced page-level; there is no automatic retry.
func (b *Board) List(ctx context.Context) ([]domain.Task, error) {
	tasks, err := b.store.FetchTasks(ctx, b.projectID)
	if err != nil {
		return nil, err
	}
	b.tasks = tasks
	return b.Tasks(), nil
}

// Create inserts a new task with status To-Do and appends it to the view
// state. The duplicate-name check is a pre-write query scoped to this
// project; two writers can still race past it (accepted, see store docs).
func (b *Board) Create(ctx context.Context, name, endDate string) (domain.Task, error) {
	if err := requireFields(name, endDate); err != nil {
		return domain.Task{}, err
	}
	existing, err := b.store.FindTasksByName(ctx, b.projectID, name)
	if err != nil {
		return domain.Task{}, err
	}
	if len(existing) > 0 {
		return domain.Task{}, DuplicateNameError{Kind: "task", Name: name}
	}
	task := domain.Task{
		ID:        uuid.NewString(),
		ProjectID: b.projectID,
		Name:      name,
		Status:    domain.StatusTodo,
		CreatedAt: time.Now().UTC(),
		EndDate:   endDate,
	}
	if err := b.store.InsertTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	b.tasks = append(b.tasks, task)
	return task, nil
}

// Edit renames a task and updates its end date and status. The collision
// check ignores the task itself so saving without a rename succeeds. The
// view-state entry is updated in place, preserving list order.
func (b *Board) Edit(ctx context.Context, taskID, name, endDate string, status domain.Status) (domain.Task, error) {
	if err := requireFields(name, endDate); err != nil {
		return domain.Task{}, err
	}
	if !status.Valid() {
		return domain.Task{}, ValidationError{Field: "status", Reason: "unknown status " + string(status)}
	}
	current, err := b.store.GetTask(ctx, b.projectID, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	existing, err := b.store.FindTasksByName(ctx, current.ProjectID, name)
	if err != nil {
		return domain.Task{}, err
	}
	for _, other := range existing {
		if other.ID != taskID {
			return domain.Task{}, DuplicateNameError{Kind: "task", Name: name}
		}
	}
	updated := current
	updated.Name = name
	updated.EndDate = endDate
	updated.Status = status
	if err := b.store.UpdateTask(ctx, updated); err != nil {
		return domain.Task{}, err
	}
	b.replace(updated)
	return updated, nil
}

// Delete removes the task from the store, then drops exactly the
// matching entry from view state. The operation is unconditional;
// confirmation dialogs are a UI concern.
func (b *Board) Delete(ctx context.Context, taskID string) error {
	if err := b.store.DeleteTask(ctx, b.projectID, taskID); err != nil {
		return err
	}
	kept := b.tasks[:0]
	for _, t := range b.tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	b.tasks = kept
	return nil
}

// Move applies a drag-and-drop status change. All six transitions
// between the three columns are legal; moving a Completed task back to
// To-Do is fine. The store is updated first and view state only reflects
// the move once the store confirmed it.
func (b *Board) Move(ctx context.Context, taskID string, status domain.Status) error {
	if !status.Valid() {
		return ValidationError{Field: "status", Reason: "unknown status " + string(status)}
	}
	if err := b.store.UpdateTaskStatus(ctx, b.projectID, taskID, status); err != nil {
		return err
	}
	for i := range b.tasks {
		if b.tasks[i].ID == taskID {
			b.tasks[i].Status = status
			break
		}
	}
	return nil
}

func (b *Board) replace(task domain.Task) {
	for i := range b.tasks {
		if b.tasks[i].ID == task.ID {
			b.tasks[i] = task
			return
		}
	}
}

func requireFields(name, endDate string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "task_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(endDate) == "" {
		return ValidationError{Field: "end_date", Reason: "must not be empty"}
	}
	return nil
}
