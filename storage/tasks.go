package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"taskboard-api/domain"
)

type taskEntity struct {
	aztables.Entity
	TaskName  string `json:"TaskName"`
	Status    string `json:"Status"`
	EndDate   string `json:"EndDate"`
	CreatedAt string `json:"CreatedAt"`
}

func taskFromEntity(ent taskEntity) domain.Task {
	created, _ := time.Parse(time.RFC3339Nano, ent.CreatedAt)
	return domain.Task{
		ID:        ent.RowKey,
		ProjectID: ent.PartitionKey,
		Name:      ent.TaskName,
		Status:    domain.Status(ent.Status),
		CreatedAt: created,
		EndDate:   ent.EndDate,
	}
}

func taskToEntity(t domain.Task) taskEntity {
	return taskEntity{
		Entity:    aztables.Entity{PartitionKey: t.ProjectID, RowKey: t.ID},
		TaskName:  t.Name,
		Status:    string(t.Status),
		EndDate:   t.EndDate,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// FetchTasks retrieves all tasks for the project, newest first.
func (s *Storage) FetchTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + escapeFilterValue(projectID) + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			tasks = append(tasks, taskFromEntity(ent))
		}
	}
	sortTasksNewestFirst(tasks)
	return tasks, nil
}

func sortTasksNewestFirst(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
}

// FindTasksByName runs the pre-write duplicate check for task names.
// Uniqueness is per project only; the same name in another project is fine.
func (s *Storage) FindTasksByName(ctx context.Context, projectID, name string) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + escapeFilterValue(projectID) + "' and TaskName eq '" + escapeFilterValue(name) + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			tasks = append(tasks, taskFromEntity(ent))
		}
	}
	return tasks, nil
}

// GetTask reads one task row.
func (s *Storage) GetTask(ctx context.Context, projectID, taskID string) (domain.Task, error) {
	resp, err := s.taskTable.GetEntity(ctx, projectID, taskID, nil)
	if err != nil {
		if isNotFound(err) {
			return domain.Task{}, NotFoundError{Kind: "task"}
		}
		return domain.Task{}, err
	}
	var ent taskEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return domain.Task{}, err
	}
	return taskFromEntity(ent), nil
}

// InsertTask creates a task row.
func (s *Storage) InsertTask(ctx context.Context, t domain.Task) error {
	data, err := json.Marshal(taskToEntity(t))
	if err != nil {
		return err
	}
	if _, err := s.taskTable.AddEntity(ctx, data, nil); err != nil {
		if isConflict(err) {
			return ConflictError{Kind: "task"}
		}
		return err
	}
	return nil
}

// UpdateTask replaces the task row with the edited copy.
func (s *Storage) UpdateTask(ctx context.Context, t domain.Task) error {
	data, err := json.Marshal(taskToEntity(t))
	if err != nil {
		return err
	}
	if _, err := s.taskTable.UpdateEntity(ctx, data, replaceOptions()); err != nil {
		if isNotFound(err) {
			return NotFoundError{Kind: "task"}
		}
		return err
	}
	return nil
}

// UpdateTaskStatus writes only the status column; everything else stays
// as the edit form last left it.
func (s *Storage) UpdateTaskStatus(ctx context.Context, projectID, taskID string, status domain.Status) error {
	patch := struct {
		aztables.Entity
		Status string `json:"Status"`
	}{
		Entity: aztables.Entity{PartitionKey: projectID, RowKey: taskID},
		Status: string(status),
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	if _, err := s.taskTable.UpdateEntity(ctx, data, mergeOptions()); err != nil {
		if isNotFound(err) {
			return NotFoundError{Kind: "task"}
		}
		return err
	}
	return nil
}

// DeleteTask removes the task row.
func (s *Storage) DeleteTask(ctx context.Context, projectID, taskID string) error {
	if _, err := s.taskTable.DeleteEntity(ctx, projectID, taskID, nil); err != nil {
		if isNotFound(err) {
			return NotFoundError{Kind: "task"}
		}
		return err
	}
	return nil
}
