package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"taskboard-api/domain"
)

type projectEntity struct {
	aztables.Entity
	ProjectName string `json:"ProjectName"`
	CreatedAt   string `json:"CreatedAt"`
}

func projectFromEntity(ent projectEntity) domain.Project {
	created, _ := time.Parse(time.RFC3339Nano, ent.CreatedAt)
	return domain.Project{
		ID:        ent.RowKey,
		UserID:    ent.PartitionKey,
		Name:      ent.ProjectName,
		CreatedAt: created,
	}
}

// FetchProjects lists the owner's projects, newest first.
func (s *Storage) FetchProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	filter := "PartitionKey eq '" + escapeFilterValue(userID) + "'"
	pager := s.projectTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	projects := []domain.Project{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent projectEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			projects = append(projects, projectFromEntity(ent))
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}

// FindProjectsByName runs the pre-write duplicate check for project names.
func (s *Storage) FindProjectsByName(ctx context.Context, userID, name string) ([]domain.Project, error) {
	filter := "PartitionKey eq '" + escapeFilterValue(userID) + "' and ProjectName eq '" + escapeFilterValue(name) + "'"
	pager := s.projectTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	projects := []domain.Project{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent projectEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			projects = append(projects, projectFromEntity(ent))
		}
	}
	return projects, nil
}

// GetProject reads one project row, scoped by owner so a caller can only
// reach their own projects.
func (s *Storage) GetProject(ctx context.Context, userID, projectID string) (domain.Project, error) {
	resp, err := s.projectTable.GetEntity(ctx, userID, projectID, nil)
	if err != nil {
		if isNotFound(err) {
			return domain.Project{}, NotFoundError{Kind: "project"}
		}
		return domain.Project{}, err
	}
	var ent projectEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return domain.Project{}, err
	}
	return projectFromEntity(ent), nil
}

// InsertProject creates a project row.
func (s *Storage) InsertProject(ctx context.Context, p domain.Project) error {
	ent := projectEntity{
		Entity:      aztables.Entity{PartitionKey: p.UserID, RowKey: p.ID},
		ProjectName: p.Name,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	if _, err := s.projectTable.AddEntity(ctx, data, nil); err != nil {
		if isConflict(err) {
			return ConflictError{Kind: "project"}
		}
		return err
	}
	return nil
}

// DeleteProject removes the project row only. The table store has no
// cascading deletes, so callers remove the task rows first.
func (s *Storage) DeleteProject(ctx context.Context, userID, projectID string) error {
	if _, err := s.projectTable.DeleteEntity(ctx, userID, projectID, nil); err != nil {
		if isNotFound(err) {
			return NotFoundError{Kind: "project"}
		}
		return err
	}
	return nil
}
