package board

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard-api/domain"
)

// ProjectStore is the persistence slice behind a user's project list.
type ProjectStore interface {
	FetchProjects(ctx context.Context, userID string) ([]domain.Project, error)
	FindProjectsByName(ctx context.Context, userID, name string) ([]domain.Project, error)
	InsertProject(ctx context.Context, p domain.Project) error
	DeleteProject(ctx context.Context, userID, projectID string) error
}

// Projects is one taskable user's project list, reconciled the same way
// Board reconciles tasks: store write first, view state on success.
type Projects struct {
	store    ProjectStore
	userID   string
	projects []domain.Project
}

// NewProjects creates an empty project list for the owner.
func NewProjects(store ProjectStore, userID string) *Projects {
	return &Projects{store: store, userID: userID}
}

// All returns a copy of the current view state.
func (p *Projects) All() []domain.Project {
	out := make([]domain.Project, len(p.projects))
	copy(out, p.projects)
	return out
}

// List fetches the owner's projects and replaces the view state.
func (p *Projects) List(ctx context.Context) ([]domain.Project, error) {
	projects, err := p.store.FetchProjects(ctx, p.userID)
	if err != nil {
		return nil, err
	}
	p.projects = projects
	return p.All(), nil
}

// Create inserts a project after the per-owner duplicate-name check.
func (p *Projects) Create(ctx context.Context, name string) (domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Project{}, ValidationError{Field: "project_name", Reason: "must not be empty"}
	}
	existing, err := p.store.FindProjectsByName(ctx, p.userID, name)
	if err != nil {
		return domain.Project{}, err
	}
	if len(existing) > 0 {
		return domain.Project{}, DuplicateNameError{Kind: "project", Name: name}
	}
	project := domain.Project{
		ID:        uuid.NewString(),
		UserID:    p.userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.store.InsertProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	p.projects = append(p.projects, project)
	return project, nil
}

// Delete removes the project and drops it from view state.
func (p *Projects) Delete(ctx context.Context, projectID string) error {
	if err := p.store.DeleteProject(ctx, p.userID, projectID); err != nil {
		return err
	}
	kept := p.projects[:0]
	for _, pr := range p.projects {
		if pr.ID != projectID {
			kept = append(kept, pr)
		}
	}
	p.projects = kept
	return nil
}
