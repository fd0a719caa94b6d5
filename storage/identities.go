package storage

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"taskboard-api/domain"
)

type identityEntity struct {
	aztables.Entity
	Email         string `json:"Email"`
	DisplayName   string `json:"DisplayName"`
	Role          string `json:"Role"`
	AddedTaskable bool   `json:"AddedTaskable"`
}

func identityFromEntity(ent identityEntity) domain.Identity {
	return domain.Identity{
		ID:            ent.RowKey,
		Email:         ent.Email,
		DisplayName:   ent.DisplayName,
		Role:          domain.Role(ent.Role),
		AddedTaskable: ent.AddedTaskable,
	}
}

func identityToEntity(ident domain.Identity) identityEntity {
	return identityEntity{
		Entity:        aztables.Entity{PartitionKey: ident.ID, RowKey: ident.ID},
		Email:         ident.Email,
		DisplayName:   ident.DisplayName,
		Role:          string(ident.Role),
		AddedTaskable: ident.AddedTaskable,
	}
}

// FetchIdentity reads a single user row. Callers must not cache the
// result across requests; AddedTaskable can change between them.
func (s *Storage) FetchIdentity(ctx context.Context, userID string) (domain.Identity, error) {
	resp, err := s.userTable.GetEntity(ctx, userID, userID, nil)
	if err != nil {
		if isNotFound(err) {
			return domain.Identity{}, NotFoundError{Kind: "identity"}
		}
		return domain.Identity{}, err
	}
	var ent identityEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return domain.Identity{}, err
	}
	return identityFromEntity(ent), nil
}

// InsertIdentity creates a user row. The hosted auth account itself is
// provisioned by the external provider.
func (s *Storage) InsertIdentity(ctx context.Context, ident domain.Identity) error {
	data, err := json.Marshal(identityToEntity(ident))
	if err != nil {
		return err
	}
	if _, err := s.userTable.AddEntity(ctx, data, nil); err != nil {
		if isConflict(err) {
			return ConflictError{Kind: "identity"}
		}
		return err
	}
	return nil
}

// SetTaskable toggles whether the user may own projects.
func (s *Storage) SetTaskable(ctx context.Context, userID string, taskable bool) error {
	patch := struct {
		aztables.Entity
		AddedTaskable bool `json:"AddedTaskable"`
	}{
		Entity:        aztables.Entity{PartitionKey: userID, RowKey: userID},
		AddedTaskable: taskable,
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	if _, err := s.userTable.UpdateEntity(ctx, data, mergeOptions()); err != nil {
		if isNotFound(err) {
			return NotFoundError{Kind: "identity"}
		}
		return err
	}
	return nil
}

// ListTaskableUsers returns the regular-role users an admin has made
// taskable, ordered by display name.
func (s *Storage) ListTaskableUsers(ctx context.Context) ([]domain.Identity, error) {
	filter := "Role eq '" + string(domain.RoleUser) + "' and AddedTaskable eq true"
	pager := s.userTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	users := []domain.Identity{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent identityEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			users = append(users, identityFromEntity(ent))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].DisplayName < users[j].DisplayName })
	return users, nil
}

// DeleteIdentity removes the user row.
func (s *Storage) DeleteIdentity(ctx context.Context, userID string) error {
	if _, err := s.userTable.DeleteEntity(ctx, userID, userID, nil); err != nil {
		if isNotFound(err) {
			return NotFoundError{Kind: "identity"}
		}
		return err
	}
	return nil
}
