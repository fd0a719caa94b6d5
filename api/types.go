package api

import (
	"context"
	"time"

	"taskboard-api/board"
	"taskboard-api/domain"
)

// Storage aggregates everything the handlers need from persistence.
type Storage interface {
	IdentityStore
	board.ProjectStore
	board.TaskStore
	GetProject(ctx context.Context, userID, projectID string) (domain.Project, error)
}

// IdentityStore manages user rows and the external-auth deletion handoff.
type IdentityStore interface {
	FetchIdentity(ctx context.Context, userID string) (domain.Identity, error)
	InsertIdentity(ctx context.Context, ident domain.Identity) error
	SetTaskable(ctx context.Context, userID string, taskable bool) error
	ListTaskableUsers(ctx context.Context) ([]domain.Identity, error)
	DeleteIdentity(ctx context.Context, userID string) error
	EnqueueUserDeletion(ctx context.Context, del domain.UserDeletion) error
}

// NotFoundError is implemented by store errors for missing rows.
type NotFoundError interface {
	error
	NotFound()
}

// ConflictError is implemented by store errors for row collisions.
type ConflictError interface {
	error
	Conflict()
}

// Session identifies an authenticated caller for the duration of one
// request. It carries the raw token so sign-out can revoke it.
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Authenticator is implemented by types able to extract sessions from
// Authorization headers.
type Authenticator interface {
	SessionFromAuthHeader(string) (Session, error)
}

// Revoker tracks signed-out tokens until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
