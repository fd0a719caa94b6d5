package domain

// Role classifies an identity. Roles are assigned at registration and
// never change afterwards.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is a read-only copy of a user row, fetched per request and
// never cached across requests.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Role          Role   `json:"role"`
	AddedTaskable bool   `json:"added_taskable"`
}

// Taskable reports whether the identity may own projects and tasks.
func (i Identity) Taskable() bool {
	return i.Role == RoleUser && i.AddedTaskable
}

// UserDeletion asks the external auth system to remove an account. The
// row store side of the deletion happens synchronously; the hosted auth
// account is owned by the provider, so it goes through a queue handoff.
type UserDeletion struct {
	UserID      string `json:"userId"`
	RequestedBy string `json:"requestedBy"`
	Timestamp   int64  `json:"timestamp"`
}
