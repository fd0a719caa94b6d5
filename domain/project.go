package domain

import "time"

// Project groups tasks under a single owner. Names are unique per owner
// and ownership never transfers.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"project_name"`
	CreatedAt time.Time `json:"created_at"`
}
