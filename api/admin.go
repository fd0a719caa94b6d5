package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskboard-api/domain"
)

type registerUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type setTaskableRequest struct {
	Taskable bool `json:"taskable"`
}

// adminHome is the admin dashboard: the current taskable user list.
func adminHome(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, _ := identityFrom(c)
		users, err := store.ListTaskableUsers(c.Request().Context())
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"page":         "admin",
			"display_name": ident.DisplayName,
			"users":        users,
		})
	}
}

func listTaskableUsers(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := store.ListTaskableUsers(c.Request().Context())
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, users)
	}
}

// registerUser creates a regular-role identity row that is taskable from
// the start, mirroring the admin "add user" flow. The hosted auth
// account is provisioned by the external provider, not here.
func registerUser(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerUserRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Email == "" {
			return c.String(http.StatusBadRequest, "email is required")
		}
		ident := domain.Identity{
			ID:            uuid.NewString(),
			Email:         req.Email,
			DisplayName:   req.DisplayName,
			Role:          domain.RoleUser,
			AddedTaskable: true,
		}
		if err := store.InsertIdentity(c.Request().Context(), ident); err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusCreated, ident)
	}
}

// setTaskable flips the single added_taskable flag. The change is
// visible to the gate on the target user's next request; nothing caches
// the old decision.
func setTaskable(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req setTaskableRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if err := store.SetTaskable(c.Request().Context(), c.Param("id"), req.Taskable); err != nil {
			return httpError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// deleteUser removes the identity row, then hands the hosted auth
// account over to the external deletion queue. There is no rollback: if
// the enqueue fails the row is already gone and the admin retries.
func deleteUser(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		sess, _ := sessionFrom(c)
		userID := c.Param("id")

		if err := store.DeleteIdentity(ctx, userID); err != nil {
			return httpError(c, err)
		}
		del := domain.UserDeletion{
			UserID:      userID,
			RequestedBy: sess.UserID,
			Timestamp:   time.Now().UnixNano(),
		}
		if err := store.EnqueueUserDeletion(ctx, del); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to hand the account to the auth system")
		}
		return c.NoContent(http.StatusNoContent)
	}
}
