package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"taskboard-api/domain"
)

type selfRegisterRequest struct {
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
}

// signOut revokes the caller's token. The token stays on the denylist
// until it would have expired on its own, so it is useless everywhere
// from the next request onwards.
func signOut(auth Authenticator, revoker Revoker) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := auth.SessionFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		if err := revoker.Revoke(c.Request().Context(), sess.Token, time.Until(sess.ExpiresAt)); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "sign-out failed")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// selfRegister creates the caller's own identity row right after the
// hosted auth sign-up. It sits outside the area gates on purpose: the
// caller has a valid token but no row yet, which the gate would fail
// closed on. The role is fixed here and never changes afterwards;
// taskable status always starts false and only an admin can grant it.
func selfRegister(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := auth.SessionFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req selfRegisterRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Email == "" {
			return c.String(http.StatusBadRequest, "email is required")
		}
		if req.Role != domain.RoleAdmin && req.Role != domain.RoleUser {
			return c.String(http.StatusBadRequest, "role must be admin or user")
		}
		ident := domain.Identity{
			ID:          sess.UserID,
			Email:       req.Email,
			DisplayName: req.DisplayName,
			Role:        req.Role,
		}
		if err := store.InsertIdentity(c.Request().Context(), ident); err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusCreated, ident)
	}
}
