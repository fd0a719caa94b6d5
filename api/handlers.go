package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/board"
)

const requestBodyMaxSize = 1 << 20

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, revoker Revoker, logger *log.Logger) {
	gate := NewGate(auth, revoker, store, logger)

	e.GET("/healthz", healthz())
	e.GET(PathUnauthorized, unauthorizedPage())
	e.GET(PathEntry, entryPage(), gate.Middleware(AreaEntry))

	e.GET(PathAdminHome, adminHome(store), gate.Middleware(AreaAdmin))
	adminAPI := e.Group("/api/admin", gate.Middleware(AreaAdmin))
	adminAPI.GET("/users", listTaskableUsers(store))
	adminAPI.POST("/users", registerUser(store))
	adminAPI.PUT("/users/:id/taskable", setTaskable(store))
	adminAPI.DELETE("/users/:id", deleteUser(store))

	e.GET(PathUserHome, userHome(store), gate.Middleware(AreaUser))
	e.GET(PathUserHome+"/projects/:projectID", projectPage(store), gate.Middleware(AreaUser))
	e.GET(PathRestrictedHome, restrictedHome(), gate.Middleware(AreaRestricted))

	userAPI := e.Group("/api", gate.Middleware(AreaUser))
	userAPI.GET("/projects", listProjects(store))
	userAPI.POST("/projects", createProject(store))
	userAPI.DELETE("/projects/:projectID", deleteProject(store))
	userAPI.GET("/projects/:projectID/tasks", listTasks(store, logger))
	userAPI.POST("/projects/:projectID/tasks", createTask(store))
	userAPI.PUT("/projects/:projectID/tasks/:id", editTask(store))
	userAPI.DELETE("/projects/:projectID/tasks/:id", deleteTask(store))
	userAPI.PUT("/projects/:projectID/tasks/:id/status", moveTask(store))

	e.POST("/api/auth/signout", signOut(auth, revoker))
	e.POST("/api/auth/register", selfRegister(store, auth))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func entryPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		// Reached only without a session; signed-in callers are
		// redirected to their home by the gate.
		return c.JSON(http.StatusOK, echo.Map{"page": "entry", "message": "sign in to continue"})
	}
}

func unauthorizedPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"page": "unauthorized", "message": "you do not have access to that area"})
	}
}

func restrictedHome() echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, _ := identityFrom(c)
		return c.JSON(http.StatusOK, echo.Map{
			"page":         "normaluser",
			"display_name": ident.DisplayName,
			"message":      "ask an admin to make you taskable to start creating projects",
		})
	}
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// httpError maps the error taxonomy onto status codes. Duplicate names
// and validation failures are user-facing rejections; anything else from
// the store is a transient failure the caller may simply retry.
func httpError(c echo.Context, err error) error {
	var dup board.DuplicateNameError
	var invalid board.ValidationError
	var notFound NotFoundError
	var conflict ConflictError
	switch {
	case errors.As(err, &dup):
		return c.String(http.StatusConflict, dup.Error())
	case errors.As(err, &invalid):
		return c.String(http.StatusBadRequest, invalid.Error())
	case errors.As(err, &notFound):
		return c.String(http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		return c.String(http.StatusConflict, conflict.Error())
	default:
		c.Logger().Error(err)
		return c.String(http.StatusInternalServerError, err.Error())
	}
}
