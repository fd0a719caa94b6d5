package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard-api/board"
)

type createProjectRequest struct {
	ProjectName string `json:"project_name"`
}

// userHome is the taskable user's dashboard: their project list.
func userHome(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, _ := sessionFrom(c)
		ident, _ := identityFrom(c)
		projects, err := board.NewProjects(store, sess.UserID).List(c.Request().Context())
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"page":         "user",
			"display_name": ident.DisplayName,
			"projects":     projects,
		})
	}
}

func listProjects(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, _ := sessionFrom(c)
		projects, err := board.NewProjects(store, sess.UserID).List(c.Request().Context())
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, projects)
	}
}

func createProject(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, _ := sessionFrom(c)
		var req createProjectRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		project, err := board.NewProjects(store, sess.UserID).Create(c.Request().Context(), req.ProjectName)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusCreated, project)
	}
}

// deleteProject removes the project's tasks first; the table store has
// no cascading deletes. Each delete is an independent round trip, so an
// interrupted run can leave task rows behind for a retry to clean up.
func deleteProject(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		sess, _ := sessionFrom(c)
		projectID := c.Param("projectID")

		if _, err := store.GetProject(ctx, sess.UserID, projectID); err != nil {
			return httpError(c, err)
		}
		tasks, err := store.FetchTasks(ctx, projectID)
		if err != nil {
			return httpError(c, err)
		}
		for _, t := range tasks {
			if err := store.DeleteTask(ctx, projectID, t.ID); err != nil {
				return httpError(c, err)
			}
		}
		if err := board.NewProjects(store, sess.UserID).Delete(ctx, projectID); err != nil {
			return httpError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
