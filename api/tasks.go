package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/board"
	"taskboard-api/domain"
)

type createTaskRequest struct {
	TaskName string `json:"task_name"`
	EndDate  string `json:"end_date"`
}

type editTaskRequest struct {
	TaskName string        `json:"task_name"`
	EndDate  string        `json:"end_date"`
	Status   domain.Status `json:"status"`
}

type moveTaskRequest struct {
	Status domain.Status `json:"status"`
}

// ownProject verifies the project belongs to the session user. Task
// routes carry the project id in the path, so without this check any
// taskable user could reach another user's board.
func ownProject(c echo.Context, store Storage) (string, error) {
	sess, _ := sessionFrom(c)
	projectID := c.Param("projectID")
	if _, err := store.GetProject(c.Request().Context(), sess.UserID, projectID); err != nil {
		return "", err
	}
	return projectID, nil
}

// projectPage is the kanban board page for one project.
func projectPage(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := ownProject(c, store)
		if err != nil {
			return httpError(c, err)
		}
		tasks, err := board.New(store, projectID).List(c.Request().Context())
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"page":       "project",
			"project_id": projectID,
			"tasks":      tasks,
		})
	}
}

func listTasks(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newBoardRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		projectID, ownErr := ownProject(c, store)
		metrics.ObserveAuth(time.Since(authStart))
		if ownErr != nil {
			metrics.SetErrorStage("authorize")
			err = httpError(c, ownErr)
			return err
		}

		fetchStart := time.Now()
		tasks, fetchErr := board.New(store, projectID).List(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = httpError(c, fetchErr)
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := ownProject(c, store)
		if err != nil {
			return httpError(c, err)
		}
		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		task, err := board.New(store, projectID).Create(c.Request().Context(), req.TaskName, req.EndDate)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func editTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := ownProject(c, store)
		if err != nil {
			return httpError(c, err)
		}
		var req editTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		task, err := board.New(store, projectID).Edit(c.Request().Context(), c.Param("id"), req.TaskName, req.EndDate, req.Status)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := ownProject(c, store)
		if err != nil {
			return httpError(c, err)
		}
		if err := board.New(store, projectID).Delete(c.Request().Context(), c.Param("id")); err != nil {
			return httpError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// moveTask handles the drag-and-drop status change. The drag library is
// a client concern; the server only sees (task id, new status).
func moveTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := ownProject(c, store)
		if err != nil {
			return httpError(c, err)
		}
		var req moveTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if err := board.New(store, projectID).Move(c.Request().Context(), c.Param("id"), req.Status); err != nil {
			return httpError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
