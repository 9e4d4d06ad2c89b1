package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/taskhub/internal/server/services"
)

func (s *Server) handleTaskCreate(c echo.Context) error {
	input := &services.TaskInput{}
	if err := c.Bind(input); err != nil {
		return badRequest(c, "invalid request body")
	}
	if input.Title == "" {
		return badRequest(c, "title is required")
	}
	if input.ProjectID == "" {
		return badRequest(c, "project_id is required")
	}
	if input.Status != nil && !input.Status.Valid() {
		return badRequest(c, "status must be pending, in-progress, completed or cancelled")
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return badRequest(c, "priority must be low, medium or high")
	}

	task, err := s.tasks.Create(c.Request().Context(), identity(c), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleTaskList(c echo.Context) error {
	result, err := s.tasks.List(c.Request().Context(), identity(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleTaskListByProject(c echo.Context) error {
	result, err := s.tasks.ListByProject(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleTaskGet(c echo.Context) error {
	task, err := s.tasks.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleTaskUpdate(c echo.Context) error {
	p := &services.TaskPatch{}
	if err := c.Bind(p); err != nil {
		return badRequest(c, "invalid request body")
	}
	if p.Title.Set && (p.Title.Null || p.Title.Value == "") {
		return badRequest(c, "title cannot be empty")
	}
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		return badRequest(c, "status must be pending, in-progress, completed or cancelled")
	}
	if p.Priority.Set && (p.Priority.Null || !p.Priority.Value.Valid()) {
		return badRequest(c, "priority must be low, medium or high")
	}

	task, err := s.tasks.Update(c.Request().Context(), identity(c), c.Param("id"), p)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleTaskDelete(c echo.Context) error {
	if err := s.tasks.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
