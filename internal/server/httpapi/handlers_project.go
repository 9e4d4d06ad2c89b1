package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/taskhub/internal/server/services"
)

func (s *Server) handleProjectCreate(c echo.Context) error {
	input := &services.ProjectInput{}
	if err := c.Bind(input); err != nil {
		return badRequest(c, "invalid request body")
	}
	if input.Title == "" {
		return badRequest(c, "title is required")
	}
	if input.Status != nil && !input.Status.Valid() {
		return badRequest(c, "status must be pending, in-progress or completed")
	}

	project, err := s.projects.Create(c.Request().Context(), identity(c), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, project)
}

func (s *Server) handleProjectList(c echo.Context) error {
	result, err := s.projects.List(c.Request().Context(), identity(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleProjectGet(c echo.Context) error {
	project, err := s.projects.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, project)
}

func (s *Server) handleProjectUpdate(c echo.Context) error {
	p := &services.ProjectPatch{}
	if err := c.Bind(p); err != nil {
		return badRequest(c, "invalid request body")
	}
	if p.Title.Set && (p.Title.Null || p.Title.Value == "") {
		return badRequest(c, "title cannot be empty")
	}
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		return badRequest(c, "status must be pending, in-progress or completed")
	}

	project, err := s.projects.Update(c.Request().Context(), identity(c), c.Param("id"), p)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, project)
}

func (s *Server) handleProjectDelete(c echo.Context) error {
	if err := s.projects.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
