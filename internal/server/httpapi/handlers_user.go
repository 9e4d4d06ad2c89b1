package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/taskhub/internal/server/services"
)

func (s *Server) handleUserCreate(c echo.Context) error {
	req := &registerRequest{}
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := validCredentials(req.Email, req.Password); msg != "" {
		return badRequest(c, msg)
	}
	if req.FullName == "" {
		return badRequest(c, "fullname is required")
	}
	if req.Role != "" && !req.Role.Valid() {
		return badRequest(c, "role must be superadmin or usuario")
	}

	user, err := s.users.Create(c.Request().Context(), identity(c), req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (s *Server) handleUserList(c echo.Context) error {
	result, err := s.users.List(c.Request().Context(), identity(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleUserGet(c echo.Context) error {
	user, err := s.users.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleUserUpdate(c echo.Context) error {
	patch := &services.UserPatch{}
	if err := c.Bind(patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return badRequest(c, "role must be superadmin or usuario")
	}
	if patch.Password != nil && len(*patch.Password) < minPasswordLength {
		return badRequest(c, "password must be at least 6 characters")
	}

	user, err := s.users.Update(c.Request().Context(), identity(c), c.Param("id"), patch)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleUserDelete(c echo.Context) error {
	if err := s.users.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
