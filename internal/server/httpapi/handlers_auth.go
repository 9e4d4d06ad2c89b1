package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/taskhub/internal/server/models"
)

type registerRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"fullname"`
	Role     models.Role `json:"role"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

const minPasswordLength = 6

func validCredentials(email, password string) string {
	if !strings.Contains(email, "@") {
		return "email must be a valid address"
	}
	if len(password) < minPasswordLength {
		return "password must be at least 6 characters"
	}
	return ""
}

func (s *Server) handleRegister(c echo.Context) error {
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

	user, err := s.auth.Register(c.Request().Context(), req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c echo.Context) error {
	req := &loginRequest{}
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := validCredentials(req.Email, req.Password); msg != "" {
		return badRequest(c, msg)
	}

	user, token, err := s.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Server) handleRenew(c echo.Context) error {
	user := identity(c)

	token, err := s.auth.RenewToken(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, identity(c))
}

// handleLogout exists for client symmetry; tokens are not stored
// server-side, so there is nothing to revoke.
func (s *Server) handleLogout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
