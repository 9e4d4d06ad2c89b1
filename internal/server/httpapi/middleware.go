package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/server/models"
)

const identityKey = "identity"

// requireAuth extracts the bearer token, verifies it statelessly, and then
// re-validates the subject against the credential store so a deactivated
// or deleted account is rejected even with an unexpired token.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AuthHeaderName)
		if header == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing token"})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], common.AuthHeaderScheme) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid auth header format"})
		}

		claims, err := s.auth.ParseToken(parts[1])
		if err != nil {
			return writeError(c, common.ErrorInvalidToken)
		}

		user, err := s.auth.ValidateUser(c.Request().Context(), claims.UserID)
		if err != nil {
			return writeError(c, err)
		}

		c.Set(identityKey, user)
		return next(c)
	}
}

// identity returns the authenticated user placed in the context by
// requireAuth, or nil on unauthenticated routes.
func identity(c echo.Context) *models.User {
	user, _ := c.Get(identityKey).(*models.User)
	return user
}
