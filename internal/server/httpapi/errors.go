package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/taskhub/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError translates the service error taxonomy into the HTTP envelope.
// Internal detail never reaches the caller; services already logged it.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		return c.JSON(http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, common.ErrorUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, common.ErrorInvalidToken):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
	case errors.Is(err, common.ErrorForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
