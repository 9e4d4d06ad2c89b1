package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/taskhub/internal/server/services"
)

type seedResponse struct {
	Message string               `json:"message"`
	Data    *services.SeedCounts `json:"data"`
}

func (s *Server) handleSeed(c echo.Context) error {
	counts, err := s.seed.Run(c.Request().Context(), identity(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, seedResponse{Message: "seed executed", Data: counts})
}
