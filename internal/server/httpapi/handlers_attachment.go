package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type uploadRequest struct {
	FileName string `json:"filename"`
}

func (s *Server) handleAttachmentRequestUpload(c echo.Context) error {
	req := &uploadRequest{}
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.FileName == "" {
		return badRequest(c, "filename is required")
	}

	grant, err := s.attachments.RequestUpload(c.Request().Context(), identity(c), c.Param("id"), req.FileName)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, grant)
}

func (s *Server) handleAttachmentList(c echo.Context) error {
	result, err := s.attachments.ListByTask(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleAttachmentConfirm(c echo.Context) error {
	if err := s.attachments.ConfirmUpload(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type downloadResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleAttachmentDownload(c echo.Context) error {
	url, err := s.attachments.DownloadURL(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, downloadResponse{URL: url})
}

func (s *Server) handleAttachmentDelete(c echo.Context) error {
	if err := s.attachments.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
