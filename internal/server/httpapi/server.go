// Package httpapi is the transport shell around the services: echo routes,
// the bearer-token middleware, and the mapping from service failures to
// HTTP status codes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/server/services"
)

type Server struct {
	address     string
	logger      logging.Logger
	auth        *services.AuthService
	users       *services.UserService
	projects    *services.ProjectService
	tasks       *services.TaskService
	attachments *services.AttachmentService
	seed        *services.SeedService
}

func NewServer(address string, l logging.Logger,
	auth *services.AuthService, users *services.UserService,
	projects *services.ProjectService, tasks *services.TaskService,
	attachments *services.AttachmentService, seed *services.SeedService) *Server {
	return &Server{
		address:     address,
		logger:      l.With("module", "http_server"),
		auth:        auth,
		users:       users,
		projects:    projects,
		tasks:       tasks,
		attachments: attachments,
		seed:        seed,
	}
}

// routes wires the operation surface onto an echo instance.
func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	api := e.Group("/api")

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	// Everything below requires a verified token plus a fresh user lookup.
	authed := api.Group("", s.requireAuth)

	authed.GET("/auth/renew", s.handleRenew)
	authed.GET("/auth/me", s.handleMe)
	authed.POST("/auth/logout", s.handleLogout)

	authed.POST("/projects", s.handleProjectCreate)
	authed.GET("/projects", s.handleProjectList)
	authed.GET("/projects/:id", s.handleProjectGet)
	authed.PATCH("/projects/:id", s.handleProjectUpdate)
	authed.DELETE("/projects/:id", s.handleProjectDelete)
	authed.GET("/projects/:id/tasks", s.handleTaskListByProject)

	authed.POST("/tasks", s.handleTaskCreate)
	authed.GET("/tasks", s.handleTaskList)
	authed.GET("/tasks/:id", s.handleTaskGet)
	authed.PATCH("/tasks/:id", s.handleTaskUpdate)
	authed.DELETE("/tasks/:id", s.handleTaskDelete)

	authed.POST("/tasks/:id/attachments", s.handleAttachmentRequestUpload)
	authed.GET("/tasks/:id/attachments", s.handleAttachmentList)
	authed.POST("/attachments/:id/confirm", s.handleAttachmentConfirm)
	authed.GET("/attachments/:id/download", s.handleAttachmentDownload)
	authed.DELETE("/attachments/:id", s.handleAttachmentDelete)

	authed.POST("/users", s.handleUserCreate)
	authed.GET("/users", s.handleUserList)
	authed.GET("/users/:id", s.handleUserGet)
	authed.PATCH("/users/:id", s.handleUserUpdate)
	authed.DELETE("/users/:id", s.handleUserDelete)

	authed.POST("/seed", s.handleSeed)

	return e
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	e := s.routes()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := e.Start(s.address); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
