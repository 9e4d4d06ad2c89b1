// Package server initializes and runs the main application server.
// It validates configuration, opens the database, applies migrations,
// wires the services, and runs the HTTP endpoint until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/server/config"
	"github.com/avolkov/taskhub/internal/server/httpapi"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
	"github.com/avolkov/taskhub/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	authService := services.NewAuthService(db, rm, logger, cfg)
	userService := services.NewUserService(db, rm, logger, cfg)
	projectService := services.NewProjectService(db, rm, logger)
	taskService := services.NewTaskService(db, rm, logger)
	attachmentService := services.NewAttachmentService(db, rm, taskService, logger, cfg)
	seedService := services.NewSeedService(db, rm, logger, cfg)

	server := httpapi.NewServer(cfg.EndpointAddr, logger,
		authService, userService, projectService, taskService,
		attachmentService, seedService)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
