package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/server/config"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

func newTestLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

// addUser inserts a user directly through the repository, bypassing the
// service layer, so tests can set up identities without going through
// registration.
func addUser(t *testing.T, m *repomanager.InMemoryRepositoryManager, email string, role models.Role) *models.User {
	t.Helper()
	user, err := m.Users(nil).Create(context.Background(), &models.User{
		Email:    email,
		FullName: "Test User",
		Role:     role,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return user
}
