package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

func TestSeedRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	m := repomanager.NewInMemoryRepositoryManager()
	s := NewSeedService(db, m, newTestLogger(), newTestConfig())
	admin := addUser(t, m, "root@example.com", models.RoleSuperAdmin)
	ctx := context.Background()

	counts, err := s.Run(ctx, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if counts.Users != 3 || counts.Projects != 3 || counts.Tasks != 6 {
		t.Errorf("unexpected counts: %+v", counts)
	}

	seeded, err := m.Users(nil).GetByEmail(ctx, "admin@taskhub.local")
	if err != nil {
		t.Fatalf("expected seeded admin account, got %v", err)
	}
	if seeded.Role != models.RoleSuperAdmin {
		t.Errorf("expected superadmin, got %s", seeded.Role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSeedRun_SuperadminOnly(t *testing.T) {
	m := repomanager.NewInMemoryRepositoryManager()
	s := NewSeedService(nil, m, newTestLogger(), newTestConfig())
	user := addUser(t, m, "ana@example.com", models.RoleUsuario)

	_, err := s.Run(context.Background(), user)
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("expected ErrorForbidden, got %v", err)
	}
}

// Re-running against an already seeded store trips the email uniqueness
// constraint and surfaces as an internal error; nothing is double-counted.
func TestSeedRun_Twice(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := repomanager.NewInMemoryRepositoryManager()
	s := NewSeedService(db, m, newTestLogger(), newTestConfig())
	admin := addUser(t, m, "root@example.com", models.RoleSuperAdmin)
	ctx := context.Background()

	if _, err := s.Run(ctx, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Run(ctx, admin); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("expected ErrorInternal, got %v", err)
	}
}
