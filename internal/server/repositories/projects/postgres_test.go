package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/server/models"
)

var projectColumns = []string{"id", "title", "description", "status", "user_id", "created_at", "updated_at"}

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs("Website", nil, "pending", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("p1", now, now))

	project, err := repo.Create(context.Background(), &models.Project{
		Title:   "Website",
		Status:  models.ProjectStatusPending,
		OwnerID: "u1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.ID != "p1" {
		t.Errorf("expected p1, got %s", project.ID)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM projects\s+WHERE id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(projectColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`user_id::text`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow("p1", "Website", nil, "pending", "u1", now, now))

	result, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].OwnerID != "u1" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestList_AllOwners(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`user_id::text`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow("p1", "Website", nil, "pending", "u1", now, now).
			AddRow("p2", "Mobile app", nil, "in-progress", "u2", now, now))

	result, err := repo.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(result))
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`UPDATE projects SET`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	_, err := repo.Update(context.Background(), &models.Project{ID: "missing"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
