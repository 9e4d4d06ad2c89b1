package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/server/models"
)

var taskTestColumns = []string{"id", "title", "description", "status", "priority",
	"due_date", "project_id", "assigned_to_id", "created_at", "updated_at"}

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
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("Wireframes", nil, "pending", "medium", nil, "p1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("t1", now, now))

	task, err := repo.Create(context.Background(), &models.Task{
		Title:     "Wireframes",
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
		ProjectID: "p1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "t1" {
		t.Errorf("expected t1, got %s", task.ID)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(taskTestColumns).
			AddRow("t1", "Wireframes", nil, "in-progress", "high", nil, "p1", "u2", now, now))

	task, err := repo.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != models.TaskStatusInProgress {
		t.Errorf("expected in-progress, got %s", task.Status)
	}
	if task.AssignedToID == nil || *task.AssignedToID != "u2" {
		t.Errorf("unexpected assignee: %v", task.AssignedToID)
	}

	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(taskTestColumns))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

// List joins on projects so the owner scope follows the parent project.
func TestList_ScopedToProjectOwner(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`JOIN projects p ON`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(taskTestColumns).
			AddRow("t1", "Wireframes", nil, "pending", "medium", nil, "p1", nil, now, now))

	result, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 task, got %d", len(result))
	}
}

func TestListByProject(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE project_id`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(taskTestColumns).
			AddRow("t1", "Wireframes", nil, "pending", "medium", nil, "p1", nil, now, now).
			AddRow("t2", "Landing page", nil, "pending", "low", nil, "p1", nil, now, now))

	result, err := repo.ListByProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(result))
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`UPDATE tasks SET`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	_, err := repo.Update(context.Background(), &models.Task{ID: "missing"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
