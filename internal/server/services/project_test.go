package services

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/patch"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

func newProjectService(t *testing.T) (*ProjectService, *models.User, *models.User, *models.User) {
	t.Helper()
	m := repomanager.NewInMemoryRepositoryManager()
	s := NewProjectService(nil, m, newTestLogger())
	owner := addUser(t, m, "owner@example.com", models.RoleUsuario)
	other := addUser(t, m, "other@example.com", models.RoleUsuario)
	admin := addUser(t, m, "admin@example.com", models.RoleSuperAdmin)
	return s, owner, other, admin
}

func TestProjectCreate_Defaults(t *testing.T) {
	s, owner, _, _ := newProjectService(t)

	project, err := s.Create(context.Background(), owner, &ProjectInput{Title: "Website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if project.Status != models.ProjectStatusPending {
		t.Errorf("expected pending, got %s", project.Status)
	}
	if project.OwnerID != owner.ID {
		t.Errorf("owner must be the caller, got %s", project.OwnerID)
	}
	if project.Description != nil {
		t.Error("description should be nil when not supplied")
	}
}

func TestProjectGet_Ownership(t *testing.T) {
	s, owner, other, admin := newProjectService(t)
	ctx := context.Background()

	project, err := s.Create(ctx, owner, &ProjectInput{Title: "Website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Get(ctx, owner, project.ID); err != nil {
		t.Errorf("owner: unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, other, project.ID); !errors.Is(err, common.ErrorForbidden) {
		t.Errorf("non-owner: expected ErrorForbidden, got %v", err)
	}
	if _, err := s.Get(ctx, admin, project.ID); err != nil {
		t.Errorf("superadmin: unexpected error: %v", err)
	}

	// a missing row is NotFound for everyone, never Forbidden
	if _, err := s.Get(ctx, other, "no-such-id"); !errors.Is(err, common.ErrorNotFound) {
		t.Errorf("missing row: expected ErrorNotFound, got %v", err)
	}
}

func TestProjectList_Scope(t *testing.T) {
	s, owner, other, admin := newProjectService(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, owner, &ProjectInput{Title: "Website"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Create(ctx, other, &ProjectInput{Title: "Mobile app"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	own, err := s.List(ctx, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(own) != 1 || own[0].Title != "Website" {
		t.Errorf("expected only the caller's project, got %+v", own)
	}

	all, err := s.List(ctx, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("superadmin must see every project, got %d", len(all))
	}
}

func TestProjectUpdate_Patch(t *testing.T) {
	s, owner, _, _ := newProjectService(t)
	ctx := context.Background()

	desc := "initial description"
	status := models.ProjectStatusInProgress
	project, err := s.Create(ctx, owner, &ProjectInput{
		Title:       "Website",
		Description: &desc,
		Status:      &status,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// an empty patch changes nothing
	unchanged, err := s.Update(ctx, owner, project.ID, &ProjectPatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unchanged.Title != "Website" || unchanged.Description == nil ||
		*unchanged.Description != desc || unchanged.Status != status {
		t.Errorf("empty patch must leave fields untouched, got %+v", unchanged)
	}

	// a set field overwrites, an explicit null clears
	updated, err := s.Update(ctx, owner, project.ID, &ProjectPatch{
		Title:       patch.Of("Relaunch"),
		Description: patch.Null[string](),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Relaunch" {
		t.Errorf("expected Relaunch, got %s", updated.Title)
	}
	if updated.Description != nil {
		t.Error("explicit null must clear the description")
	}
	if updated.Status != status {
		t.Error("absent fields must stay untouched")
	}
}

func TestProjectUpdate_Forbidden(t *testing.T) {
	s, owner, other, _ := newProjectService(t)
	ctx := context.Background()

	project, err := s.Create(ctx, owner, &ProjectInput{Title: "Website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.Update(ctx, other, project.ID, &ProjectPatch{Title: patch.Of("Hijack")})
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("expected ErrorForbidden, got %v", err)
	}
}

func TestProjectDelete(t *testing.T) {
	s, owner, other, _ := newProjectService(t)
	ctx := context.Background()

	project, err := s.Create(ctx, owner, &ProjectInput{Title: "Website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Delete(ctx, other, project.ID); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("expected ErrorForbidden, got %v", err)
	}
	if err := s.Delete(ctx, owner, project.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, owner, project.ID); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound after delete, got %v", err)
	}
}
