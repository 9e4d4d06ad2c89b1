package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/patch"
	"github.com/avolkov/taskhub/internal/server/access"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

// ProjectService implements ownership-gated project CRUD. Existence is
// checked before ownership on purpose: a missing row is NotFound even for
// a caller who could not have accessed it.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ProjectService {
	return &ProjectService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "project_service"),
	}
}

// ProjectInput carries the fields of a new project. Status defaults to
// pending when nil.
type ProjectInput struct {
	Title       string                `json:"title"`
	Description *string               `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
}

// ProjectPatch is the partial-update input. Absent fields stay untouched;
// Description accepts an explicit null to clear the column.
type ProjectPatch struct {
	Title       patch.Field[string]               `json:"title"`
	Description patch.Field[string]               `json:"description"`
	Status      patch.Field[models.ProjectStatus] `json:"status"`
}

func (s *ProjectService) Create(ctx context.Context, identity *models.User, input *ProjectInput) (*models.Project, error) {
	status := models.ProjectStatusPending
	if input.Status != nil {
		status = *input.Status
	}

	project := &models.Project{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		OwnerID:     identity.ID,
	}

	project, err := s.repomanager.Projects(s.db).Create(ctx, project)
	if err != nil {
		s.logger.Error(ctx, "project creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return project, nil
}

// List returns the caller's projects, or every project for a superadmin.
func (s *ProjectService) List(ctx context.Context, identity *models.User) ([]*models.Project, error) {
	ownerID := identity.ID
	if identity.Role == models.RoleSuperAdmin {
		ownerID = ""
	}

	result, err := s.repomanager.Projects(s.db).List(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "project list failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return result, nil
}

func (s *ProjectService) Get(ctx context.Context, identity *models.User, id string) (*models.Project, error) {
	project, err := s.repomanager.Projects(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "project lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if !access.CanAccess(identity, project.OwnerID) {
		return nil, common.ErrorForbidden
	}

	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, identity *models.User, id string, p *ProjectPatch) (*models.Project, error) {
	project, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if p.Title.Set && !p.Title.Null {
		project.Title = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			project.Description = nil
		} else {
			v := p.Description.Value
			project.Description = &v
		}
	}
	if p.Status.Set && !p.Status.Null {
		project.Status = p.Status.Value
	}

	project, err = s.repomanager.Projects(s.db).Update(ctx, project)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "project update failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, identity *models.User, id string) error {
	project, err := s.Get(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := s.repomanager.Projects(s.db).Delete(ctx, project.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "project delete failed", "error", err.Error())
		return common.ErrorInternal
	}

	return nil
}
