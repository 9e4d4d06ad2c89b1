package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/patch"
	"github.com/avolkov/taskhub/internal/server/access"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

// TaskService implements task CRUD. A task's access scope is its parent
// project's owner: assignment never grants or revokes edit rights.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "task_service"),
	}
}

// TaskInput carries the fields of a new task. Status defaults to pending
// and priority to medium when nil.
type TaskInput struct {
	Title        string               `json:"title"`
	Description  *string              `json:"description"`
	Status       *models.TaskStatus   `json:"status"`
	Priority     *models.TaskPriority `json:"priority"`
	DueDate      *time.Time           `json:"due_date"`
	ProjectID    string               `json:"project_id"`
	AssignedToID *string              `json:"assigned_to_id"`
}

// TaskPatch is the partial-update input. DueDate and AssignedToID accept
// explicit nulls to clear the column.
type TaskPatch struct {
	Title        patch.Field[string]              `json:"title"`
	Description  patch.Field[string]              `json:"description"`
	Status       patch.Field[models.TaskStatus]   `json:"status"`
	Priority     patch.Field[models.TaskPriority] `json:"priority"`
	DueDate      patch.Field[time.Time]           `json:"due_date"`
	AssignedToID patch.Field[string]              `json:"assigned_to_id"`
}

// authorize loads the task and its parent project and applies the
// ownership check, in that order: a missing task or project is NotFound
// before any Forbidden can be produced.
func (s *TaskService) authorize(ctx context.Context, identity *models.User, id string) (*models.Task, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "task lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	project, err := s.repomanager.Projects(s.db).GetByID(ctx, task.ProjectID)
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

	return task, nil
}

func (s *TaskService) Create(ctx context.Context, identity *models.User, input *TaskInput) (*models.Task, error) {
	project, err := s.repomanager.Projects(s.db).GetByID(ctx, input.ProjectID)
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

	status := models.TaskStatusPending
	if input.Status != nil {
		status = *input.Status
	}
	priority := models.TaskPriorityMedium
	if input.Priority != nil {
		priority = *input.Priority
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       status,
		Priority:     priority,
		DueDate:      input.DueDate,
		ProjectID:    project.ID,
		AssignedToID: input.AssignedToID,
	}

	task, err = s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		s.logger.Error(ctx, "task creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return task, nil
}

// List returns tasks from the caller's projects, or every task for a
// superadmin.
func (s *TaskService) List(ctx context.Context, identity *models.User) ([]*models.Task, error) {
	ownerID := identity.ID
	if identity.Role == models.RoleSuperAdmin {
		ownerID = ""
	}

	result, err := s.repomanager.Tasks(s.db).List(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "task list failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return result, nil
}

// ListByProject returns the tasks of one project after the owner check.
func (s *TaskService) ListByProject(ctx context.Context, identity *models.User, projectID string) ([]*models.Task, error) {
	project, err := s.repomanager.Projects(s.db).GetByID(ctx, projectID)
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

	result, err := s.repomanager.Tasks(s.db).ListByProject(ctx, project.ID)
	if err != nil {
		s.logger.Error(ctx, "task list failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return result, nil
}

func (s *TaskService) Get(ctx context.Context, identity *models.User, id string) (*models.Task, error) {
	return s.authorize(ctx, identity, id)
}

func (s *TaskService) Update(ctx context.Context, identity *models.User, id string, p *TaskPatch) (*models.Task, error) {
	task, err := s.authorize(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if p.Title.Set && !p.Title.Null {
		task.Title = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			task.Description = nil
		} else {
			v := p.Description.Value
			task.Description = &v
		}
	}
	if p.Status.Set && !p.Status.Null {
		task.Status = p.Status.Value
	}
	if p.Priority.Set && !p.Priority.Null {
		task.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			task.DueDate = nil
		} else {
			v := p.DueDate.Value
			task.DueDate = &v
		}
	}
	if p.AssignedToID.Set {
		if p.AssignedToID.Null {
			task.AssignedToID = nil
		} else {
			v := p.AssignedToID.Value
			task.AssignedToID = &v
		}
	}

	task, err = s.repomanager.Tasks(s.db).Update(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "task update failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, identity *models.User, id string) error {
	task, err := s.authorize(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := s.repomanager.Tasks(s.db).Delete(ctx, task.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "task delete failed", "error", err.Error())
		return common.ErrorInternal
	}

	return nil
}
