package tasks

import (
	"context"

	"github.com/avolkov/taskhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	// List returns every task when ownerID is empty, otherwise only tasks
	// whose parent project belongs to the owner. Assignment does not widen
	// the result set.
	List(ctx context.Context, ownerID string) ([]*models.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}
