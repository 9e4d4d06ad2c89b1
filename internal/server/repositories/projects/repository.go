package projects

import (
	"context"

	"github.com/avolkov/taskhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	// List returns every project when ownerID is empty, otherwise only the
	// owner's projects.
	List(ctx context.Context, ownerID string) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}
