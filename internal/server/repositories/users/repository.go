package users

import (
	"context"

	"github.com/avolkov/taskhub/internal/server/models"
)

// Repository is the credential store. GetByEmail and GetByID return the
// stored password hash; services are responsible for clearing it before a
// user leaves the service layer.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
