package attachments

import (
	"context"

	"github.com/avolkov/taskhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error)
	GetByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByTask(ctx context.Context, taskID string) ([]*models.Attachment, error)
	MarkUploaded(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
