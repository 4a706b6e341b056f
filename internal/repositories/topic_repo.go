package repositories

import (
	"context"

	"blog/internal/models"
)

// TopicRepository defines the interface for topic data access.
type TopicRepository interface {
	GetAll(ctx context.Context) ([]models.Topic, error)
	GetByID(ctx context.Context, id string) (*models.Topic, error)
	FindByDescription(ctx context.Context, text string) ([]models.Topic, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, topic *models.Topic) error
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id string) error
}
