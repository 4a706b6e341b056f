package repositories

import (
	"context"

	"blog/internal/models"
)

// PostRepository defines the interface for post data access.
// Every returned post has Owner and Topic populated.
type PostRepository interface {
	GetAll(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	FindByTitle(ctx context.Context, text string, ignoreCase bool) ([]models.Post, error)
	FindByTopicID(ctx context.Context, topicID string) ([]models.Post, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]models.Post, error)
	FindByOwnerAndTopic(ctx context.Context, ownerID, topicID string) ([]models.Post, error)
	FindByTopicDescription(ctx context.Context, text string) ([]models.Post, error)
	FindByOwnerName(ctx context.Context, text string) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	// Update replaces title, body, owner and topic in a single write.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	DeleteByOwnerID(ctx context.Context, ownerID string) error
}
