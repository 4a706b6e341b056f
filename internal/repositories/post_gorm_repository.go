package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// preloaded scopes a query so that owner and topic come back with each post.
func (r *GORMPostRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Owner").Preload("Topic").Order("created_at, id")
}

func (r *GORMPostRepository) find(ctx context.Context, what string, scope func(*gorm.DB) *gorm.DB) ([]models.Post, error) {
	var posts []models.Post
	if err := scope(r.preloaded(ctx)).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts by %s: %w", what, err)
	}
	return posts, nil
}

// GetAll retrieves all posts from the database.
func (r *GORMPostRepository) GetAll(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.preloaded(ctx).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post by its ID from the database.
func (r *GORMPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.preloaded(ctx).First(&post, "posts.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with ID %s %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// FindByTitle returns posts whose title contains text.
// LIKE folds case on sqlite, so case-sensitive matching is finished in Go.
func (r *GORMPostRepository) FindByTitle(ctx context.Context, text string, ignoreCase bool) ([]models.Post, error) {
	posts, err := r.find(ctx, "title", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("LOWER(title) LIKE ?", containsPattern(text))
	})
	if err != nil || ignoreCase {
		return posts, err
	}
	matched := posts[:0]
	for _, p := range posts {
		if strings.Contains(p.Title, text) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// FindByTopicID returns the posts filed under a topic.
func (r *GORMPostRepository) FindByTopicID(ctx context.Context, topicID string) ([]models.Post, error) {
	return r.find(ctx, "topic", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("topic_id = ?", topicID)
	})
}

// FindByOwnerID returns the posts written by a user.
func (r *GORMPostRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]models.Post, error) {
	return r.find(ctx, "owner", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("owner_id = ?", ownerID)
	})
}

// FindByOwnerAndTopic returns the posts written by a user under a topic.
func (r *GORMPostRepository) FindByOwnerAndTopic(ctx context.Context, ownerID, topicID string) ([]models.Post, error) {
	return r.find(ctx, "owner and topic", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("owner_id = ? AND topic_id = ?", ownerID, topicID)
	})
}

// FindByTopicDescription returns posts whose topic description contains text, ignoring case.
func (r *GORMPostRepository) FindByTopicDescription(ctx context.Context, text string) ([]models.Post, error) {
	topics := r.db.Model(&models.Topic{}).Select("id").Where("LOWER(description) LIKE ?", containsPattern(text))
	return r.find(ctx, "topic description", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("topic_id IN (?)", topics)
	})
}

// FindByOwnerName returns posts whose owner's display name contains text, ignoring case.
func (r *GORMPostRepository) FindByOwnerName(ctx context.Context, text string) ([]models.Post, error) {
	owners := r.db.Model(&models.User{}).Select("id").Where("LOWER(name) LIKE ?", containsPattern(text))
	return r.find(ctx, "owner name", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("owner_id IN (?)", owners)
	})
}

// Create creates a new post in the database. Owner and Topic must already exist.
func (r *GORMPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Update replaces the mutable columns of a post as one UPDATE statement.
func (r *GORMPostRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select("Title", "Body", "OwnerID", "TopicID").
		Updates(post)
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %s %w", post.ID, models.ErrNotFound)
	}
	return nil
}

// Delete deletes a post by its ID from the database.
func (r *GORMPostRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %s %w", id, models.ErrNotFound)
	}
	return nil
}

// DeleteByOwnerID removes every post written by a user.
func (r *GORMPostRepository) DeleteByOwnerID(ctx context.Context, ownerID string) error {
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("failed to delete posts of user %s: %w", ownerID, err)
	}
	return nil
}
