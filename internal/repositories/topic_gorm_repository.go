package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTopicRepository is a GORM implementation of TopicRepository.
type GORMTopicRepository struct {
	db *gorm.DB
}

// NewGORMTopicRepository creates a new instance of GORMTopicRepository.
func NewGORMTopicRepository(db *gorm.DB) *GORMTopicRepository {
	return &GORMTopicRepository{
		db: db,
	}
}

// GetAll retrieves all topics from the database.
func (r *GORMTopicRepository) GetAll(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := r.db.WithContext(ctx).Order("description").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to get all topics: %w", err)
	}
	return topics, nil
}

// GetByID retrieves a single topic by its ID.
func (r *GORMTopicRepository) GetByID(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("topic with ID %s %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get topic by ID %s: %w", id, err)
	}
	return &topic, nil
}

// FindByDescription returns topics whose description contains text, ignoring case.
func (r *GORMTopicRepository) FindByDescription(ctx context.Context, text string) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Where("LOWER(description) LIKE ?", containsPattern(text)).
		Order("description").
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search topics: %w", err)
	}
	return topics, nil
}

// Exists reports whether a topic with id is stored.
func (r *GORMTopicRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check topic %s: %w", id, err)
	}
	return count > 0, nil
}

// Create creates a new topic in the database.
func (r *GORMTopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// Update changes the description of an existing topic.
func (r *GORMTopicRepository) Update(ctx context.Context, topic *models.Topic) error {
	res := r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", topic.ID).
		Update("description", topic.Description)
	if res.Error != nil {
		return fmt.Errorf("failed to update topic: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("topic with ID %s %w", topic.ID, models.ErrNotFound)
	}
	return nil
}

// Delete deletes a topic by its ID.
func (r *GORMTopicRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Topic{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete topic: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("topic with ID %s %w", id, models.ErrNotFound)
	}
	return nil
}

// containsPattern builds a case-folded LIKE pattern matching text anywhere.
func containsPattern(text string) string {
	return "%" + strings.ToLower(text) + "%"
}
