package services

import (
	"context"
	"fmt"

	"blog/internal/models"
	"blog/internal/repositories"
)

// TopicService handles business logic related to topics.
type TopicService struct {
	repo     repositories.TopicRepository
	postRepo repositories.PostRepository
}

// NewTopicService creates a new TopicService.
func NewTopicService(repo repositories.TopicRepository, postRepo repositories.PostRepository) *TopicService {
	return &TopicService{
		repo:     repo,
		postRepo: postRepo,
	}
}

// GetAllTopics retrieves all topics.
func (s *TopicService) GetAllTopics(ctx context.Context) ([]models.Topic, error) {
	return s.repo.GetAll(ctx)
}

// GetTopicByID retrieves a single topic by its ID.
func (s *TopicService) GetTopicByID(ctx context.Context, id string) (*models.Topic, error) {
	return s.repo.GetByID(ctx, id)
}

// SearchTopics finds topics by description, ignoring case.
func (s *TopicService) SearchTopics(ctx context.Context, description string) ([]models.Topic, error) {
	return s.repo.FindByDescription(ctx, description)
}

// CreateTopic stores a new topic.
func (s *TopicService) CreateTopic(ctx context.Context, topic *models.Topic) error {
	return s.repo.Create(ctx, topic)
}

// UpdateTopic replaces the description of topic id.
func (s *TopicService) UpdateTopic(ctx context.Context, id string, topic *models.Topic) error {
	topic.ID = id
	return s.repo.Update(ctx, topic)
}

// DeleteTopic removes a topic that no post references.
// Existence is checked before attachment, so a missing topic reports ErrNotFound.
func (s *TopicService) DeleteTopic(ctx context.Context, id string) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("topic with ID %s %w", id, models.ErrNotFound)
	}

	posts, err := s.postRepo.FindByTopicID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list posts of topic %s: %w", id, err)
	}
	if len(posts) > 0 {
		return fmt.Errorf("topic %s has %d posts attached: %w", id, len(posts), models.ErrConflict)
	}

	return s.repo.Delete(ctx, id)
}
