package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"blog/internal/models"

	"github.com/google/uuid"
)

// MockTopicRepository is an in-memory implementation of TopicRepository.
type MockTopicRepository struct {
	topics map[string]models.Topic
	mu     sync.RWMutex
}

// NewMockTopicRepository creates a new instance of MockTopicRepository.
func NewMockTopicRepository() *MockTopicRepository {
	return &MockTopicRepository{
		topics: make(map[string]models.Topic),
	}
}

func (r *MockTopicRepository) collect(match func(models.Topic) bool) []models.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topicList := make([]models.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		if match(t) {
			topicList = append(topicList, t)
		}
	}
	sort.Slice(topicList, func(i, j int) bool {
		return topicList[i].Description < topicList[j].Description
	})
	return topicList
}

// GetAll returns all topics.
func (r *MockTopicRepository) GetAll(_ context.Context) ([]models.Topic, error) {
	return r.collect(func(models.Topic) bool { return true }), nil
}

// GetByID returns a topic by its ID.
func (r *MockTopicRepository) GetByID(_ context.Context, id string) (*models.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topic, ok := r.topics[id]
	if !ok {
		return nil, fmt.Errorf("topic with ID %s %w", id, models.ErrNotFound)
	}
	return &topic, nil
}

// FindByDescription returns topics whose description contains text, ignoring case.
func (r *MockTopicRepository) FindByDescription(_ context.Context, text string) ([]models.Topic, error) {
	needle := strings.ToLower(text)
	return r.collect(func(t models.Topic) bool {
		return strings.Contains(strings.ToLower(t.Description), needle)
	}), nil
}

// Exists reports whether a topic is stored.
func (r *MockTopicRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.topics[id]
	return ok, nil
}

// Create adds a new topic.
func (r *MockTopicRepository) Create(_ context.Context, topic *models.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if topic.ID == "" {
		topic.ID = uuid.New().String()
	}
	r.topics[topic.ID] = *topic
	return nil
}

// Update modifies an existing topic.
func (r *MockTopicRepository) Update(_ context.Context, topic *models.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.topics[topic.ID]; !ok {
		return fmt.Errorf("topic with ID %s %w", topic.ID, models.ErrNotFound)
	}
	r.topics[topic.ID] = *topic
	return nil
}

// Delete removes a topic by its ID.
func (r *MockTopicRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.topics[id]; !ok {
		return fmt.Errorf("topic with ID %s %w", id, models.ErrNotFound)
	}
	delete(r.topics, id)
	return nil
}
