package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"blog/internal/models"

	"github.com/google/uuid"
)

// MockPostRepository is an in-memory implementation of PostRepository.
// When given user and topic repositories it populates Owner and Topic on read,
// the way the GORM implementation preloads them.
type MockPostRepository struct {
	posts  map[string]models.Post
	users  UserRepository
	topics TopicRepository
	mu     sync.RWMutex
}

// NewMockPostRepository creates a new instance of MockPostRepository.
// Either lookup may be nil, in which case the stored association is returned as is.
func NewMockPostRepository(users UserRepository, topics TopicRepository) *MockPostRepository {
	return &MockPostRepository{
		posts:  make(map[string]models.Post),
		users:  users,
		topics: topics,
	}
}

func (r *MockPostRepository) hydrate(ctx context.Context, p models.Post) models.Post {
	if r.users != nil {
		if u, err := r.users.GetByID(ctx, p.OwnerID); err == nil {
			p.Owner = *u
		}
	}
	if r.topics != nil {
		if t, err := r.topics.GetByID(ctx, p.TopicID); err == nil {
			p.Topic = *t
		}
	}
	return p
}

func (r *MockPostRepository) collect(ctx context.Context, match func(models.Post) bool) []models.Post {
	r.mu.RLock()
	stored := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		stored = append(stored, p)
	}
	r.mu.RUnlock()

	postList := make([]models.Post, 0, len(stored))
	for _, p := range stored {
		p = r.hydrate(ctx, p)
		if match(p) {
			postList = append(postList, p)
		}
	}
	sort.Slice(postList, func(i, j int) bool {
		if postList[i].CreatedAt.Equal(postList[j].CreatedAt) {
			return postList[i].ID < postList[j].ID
		}
		return postList[i].CreatedAt.Before(postList[j].CreatedAt)
	})
	return postList
}

// GetAll returns all posts.
func (r *MockPostRepository) GetAll(ctx context.Context) ([]models.Post, error) {
	return r.collect(ctx, func(models.Post) bool { return true }), nil
}

// GetByID returns a post by its ID.
func (r *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	post, ok := r.posts[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("post with ID %s %w", id, models.ErrNotFound)
	}
	post = r.hydrate(ctx, post)
	return &post, nil
}

// FindByTitle returns posts whose title contains text.
func (r *MockPostRepository) FindByTitle(ctx context.Context, text string, ignoreCase bool) ([]models.Post, error) {
	return r.collect(ctx, func(p models.Post) bool {
		if ignoreCase {
			return strings.Contains(strings.ToLower(p.Title), strings.ToLower(text))
		}
		return strings.Contains(p.Title, text)
	}), nil
}

// FindByTopicID returns the posts filed under a topic.
func (r *MockPostRepository) FindByTopicID(ctx context.Context, topicID string) ([]models.Post, error) {
	return r.collect(ctx, func(p models.Post) bool { return p.TopicID == topicID }), nil
}

// FindByOwnerID returns the posts written by a user.
func (r *MockPostRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]models.Post, error) {
	return r.collect(ctx, func(p models.Post) bool { return p.OwnerID == ownerID }), nil
}

// FindByOwnerAndTopic returns the posts written by a user under a topic.
func (r *MockPostRepository) FindByOwnerAndTopic(ctx context.Context, ownerID, topicID string) ([]models.Post, error) {
	return r.collect(ctx, func(p models.Post) bool {
		return p.OwnerID == ownerID && p.TopicID == topicID
	}), nil
}

// FindByTopicDescription returns posts whose topic description contains text, ignoring case.
func (r *MockPostRepository) FindByTopicDescription(ctx context.Context, text string) ([]models.Post, error) {
	needle := strings.ToLower(text)
	return r.collect(ctx, func(p models.Post) bool {
		return strings.Contains(strings.ToLower(p.Topic.Description), needle)
	}), nil
}

// FindByOwnerName returns posts whose owner's display name contains text, ignoring case.
func (r *MockPostRepository) FindByOwnerName(ctx context.Context, text string) ([]models.Post, error) {
	needle := strings.ToLower(text)
	return r.collect(ctx, func(p models.Post) bool {
		return strings.Contains(strings.ToLower(p.Owner.Name), needle)
	}), nil
}

// Create adds a new post.
func (r *MockPostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	r.posts[post.ID] = *post
	return nil
}

// Update replaces title, body, owner and topic of an existing post.
func (r *MockPostRepository) Update(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return fmt.Errorf("post with ID %s %w", post.ID, models.ErrNotFound)
	}
	stored.Title = post.Title
	stored.Body = post.Body
	stored.OwnerID = post.OwnerID
	stored.Owner = post.Owner
	stored.TopicID = post.TopicID
	stored.Topic = post.Topic
	r.posts[post.ID] = stored
	return nil
}

// Delete removes a post by its ID.
func (r *MockPostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post with ID %s %w", id, models.ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}

// DeleteByOwnerID removes every post written by a user.
func (r *MockPostRepository) DeleteByOwnerID(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.posts {
		if p.OwnerID == ownerID {
			delete(r.posts, id)
		}
	}
	return nil
}
