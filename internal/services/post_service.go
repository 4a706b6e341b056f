package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"blog/internal/authz"
	"blog/internal/models"
	"blog/internal/repositories"
	"blog/pkg/metrics"

	"github.com/rs/zerolog/log"
)

// PostInput is the caller-supplied state of a post for create and update.
type PostInput struct {
	Title   string
	Body    string
	OwnerID string
	TopicID string
}

// PostQuery selects which posts ListPosts returns. The first non-empty
// selector wins, in this order: owner+topic, topic, owner, title,
// topic description, owner name. An empty query lists every post.
type PostQuery struct {
	Title            string
	TopicID          string
	OwnerID          string
	TopicDescription string
	OwnerName        string
}

// PostService handles business logic related to posts.
type PostService struct {
	postRepo  repositories.PostRepository
	topicRepo repositories.TopicRepository
	userRepo  repositories.UserRepository
	publisher EventPublisher
}

// NewPostService creates a new PostService. publisher may be nil.
func NewPostService(postRepo repositories.PostRepository, topicRepo repositories.TopicRepository, userRepo repositories.UserRepository, publisher EventPublisher) *PostService {
	return &PostService{
		postRepo:  postRepo,
		topicRepo: topicRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// ListPosts retrieves posts matching q.
func (s *PostService) ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	switch {
	case q.OwnerID != "" && q.TopicID != "":
		return s.postRepo.FindByOwnerAndTopic(ctx, q.OwnerID, q.TopicID)
	case q.TopicID != "":
		return s.postRepo.FindByTopicID(ctx, q.TopicID)
	case q.OwnerID != "":
		return s.postRepo.FindByOwnerID(ctx, q.OwnerID)
	case q.Title != "":
		return s.postRepo.FindByTitle(ctx, q.Title, true)
	case q.TopicDescription != "":
		return s.postRepo.FindByTopicDescription(ctx, q.TopicDescription)
	case q.OwnerName != "":
		return s.postRepo.FindByOwnerName(ctx, q.OwnerName)
	default:
		return s.postRepo.GetAll(ctx)
	}
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CreatePost stores a new post after resolving its topic and owner.
// The stored post references the reloaded records, never the caller's copies.
func (s *PostService) CreatePost(ctx context.Context, input PostInput) (*models.Post, error) {
	if err := validatePostContent(input); err != nil {
		return nil, err
	}

	topic, err := s.resolveTopic(ctx, input.TopicID)
	if err != nil {
		return nil, err
	}
	owner, err := s.userRepo.GetByID(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", input.OwnerID, models.ErrInvalidReference)
		}
		return nil, err
	}

	post := &models.Post{
		Title:   input.Title,
		Body:    input.Body,
		OwnerID: owner.ID,
		Owner:   *owner,
		TopicID: topic.ID,
		Topic:   *topic,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	publishPostEvent(ctx, s.publisher, newPostEvent(EventPostCreated, post, owner.ID))
	return post, nil
}

// UpdatePost applies input to post id on behalf of requester.
//
// A missing post reports ErrNotFound before anything else; a nil requester
// reports ErrUnauthenticated. Otherwise the policy decides: owners replace
// title, body and topic, admins editing someone else's post move it to
// another topic only, everyone else gets ErrForbidden. Ownership never changes.
func (s *PostService) UpdatePost(ctx context.Context, requester *authz.Requester, id string, input PostInput) (*models.Post, error) {
	existing, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, models.ErrUnauthenticated
	}

	decision := authz.DecideUpdate(*requester, existing)
	metrics.PolicyDecisionsTotal.WithLabelValues("update", decision.String()).Inc()
	if decision == authz.Deny {
		log.Info().Str("post_id", id).Str("user_id", requester.ID).Msg("post update denied")
		return nil, fmt.Errorf("user %s may not edit post %s: %w", requester.ID, id, models.ErrForbidden)
	}
	if decision == authz.FullReplace {
		if err := validatePostContent(input); err != nil {
			return nil, err
		}
	}

	topic, err := s.resolveTopic(ctx, input.TopicID)
	if err != nil {
		return nil, err
	}

	proposed := models.Post{
		Title:   input.Title,
		Body:    input.Body,
		TopicID: topic.ID,
		Topic:   *topic,
	}
	updated := authz.ApplyUpdate(decision, *existing, proposed)
	if err := s.postRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	event := newPostEvent(EventPostUpdated, &updated, requester.ID)
	event.Decision = decision.String()
	publishPostEvent(ctx, s.publisher, event)

	log.Info().Str("post_id", id).Str("user_id", requester.ID).Str("decision", decision.String()).Msg("post updated")
	return &updated, nil
}

// DeletePost removes post id if requester is an admin or its owner.
func (s *PostService) DeletePost(ctx context.Context, requester *authz.Requester, id string) error {
	existing, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if requester == nil {
		return models.ErrUnauthenticated
	}

	if !authz.CanDelete(*requester, existing) {
		metrics.PolicyDecisionsTotal.WithLabelValues("delete", "deny").Inc()
		return fmt.Errorf("user %s may not delete post %s: %w", requester.ID, id, models.ErrForbidden)
	}
	metrics.PolicyDecisionsTotal.WithLabelValues("delete", "allow").Inc()

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}

	publishPostEvent(ctx, s.publisher, newPostEvent(EventPostDeleted, existing, requester.ID))
	return nil
}

func (s *PostService) resolveTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	if topicID == "" {
		return nil, fmt.Errorf("topic is required: %w", models.ErrInvalidReference)
	}
	topic, err := s.topicRepo.GetByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("topic %s: %w", topicID, models.ErrInvalidReference)
		}
		return nil, err
	}
	return topic, nil
}

func validatePostContent(input PostInput) error {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return fmt.Errorf("title is required: %w", models.ErrInvalidInput)
	case strings.TrimSpace(input.Body) == "":
		return fmt.Errorf("body is required: %w", models.ErrInvalidInput)
	case utf8.RuneCountInString(input.Title) > models.MaxTitleLength:
		return fmt.Errorf("title exceeds %d characters: %w", models.MaxTitleLength, models.ErrInvalidInput)
	case utf8.RuneCountInString(input.Body) > models.MaxBodyLength:
		return fmt.Errorf("body exceeds %d characters: %w", models.MaxBodyLength, models.ErrInvalidInput)
	}
	return nil
}
