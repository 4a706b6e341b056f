package services

import (
	"context"
	"encoding/json"
	"time"

	"blog/internal/models"

	"github.com/rs/zerolog/log"
)

// Routing keys for post lifecycle events.
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// EventPublisher delivers an encoded event under a routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// PostEvent is the message body published for post lifecycle changes.
type PostEvent struct {
	Type       string    `json:"type"`
	PostID     string    `json:"post_id"`
	OwnerID    string    `json:"owner_id"`
	TopicID    string    `json:"topic_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Decision   string    `json:"decision,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishPostEvent never fails the caller: the write already happened.
func publishPostEvent(ctx context.Context, publisher EventPublisher, event PostEvent) {
	if publisher == nil {
		log.Debug().Str("event", event.Type).Msg("no event publisher configured, skipping")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Type).Msg("failed to marshal post event")
		return
	}
	if err := publisher.Publish(ctx, event.Type, body); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Str("post_id", event.PostID).Msg("failed to publish post event")
		return
	}
	log.Debug().Str("event", event.Type).Str("post_id", event.PostID).Msg("post event published")
}

func newPostEvent(eventType string, post *models.Post, actorID string) PostEvent {
	return PostEvent{
		Type:       eventType,
		PostID:     post.ID,
		OwnerID:    post.OwnerID,
		TopicID:    post.TopicID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}
