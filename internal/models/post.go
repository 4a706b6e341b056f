package models

import "time"

const (
	MaxTitleLength = 100
	MaxBodyLength  = 1000
)

// Post is a user-authored item filed under a topic.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title" gorm:"type:varchar(100);not null"`
	Body      string    `json:"body" gorm:"type:varchar(1000);not null"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   string    `json:"owner_id" gorm:"type:varchar(36);not null;index"`
	Owner     User      `json:"owner" gorm:"foreignKey:OwnerID"`
	TopicID   string    `json:"topic_id" gorm:"type:varchar(36);not null;index"`
	Topic     Topic     `json:"topic" gorm:"foreignKey:TopicID"`
}
