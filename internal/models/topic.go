package models

// Topic is a category that posts reference.
type Topic struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Description string `json:"description" gorm:"type:varchar(255);not null"`
}
