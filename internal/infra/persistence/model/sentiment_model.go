package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SentimentResultModel mirrors the 'sentiment_results' table. The unique
// index on review_id enforces the 1:1 ownership between a review and its
// classification outcome.
type SentimentResultModel struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ReviewID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Label      string         `gorm:"type:varchar(16);not null"`
	Score      float64        `gorm:"not null"`
	Confidence float64        `gorm:"not null"`
	Topics     datatypes.JSON `gorm:"type:jsonb"`
	KeyPhrases datatypes.JSON `gorm:"type:jsonb"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (SentimentResultModel) TableName() string {
	return "sentiment_results"
}

// ReviewTagModel mirrors the 'review_tags' table.
type ReviewTagModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ReviewID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Category   string    `gorm:"type:varchar(32);not null"`
	Confidence float64   `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (ReviewTagModel) TableName() string {
	return "review_tags"
}
