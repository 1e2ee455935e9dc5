package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewModel mirrors the 'reviews' table. The composite unique index on
// (business_id, platform, platform_review_id) is the ingestion dedup key:
// re-fetching the same review surfaces as a duplicate key violation rather
// than a second row.
type ReviewModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	BusinessID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_dedup;index"`
	Platform         string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_reviews_dedup"`
	PlatformReviewID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_reviews_dedup"`
	ReviewerName     string    `gorm:"type:varchar(255)"`
	Rating           int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Text             string    `gorm:"type:text"`
	Permalink        string    `gorm:"type:text"`
	Status           string    `gorm:"type:varchar(16);not null;default:'pending';index"`
	ErrorMessage     string    `gorm:"type:text"`
	ReviewedAt       time.Time `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Sentiment *SentimentResultModel `gorm:"foreignKey:ReviewID"`
	Tags      []*ReviewTagModel     `gorm:"foreignKey:ReviewID"`
}

// TableName explicitly sets the table name for GORM.
func (ReviewModel) TableName() string {
	return "reviews"
}
