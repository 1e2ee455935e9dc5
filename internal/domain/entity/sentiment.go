package entity

import (
	"time"

	"github.com/google/uuid"
)

// SentimentLabel is the categorical outcome of a classification.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// TagCategory groups review tags into reporting buckets.
type TagCategory string

const (
	TagCategoryService  TagCategory = "service"
	TagCategoryProduct  TagCategory = "product"
	TagCategoryAmbiance TagCategory = "ambiance"
	TagCategoryStaff    TagCategory = "staff"
	TagCategoryValue    TagCategory = "value"
	TagCategoryOther    TagCategory = "other"
)

// SentimentResult is one classification outcome, owned 1:1 by a Review.
// A re-run replaces the prior result atomically; partial overwrite is not allowed.
type SentimentResult struct {
	ID         uuid.UUID         `json:"id"`          // The Global Unique Identifier (GUID) for the result.
	ReviewID   uuid.UUID         `json:"review_id"`   // The ID of the review this result belongs to; unique.
	Label      SentimentLabel    `json:"label"`       // Categorical label (positive, negative, neutral).
	Score      float64           `json:"score"`       // Sentiment score in [-1.0, 1.0]; sign is consistent with the label.
	Confidence float64           `json:"confidence"`  // Confidence proxy in [0.0, 0.95]; not a calibrated probability.
	Topics     []string          `json:"topics"`      // Detected topic groups (service, food, coffee, ...).
	KeyPhrases []string          `json:"key_phrases"` // Extracted key phrases, capped at five.
	Metadata   map[string]string `json:"metadata"`    // Analyzer version, timing and diagnostic counts.
	CreatedAt  time.Time         `json:"created_at"`  // Timestamp of when this record was created.
}

// ReviewTag is a categorical label attached to a review, derived
// deterministically from the review's sentiment result. Tags are regenerable
// without side effects.
type ReviewTag struct {
	ID         uuid.UUID   `json:"id"`         // The Global Unique Identifier (GUID) for the tag.
	ReviewID   uuid.UUID   `json:"review_id"`  // The ID of the review this tag belongs to.
	Name       string      `json:"name"`       // Human-readable tag name, e.g. "positive service".
	Category   TagCategory `json:"category"`   // Reporting bucket for the tag.
	Confidence float64     `json:"confidence"` // Confidence carried over from the sentiment result.
	CreatedAt  time.Time   `json:"created_at"` // Timestamp of when this record was created.
}
