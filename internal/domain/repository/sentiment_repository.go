package repository

import (
	"context"
	"errors"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSentimentNotFound is returned when a review has no sentiment result.
var ErrSentimentNotFound = errors.New("sentiment result not found")

// SentimentRepository defines the operations for sentiment result and tag persistence.
type SentimentRepository interface {
	// Replace stores the result and its derived tags for a review, atomically
	// removing any prior result. A result is never partially overwritten; a
	// re-run replaces it whole.
	Replace(ctx context.Context, result *entity.SentimentResult, tags []*entity.ReviewTag) error

	// FindByReviewID retrieves the sentiment result owned by a review.
	FindByReviewID(ctx context.Context, reviewID uuid.UUID) (*entity.SentimentResult, error)

	// FindTagsByReviewID retrieves the tags attached to a review.
	FindTagsByReviewID(ctx context.Context, reviewID uuid.UUID) ([]*entity.ReviewTag, error)
}
