package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrReviewNotFound is returned when a review is not found.
var ErrReviewNotFound = errors.New("review not found")

// ErrDuplicateReview is returned when the (business, platform, platform
// review id) dedup key already exists. During ingestion this is treated as
// success-equivalent, not as a failure.
var ErrDuplicateReview = errors.New("review already ingested")

// ReviewSummary aggregates a user's reviews over a reporting period.
type ReviewSummary struct {
	TotalReviews  int     // Number of reviews ingested in the period.
	AverageRating float64 // Mean rating over the period; zero when empty.
	PositiveCount int     // Reviews classified positive.
	NegativeCount int     // Reviews classified negative.
	NeutralCount  int     // Reviews classified neutral.
}

// ReviewRepository defines the standard operations for review persistence.
type ReviewRepository interface {
	// Create persists a new review in pending status. A violation of the
	// dedup unique constraint surfaces as ErrDuplicateReview.
	Create(ctx context.Context, review *entity.Review) error

	// FindByID retrieves a review by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)

	// FindByBusiness retrieves reviews for a business, newest first, with pagination.
	FindByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Review, error)

	// ClaimForProcessing atomically transitions a review from pending to
	// processing. It reports false when the review was not in pending status,
	// which means another worker holds the claim or processing already finished.
	ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateStatus sets the review's processing status and error detail.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReviewStatus, errorMessage string) error

	// SummarizeForUser aggregates the reviews of a user's businesses since the
	// given instant, joined with their sentiment results.
	SummarizeForUser(ctx context.Context, userID uuid.UUID, since time.Time) (*ReviewSummary, error)
}
