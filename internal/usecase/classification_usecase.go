package usecase

import (
	"context"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ClassifyOutput is the outcome of one classification run.
type ClassifyOutput struct {
	Skipped bool                    // Another worker holds the claim or the review already left pending.
	Result  *entity.SentimentResult // Persisted result; nil when skipped.
	Tags    []*entity.ReviewTag     // Tags derived from the result; nil when skipped.
}

// ClassificationUsecase runs the sentiment stage for a single review: claim
// it, score its text, and persist the result, tags and status transition
// atomically.
type ClassificationUsecase interface {
	// ClassifyReview processes one pending review. The claim is a compare-
	// and-set on the review's status, so concurrent deliveries of the same
	// event collapse into one run and the rest report Skipped.
	ClassifyReview(ctx context.Context, reviewID uuid.UUID) (*ClassifyOutput, error)

	// ReclassifyReview forces a re-run for a completed or failed review. The
	// prior result is replaced atomically.
	ReclassifyReview(ctx context.Context, userID, reviewID uuid.UUID) (*ClassifyOutput, error)
}
