package usecase

import (
	"context"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateBusinessInput defines the data required to register a new business.
type CreateBusinessInput struct {
	Name     string
	Timezone string
}

// UpdateBusinessInput defines the mutable business fields. Nil fields are
// left unchanged.
type UpdateBusinessInput struct {
	Name     *string
	Timezone *string
	Active   *bool
}

// AddListingInput links a business to its identity on one platform.
type AddListingInput struct {
	Platform   entity.Platform
	ExternalID string
}

// ReviewDetail bundles a review with its classification outcome.
type ReviewDetail struct {
	Review    *entity.Review
	Sentiment *entity.SentimentResult // nil until classification completes
	Tags      []*entity.ReviewTag
}

// BusinessUsecase defines the interface for business and review query operations.
// Every operation checks that the business belongs to the calling user.
type BusinessUsecase interface {
	CreateBusiness(ctx context.Context, userID uuid.UUID, input CreateBusinessInput) (*entity.Business, error)
	ListBusinesses(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error)
	GetBusiness(ctx context.Context, userID, businessID uuid.UUID) (*entity.Business, error)
	UpdateBusiness(ctx context.Context, userID, businessID uuid.UUID, input UpdateBusinessInput) (*entity.Business, error)
	AddListing(ctx context.Context, userID, businessID uuid.UUID, input AddListingInput) (*entity.BusinessListing, error)

	ListReviews(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	GetReview(ctx context.Context, userID, reviewID uuid.UUID) (*ReviewDetail, error)
}
