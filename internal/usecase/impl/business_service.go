package impl

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type businessService struct {
	logger        *slog.Logger
	businessRepo  repository.BusinessRepository
	reviewRepo    repository.ReviewRepository
	sentimentRepo repository.SentimentRepository
}

// NewBusinessService creates a new business service instance
func NewBusinessService(
	logger *slog.Logger,
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	sentimentRepo repository.SentimentRepository,
) usecase.BusinessUsecase {
	return &businessService{
		logger:        logger,
		businessRepo:  businessRepo,
		reviewRepo:    reviewRepo,
		sentimentRepo: sentimentRepo,
	}
}

// CreateBusiness registers a new monitored business for the user.
func (s *businessService) CreateBusiness(ctx context.Context, userID uuid.UUID, input usecase.CreateBusinessInput) (*entity.Business, error) {
	business := &entity.Business{
		UserID:   userID,
		Name:     input.Name,
		Timezone: input.Timezone,
		Active:   true,
	}

	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, err
	}

	s.logger.Info("business created",
		slog.String("business_id", business.ID.String()),
		slog.String("user_id", userID.String()),
	)

	return business, nil
}

// ListBusinesses returns every business owned by the user.
func (s *businessService) ListBusinesses(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error) {
	return s.businessRepo.FindByUser(ctx, userID)
}

// GetBusiness returns one business after checking ownership.
func (s *businessService) GetBusiness(ctx context.Context, userID, businessID uuid.UUID) (*entity.Business, error) {
	return s.ownedBusiness(ctx, userID, businessID)
}

// UpdateBusiness applies the non-nil fields of the input. Clearing the Active
// flag soft-disables monitoring; the business and its reviews are kept.
func (s *businessService) UpdateBusiness(ctx context.Context, userID, businessID uuid.UUID, input usecase.UpdateBusinessInput) (*entity.Business, error) {
	business, err := s.ownedBusiness(ctx, userID, businessID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		business.Name = *input.Name
	}
	if input.Timezone != nil {
		business.Timezone = *input.Timezone
	}
	if input.Active != nil {
		business.Active = *input.Active
	}

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, err
	}

	return business, nil
}

// AddListing links a business to its identity on one platform.
func (s *businessService) AddListing(ctx context.Context, userID, businessID uuid.UUID, input usecase.AddListingInput) (*entity.BusinessListing, error) {
	if !input.Platform.IsValid() {
		return nil, domainerrors.ErrPlatformUnsupported
	}

	if _, err := s.ownedBusiness(ctx, userID, businessID); err != nil {
		return nil, err
	}

	listing := &entity.BusinessListing{
		BusinessID: businessID,
		Platform:   input.Platform,
		ExternalID: input.ExternalID,
		Monitor:    true,
	}

	if err := s.businessRepo.CreateListing(ctx, listing); err != nil {
		if errors.Is(err, repository.ErrDuplicateListing) {
			return nil, domainerrors.ErrListingAlreadyExists
		}

		return nil, err
	}

	return listing, nil
}

// ListReviews returns the reviews of a business, newest first.
func (s *businessService) ListReviews(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	if _, err := s.ownedBusiness(ctx, userID, businessID); err != nil {
		return nil, err
	}

	return s.reviewRepo.FindByBusiness(ctx, businessID, limit, offset)
}

// GetReview returns one review with its sentiment result and tags. A review
// that has not finished classification comes back with a nil Sentiment.
func (s *businessService) GetReview(ctx context.Context, userID, reviewID uuid.UUID) (*usecase.ReviewDetail, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, domainerrors.ErrReviewNotFound
		}

		return nil, err
	}

	if _, err := s.ownedBusiness(ctx, userID, review.BusinessID); err != nil {
		return nil, err
	}

	detail := &usecase.ReviewDetail{Review: review}

	sentiment, err := s.sentimentRepo.FindByReviewID(ctx, reviewID)
	if err != nil {
		if !errors.Is(err, repository.ErrSentimentNotFound) {
			return nil, err
		}

		return detail, nil
	}
	detail.Sentiment = sentiment

	tags, err := s.sentimentRepo.FindTagsByReviewID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	detail.Tags = tags

	return detail, nil
}

// ownedBusiness loads a business and verifies it belongs to the user. A
// business owned by someone else reports not-found rather than forbidden so
// business ids are not probeable.
func (s *businessService) ownedBusiness(ctx context.Context, userID, businessID uuid.UUID) (*entity.Business, error) {
	business, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, domainerrors.ErrBusinessNotFound
		}

		return nil, err
	}

	if business.UserID != userID {
		return nil, domainerrors.ErrBusinessNotFound
	}

	return business, nil
}
