package postgres

import (
	"context"
	"time"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// reviewRepository implements the repository.ReviewRepository interface using GORM.
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository is the constructor for reviewRepository.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{
		db: db,
	}
}

// Create persists a new review in pending status. A duplicate of the
// (business_id, platform, platform_review_id) dedup key surfaces as
// repository.ErrDuplicateReview so ingestion can treat it as already seen.
func (repo *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	reviewM := fromReviewDomain(review)

	if err := repo.db.WithContext(ctx).Create(reviewM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateReview
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("rating out of range")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrBusinessNotFound.WrapMessage("invalid business reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create review")
	}

	review.ID = reviewM.ID
	review.Status = entity.ReviewStatus(reviewM.Status)
	review.CreatedAt = reviewM.CreatedAt
	review.UpdatedAt = reviewM.UpdatedAt

	return nil
}

// FindByID retrieves a review by its unique ID.
func (repo *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var reviewM model.ReviewModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&reviewM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReviewNotFound
		}

		return nil, errors.Wrap(err, "failed to find review by id")
	}

	return toReviewDomain(&reviewM), nil
}

// FindByBusiness retrieves reviews for a business, newest first, with pagination.
func (repo *reviewRepository) FindByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	var reviewModels []*model.ReviewModel

	query := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("reviewed_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&reviewModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find reviews by business")
	}

	reviews := make([]*entity.Review, 0, len(reviewModels))
	for _, reviewM := range reviewModels {
		reviews = append(reviews, toReviewDomain(reviewM))
	}

	return reviews, nil
}

// ClaimForProcessing atomically transitions a review from pending to
// processing. The conditional UPDATE makes the claim race-safe: of two
// concurrent workers exactly one observes RowsAffected == 1.
func (repo *reviewRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Where("id = ? AND status = ?", id, string(entity.ReviewStatusPending)).
		Update("status", string(entity.ReviewStatusProcessing))

	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to claim review for processing")
	}

	return result.RowsAffected == 1, nil
}

// UpdateStatus sets the review's processing status and error detail.
func (repo *reviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReviewStatus, errorMessage string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(status),
			"error_message": errorMessage,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update review status")
	}

	if result.RowsAffected == 0 {
		return repository.ErrReviewNotFound
	}

	return nil
}

// SummarizeForUser aggregates the reviews of a user's businesses since the
// given instant, joined with their sentiment results. Reviews without a
// result yet count toward the totals but not toward any label bucket.
func (repo *reviewRepository) SummarizeForUser(ctx context.Context, userID uuid.UUID, since time.Time) (*repository.ReviewSummary, error) {
	var row struct {
		TotalReviews  int
		AverageRating float64
		PositiveCount int
		NegativeCount int
		NeutralCount  int
	}

	err := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Select(`COUNT(reviews.id) AS total_reviews,
			COALESCE(AVG(reviews.rating), 0) AS average_rating,
			COUNT(*) FILTER (WHERE sentiment_results.label = 'positive') AS positive_count,
			COUNT(*) FILTER (WHERE sentiment_results.label = 'negative') AS negative_count,
			COUNT(*) FILTER (WHERE sentiment_results.label = 'neutral') AS neutral_count`).
		Joins("JOIN businesses ON businesses.id = reviews.business_id").
		Joins("LEFT JOIN sentiment_results ON sentiment_results.review_id = reviews.id").
		Where("businesses.user_id = ? AND reviews.created_at >= ?", userID, since).
		Scan(&row).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize reviews for user")
	}

	return &repository.ReviewSummary{
		TotalReviews:  row.TotalReviews,
		AverageRating: row.AverageRating,
		PositiveCount: row.PositiveCount,
		NegativeCount: row.NegativeCount,
		NeutralCount:  row.NeutralCount,
	}, nil
}

// --- Mapper Functions ---

// toReviewDomain converts a GORM ReviewModel to a domain Review entity.
func toReviewDomain(data *model.ReviewModel) *entity.Review {
	if data == nil {
		return nil
	}

	return &entity.Review{
		ID:               data.ID,
		BusinessID:       data.BusinessID,
		Platform:         entity.Platform(data.Platform),
		PlatformReviewID: data.PlatformReviewID,
		ReviewerName:     data.ReviewerName,
		Rating:           data.Rating,
		Text:             data.Text,
		Permalink:        data.Permalink,
		Status:           entity.ReviewStatus(data.Status),
		ErrorMessage:     data.ErrorMessage,
		ReviewedAt:       data.ReviewedAt,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

// fromReviewDomain converts a domain Review entity to a GORM ReviewModel.
func fromReviewDomain(data *entity.Review) *model.ReviewModel {
	if data == nil {
		return nil
	}

	status := data.Status
	if status == "" {
		status = entity.ReviewStatusPending
	}

	return &model.ReviewModel{
		ID:               data.ID,
		BusinessID:       data.BusinessID,
		Platform:         string(data.Platform),
		PlatformReviewID: data.PlatformReviewID,
		ReviewerName:     data.ReviewerName,
		Rating:           data.Rating,
		Text:             data.Text,
		Permalink:        data.Permalink,
		Status:           string(status),
		ErrorMessage:     data.ErrorMessage,
		ReviewedAt:       data.ReviewedAt,
	}
}
