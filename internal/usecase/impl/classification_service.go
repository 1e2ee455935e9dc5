package impl

import (
	"context"
	"log/slog"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type classificationService struct {
	logger       *slog.Logger
	reviewRepo   repository.ReviewRepository
	businessRepo repository.BusinessRepository
	analyzer     service.SentimentAnalyzer
	txManager    repository.TransactionManager
}

// NewClassificationService creates a new classification service instance
func NewClassificationService(
	logger *slog.Logger,
	reviewRepo repository.ReviewRepository,
	businessRepo repository.BusinessRepository,
	analyzer service.SentimentAnalyzer,
	txManager repository.TransactionManager,
) usecase.ClassificationUsecase {
	return &classificationService{
		logger:       logger,
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		analyzer:     analyzer,
		txManager:    txManager,
	}
}

// ClassifyReview processes one pending review: claim it, score the text, and
// persist the result, tags and completed status in a single transaction.
func (s *classificationService) ClassifyReview(ctx context.Context, reviewID uuid.UUID) (*usecase.ClassifyOutput, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, domainerrors.ErrReviewNotFound
		}

		return nil, err
	}

	claimed, err := s.reviewRepo.ClaimForProcessing(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Another worker holds the claim, or the review already finished.
		// Duplicate event deliveries land here and are not an error.
		s.logger.Debug("review claim lost, skipping",
			slog.String("review_id", reviewID.String()),
			slog.String("status", string(review.Status)),
		)

		return &usecase.ClassifyOutput{Skipped: true}, nil
	}

	analysis, err := s.analyzer.Analyze(review.Text)
	if err != nil {
		// The analyzer is deterministic, so a scoring failure never resolves
		// on retry. Mark the review failed with the reason.
		if statusErr := s.reviewRepo.UpdateStatus(ctx, reviewID, entity.ReviewStatusFailed, err.Error()); statusErr != nil {
			return nil, statusErr
		}

		if errors.Is(err, service.ErrEmptyReviewText) {
			return nil, domainerrors.ErrReviewTextEmpty
		}

		return nil, err
	}

	result := &entity.SentimentResult{
		ReviewID:   reviewID,
		Label:      analysis.Label,
		Score:      analysis.Score,
		Confidence: analysis.Confidence,
		Topics:     analysis.Topics,
		KeyPhrases: analysis.KeyPhrases,
		Metadata:   analysis.Metadata,
	}

	tags := make([]*entity.ReviewTag, 0, len(analysis.Tags))
	for _, draft := range analysis.Tags {
		tags = append(tags, &entity.ReviewTag{
			ReviewID:   reviewID,
			Name:       draft.Name,
			Category:   draft.Category,
			Confidence: analysis.Confidence,
		})
	}

	// Result, tags and the status transition commit together; a half-written
	// classification is never observable.
	err = s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.NewSentimentRepository().Replace(ctx, result, tags); err != nil {
			return err
		}

		return f.NewReviewRepository().UpdateStatus(ctx, reviewID, entity.ReviewStatusCompleted, "")
	})
	if err != nil {
		// Release the claim so a redelivery can retry the persistence.
		if releaseErr := s.reviewRepo.UpdateStatus(ctx, reviewID, entity.ReviewStatusPending, ""); releaseErr != nil {
			s.logger.Error("failed to release review claim",
				slog.String("review_id", reviewID.String()),
				slog.String("error", releaseErr.Error()),
			)
		}

		return nil, err
	}

	s.logger.Info("review classified",
		slog.String("review_id", reviewID.String()),
		slog.String("label", string(result.Label)),
		slog.Float64("score", result.Score),
	)

	return &usecase.ClassifyOutput{Result: result, Tags: tags}, nil
}

// ReclassifyReview forces a re-run for a review that already left pending
// status, after checking that the review belongs to the user.
func (s *classificationService) ReclassifyReview(ctx context.Context, userID, reviewID uuid.UUID) (*usecase.ClassifyOutput, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, domainerrors.ErrReviewNotFound
		}

		return nil, err
	}

	business, err := s.businessRepo.FindByID(ctx, review.BusinessID)
	if err != nil {
		return nil, err
	}
	if business.UserID != userID {
		return nil, domainerrors.ErrReviewNotFound
	}

	if review.Status == entity.ReviewStatusProcessing {
		return nil, domainerrors.ErrReviewBusy
	}

	if review.Status != entity.ReviewStatusPending {
		if err := s.reviewRepo.UpdateStatus(ctx, reviewID, entity.ReviewStatusPending, ""); err != nil {
			return nil, err
		}
	}

	return s.ClassifyReview(ctx, reviewID)
}
