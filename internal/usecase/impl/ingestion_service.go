package impl

import (
	"context"
	"log/slog"
	"time"

	"pulse/config"
	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type ingestionService struct {
	logger          *slog.Logger
	businessRepo    repository.BusinessRepository
	reviewRepo      repository.ReviewRepository
	registry        service.SourceRegistry
	publisher       service.EventPublisher
	clock           service.Clock
	refreshInterval time.Duration
	maxAttempts     int
	backoff         time.Duration
}

// NewIngestionService creates a new ingestion service instance
func NewIngestionService(
	logger *slog.Logger,
	cfg *config.Config,
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	registry service.SourceRegistry,
	publisher service.EventPublisher,
	clock service.Clock,
) usecase.IngestionUsecase {
	return &ingestionService{
		logger:          logger,
		businessRepo:    businessRepo,
		reviewRepo:      reviewRepo,
		registry:        registry,
		publisher:       publisher,
		clock:           clock,
		refreshInterval: cfg.Ingestion.RefreshInterval,
		maxAttempts:     cfg.Scheduler.IngestMaxAttempts,
		backoff:         cfg.Scheduler.IngestBackoff,
	}
}

// IngestBusinessPlatform runs one pass for a business's listing on the given
// platform after checking ownership.
func (s *ingestionService) IngestBusinessPlatform(ctx context.Context, userID, businessID uuid.UUID, platform entity.Platform, force bool) (*usecase.IngestResult, error) {
	if !platform.IsValid() {
		return nil, domainerrors.ErrPlatformUnsupported
	}

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

	listing, err := s.businessRepo.FindListing(ctx, businessID, platform)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, domainerrors.ErrListingNotConfigured
		}

		return nil, err
	}

	result, err := s.IngestListing(ctx, listing, force)
	if err != nil {
		// Pipeline errors become owner-facing ones on the manual trigger
		// path: an unknown external id is a configuration problem, a
		// transient platform failure is retryable.
		if errors.Is(err, service.ErrListingNotFound) {
			return nil, domainerrors.ErrListingInvalid
		}
		if service.IsTransient(err) {
			return nil, domainerrors.ErrPlatformUnavailable
		}

		return nil, err
	}

	return result, nil
}

// IngestListing runs one retrieval pass for a single listing: fetch the
// candidates, dedup against prior passes, persist the new reviews in pending
// status and publish one event per inserted review.
func (s *ingestionService) IngestListing(ctx context.Context, listing *entity.BusinessListing, force bool) (*usecase.IngestResult, error) {
	now := s.clock.Now()

	if !force && !listing.FetchDue(now, s.refreshInterval) {
		s.logger.Debug("listing inside freshness window, skipping",
			slog.String("listing_id", listing.ID.String()),
		)

		return &usecase.IngestResult{Throttled: true}, nil
	}

	source, err := s.registry.Source(listing.Platform)
	if err != nil {
		return nil, err
	}

	raws, err := source.FetchReviews(ctx, listing.ExternalID)
	if err != nil {
		// The freshness timestamp is left untouched so the next sweep
		// retries this listing.
		return nil, errors.Wrapf(err, "failed to fetch reviews for listing %s", listing.ID)
	}

	result := &usecase.IngestResult{Fetched: len(raws)}

	for _, raw := range raws {
		if reason, ok := validateRawReview(raw); !ok {
			result.Failures = append(result.Failures, usecase.IngestFailure{
				PlatformReviewID: raw.PlatformReviewID,
				Reason:           reason,
			})

			continue
		}

		review := &entity.Review{
			BusinessID:       listing.BusinessID,
			Platform:         listing.Platform,
			PlatformReviewID: raw.PlatformReviewID,
			ReviewerName:     raw.ReviewerName,
			Rating:           raw.Rating,
			Text:             raw.Text,
			Permalink:        raw.Permalink,
			Status:           entity.ReviewStatusPending,
			ReviewedAt:       raw.ReviewedAt,
		}

		if err := s.reviewRepo.Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicateReview) {
				// Already ingested on a prior pass; success-equivalent.
				result.Duplicates++

				continue
			}

			result.Failures = append(result.Failures, usecase.IngestFailure{
				PlatformReviewID: raw.PlatformReviewID,
				Reason:           err.Error(),
			})

			continue
		}

		result.Inserted++
		result.ReviewIDs = append(result.ReviewIDs, review.ID)

		event := &service.ReviewEvent{
			ReviewID:   review.ID.String(),
			BusinessID: review.BusinessID.String(),
			Platform:   string(review.Platform),
		}
		if err := s.publisher.PublishReviewEvent(ctx, event); err != nil {
			// The review stays pending; a manual classification trigger or a
			// later re-publish picks it up.
			s.logger.Error("failed to publish review event",
				slog.String("review_id", review.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	// The fetch itself succeeded; itemized persistence failures do not hold
	// the freshness window open.
	if err := s.businessRepo.MarkListingFetched(ctx, listing.ID, now); err != nil {
		return nil, err
	}

	s.logger.Info("listing ingested",
		slog.String("listing_id", listing.ID.String()),
		slog.String("platform", string(listing.Platform)),
		slog.Int("fetched", result.Fetched),
		slog.Int("inserted", result.Inserted),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("failures", len(result.Failures)),
	)

	return result, nil
}

// IngestDue sweeps every monitored listing of active businesses. Transient
// platform failures are retried with backoff; a listing that keeps failing is
// counted and the sweep moves on.
func (s *ingestionService) IngestDue(ctx context.Context) (*usecase.SweepResult, error) {
	listings, err := s.businessRepo.FindMonitoredListings(ctx)
	if err != nil {
		return nil, err
	}

	sweep := &usecase.SweepResult{Listings: len(listings)}

	for _, listing := range listings {
		result, err := s.ingestWithRetry(ctx, listing)
		if err != nil {
			sweep.Failed++
			s.logger.Error("listing ingestion failed",
				slog.String("listing_id", listing.ID.String()),
				slog.String("platform", string(listing.Platform)),
				slog.String("error", err.Error()),
			)

			continue
		}

		if result.Throttled {
			sweep.Throttled++

			continue
		}

		sweep.Ingested++
		sweep.Inserted += result.Inserted
	}

	return sweep, nil
}

// ingestWithRetry retries transient failures with exponential backoff.
// Permanent failures return immediately.
func (s *ingestionService) ingestWithRetry(ctx context.Context, listing *entity.BusinessListing) (*usecase.IngestResult, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err := s.IngestListing(ctx, listing, false)
		if err == nil {
			return result, nil
		}
		if !service.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		if attempt == s.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoffDelay(s.backoff, attempt)):
		}
	}

	return nil, lastErr
}

// backoffDelay doubles the base delay per completed attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << (attempt - 1)
}

// validateRawReview rejects candidates that can never be persisted, with a
// human-readable reason for the itemized failure list.
func validateRawReview(raw service.RawReview) (string, bool) {
	if raw.PlatformReviewID == "" {
		return "missing platform review id", false
	}
	if raw.Rating < 1 || raw.Rating > 5 {
		return "rating out of range", false
	}

	return "", true
}
