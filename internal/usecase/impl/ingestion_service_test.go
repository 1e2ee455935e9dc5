package impl

import (
	"context"
	"testing"
	"time"

	"pulse/config"
	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ingestionTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Ingestion = &config.IngestionConfig{RefreshInterval: 24 * time.Hour}
	cfg.Scheduler = &config.SchedulerConfig{IngestMaxAttempts: 3, IngestBackoff: time.Millisecond}

	return cfg
}

func testListing(platform entity.Platform) *entity.BusinessListing {
	return &entity.BusinessListing{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		Platform:   platform,
		ExternalID: "ext-123",
		Monitor:    true,
	}
}

func TestIngestListing_InsertsAndPublishes(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	listing := testListing(entity.PlatformYelp)
	source := &mockReviewSource{platform: entity.PlatformYelp}
	source.On("FetchReviews", mock.Anything, "ext-123").Return([]service.RawReview{
		{PlatformReviewID: "r1", ReviewerName: "Ana", Rating: 5, Text: "great", ReviewedAt: clock.now},
		{PlatformReviewID: "r2", ReviewerName: "Bob", Rating: 1, Text: "bad", ReviewedAt: clock.now},
	}, nil)
	registry.On("Source", entity.PlatformYelp).Return(source, nil)

	reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Review")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Review).ID = uuid.New()
		}).
		Return(nil).Twice()
	publisher.On("PublishReviewEvent", mock.Anything, mock.AnythingOfType("*service.ReviewEvent")).Return(nil).Twice()
	businessRepo.On("MarkListingFetched", mock.Anything, listing.ID, clock.now).Return(nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	result, err := svc.IngestListing(context.Background(), listing, false)

	require.NoError(t, err)
	assert.False(t, result.Throttled)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Inserted)
	assert.Zero(t, result.Duplicates)
	assert.Len(t, result.ReviewIDs, 2)
	businessRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestIngestListing_DuplicateIsSuccess(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Now()}

	listing := testListing(entity.PlatformGoogle)
	source := &mockReviewSource{platform: entity.PlatformGoogle}
	source.On("FetchReviews", mock.Anything, "ext-123").Return([]service.RawReview{
		{PlatformReviewID: "seen-before", Rating: 4, Text: "fine"},
	}, nil)
	registry.On("Source", entity.PlatformGoogle).Return(source, nil)

	reviewRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateReview)
	businessRepo.On("MarkListingFetched", mock.Anything, listing.ID, clock.now).Return(nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	result, err := svc.IngestListing(context.Background(), listing, false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
	assert.Zero(t, result.Inserted)
	assert.Empty(t, result.Failures)
	// No event for a review that was not inserted this pass.
	publisher.AssertNotCalled(t, "PublishReviewEvent", mock.Anything, mock.Anything)
}

func TestIngestListing_ThrottledInsideFreshnessWindow(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Now()}

	listing := testListing(entity.PlatformYelp)
	recent := clock.now.Add(-time.Hour)
	listing.LastFetchedAt = &recent

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	result, err := svc.IngestListing(context.Background(), listing, false)

	require.NoError(t, err)
	assert.True(t, result.Throttled)
	registry.AssertNotCalled(t, "Source", mock.Anything)
	businessRepo.AssertNotCalled(t, "MarkListingFetched", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestListing_ForceBypassesFreshnessWindow(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Now()}

	listing := testListing(entity.PlatformYelp)
	recent := clock.now.Add(-time.Hour)
	listing.LastFetchedAt = &recent

	source := &mockReviewSource{platform: entity.PlatformYelp}
	source.On("FetchReviews", mock.Anything, "ext-123").Return([]service.RawReview{}, nil)
	registry.On("Source", entity.PlatformYelp).Return(source, nil)
	businessRepo.On("MarkListingFetched", mock.Anything, listing.ID, clock.now).Return(nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	result, err := svc.IngestListing(context.Background(), listing, true)

	require.NoError(t, err)
	assert.False(t, result.Throttled)
	source.AssertExpectations(t)
}

func TestIngestListing_TransientFetchFailureLeavesWindowOpen(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Now()}

	listing := testListing(entity.PlatformFacebook)
	source := &mockReviewSource{platform: entity.PlatformFacebook}
	source.On("FetchReviews", mock.Anything, "ext-123").
		Return(nil, service.NewTransientError(errors.New("rate limited")))
	registry.On("Source", entity.PlatformFacebook).Return(source, nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	_, err := svc.IngestListing(context.Background(), listing, false)

	require.Error(t, err)
	assert.True(t, service.IsTransient(err))
	// A failed fetch must not advance the freshness timestamp.
	businessRepo.AssertNotCalled(t, "MarkListingFetched", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestListing_ItemizedFailures(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Now()}

	listing := testListing(entity.PlatformYelp)
	source := &mockReviewSource{platform: entity.PlatformYelp}
	source.On("FetchReviews", mock.Anything, "ext-123").Return([]service.RawReview{
		{PlatformReviewID: "", Rating: 4, Text: "no id"},
		{PlatformReviewID: "r2", Rating: 9, Text: "rating out of range"},
		{PlatformReviewID: "r3", Rating: 3, Text: "fine"},
	}, nil)
	registry.On("Source", entity.PlatformYelp).Return(source, nil)

	reviewRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.Review) bool {
		return r.PlatformReviewID == "r3"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Review).ID = uuid.New()
	}).Return(nil)
	publisher.On("PublishReviewEvent", mock.Anything, mock.Anything).Return(nil)
	businessRepo.On("MarkListingFetched", mock.Anything, listing.ID, clock.now).Return(nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	result, err := svc.IngestListing(context.Background(), listing, false)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "missing platform review id", result.Failures[0].Reason)
	assert.Equal(t, "rating out of range", result.Failures[1].Reason)
	// One bad candidate never blocks the rest of the batch.
	businessRepo.AssertExpectations(t)
}

func TestIngestListing_PublishFailureKeepsReviewPending(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Now()}

	listing := testListing(entity.PlatformYelp)
	source := &mockReviewSource{platform: entity.PlatformYelp}
	source.On("FetchReviews", mock.Anything, "ext-123").Return([]service.RawReview{
		{PlatformReviewID: "r1", Rating: 5, Text: "great"},
	}, nil)
	registry.On("Source", entity.PlatformYelp).Return(source, nil)

	reviewRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Review).ID = uuid.New()
	}).Return(nil)
	publisher.On("PublishReviewEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	businessRepo.On("MarkListingFetched", mock.Anything, listing.ID, clock.now).Return(nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	result, err := svc.IngestListing(context.Background(), listing, false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	// The review stays persisted in pending; only delivery of the event failed.
	reviewRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestBusinessPlatform_OwnershipAndListingChecks(t *testing.T) {
	userID := uuid.New()
	businessID := uuid.New()

	t.Run("unsupported platform", func(t *testing.T) {
		svc := NewIngestionService(testLogger(), ingestionTestConfig(), new(mockBusinessRepository), new(mockReviewRepository), new(mockSourceRegistry), new(mockEventPublisher), &fixedClock{now: time.Now()})

		_, err := svc.IngestBusinessPlatform(context.Background(), userID, businessID, entity.Platform("myspace"), false)

		assert.ErrorIs(t, err, domainerrors.ErrPlatformUnsupported)
	})

	t.Run("business owned by someone else", func(t *testing.T) {
		businessRepo := new(mockBusinessRepository)
		businessRepo.On("FindByID", mock.Anything, businessID).Return(&entity.Business{
			ID:     businessID,
			UserID: uuid.New(),
		}, nil)

		svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, new(mockReviewRepository), new(mockSourceRegistry), new(mockEventPublisher), &fixedClock{now: time.Now()})

		_, err := svc.IngestBusinessPlatform(context.Background(), userID, businessID, entity.PlatformYelp, false)

		assert.ErrorIs(t, err, domainerrors.ErrBusinessNotFound)
	})

	t.Run("listing not configured", func(t *testing.T) {
		businessRepo := new(mockBusinessRepository)
		businessRepo.On("FindByID", mock.Anything, businessID).Return(&entity.Business{
			ID:     businessID,
			UserID: userID,
		}, nil)
		businessRepo.On("FindListing", mock.Anything, businessID, entity.PlatformYelp).
			Return(nil, repository.ErrListingNotFound)

		svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, new(mockReviewRepository), new(mockSourceRegistry), new(mockEventPublisher), &fixedClock{now: time.Now()})

		_, err := svc.IngestBusinessPlatform(context.Background(), userID, businessID, entity.PlatformYelp, false)

		assert.ErrorIs(t, err, domainerrors.ErrListingNotConfigured)
	})
}

func TestIngestBusinessPlatform_MapsPipelineErrors(t *testing.T) {
	userID := uuid.New()
	businessID := uuid.New()
	listing := testListing(entity.PlatformYelp)
	listing.BusinessID = businessID

	newService := func(fetchErr error) usecase.IngestionUsecase {
		businessRepo := new(mockBusinessRepository)
		businessRepo.On("FindByID", mock.Anything, businessID).Return(&entity.Business{
			ID:     businessID,
			UserID: userID,
		}, nil)
		businessRepo.On("FindListing", mock.Anything, businessID, entity.PlatformYelp).Return(listing, nil)

		source := &mockReviewSource{platform: entity.PlatformYelp}
		source.On("FetchReviews", mock.Anything, listing.ExternalID).Return(nil, fetchErr)
		registry := new(mockSourceRegistry)
		registry.On("Source", entity.PlatformYelp).Return(source, nil)

		return NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, new(mockReviewRepository), registry, new(mockEventPublisher), &fixedClock{now: time.Now()})
	}

	t.Run("unknown external id is a configuration problem", func(t *testing.T) {
		svc := newService(service.ErrListingNotFound)

		_, err := svc.IngestBusinessPlatform(context.Background(), userID, businessID, entity.PlatformYelp, false)

		assert.ErrorIs(t, err, domainerrors.ErrListingInvalid)
	})

	t.Run("transient platform failure is retryable", func(t *testing.T) {
		svc := newService(service.NewTransientError(errors.New("yelp returned status 503")))

		_, err := svc.IngestBusinessPlatform(context.Background(), userID, businessID, entity.PlatformYelp, false)

		assert.ErrorIs(t, err, domainerrors.ErrPlatformUnavailable)
	})
}

func TestIngestDue_SweepCountsAndRetries(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	reviewRepo := new(mockReviewRepository)
	registry := new(mockSourceRegistry)
	publisher := new(mockEventPublisher)
	clock := &fixedClock{now: time.Now()}

	healthy := testListing(entity.PlatformYelp)
	throttled := testListing(entity.PlatformYelp)
	recent := clock.now.Add(-time.Minute)
	throttled.LastFetchedAt = &recent
	flaky := testListing(entity.PlatformGoogle)

	businessRepo.On("FindMonitoredListings", mock.Anything).
		Return([]*entity.BusinessListing{healthy, throttled, flaky}, nil)

	healthySource := &mockReviewSource{platform: entity.PlatformYelp}
	healthySource.On("FetchReviews", mock.Anything, healthy.ExternalID).Return([]service.RawReview{}, nil)
	registry.On("Source", entity.PlatformYelp).Return(healthySource, nil)

	// The flaky listing fails transiently twice, then succeeds on the third
	// attempt inside the retry budget.
	flakySource := &mockReviewSource{platform: entity.PlatformGoogle}
	flakySource.On("FetchReviews", mock.Anything, flaky.ExternalID).
		Return(nil, service.NewTransientError(errors.New("timeout"))).Twice()
	flakySource.On("FetchReviews", mock.Anything, flaky.ExternalID).Return([]service.RawReview{}, nil).Once()
	registry.On("Source", entity.PlatformGoogle).Return(flakySource, nil)

	businessRepo.On("MarkListingFetched", mock.Anything, mock.Anything, clock.now).Return(nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, reviewRepo, registry, publisher, clock)

	sweep, err := svc.IngestDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, sweep.Listings)
	assert.Equal(t, 2, sweep.Ingested)
	assert.Equal(t, 1, sweep.Throttled)
	assert.Zero(t, sweep.Failed)
	flakySource.AssertExpectations(t)
}

func TestIngestDue_PermanentFailureNotRetried(t *testing.T) {
	businessRepo := new(mockBusinessRepository)
	registry := new(mockSourceRegistry)
	clock := &fixedClock{now: time.Now()}

	listing := testListing(entity.PlatformYelp)
	businessRepo.On("FindMonitoredListings", mock.Anything).Return([]*entity.BusinessListing{listing}, nil)

	source := &mockReviewSource{platform: entity.PlatformYelp}
	source.On("FetchReviews", mock.Anything, listing.ExternalID).
		Return(nil, service.ErrListingNotFound).Once()
	registry.On("Source", entity.PlatformYelp).Return(source, nil)

	svc := NewIngestionService(testLogger(), ingestionTestConfig(), businessRepo, new(mockReviewRepository), registry, new(mockEventPublisher), clock)

	sweep, err := svc.IngestDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sweep.Failed)
	source.AssertNumberOfCalls(t, "FetchReviews", 1)
}

func TestBackoffDelay_DoublesPerAttempt(t *testing.T) {
	base := 2 * time.Second

	assert.Equal(t, 2*time.Second, backoffDelay(base, 1))
	assert.Equal(t, 4*time.Second, backoffDelay(base, 2))
	assert.Equal(t, 8*time.Second, backoffDelay(base, 3))
}

var _ usecase.IngestionUsecase = (*ingestionService)(nil)
