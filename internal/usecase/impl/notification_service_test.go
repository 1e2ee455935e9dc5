package impl

import (
	"context"
	"testing"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type notificationFixture struct {
	userRepo         *mockUserRepository
	businessRepo     *mockBusinessRepository
	reviewRepo       *mockReviewRepository
	sentimentRepo    *mockSentimentRepository
	notificationRepo *mockNotificationRepository
	preferenceRepo   *mockPreferenceRepository
	mailer           *mockMailer
	clock            *fixedClock

	user     *entity.User
	business *entity.Business
	review   *entity.Review
}

func newNotificationFixture(rating int) *notificationFixture {
	f := &notificationFixture{
		userRepo:         new(mockUserRepository),
		businessRepo:     new(mockBusinessRepository),
		reviewRepo:       new(mockReviewRepository),
		sentimentRepo:    new(mockSentimentRepository),
		notificationRepo: new(mockNotificationRepository),
		preferenceRepo:   new(mockPreferenceRepository),
		mailer:           new(mockMailer),
		clock:            &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}

	f.user = &entity.User{ID: uuid.New(), Name: "Dana", Email: "dana@example.com"}
	f.business = &entity.Business{ID: uuid.New(), UserID: f.user.ID, Name: "Dana's Diner"}
	f.review = &entity.Review{
		ID:           uuid.New(),
		BusinessID:   f.business.ID,
		Platform:     entity.PlatformYelp,
		ReviewerName: "Carl",
		Rating:       rating,
		Text:         "something happened",
		Status:       entity.ReviewStatusCompleted,
	}

	f.reviewRepo.On("FindByID", mock.Anything, f.review.ID).Return(f.review, nil)
	f.businessRepo.On("FindByID", mock.Anything, f.business.ID).Return(f.business, nil)

	return f
}

func (f *notificationFixture) service() *notificationService {
	return NewNotificationService(
		testLogger(),
		f.userRepo,
		f.businessRepo,
		f.reviewRepo,
		f.sentimentRepo,
		f.notificationRepo,
		f.preferenceRepo,
		f.mailer,
		f.clock,
	).(*notificationService)
}

func (f *notificationFixture) withPreference(pref *entity.UserPreference) {
	pref.UserID = f.user.ID
	f.preferenceRepo.On("FindByUserID", mock.Anything, f.user.ID).Return(pref, nil)
}

func (f *notificationFixture) withSentiment(label entity.SentimentLabel, score float64) {
	f.sentimentRepo.On("FindByReviewID", mock.Anything, f.review.ID).Return(&entity.SentimentResult{
		ReviewID: f.review.ID,
		Label:    label,
		Score:    score,
	}, nil)
}

func (f *notificationFixture) withoutSentiment() {
	f.sentimentRepo.On("FindByReviewID", mock.Anything, f.review.ID).Return(nil, repository.ErrSentimentNotFound)
}

func (f *notificationFixture) expectCreate() {
	f.notificationRepo.On("ExistsForReview", mock.Anything, f.review.ID, mock.Anything).Return(false, nil)
	f.notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.NotificationRecord")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.NotificationRecord).ID = uuid.New()
		}).
		Return(nil)
}

func TestEvaluateReview_NewReviewAlertOnly(t *testing.T) {
	f := newNotificationFixture(5)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      true,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})
	f.withSentiment(entity.SentimentPositive, 0.7)
	f.expectCreate()

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.NotificationNewReview, records[0].Type)
	assert.Equal(t, entity.NotificationStatusPending, records[0].Status)
	assert.Nil(t, records[0].DeferredUntil)
	assert.Contains(t, records[0].Subject, "Dana's Diner")
	assert.Contains(t, records[0].Body, "Carl")
	require.NotNil(t, records[0].ReviewID)
	assert.Equal(t, f.review.ID, *records[0].ReviewID)
}

func TestEvaluateReview_LowRatingFiresSentimentAlert(t *testing.T) {
	f := newNotificationFixture(1)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      false,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})
	f.withSentiment(entity.SentimentNegative, -0.3)
	f.expectCreate()

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.NotificationSentimentAlert, records[0].Type)
	assert.Contains(t, records[0].Body, "alert threshold")
}

func TestEvaluateReview_NegativeSentimentFiresAlert(t *testing.T) {
	// Rating 4 is fine, but the sentiment score crossed the threshold.
	f := newNotificationFixture(4)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      false,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})
	f.withSentiment(entity.SentimentNegative, -0.8)
	f.expectCreate()

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.NotificationSentimentAlert, records[0].Type)
}

func TestEvaluateReview_ScoreAboveThresholdDoesNotFire(t *testing.T) {
	f := newNotificationFixture(4)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      false,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})
	f.withSentiment(entity.SentimentNegative, -0.3)

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	assert.Empty(t, records)
	f.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEvaluateReview_NeutralLabelBelowThresholdFires(t *testing.T) {
	// The rule compares the raw score against the user's threshold; the
	// label deadband does not gate it.
	f := newNotificationFixture(4)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      false,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.1,
	})
	f.withSentiment(entity.SentimentNeutral, -0.15)
	f.expectCreate()

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.NotificationSentimentAlert, records[0].Type)
}

func TestEvaluateReview_ScoreAtThresholdDoesNotFire(t *testing.T) {
	f := newNotificationFixture(4)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      false,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})
	f.withSentiment(entity.SentimentNegative, -0.5)

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEvaluateReview_EmailNotificationsOff(t *testing.T) {
	f := newNotificationFixture(1)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   false,
		NewReviewAlerts:      true,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	assert.Empty(t, records)
	f.sentimentRepo.AssertNotCalled(t, "FindByReviewID", mock.Anything, mock.Anything)
	f.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEvaluateReview_DefaultsWhenNoStoredPreference(t *testing.T) {
	f := newNotificationFixture(1)
	f.preferenceRepo.On("FindByUserID", mock.Anything, f.user.ID).
		Return(nil, repository.ErrPreferenceNotFound)
	f.withoutSentiment()
	f.expectCreate()

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	// Defaults: new-review alerts on, rating threshold 2 → both rules fire.
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entity.NotificationNewReview, records[0].Type)
	assert.Equal(t, entity.NotificationSentimentAlert, records[1].Type)
}

func TestEvaluateReview_QuietHoursDeferDelivery(t *testing.T) {
	// Fixture clock reads 12:00 UTC; the quiet window 10:00-14:00 covers it.
	f := newNotificationFixture(5)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      true,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
		QuietHoursStart:      "10:00",
		QuietHoursEnd:        "14:00",
		Timezone:             "UTC",
	})
	f.withoutSentiment()
	f.expectCreate()

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].DeferredUntil)
	assert.Equal(t, time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC), records[0].DeferredUntil.UTC())
}

func TestEvaluateReview_DuplicateIsIdempotent(t *testing.T) {
	f := newNotificationFixture(5)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      true,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})
	f.withoutSentiment()
	f.notificationRepo.On("ExistsForReview", mock.Anything, f.review.ID, entity.NotificationNewReview).
		Return(true, nil)

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	assert.Empty(t, records)
	f.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEvaluateReview_DuplicateRaceLostIsNotAnError(t *testing.T) {
	f := newNotificationFixture(5)
	f.withPreference(&entity.UserPreference{
		EmailNotifications:   true,
		NewReviewAlerts:      true,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
	})
	f.withoutSentiment()
	f.notificationRepo.On("ExistsForReview", mock.Anything, f.review.ID, entity.NotificationNewReview).
		Return(false, nil)
	f.notificationRepo.On("Create", mock.Anything, mock.Anything).
		Return(repository.ErrDuplicateNotification)

	records, err := f.service().EvaluateReview(context.Background(), f.review.ID)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDispatchDue_MarksSentAndFailed(t *testing.T) {
	f := newNotificationFixture(5)

	good := &entity.NotificationRecord{
		ID:      uuid.New(),
		UserID:  f.user.ID,
		Subject: "New review for Dana's Diner",
		Body:    "body",
		Status:  entity.NotificationStatusPending,
	}
	bad := &entity.NotificationRecord{
		ID:      uuid.New(),
		UserID:  f.user.ID,
		Subject: "Attention needed",
		Body:    "body",
		Status:  entity.NotificationStatusPending,
	}

	f.notificationRepo.On("FindDue", mock.Anything, f.clock.now, 100).
		Return([]*entity.NotificationRecord{good, bad}, nil)
	f.userRepo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)

	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *service.Mail) bool {
		return m.Subject == good.Subject
	})).Return(nil)
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *service.Mail) bool {
		return m.Subject == bad.Subject
	})).Return(errors.New("smtp: connection refused"))

	f.notificationRepo.On("MarkSent", mock.Anything, good.ID, f.clock.now).Return(nil)
	f.notificationRepo.On("MarkFailed", mock.Anything, bad.ID, "smtp: connection refused").Return(nil)

	result, err := f.service().DispatchDue(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Dispatched)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	f.notificationRepo.AssertExpectations(t)
}

func TestDispatchDue_RecipientLookupFailure(t *testing.T) {
	f := newNotificationFixture(5)

	orphan := &entity.NotificationRecord{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: entity.NotificationStatusPending,
	}

	f.notificationRepo.On("FindDue", mock.Anything, f.clock.now, 10).
		Return([]*entity.NotificationRecord{orphan}, nil)
	f.userRepo.On("FindByID", mock.Anything, orphan.UserID).Return(nil, repository.ErrUserNotFound)
	f.notificationRepo.On("MarkFailed", mock.Anything, orphan.ID, mock.AnythingOfType("string")).Return(nil)

	result, err := f.service().DispatchDue(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatchDue_StatusWriteFailureDoesNotBlockBatch(t *testing.T) {
	f := newNotificationFixture(5)

	bad := &entity.NotificationRecord{
		ID:      uuid.New(),
		UserID:  f.user.ID,
		Subject: "Attention needed",
		Body:    "body",
		Status:  entity.NotificationStatusPending,
	}
	good := &entity.NotificationRecord{
		ID:      uuid.New(),
		UserID:  f.user.ID,
		Subject: "New review for Dana's Diner",
		Body:    "body",
		Status:  entity.NotificationStatusPending,
	}

	f.notificationRepo.On("FindDue", mock.Anything, f.clock.now, 100).
		Return([]*entity.NotificationRecord{bad, good}, nil)
	f.userRepo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)

	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *service.Mail) bool {
		return m.Subject == bad.Subject
	})).Return(errors.New("smtp: connection refused"))
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *service.Mail) bool {
		return m.Subject == good.Subject
	})).Return(nil)

	// The status write for the failed record errors out; the rest of the
	// batch is still delivered.
	f.notificationRepo.On("MarkFailed", mock.Anything, bad.ID, mock.AnythingOfType("string")).
		Return(errors.New("connection reset"))
	f.notificationRepo.On("MarkSent", mock.Anything, good.ID, f.clock.now).Return(nil)

	result, err := f.service().DispatchDue(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Dispatched)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	f.notificationRepo.AssertCalled(t, "MarkSent", mock.Anything, good.ID, f.clock.now)
}

func TestGenerateSummaries_Weekly(t *testing.T) {
	f := newNotificationFixture(5)

	active := &entity.UserPreference{UserID: uuid.New(), EmailNotifications: true, WeeklySummary: true}
	quiet := &entity.UserPreference{UserID: uuid.New(), EmailNotifications: true, WeeklySummary: true}

	f.preferenceRepo.On("FindWithWeeklySummary", mock.Anything).
		Return([]*entity.UserPreference{active, quiet}, nil)

	since := f.clock.now.AddDate(0, 0, -7)
	f.reviewRepo.On("SummarizeForUser", mock.Anything, active.UserID, since).
		Return(&repository.ReviewSummary{TotalReviews: 12, AverageRating: 4.2, PositiveCount: 9, NegativeCount: 1, NeutralCount: 2}, nil)
	f.reviewRepo.On("SummarizeForUser", mock.Anything, quiet.UserID, since).
		Return(&repository.ReviewSummary{}, nil)

	var created *entity.NotificationRecord
	f.notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.NotificationRecord")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.NotificationRecord)
		}).
		Return(nil).Once()

	count, err := f.service().GenerateSummaries(context.Background(), entity.NotificationWeeklySummary)

	require.NoError(t, err)
	// The user with no reviews in the period is skipped, not emailed.
	assert.Equal(t, 1, count)
	require.NotNil(t, created)
	assert.Equal(t, entity.NotificationWeeklySummary, created.Type)
	assert.Nil(t, created.ReviewID)
	assert.Contains(t, created.Body, "Reviews received: 12")
	assert.Contains(t, created.Body, "Average rating: 4.2")
}

func TestGenerateSummaries_UnsupportedType(t *testing.T) {
	f := newNotificationFixture(5)

	_, err := f.service().GenerateSummaries(context.Background(), entity.NotificationNewReview)

	assert.Error(t, err)
}

func TestListForUser_Passthrough(t *testing.T) {
	f := newNotificationFixture(5)

	expected := []*entity.NotificationRecord{{ID: uuid.New()}}
	f.notificationRepo.On("FindByUser", mock.Anything, f.user.ID, 20, 0).Return(expected, nil)

	records, err := f.service().ListForUser(context.Background(), f.user.ID, 20, 0)

	require.NoError(t, err)
	assert.Equal(t, expected, records)
}
