package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type notificationService struct {
	logger           *slog.Logger
	userRepo         repository.UserRepository
	businessRepo     repository.BusinessRepository
	reviewRepo       repository.ReviewRepository
	sentimentRepo    repository.SentimentRepository
	notificationRepo repository.NotificationRepository
	preferenceRepo   repository.PreferenceRepository
	mailer           service.Mailer
	clock            service.Clock
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(
	logger *slog.Logger,
	userRepo repository.UserRepository,
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	sentimentRepo repository.SentimentRepository,
	notificationRepo repository.NotificationRepository,
	preferenceRepo repository.PreferenceRepository,
	mailer service.Mailer,
	clock service.Clock,
) usecase.NotificationUsecase {
	return &notificationService{
		logger:           logger,
		userRepo:         userRepo,
		businessRepo:     businessRepo,
		reviewRepo:       reviewRepo,
		sentimentRepo:    sentimentRepo,
		notificationRepo: notificationRepo,
		preferenceRepo:   preferenceRepo,
		mailer:           mailer,
		clock:            clock,
	}
}

// EvaluateReview applies the owner's notification policy to one processed
// review and records a pending notification per rule that fires.
func (s *notificationService) EvaluateReview(ctx context.Context, reviewID uuid.UUID) ([]*entity.NotificationRecord, error) {
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

	pref := s.preferenceFor(ctx, business.UserID)
	if !pref.EmailNotifications {
		s.logger.Debug("email notifications disabled, skipping evaluation",
			slog.String("review_id", reviewID.String()),
		)

		return nil, nil
	}

	var sentiment *entity.SentimentResult
	sentiment, err = s.sentimentRepo.FindByReviewID(ctx, reviewID)
	if err != nil {
		if !errors.Is(err, repository.ErrSentimentNotFound) {
			return nil, err
		}
		sentiment = nil
	}

	// Quiet hours defer delivery to the first instant outside the window;
	// the record is still created now so nothing is dropped.
	now := s.clock.Now()
	var deferredUntil *time.Time
	if pref.InQuietHours(now) {
		until := pref.QuietHoursEndAfter(now)
		deferredUntil = &until
	}

	var created []*entity.NotificationRecord

	if pref.NewReviewAlerts {
		record := s.renderNewReview(business, review)
		record.DeferredUntil = deferredUntil
		ok, err := s.createOnce(ctx, record)
		if err != nil {
			return nil, err
		}
		if ok {
			created = append(created, record)
		}
	}

	if reason := alertReason(pref, review, sentiment); reason != "" {
		record := s.renderSentimentAlert(business, review, sentiment, reason)
		record.DeferredUntil = deferredUntil
		ok, err := s.createOnce(ctx, record)
		if err != nil {
			return nil, err
		}
		if ok {
			created = append(created, record)
		}
	}

	return created, nil
}

// DispatchDue delivers pending records whose deferral has elapsed. Each
// record's status reflects its own delivery outcome; one failing address
// never blocks the batch.
func (s *notificationService) DispatchDue(ctx context.Context, batchSize int) (*usecase.DispatchResult, error) {
	now := s.clock.Now()

	records, err := s.notificationRepo.FindDue(ctx, now, batchSize)
	if err != nil {
		return nil, err
	}

	result := &usecase.DispatchResult{Dispatched: len(records)}

	for _, record := range records {
		user, err := s.userRepo.FindByID(ctx, record.UserID)
		if err != nil {
			result.Failed++
			s.markFailed(ctx, record.ID, "recipient lookup failed: "+err.Error())

			continue
		}

		mail := &service.Mail{
			To:      user.Email,
			Subject: record.Subject,
			Body:    record.Body,
		}

		if err := s.mailer.Send(ctx, mail); err != nil {
			result.Failed++
			s.logger.Error("notification delivery failed",
				slog.String("record_id", record.ID.String()),
				slog.String("error", err.Error()),
			)
			s.markFailed(ctx, record.ID, err.Error())

			continue
		}

		result.Sent++
		if err := s.notificationRepo.MarkSent(ctx, record.ID, s.clock.Now()); err != nil {
			// The mail went out; a stale status only risks a duplicate send
			// on the next pass, which is preferable to stalling the batch.
			s.logger.Error("failed to mark notification sent",
				slog.String("record_id", record.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

// markFailed records a delivery failure. A failing status write is logged and
// swallowed so one bad record never blocks the rest of the batch.
func (s *notificationService) markFailed(ctx context.Context, recordID uuid.UUID, reason string) {
	if err := s.notificationRepo.MarkFailed(ctx, recordID, reason); err != nil {
		s.logger.Error("failed to mark notification failed",
			slog.String("record_id", recordID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// GenerateSummaries creates pending summary records for every user who opted
// in to the given summary type. Users with no reviews in the period are
// skipped rather than emailed an empty report.
func (s *notificationService) GenerateSummaries(ctx context.Context, typ entity.NotificationType) (int, error) {
	now := s.clock.Now()

	var prefs []*entity.UserPreference
	var since time.Time
	var err error

	switch typ {
	case entity.NotificationWeeklySummary:
		prefs, err = s.preferenceRepo.FindWithWeeklySummary(ctx)
		since = now.AddDate(0, 0, -7)
	case entity.NotificationMonthlyReport:
		prefs, err = s.preferenceRepo.FindWithMonthlyReport(ctx)
		since = now.AddDate(0, -1, 0)
	default:
		return 0, errors.Errorf("unsupported summary type %q", typ)
	}
	if err != nil {
		return 0, err
	}

	created := 0
	for _, pref := range prefs {
		summary, err := s.reviewRepo.SummarizeForUser(ctx, pref.UserID, since)
		if err != nil {
			s.logger.Error("failed to summarize reviews",
				slog.String("user_id", pref.UserID.String()),
				slog.String("error", err.Error()),
			)

			continue
		}

		if summary.TotalReviews == 0 {
			continue
		}

		record := s.renderSummary(pref.UserID, typ, summary, since, now)
		if pref.InQuietHours(now) {
			until := pref.QuietHoursEndAfter(now)
			record.DeferredUntil = &until
		}

		if err := s.notificationRepo.Create(ctx, record); err != nil {
			s.logger.Error("failed to create summary record",
				slog.String("user_id", pref.UserID.String()),
				slog.String("error", err.Error()),
			)

			continue
		}

		created++
	}

	return created, nil
}

// ListForUser retrieves a user's notification history, newest first.
func (s *notificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error) {
	return s.notificationRepo.FindByUser(ctx, userID, limit, offset)
}

// createOnce persists a record, treating the (review, type) duplicate as
// already recorded. It reports whether this call created the record.
func (s *notificationService) createOnce(ctx context.Context, record *entity.NotificationRecord) (bool, error) {
	if record.ReviewID != nil {
		exists, err := s.notificationRepo.ExistsForReview(ctx, *record.ReviewID, record.Type)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	if err := s.notificationRepo.Create(ctx, record); err != nil {
		// Lost the race against a concurrent evaluation of the same review.
		if errors.Is(err, repository.ErrDuplicateNotification) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// preferenceFor loads the user's stored preference, or the defaults when
// none exists yet.
func (s *notificationService) preferenceFor(ctx context.Context, userID uuid.UUID) *entity.UserPreference {
	pref, err := s.preferenceRepo.FindByUserID(ctx, userID)
	if err != nil {
		return defaultPreference(userID)
	}

	return pref
}

// alertReason reports why a sentiment alert fires, or empty when it does not.
func alertReason(pref *entity.UserPreference, review *entity.Review, sentiment *entity.SentimentResult) string {
	if review.Rating <= pref.RatingAlertThreshold {
		return fmt.Sprintf("rating %d is at or below your alert threshold of %d", review.Rating, pref.RatingAlertThreshold)
	}
	if sentiment != nil && sentiment.Score < pref.SentimentThreshold {
		return fmt.Sprintf("sentiment score %.2f crossed your alert threshold of %.2f", sentiment.Score, pref.SentimentThreshold)
	}

	return ""
}

func (s *notificationService) renderNewReview(business *entity.Business, review *entity.Review) *entity.NotificationRecord {
	var body strings.Builder
	fmt.Fprintf(&body, "%s left a %d-star review on %s for %s.\n\n", reviewerOrAnonymous(review), review.Rating, review.Platform, business.Name)
	if review.Text != "" {
		fmt.Fprintf(&body, "%q\n\n", review.Text)
	}
	if review.Permalink != "" {
		fmt.Fprintf(&body, "View the review: %s\n", review.Permalink)
	}

	return &entity.NotificationRecord{
		UserID:     business.UserID,
		BusinessID: &business.ID,
		ReviewID:   &review.ID,
		Type:       entity.NotificationNewReview,
		Subject:    fmt.Sprintf("New review for %s", business.Name),
		Body:       body.String(),
		Status:     entity.NotificationStatusPending,
	}
}

func (s *notificationService) renderSentimentAlert(business *entity.Business, review *entity.Review, sentiment *entity.SentimentResult, reason string) *entity.NotificationRecord {
	var body strings.Builder
	fmt.Fprintf(&body, "A review for %s needs your attention: %s.\n\n", business.Name, reason)
	fmt.Fprintf(&body, "%s rated %d stars on %s.\n", reviewerOrAnonymous(review), review.Rating, review.Platform)
	if sentiment != nil {
		fmt.Fprintf(&body, "Sentiment: %s (score %.2f, confidence %.2f)\n", sentiment.Label, sentiment.Score, sentiment.Confidence)
	}
	if review.Text != "" {
		fmt.Fprintf(&body, "\n%q\n", review.Text)
	}
	if review.Permalink != "" {
		fmt.Fprintf(&body, "\nRespond here: %s\n", review.Permalink)
	}

	return &entity.NotificationRecord{
		UserID:     business.UserID,
		BusinessID: &business.ID,
		ReviewID:   &review.ID,
		Type:       entity.NotificationSentimentAlert,
		Subject:    fmt.Sprintf("Attention needed: review for %s", business.Name),
		Body:       body.String(),
		Status:     entity.NotificationStatusPending,
	}
}

func (s *notificationService) renderSummary(userID uuid.UUID, typ entity.NotificationType, summary *repository.ReviewSummary, since, now time.Time) *entity.NotificationRecord {
	period := "week"
	subject := "Your weekly review summary"
	if typ == entity.NotificationMonthlyReport {
		period = "month"
		subject = "Your monthly review report"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Here is how your businesses did over the past %s (%s - %s).\n\n",
		period, since.Format("Jan 2"), now.Format("Jan 2, 2006"))
	fmt.Fprintf(&body, "Reviews received: %d\n", summary.TotalReviews)
	fmt.Fprintf(&body, "Average rating: %.1f\n", summary.AverageRating)
	fmt.Fprintf(&body, "Positive: %d  Negative: %d  Neutral: %d\n",
		summary.PositiveCount, summary.NegativeCount, summary.NeutralCount)

	return &entity.NotificationRecord{
		UserID:  userID,
		Type:    typ,
		Subject: subject,
		Body:    body.String(),
		Status:  entity.NotificationStatusPending,
	}
}

func reviewerOrAnonymous(review *entity.Review) string {
	if review.ReviewerName == "" {
		return "A customer"
	}

	return review.ReviewerName
}
