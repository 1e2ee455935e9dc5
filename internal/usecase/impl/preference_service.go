package impl

import (
	"context"
	"log/slog"
	"time"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type preferenceService struct {
	logger         *slog.Logger
	preferenceRepo repository.PreferenceRepository
}

// NewPreferenceService creates a new preference service instance
func NewPreferenceService(logger *slog.Logger, preferenceRepo repository.PreferenceRepository) usecase.PreferenceUsecase {
	return &preferenceService{
		logger:         logger,
		preferenceRepo: preferenceRepo,
	}
}

// defaultPreference is the policy applied to users who never saved one:
// alerts on, summaries off, no quiet hours.
func defaultPreference(userID uuid.UUID) *entity.UserPreference {
	return &entity.UserPreference{
		UserID:               userID,
		EmailNotifications:   true,
		NewReviewAlerts:      true,
		RatingAlertThreshold: 2,
		SentimentThreshold:   -0.5,
		Timezone:             "UTC",
	}
}

func (s *preferenceService) GetPreference(ctx context.Context, userID uuid.UUID) (*entity.UserPreference, error) {
	pref, err := s.preferenceRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPreferenceNotFound) {
			return defaultPreference(userID), nil
		}

		return nil, err
	}

	return pref, nil
}

func (s *preferenceService) UpdatePreference(ctx context.Context, userID uuid.UUID, input usecase.UpdatePreferenceInput) (*entity.UserPreference, error) {
	if err := validatePreferenceInput(input); err != nil {
		return nil, err
	}

	pref := &entity.UserPreference{
		UserID:               userID,
		EmailNotifications:   input.EmailNotifications,
		NewReviewAlerts:      input.NewReviewAlerts,
		RatingAlertThreshold: input.RatingAlertThreshold,
		SentimentThreshold:   input.SentimentThreshold,
		QuietHoursStart:      input.QuietHoursStart,
		QuietHoursEnd:        input.QuietHoursEnd,
		Timezone:             input.Timezone,
		WeeklySummary:        input.WeeklySummary,
		MonthlyReport:        input.MonthlyReport,
	}

	if err := s.preferenceRepo.Upsert(ctx, pref); err != nil {
		return nil, err
	}

	return pref, nil
}

func validatePreferenceInput(input usecase.UpdatePreferenceInput) error {
	if input.RatingAlertThreshold < 1 || input.RatingAlertThreshold > 5 {
		return domainerrors.ErrValidationFailed.WithDetails("rating alert threshold must be between 1 and 5")
	}
	if input.SentimentThreshold < -1 || input.SentimentThreshold > 0 {
		return domainerrors.ErrValidationFailed.WithDetails("sentiment threshold must be between -1 and 0")
	}

	// Quiet hours are optional, but must come as a valid pair.
	if (input.QuietHoursStart == "") != (input.QuietHoursEnd == "") {
		return domainerrors.ErrValidationFailed.WithDetails("quiet hours start and end must be set together")
	}
	if input.QuietHoursStart != "" {
		if !validClock(input.QuietHoursStart) || !validClock(input.QuietHoursEnd) {
			return domainerrors.ErrValidationFailed.WithDetails("quiet hours must use HH:MM format")
		}
	}

	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return domainerrors.ErrValidationFailed.WithDetails("unknown timezone " + input.Timezone)
		}
	}

	return nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)

	return err == nil
}
