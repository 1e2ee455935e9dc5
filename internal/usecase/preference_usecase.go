package usecase

import (
	"context"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdatePreferenceInput carries the full replacement preference for a user.
type UpdatePreferenceInput struct {
	EmailNotifications   bool
	NewReviewAlerts      bool
	RatingAlertThreshold int
	SentimentThreshold   float64
	QuietHoursStart      string
	QuietHoursEnd        string
	Timezone             string
	WeeklySummary        bool
	MonthlyReport        bool
}

// PreferenceUsecase manages the per-user notification preference consumed by
// the notification stage.
type PreferenceUsecase interface {
	// GetPreference returns the user's preference, falling back to the
	// defaults when none is stored yet.
	GetPreference(ctx context.Context, userID uuid.UUID) (*entity.UserPreference, error)

	// UpdatePreference validates and replaces the user's preference.
	UpdatePreference(ctx context.Context, userID uuid.UUID, input UpdatePreferenceInput) (*entity.UserPreference, error)
}
