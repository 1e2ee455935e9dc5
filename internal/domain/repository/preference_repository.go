package repository

import (
	"context"
	"errors"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrPreferenceNotFound is returned when a user has no stored preference.
var ErrPreferenceNotFound = errors.New("user preference not found")

// PreferenceRepository defines the operations for user preference persistence.
type PreferenceRepository interface {
	// FindByUserID retrieves the preference of a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserPreference, error)

	// Upsert creates or replaces the preference of a user.
	Upsert(ctx context.Context, pref *entity.UserPreference) error

	// FindWithWeeklySummary retrieves every preference with weekly summaries
	// enabled. Used by the periodic summary sweep.
	FindWithWeeklySummary(ctx context.Context) ([]*entity.UserPreference, error)

	// FindWithMonthlyReport retrieves every preference with monthly reports
	// enabled.
	FindWithMonthlyReport(ctx context.Context) ([]*entity.UserPreference, error)
}
