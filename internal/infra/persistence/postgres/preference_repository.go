package postgres

import (
	"context"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// preferenceRepository implements the repository.PreferenceRepository interface using GORM.
type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository is the constructor for preferenceRepository.
func NewPreferenceRepository(db *gorm.DB) repository.PreferenceRepository {
	return &preferenceRepository{
		db: db,
	}
}

// FindByUserID retrieves the preference of a user.
func (repo *preferenceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.UserPreference, error) {
	var prefM model.UserPreferenceModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&prefM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPreferenceNotFound
		}

		return nil, errors.Wrap(err, "failed to find user preference")
	}

	return toPreferenceDomain(&prefM), nil
}

// Upsert creates or replaces the preference of a user in a single statement.
func (repo *preferenceRepository) Upsert(ctx context.Context, pref *entity.UserPreference) error {
	prefM := fromPreferenceDomain(pref)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(prefM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert user preference")
	}

	pref.UpdatedAt = prefM.UpdatedAt

	return nil
}

// FindWithWeeklySummary retrieves every preference with weekly summaries enabled.
func (repo *preferenceRepository) FindWithWeeklySummary(ctx context.Context) ([]*entity.UserPreference, error) {
	return repo.findEnabled(ctx, "weekly_summary")
}

// FindWithMonthlyReport retrieves every preference with monthly reports enabled.
func (repo *preferenceRepository) FindWithMonthlyReport(ctx context.Context) ([]*entity.UserPreference, error) {
	return repo.findEnabled(ctx, "monthly_report")
}

func (repo *preferenceRepository) findEnabled(ctx context.Context, column string) ([]*entity.UserPreference, error) {
	var prefModels []*model.UserPreferenceModel

	if err := repo.db.WithContext(ctx).
		Where(column+" = ? AND email_notifications = ?", true, true).
		Find(&prefModels).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find preferences with %s enabled", column)
	}

	prefs := make([]*entity.UserPreference, 0, len(prefModels))
	for _, prefM := range prefModels {
		prefs = append(prefs, toPreferenceDomain(prefM))
	}

	return prefs, nil
}

// --- Mapper Functions ---

// toPreferenceDomain converts a GORM UserPreferenceModel to a domain UserPreference entity.
func toPreferenceDomain(data *model.UserPreferenceModel) *entity.UserPreference {
	if data == nil {
		return nil
	}

	return &entity.UserPreference{
		UserID:               data.UserID,
		EmailNotifications:   data.EmailNotifications,
		NewReviewAlerts:      data.NewReviewAlerts,
		RatingAlertThreshold: data.RatingAlertThreshold,
		SentimentThreshold:   data.SentimentThreshold,
		QuietHoursStart:      data.QuietHoursStart,
		QuietHoursEnd:        data.QuietHoursEnd,
		Timezone:             data.Timezone,
		WeeklySummary:        data.WeeklySummary,
		MonthlyReport:        data.MonthlyReport,
		UpdatedAt:            data.UpdatedAt,
	}
}

// fromPreferenceDomain converts a domain UserPreference entity to a GORM UserPreferenceModel.
func fromPreferenceDomain(data *entity.UserPreference) *model.UserPreferenceModel {
	if data == nil {
		return nil
	}

	return &model.UserPreferenceModel{
		UserID:               data.UserID,
		EmailNotifications:   data.EmailNotifications,
		NewReviewAlerts:      data.NewReviewAlerts,
		RatingAlertThreshold: data.RatingAlertThreshold,
		SentimentThreshold:   data.SentimentThreshold,
		QuietHoursStart:      data.QuietHoursStart,
		QuietHoursEnd:        data.QuietHoursEnd,
		Timezone:             data.Timezone,
		WeeklySummary:        data.WeeklySummary,
		MonthlyReport:        data.MonthlyReport,
	}
}
