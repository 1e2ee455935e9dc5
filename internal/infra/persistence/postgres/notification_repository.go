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

// notificationRepository implements the repository.NotificationRepository interface using GORM.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository is the constructor for notificationRepository.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

// Create persists a new notification record. A violation of the
// (review_id, type) unique constraint surfaces as
// repository.ErrDuplicateNotification, which callers treat as already
// recorded.
func (repo *notificationRepository) Create(ctx context.Context, record *entity.NotificationRecord) error {
	recordM := fromNotificationDomain(record)

	if err := repo.db.WithContext(ctx).Create(recordM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateNotification
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid user, business, or review reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required notification information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create notification record")
	}

	record.ID = recordM.ID
	record.Status = entity.NotificationStatus(recordM.Status)
	record.CreatedAt = recordM.CreatedAt
	record.UpdatedAt = recordM.UpdatedAt

	return nil
}

// ExistsForReview reports whether a record of the given type already exists
// for the review.
func (repo *notificationRepository) ExistsForReview(ctx context.Context, reviewID uuid.UUID, typ entity.NotificationType) (bool, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.NotificationRecordModel{}).
		Where("review_id = ? AND type = ?", reviewID, string(typ)).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to count notification records for review")
	}

	return count > 0, nil
}

// FindByUser retrieves a user's records, newest first, with pagination.
func (repo *notificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error) {
	var recordModels []*model.NotificationRecordModel

	query := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find notification records by user")
	}

	records := make([]*entity.NotificationRecord, 0, len(recordModels))
	for _, recordM := range recordModels {
		records = append(records, toNotificationDomain(recordM))
	}

	return records, nil
}

// FindDue retrieves pending records whose deferral, if any, has elapsed,
// oldest first so deferred records are not starved by new arrivals.
func (repo *notificationRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*entity.NotificationRecord, error) {
	var recordModels []*model.NotificationRecordModel

	query := repo.db.WithContext(ctx).
		Where("status = ?", string(entity.NotificationStatusPending)).
		Where("deferred_until IS NULL OR deferred_until <= ?", now).
		Order("created_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find due notification records")
	}

	records := make([]*entity.NotificationRecord, 0, len(recordModels))
	for _, recordM := range recordModels {
		records = append(records, toNotificationDomain(recordM))
	}

	return records, nil
}

// MarkSent records a successful delivery.
func (repo *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationRecordModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(entity.NotificationStatusSent),
			"sent_at":       sentAt,
			"error_message": "",
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark notification sent")
	}

	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}

// MarkFailed records a delivery failure with its error detail.
func (repo *notificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationRecordModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(entity.NotificationStatusFailed),
			"error_message": errorMessage,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark notification failed")
	}

	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toNotificationDomain converts a GORM NotificationRecordModel to a domain NotificationRecord entity.
func toNotificationDomain(data *model.NotificationRecordModel) *entity.NotificationRecord {
	if data == nil {
		return nil
	}

	return &entity.NotificationRecord{
		ID:            data.ID,
		UserID:        data.UserID,
		BusinessID:    data.BusinessID,
		ReviewID:      data.ReviewID,
		Type:          entity.NotificationType(data.Type),
		Subject:       data.Subject,
		Body:          data.Body,
		Status:        entity.NotificationStatus(data.Status),
		DeferredUntil: data.DeferredUntil,
		SentAt:        data.SentAt,
		ErrorMessage:  data.ErrorMessage,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromNotificationDomain converts a domain NotificationRecord entity to a GORM NotificationRecordModel.
func fromNotificationDomain(data *entity.NotificationRecord) *model.NotificationRecordModel {
	if data == nil {
		return nil
	}

	status := data.Status
	if status == "" {
		status = entity.NotificationStatusPending
	}

	return &model.NotificationRecordModel{
		ID:            data.ID,
		UserID:        data.UserID,
		BusinessID:    data.BusinessID,
		ReviewID:      data.ReviewID,
		Type:          string(data.Type),
		Subject:       data.Subject,
		Body:          data.Body,
		Status:        string(status),
		DeferredUntil: data.DeferredUntil,
		SentAt:        data.SentAt,
		ErrorMessage:  data.ErrorMessage,
	}
}
