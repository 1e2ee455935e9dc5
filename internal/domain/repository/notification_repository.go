package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification record is not found.
var ErrNotificationNotFound = errors.New("notification record not found")

// ErrDuplicateNotification is returned when a record for the same
// (review, type) pair already exists. The evaluator treats this as
// already-recorded, which is what makes it at-most-once under retry.
var ErrDuplicateNotification = errors.New("notification already recorded")

// NotificationRepository defines the operations for notification record persistence.
type NotificationRepository interface {
	// Create persists a new record. A violation of the (review, type) unique
	// constraint surfaces as ErrDuplicateNotification.
	Create(ctx context.Context, record *entity.NotificationRecord) error

	// ExistsForReview reports whether a record of the given type already
	// exists for the review.
	ExistsForReview(ctx context.Context, reviewID uuid.UUID, typ entity.NotificationType) (bool, error)

	// FindByUser retrieves a user's records, newest first, with pagination.
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error)

	// FindDue retrieves pending records whose deferral, if any, has elapsed.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*entity.NotificationRecord, error)

	// MarkSent records a successful delivery.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	// MarkFailed records a delivery failure with its error detail.
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}
