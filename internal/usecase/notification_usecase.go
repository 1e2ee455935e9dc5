package usecase

import (
	"context"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// DispatchResult summarizes one delivery pass over due notification records.
type DispatchResult struct {
	Dispatched int `json:"dispatched"` // Records picked up by the pass.
	Sent       int `json:"sent"`       // Records delivered successfully.
	Failed     int `json:"failed"`     // Records whose delivery failed.
}

// NotificationUsecase is the notification stage: evaluate the user's policy
// against a processed review, record the decision, and deliver due records.
type NotificationUsecase interface {
	// EvaluateReview applies the owner's notification policy to a review and
	// creates pending records for the rules that fire. Quiet hours defer
	// delivery, never drop it. The (review, type) unique constraint makes
	// re-evaluation idempotent.
	EvaluateReview(ctx context.Context, reviewID uuid.UUID) ([]*entity.NotificationRecord, error)

	// DispatchDue delivers pending records whose deferral has elapsed and
	// updates each record's delivery status.
	DispatchDue(ctx context.Context, batchSize int) (*DispatchResult, error)

	// GenerateSummaries creates pending summary records of the given type
	// (weekly_summary or monthly_report) for every user who opted in. It
	// returns the number of records created.
	GenerateSummaries(ctx context.Context, typ entity.NotificationType) (int, error)

	// ListForUser retrieves a user's notification history, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error)
}
