// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationNewReview      NotificationType = "new_review"
	NotificationSentimentAlert NotificationType = "sentiment_alert"
	NotificationWeeklySummary  NotificationType = "weekly_summary"
	NotificationMonthlyReport  NotificationType = "monthly_report"
)

// NotificationStatus tracks delivery of a notification record.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// NotificationRecord is one decision-and-delivery-attempt record. It is
// created in pending status when a policy fires and mutated only to update
// delivery status. At most one record exists per (review, type) pair.
type NotificationRecord struct {
	ID            uuid.UUID          `json:"id"`             // The Global Unique Identifier (GUID) for the record.
	UserID        uuid.UUID          `json:"user_id"`        // The ID of the user the notification is addressed to.
	BusinessID    *uuid.UUID         `json:"business_id"`    // Optional reference to the business that triggered the notification.
	ReviewID      *uuid.UUID         `json:"review_id"`      // Optional reference to the triggering review; nil for periodic summaries.
	Type          NotificationType   `json:"type"`           // What triggered this notification.
	Subject       string             `json:"subject"`        // Rendered email subject.
	Body          string             `json:"body"`           // Rendered email body.
	Status        NotificationStatus `json:"status"`         // Delivery status (pending, sent, failed).
	DeferredUntil *time.Time         `json:"deferred_until"` // Earliest allowed delivery instant; set when quiet hours defer delivery.
	SentAt        *time.Time         `json:"sent_at"`        // Timestamp of successful delivery.
	ErrorMessage  string             `json:"error_message"`  // Detail of the last delivery failure, if any.
	CreatedAt     time.Time          `json:"created_at"`     // Timestamp of when this record was created.
	UpdatedAt     time.Time          `json:"updated_at"`     // Timestamp of the last modification.
}

// Due reports whether the record is ready for delivery at the given instant.
func (n *NotificationRecord) Due(now time.Time) bool {
	if n.Status != NotificationStatusPending {
		return false
	}
	if n.DeferredUntil == nil {
		return true
	}

	return !now.Before(*n.DeferredUntil)
}
