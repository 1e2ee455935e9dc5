package service

import (
	"context"
)

// ReviewEvent is published when ingestion persists a new review, and consumed
// by the worker to run classification and notification for that review.
type ReviewEvent struct {
	RequestID  string `json:"request_id,omitempty"` // For distributed tracing.
	ReviewID   string `json:"review_id"`
	BusinessID string `json:"business_id"`
	Platform   string `json:"platform"`
}

// EventPublisher defines the interface for publishing events to a message queue.
type EventPublisher interface {
	// PublishReviewEvent publishes a review event for async processing.
	PublishReviewEvent(ctx context.Context, event *ReviewEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
