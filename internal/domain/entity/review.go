package entity

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies an external review source.
type Platform string

const (
	PlatformGoogle      Platform = "google"
	PlatformYelp        Platform = "yelp"
	PlatformFacebook    Platform = "facebook"
	PlatformTripAdvisor Platform = "tripadvisor"
)

// Platforms lists every supported review platform.
var Platforms = []Platform{PlatformGoogle, PlatformYelp, PlatformFacebook, PlatformTripAdvisor}

// IsValid reports whether the platform is one of the supported sources.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformGoogle, PlatformYelp, PlatformFacebook, PlatformTripAdvisor:
		return true
	}

	return false
}

// ReviewStatus tracks a review's progress through the processing pipeline.
type ReviewStatus string

const (
	ReviewStatusPending    ReviewStatus = "pending"
	ReviewStatusProcessing ReviewStatus = "processing"
	ReviewStatusCompleted  ReviewStatus = "completed"
	ReviewStatusFailed     ReviewStatus = "failed"
)

// Review represents one customer review ingested from a platform.
// Reviews are append-only: a failed review is excluded from active reporting
// until retried, but never deleted.
type Review struct {
	ID               uuid.UUID    `json:"id"`                 // The Global Unique Identifier (GUID) for the review.
	BusinessID       uuid.UUID    `json:"business_id"`        // The ID of the business this review belongs to.
	Platform         Platform     `json:"platform"`           // The external platform this review was ingested from.
	PlatformReviewID string       `json:"platform_review_id"` // The platform-native review identifier; part of the dedup key.
	ReviewerName     string       `json:"reviewer_name"`      // Display name of the reviewer as reported by the platform.
	Rating           int          `json:"rating"`             // Numeric rating, bounded 1-5 inclusive.
	Text             string       `json:"text"`               // Free-text review body.
	Permalink        string       `json:"permalink"`          // Link back to the review on the source platform.
	Status           ReviewStatus `json:"status"`             // Processing status (pending, processing, completed, failed).
	ErrorMessage     string       `json:"error_message"`      // Detail of the last processing failure, if any.
	ReviewedAt       time.Time    `json:"reviewed_at"`        // When the review was written, as reported by the platform.
	CreatedAt        time.Time    `json:"created_at"`         // Timestamp of when this record was ingested.
	UpdatedAt        time.Time    `json:"updated_at"`         // Timestamp of the last modification.
}
