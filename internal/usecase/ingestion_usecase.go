package usecase

import (
	"context"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// IngestFailure describes one candidate review that could not be persisted.
// Failures are itemized so one bad review never aborts the pass.
type IngestFailure struct {
	PlatformReviewID string `json:"platform_review_id"`
	Reason           string `json:"reason"`
}

// IngestResult summarizes one retrieval pass over a single listing.
type IngestResult struct {
	Throttled  bool            `json:"throttled"`  // The listing was fetched recently and the pass was skipped.
	Fetched    int             `json:"fetched"`    // Candidate reviews returned by the platform.
	Inserted   int             `json:"inserted"`   // New reviews persisted in pending status.
	Duplicates int             `json:"duplicates"` // Candidates already ingested earlier.
	ReviewIDs  []uuid.UUID     `json:"review_ids"` // IDs of the newly inserted reviews.
	Failures   []IngestFailure `json:"failures"`   // Candidates that failed persistence.
}

// SweepResult aggregates an ingestion sweep over every due listing.
type SweepResult struct {
	Listings  int `json:"listings"`  // Monitored listings considered.
	Ingested  int `json:"ingested"`  // Listings fetched successfully.
	Throttled int `json:"throttled"` // Listings still inside their freshness window.
	Failed    int `json:"failed"`    // Listings whose fetch or persistence failed.
	Inserted  int `json:"inserted"`  // New reviews persisted across all listings.
}

// IngestionUsecase defines the review ingestion stage: fetch candidate
// reviews from a platform, dedup them against prior passes, persist the new
// ones and publish an event per inserted review.
type IngestionUsecase interface {
	// IngestBusinessPlatform runs one pass for a business's listing on the
	// given platform, checking that the business belongs to the user. With
	// force set the freshness window is ignored.
	IngestBusinessPlatform(ctx context.Context, userID, businessID uuid.UUID, platform entity.Platform, force bool) (*IngestResult, error)

	// IngestListing runs one pass for a single listing. Transient platform
	// failures are returned wrapped as service.TransientError and leave the
	// listing's freshness timestamp untouched.
	IngestListing(ctx context.Context, listing *entity.BusinessListing, force bool) (*IngestResult, error)

	// IngestDue sweeps every monitored listing of active businesses and runs
	// a pass for each one that is due.
	IngestDue(ctx context.Context) (*SweepResult, error)
}
