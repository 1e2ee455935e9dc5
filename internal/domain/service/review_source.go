// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import (
	"context"
	"fmt"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/errors"
)

// ErrListingNotFound is returned by a ReviewSource when the external business
// identifier is unknown to the platform. It signals a configuration problem on
// the listing and is never retried.
var ErrListingNotFound = errors.New("external business id not found on platform")

// TransientError marks a failure as retryable: the platform was unreachable,
// rate-limited or timed out. Callers retry with backoff instead of marking the
// review or business as permanently failed.
type TransientError struct {
	err error
}

// NewTransientError wraps an error as transient.
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.err)
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// IsTransient reports whether any error in err's tree is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError

	return errors.As(err, &te)
}

// RawReview is one candidate review as returned by a platform client, before
// deduplication and persistence.
type RawReview struct {
	PlatformReviewID string    // Platform-native review identifier.
	ReviewerName     string    // Display name of the reviewer.
	Rating           int       // Numeric rating, 1-5.
	Text             string    // Free-text review body.
	Permalink        string    // Link back to the review on the platform.
	ReviewedAt       time.Time // When the review was written, per the platform.
}

// ReviewSource is the capability contract for one external review platform.
// Implementations must bound every call with a timeout; transient failures are
// reported as TransientError and unknown external ids as ErrListingNotFound.
type ReviewSource interface {
	// Platform identifies which platform this source fetches from.
	Platform() entity.Platform

	// FetchReviews retrieves the candidate reviews for an external business id.
	FetchReviews(ctx context.Context, externalID string) ([]RawReview, error)
}

// SourceRegistry resolves the ReviewSource for a platform.
type SourceRegistry interface {
	// Source returns the client for the given platform, or an error when the
	// platform has no configured client.
	Source(platform entity.Platform) (ReviewSource, error)
}
