package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrBusinessNotFound is returned when a business is not found.
var ErrBusinessNotFound = errors.New("business not found")

// ErrListingNotFound is returned when a business has no listing for a platform.
var ErrListingNotFound = errors.New("business listing not found")

// ErrDuplicateListing is returned when a (platform, external id) pair is
// already linked to a business.
var ErrDuplicateListing = errors.New("business listing already exists")

// BusinessRepository defines the standard operations for business and listing persistence.
type BusinessRepository interface {
	// Create persists a new business entity.
	Create(ctx context.Context, business *entity.Business) error

	// FindByID retrieves a business by its unique ID, listings included.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error)

	// FindByUser retrieves every business owned by a user.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error)

	// Update modifies an existing business. Soft-disabling a business is an
	// update of its Active flag; businesses are never hard-deleted.
	Update(ctx context.Context, business *entity.Business) error

	// CreateListing links a business to a platform listing.
	CreateListing(ctx context.Context, listing *entity.BusinessListing) error

	// FindListing retrieves the listing of a business on one platform.
	FindListing(ctx context.Context, businessID uuid.UUID, platform entity.Platform) (*entity.BusinessListing, error)

	// FindMonitoredListings retrieves every listing with monitoring enabled
	// whose owning business is active.
	FindMonitoredListings(ctx context.Context) ([]*entity.BusinessListing, error)

	// MarkListingFetched advances the listing's last-fetch timestamp. Called
	// only after a successful retrieval pass.
	MarkListingFetched(ctx context.Context, listingID uuid.UUID, fetchedAt time.Time) error
}
