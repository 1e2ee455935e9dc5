package entity

import (
	"time"

	"github.com/google/uuid"
)

// Business is a monitored entity owned by a user. A business is soft-disabled
// rather than hard-deleted when monitoring stops, so its reviews remain for
// historical analysis.
type Business struct {
	ID        uuid.UUID          `json:"id"`         // The Global Unique Identifier (GUID) for the business.
	UserID    uuid.UUID          `json:"user_id"`    // The ID of the owning user.
	Name      string             `json:"name"`       // Human-readable business name.
	Timezone  string             `json:"timezone"`   // IANA timezone name used for reporting windows.
	Active    bool               `json:"active"`     // Whether monitoring is currently enabled for this business.
	Listings  []*BusinessListing `json:"listings"`   // Per-platform listing links; loaded on demand.
	CreatedAt time.Time          `json:"created_at"` // Timestamp of when this record was created.
	UpdatedAt time.Time          `json:"updated_at"` // Timestamp of the last modification.
}

// BusinessListing links a business to its identity on one external platform.
// At most one listing may exist per (platform, external ID) pair, and a
// business carries at most one listing per platform.
type BusinessListing struct {
	ID            uuid.UUID  `json:"id"`              // The Global Unique Identifier (GUID) for the listing.
	BusinessID    uuid.UUID  `json:"business_id"`     // The ID of the business this listing belongs to.
	Platform      Platform   `json:"platform"`        // The external platform of this listing.
	ExternalID    string     `json:"external_id"`     // The platform-native business identifier.
	Monitor       bool       `json:"monitor"`         // Whether ingestion is enabled for this listing.
	LastFetchedAt *time.Time `json:"last_fetched_at"` // When the last successful retrieval pass finished; nil before the first fetch.
	CreatedAt     time.Time  `json:"created_at"`      // Timestamp of when this record was created.
	UpdatedAt     time.Time  `json:"updated_at"`      // Timestamp of the last modification.
}

// FetchDue reports whether the listing's freshness window has elapsed.
// A listing that has never been fetched is always due.
func (l *BusinessListing) FetchDue(now time.Time, refreshInterval time.Duration) bool {
	if l.LastFetchedAt == nil {
		return true
	}

	return now.Sub(*l.LastFetchedAt) >= refreshInterval
}
