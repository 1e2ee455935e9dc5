package model

import (
	"time"

	"github.com/google/uuid"
)

// BusinessModel mirrors the 'businesses' table. UserID references users.id (UUID).
type BusinessModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Timezone  string    `gorm:"type:varchar(64)"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Listings []*BusinessListingModel `gorm:"foreignKey:BusinessID"`
}

// TableName explicitly sets the table name for GORM.
func (BusinessModel) TableName() string {
	return "businesses"
}

// BusinessListingModel mirrors the 'business_listings' table. The composite
// unique index on (platform, external_id) guarantees a platform listing is
// linked to at most one business, and the (business_id, platform) index
// guarantees one listing per platform per business.
type BusinessListingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	BusinessID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_listings_business_platform"`
	Platform      string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_listings_business_platform;uniqueIndex:idx_listings_platform_external"`
	ExternalID    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_listings_platform_external"`
	Monitor       bool      `gorm:"not null;default:true"`
	LastFetchedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (BusinessListingModel) TableName() string {
	return "business_listings"
}
