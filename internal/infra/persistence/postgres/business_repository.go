package postgres

import (
	"context"
	"time"

	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/repository"
	"pulse/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// businessRepository implements the repository.BusinessRepository interface using GORM.
type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository is the constructor for businessRepository.
func NewBusinessRepository(db *gorm.DB) repository.BusinessRepository {
	return &businessRepository{
		db: db,
	}
}

// Create persists a new business entity.
func (repo *businessRepository) Create(ctx context.Context, business *entity.Business) error {
	businessM := fromBusinessDomain(business)

	if err := repo.db.WithContext(ctx).Create(businessM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid owner reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required business information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create business")
	}

	business.ID = businessM.ID
	business.CreatedAt = businessM.CreatedAt
	business.UpdatedAt = businessM.UpdatedAt

	return nil
}

// FindByID retrieves a business by its unique ID, listings included.
func (repo *businessRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	var businessM model.BusinessModel

	if err := repo.db.WithContext(ctx).
		Preload("Listings").
		Where("id = ?", id).
		First(&businessM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business by id")
	}

	return toBusinessDomain(&businessM), nil
}

// FindByUser retrieves every business owned by a user.
func (repo *businessRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error) {
	var businessModels []*model.BusinessModel

	if err := repo.db.WithContext(ctx).
		Preload("Listings").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&businessModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find businesses by user")
	}

	businesses := make([]*entity.Business, 0, len(businessModels))
	for _, businessM := range businessModels {
		businesses = append(businesses, toBusinessDomain(businessM))
	}

	return businesses, nil
}

// Update modifies an existing business. Listings are managed through their
// own operations and are not saved here.
func (repo *businessRepository) Update(ctx context.Context, business *entity.Business) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BusinessModel{}).
		Where("id = ?", business.ID).
		Updates(map[string]interface{}{
			"name":     business.Name,
			"timezone": business.Timezone,
			"active":   business.Active,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update business")
	}

	if result.RowsAffected == 0 {
		return repository.ErrBusinessNotFound
	}

	return nil
}

// CreateListing links a business to a platform listing.
func (repo *businessRepository) CreateListing(ctx context.Context, listing *entity.BusinessListing) error {
	listingM := fromListingDomain(listing)

	if err := repo.db.WithContext(ctx).Create(listingM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateListing
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrBusinessNotFound.WrapMessage("invalid business reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create business listing")
	}

	listing.ID = listingM.ID
	listing.CreatedAt = listingM.CreatedAt
	listing.UpdatedAt = listingM.UpdatedAt

	return nil
}

// FindListing retrieves the listing of a business on one platform.
func (repo *businessRepository) FindListing(ctx context.Context, businessID uuid.UUID, platform entity.Platform) (*entity.BusinessListing, error) {
	var listingM model.BusinessListingModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ? AND platform = ?", businessID, string(platform)).
		First(&listingM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrListingNotFound
		}

		return nil, errors.Wrap(err, "failed to find business listing")
	}

	return toListingDomain(&listingM), nil
}

// FindMonitoredListings retrieves every listing with monitoring enabled whose
// owning business is active.
func (repo *businessRepository) FindMonitoredListings(ctx context.Context) ([]*entity.BusinessListing, error) {
	var listingModels []*model.BusinessListingModel

	if err := repo.db.WithContext(ctx).
		Joins("JOIN businesses ON businesses.id = business_listings.business_id").
		Where("business_listings.monitor = ? AND businesses.active = ?", true, true).
		Order("business_listings.created_at ASC").
		Find(&listingModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find monitored listings")
	}

	listings := make([]*entity.BusinessListing, 0, len(listingModels))
	for _, listingM := range listingModels {
		listings = append(listings, toListingDomain(listingM))
	}

	return listings, nil
}

// MarkListingFetched advances the listing's last-fetch timestamp.
func (repo *businessRepository) MarkListingFetched(ctx context.Context, listingID uuid.UUID, fetchedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BusinessListingModel{}).
		Where("id = ?", listingID).
		Update("last_fetched_at", fetchedAt)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark listing fetched")
	}

	if result.RowsAffected == 0 {
		return repository.ErrListingNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toBusinessDomain converts a GORM BusinessModel to a domain Business entity.
func toBusinessDomain(data *model.BusinessModel) *entity.Business {
	if data == nil {
		return nil
	}

	listings := make([]*entity.BusinessListing, 0, len(data.Listings))
	for _, listingM := range data.Listings {
		listings = append(listings, toListingDomain(listingM))
	}

	return &entity.Business{
		ID:        data.ID,
		UserID:    data.UserID,
		Name:      data.Name,
		Timezone:  data.Timezone,
		Active:    data.Active,
		Listings:  listings,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// fromBusinessDomain converts a domain Business entity to a GORM BusinessModel.
func fromBusinessDomain(data *entity.Business) *model.BusinessModel {
	if data == nil {
		return nil
	}

	return &model.BusinessModel{
		ID:       data.ID,
		UserID:   data.UserID,
		Name:     data.Name,
		Timezone: data.Timezone,
		Active:   data.Active,
	}
}

// toListingDomain converts a GORM BusinessListingModel to a domain BusinessListing entity.
func toListingDomain(data *model.BusinessListingModel) *entity.BusinessListing {
	if data == nil {
		return nil
	}

	return &entity.BusinessListing{
		ID:            data.ID,
		BusinessID:    data.BusinessID,
		Platform:      entity.Platform(data.Platform),
		ExternalID:    data.ExternalID,
		Monitor:       data.Monitor,
		LastFetchedAt: data.LastFetchedAt,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromListingDomain converts a domain BusinessListing entity to a GORM BusinessListingModel.
func fromListingDomain(data *entity.BusinessListing) *model.BusinessListingModel {
	if data == nil {
		return nil
	}

	return &model.BusinessListingModel{
		ID:            data.ID,
		BusinessID:    data.BusinessID,
		Platform:      string(data.Platform),
		ExternalID:    data.ExternalID,
		Monitor:       data.Monitor,
		LastFetchedAt: data.LastFetchedAt,
	}
}
