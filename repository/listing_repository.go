package repository

import (
	"context"

	"github.com/realtyreach/realtyreach/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepositoryImpl implements the ListingRepository interface
type ListingRepositoryImpl struct {
	*BaseRepository[models.Listing, models.ListingFilter]
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &ListingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Listing, models.ListingFilter](db),
	}
}

// UpsertByZpid inserts a listing or refreshes an existing one keyed by
// (contact_id, zpid). Returns true when a new row was inserted.
func (r *ListingRepositoryImpl) UpsertByZpid(ctx context.Context, listing *models.Listing) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	if err = listing.BeforeCreate(); err != nil {
		return false, err
	}

	// ON CONFLICT DO UPDATE reports one affected row either way, so the
	// existence check inside the same transaction decides whether this run
	// created the row.
	var existing int64
	err = db.Model(&models.Listing{}).
		Where("contact_id = ? AND zpid = ?", listing.ContactID, listing.Zpid).
		Count(&existing).Error
	if err != nil {
		return false, err
	}

	res := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "contact_id"}, {Name: "zpid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"home_type", "address_line1", "address_line2", "city", "state", "postal_code",
			"bedrooms", "bathrooms", "price", "price_currency", "status", "brokerage_name",
			"listing_url", "primary_photo_url", "living_area_value", "living_area_units",
			"listing_data", "updated_at",
		}),
	}).Create(listing)
	if res.Error != nil {
		err = res.Error
		return false, err
	}

	return existing == 0, nil
}

// ListByContact retrieves all listings attached to a contact
func (r *ListingRepositoryImpl) ListByContact(ctx context.Context, contactID uint) ([]*models.Listing, error) {
	filter := models.ListingFilter{ContactID: &contactID}
	return r.ByFilter(ctx, filter, "price DESC", 0, 0)
}

// ByFilter retrieves listings based on filter criteria
func (r *ListingRepositoryImpl) ByFilter(ctx context.Context, filter models.ListingFilter, orderBy string, limit, offset int) ([]*models.Listing, error) {
	db := r.getDB(ctx)

	var listings []*models.Listing
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&listings).Error
	if err != nil {
		return nil, err
	}

	return listings, nil
}

// Count returns the number of listings matching the filter
func (r *ListingRepositoryImpl) Count(ctx context.Context, filter models.ListingFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var listing models.Listing
	query := r.applyFilter(db.Model(&listing), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any listing matching the filter exists
func (r *ListingRepositoryImpl) Exists(ctx context.Context, filter models.ListingFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ListingRepositoryImpl) applyFilter(db *gorm.DB, filter models.ListingFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.ContactID != nil {
		db = db.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.Zpid != nil {
		db = db.Where("zpid = ?", *filter.Zpid)
	}
	if filter.City != nil {
		db = db.Where("city = ?", *filter.City)
	}
	if filter.State != nil {
		db = db.Where("state = ?", *filter.State)
	}
	if filter.MinPrice != nil {
		db = db.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		db = db.Where("price <= ?", *filter.MaxPrice)
	}

	return db
}
