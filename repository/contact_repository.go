package repository

import (
	"context"

	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContactRepositoryImpl implements the ContactRepository interface
type ContactRepositoryImpl struct {
	*BaseRepository[models.Contact, models.ContactFilter]
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &ContactRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Contact, models.ContactFilter](db),
	}
}

// ByUUID retrieves a contact by UUID
func (r *ContactRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Contact, error) {
	parsedUUID, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}

	filter := models.ContactFilter{UUID: &parsedUUID}
	contacts, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(contacts) == 0 {
		return nil, nil
	}

	return contacts[0], nil
}

// UpsertByScreenName inserts a contact or refreshes the profile columns of an
// existing one. The (user_id, campaign_id, screen_name) key decides identity;
// status and id are left untouched on conflict. Returns true when a new row
// was inserted.
func (r *ContactRepositoryImpl) UpsertByScreenName(ctx context.Context, contact *models.Contact) (bool, error) {
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

	if err = contact.BeforeCreate(); err != nil {
		return false, err
	}

	// ON CONFLICT DO UPDATE reports one affected row either way, so the
	// existence check inside the same transaction decides whether this run
	// created the row.
	var existing int64
	err = db.Model(&models.Contact{}).
		Where("user_id = ? AND campaign_id = ? AND screen_name = ?",
			contact.UserID, contact.CampaignID, contact.ScreenName).
		Count(&existing).Error
	if err != nil {
		return false, err
	}

	res := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "campaign_id"}, {Name: "screen_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "phone", "phone_cell", "phone_brokerage", "phone_business",
			"business_name", "profile_url", "is_team_lead", "agent_data", "updated_at",
		}),
	}).Create(contact)
	if res.Error != nil {
		err = res.Error
		return false, err
	}

	return existing == 0, nil
}

// ListByCampaign retrieves contacts of a campaign with pagination
func (r *ContactRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Contact, error) {
	filter := models.ContactFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "created_at ASC", limit, offset)
}

// ListPendingByCampaign retrieves up to limit unprocessed contacts, oldest first
func (r *ContactRepositoryImpl) ListPendingByCampaign(ctx context.Context, campaignID uint, limit int) ([]*models.Contact, error) {
	filter := models.ContactFilter{CampaignID: &campaignID, Status: utils.ToPtr(models.ContactStatusPending)}
	return r.ByFilter(ctx, filter, "created_at ASC", limit, 0)
}

// CountByCampaign counts contacts of a campaign
func (r *ContactRepositoryImpl) CountByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	filter := models.ContactFilter{CampaignID: &campaignID}
	return r.Count(ctx, filter)
}

// UpdateStatus updates only the status of a contact
func (r *ContactRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
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

	err = db.Model(&models.Contact{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return err
	}

	return nil
}

// UpdateDetails updates the profile columns of a contact
func (r *ContactRepositoryImpl) UpdateDetails(ctx context.Context, contact models.Contact) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
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

	now := utils.UTCNow()
	contact.UpdatedAt = &now

	err = db.Omit("Listings").Save(&contact).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves contacts based on filter criteria
func (r *ContactRepositoryImpl) ByFilter(ctx context.Context, filter models.ContactFilter, orderBy string, limit, offset int) ([]*models.Contact, error) {
	db := r.getDB(ctx)

	var contacts []*models.Contact
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

	query = query.Preload("Listings")

	err := query.Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

// Count returns the number of contacts matching the filter
func (r *ContactRepositoryImpl) Count(ctx context.Context, filter models.ContactFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var contact models.Contact
	query := r.applyFilter(db.Model(&contact), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any contact matching the filter exists
func (r *ContactRepositoryImpl) Exists(ctx context.Context, filter models.ContactFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ContactRepositoryImpl) applyFilter(db *gorm.DB, filter models.ContactFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.ScreenName != nil {
		db = db.Where("screen_name = ?", *filter.ScreenName)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.IsTeamLead != nil {
		db = db.Where("is_team_lead = ?", *filter.IsTeamLead)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
