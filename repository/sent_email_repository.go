package repository

import (
	"context"

	"github.com/realtyreach/realtyreach/models"
	"gorm.io/gorm"
)

// SentEmailRepositoryImpl implements the SentEmailRepository interface
type SentEmailRepositoryImpl struct {
	*BaseRepository[models.SentEmail, models.SentEmailFilter]
}

// NewSentEmailRepository creates a new sent email repository
func NewSentEmailRepository(db *gorm.DB) SentEmailRepository {
	return &SentEmailRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SentEmail, models.SentEmailFilter](db),
	}
}

// ListByCampaign retrieves sent emails of a campaign, newest first
func (r *SentEmailRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.SentEmail, error) {
	filter := models.SentEmailFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "sent_at DESC", limit, offset)
}

// CountByCampaign counts sent emails of a campaign
func (r *SentEmailRepositoryImpl) CountByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	filter := models.SentEmailFilter{CampaignID: &campaignID}
	return r.Count(ctx, filter)
}

// ByFilter retrieves sent emails based on filter criteria
func (r *SentEmailRepositoryImpl) ByFilter(ctx context.Context, filter models.SentEmailFilter, orderBy string, limit, offset int) ([]*models.SentEmail, error) {
	db := r.getDB(ctx)

	var emails []*models.SentEmail
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

	err := query.Find(&emails).Error
	if err != nil {
		return nil, err
	}

	return emails, nil
}

// Count returns the number of sent emails matching the filter
func (r *SentEmailRepositoryImpl) Count(ctx context.Context, filter models.SentEmailFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var email models.SentEmail
	query := r.applyFilter(db.Model(&email), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any sent email matching the filter exists
func (r *SentEmailRepositoryImpl) Exists(ctx context.Context, filter models.SentEmailFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *SentEmailRepositoryImpl) applyFilter(db *gorm.DB, filter models.SentEmailFilter) *gorm.DB {
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
	if filter.ContactID != nil {
		db = db.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.SentAfter != nil {
		db = db.Where("sent_at >= ?", *filter.SentAfter)
	}
	if filter.SentBefore != nil {
		db = db.Where("sent_at < ?", *filter.SentBefore)
	}

	return db
}
