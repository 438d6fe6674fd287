package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/utils"
	"gorm.io/gorm"
)

// OutboxEmailRepositoryImpl implements the OutboxEmailRepository interface
type OutboxEmailRepositoryImpl struct {
	*BaseRepository[models.OutboxEmail, models.OutboxEmailFilter]
}

// NewOutboxEmailRepository creates a new outbox email repository
func NewOutboxEmailRepository(db *gorm.DB) OutboxEmailRepository {
	return &OutboxEmailRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OutboxEmail, models.OutboxEmailFilter](db),
	}
}

// ListPending retrieves up to limit pending emails for a user, oldest first
func (r *OutboxEmailRepositoryImpl) ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]*models.OutboxEmail, error) {
	filter := models.OutboxEmailFilter{UserID: &userID, Status: utils.ToPtr(models.OutboxStatusPending)}
	return r.ByFilter(ctx, filter, "created_at ASC", limit, 0)
}

// ClaimSending moves a pending email to sending. The conditional update makes
// the claim safe against a concurrent dispatcher; false means someone else
// already took the row.
func (r *OutboxEmailRepositoryImpl) ClaimSending(ctx context.Context, id uint) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.OutboxEmail{}).
		Where("id = ? AND status = ?", id, models.OutboxStatusPending).
		Updates(map[string]any{
			"status":     models.OutboxStatusSending,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

// MarkFailed records a provider error on the row and parks it as failed
func (r *OutboxEmailRepositoryImpl) MarkFailed(ctx context.Context, id uint, errorMessage string) error {
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

	err = db.Model(&models.OutboxEmail{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.OutboxStatusFailed,
			"error_message": errorMessage,
			"updated_at":    utils.UTCNow(),
		}).Error
	if err != nil {
		return err
	}

	return nil
}

// Delete removes an outbox row, normally after a successful send
func (r *OutboxEmailRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.OutboxEmail{}, id).Error
	if err != nil {
		return err
	}

	return nil
}

// RequeueStaleSending returns rows stuck in sending back to pending. A row is
// stuck when a dispatcher died between the claim and the outcome write.
func (r *OutboxEmailRepositoryImpl) RequeueStaleSending(ctx context.Context, olderThan time.Time) (int64, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.OutboxEmail{}).
		Where("status = ? AND updated_at < ?", models.OutboxStatusSending, olderThan).
		Updates(map[string]any{
			"status":     models.OutboxStatusPending,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// ByFilter retrieves outbox emails based on filter criteria
func (r *OutboxEmailRepositoryImpl) ByFilter(ctx context.Context, filter models.OutboxEmailFilter, orderBy string, limit, offset int) ([]*models.OutboxEmail, error) {
	db := r.getDB(ctx)

	var emails []*models.OutboxEmail
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

// Count returns the number of outbox emails matching the filter
func (r *OutboxEmailRepositoryImpl) Count(ctx context.Context, filter models.OutboxEmailFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var email models.OutboxEmail
	query := r.applyFilter(db.Model(&email), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any outbox email matching the filter exists
func (r *OutboxEmailRepositoryImpl) Exists(ctx context.Context, filter models.OutboxEmailFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *OutboxEmailRepositoryImpl) applyFilter(db *gorm.DB, filter models.OutboxEmailFilter) *gorm.DB {
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
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Provider != nil {
		db = db.Where("provider = ?", *filter.Provider)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
