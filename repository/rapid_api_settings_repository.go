package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/realtyreach/realtyreach/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RapidAPISettingsRepositoryImpl implements the RapidAPISettingsRepository interface
type RapidAPISettingsRepositoryImpl struct {
	*BaseRepository[models.RapidAPISettings, models.RapidAPISettingsFilter]
}

// NewRapidAPISettingsRepository creates a new settings repository
func NewRapidAPISettingsRepository(db *gorm.DB) RapidAPISettingsRepository {
	return &RapidAPISettingsRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RapidAPISettings, models.RapidAPISettingsFilter](db),
	}
}

// ByUserID retrieves the settings row of a user
func (r *RapidAPISettingsRepositoryImpl) ByUserID(ctx context.Context, userID uuid.UUID) (*models.RapidAPISettings, error) {
	filter := models.RapidAPISettingsFilter{UserID: &userID}
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0], nil
}

// Upsert inserts or replaces the user's settings row
func (r *RapidAPISettingsRepositoryImpl) Upsert(ctx context.Context, settings *models.RapidAPISettings) error {
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

	if err = settings.BeforeCreate(); err != nil {
		return err
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"api_key", "api_host", "max_pages", "updated_at",
		}),
	}).Create(settings).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves settings rows based on filter criteria
func (r *RapidAPISettingsRepositoryImpl) ByFilter(ctx context.Context, filter models.RapidAPISettingsFilter, orderBy string, limit, offset int) ([]*models.RapidAPISettings, error) {
	db := r.getDB(ctx)

	var rows []*models.RapidAPISettings
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

	err := query.Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Count returns the number of settings rows matching the filter
func (r *RapidAPISettingsRepositoryImpl) Count(ctx context.Context, filter models.RapidAPISettingsFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var row models.RapidAPISettings
	query := r.applyFilter(db.Model(&row), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any settings row matching the filter exists
func (r *RapidAPISettingsRepositoryImpl) Exists(ctx context.Context, filter models.RapidAPISettingsFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *RapidAPISettingsRepositoryImpl) applyFilter(db *gorm.DB, filter models.RapidAPISettingsFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}

	return db
}
