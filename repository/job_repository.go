package repository

import (
	"context"
	"time"

	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/utils"
	"gorm.io/gorm"
)

// JobRepositoryImpl implements the JobRepository interface
type JobRepositoryImpl struct {
	*BaseRepository[models.Job, models.JobFilter]
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Job, models.JobFilter](db),
	}
}

// ByUUID retrieves a job by UUID
func (r *JobRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Job, error) {
	parsedUUID, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}

	filter := models.JobFilter{UUID: &parsedUUID}
	jobs, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		return nil, nil
	}

	return jobs[0], nil
}

// ListPending retrieves up to limit pending jobs, oldest first
func (r *JobRepositoryImpl) ListPending(ctx context.Context, limit int) ([]*models.Job, error) {
	filter := models.JobFilter{Status: utils.ToPtr(models.JobStatusPending)}
	return r.ByFilter(ctx, filter, "created_at ASC", limit, 0)
}

// ClaimProcessing moves a pending job to processing. The conditional update
// makes the claim safe against a concurrent runner; false means someone else
// already took the job.
func (r *JobRepositoryImpl) ClaimProcessing(ctx context.Context, id uint) (bool, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Updates(map[string]any{
			"status":     models.JobStatusProcessing,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

// MarkCompleted finishes a job and stamps processed_at
func (r *JobRepositoryImpl) MarkCompleted(ctx context.Context, id uint) error {
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
	err = db.Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       models.JobStatusCompleted,
			"processed_at": now,
			"updated_at":   now,
		}).Error
	if err != nil {
		return err
	}

	return nil
}

// MarkFailed parks a job as failed with the error that stopped it
func (r *JobRepositoryImpl) MarkFailed(ctx context.Context, id uint, errorMessage string) error {
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
	err = db.Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.JobStatusFailed,
			"error_message": errorMessage,
			"processed_at":  now,
			"updated_at":    now,
		}).Error
	if err != nil {
		return err
	}

	return nil
}

// RequeueStaleProcessing returns jobs stuck in processing back to pending
func (r *JobRepositoryImpl) RequeueStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.Job{}).
		Where("status = ? AND updated_at < ?", models.JobStatusProcessing, olderThan).
		Updates(map[string]any{
			"status":     models.JobStatusPending,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// ByFilter retrieves jobs based on filter criteria
func (r *JobRepositoryImpl) ByFilter(ctx context.Context, filter models.JobFilter, orderBy string, limit, offset int) ([]*models.Job, error) {
	db := r.getDB(ctx)

	var jobs []*models.Job
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

	err := query.Find(&jobs).Error
	if err != nil {
		return nil, err
	}

	return jobs, nil
}

// Count returns the number of jobs matching the filter
func (r *JobRepositoryImpl) Count(ctx context.Context, filter models.JobFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var job models.Job
	query := r.applyFilter(db.Model(&job), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any job matching the filter exists
func (r *JobRepositoryImpl) Exists(ctx context.Context, filter models.JobFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *JobRepositoryImpl) applyFilter(db *gorm.DB, filter models.JobFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != nil {
		db = db.Where("job_type = ?", *filter.Type)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
