// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/realtyreach/realtyreach/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) error
	SetActive(ctx context.Context, id uint, active bool) error
	ReplaceEmails(ctx context.Context, campaignID uint, emails []models.CampaignEmail) error
	ReplaceTemplates(ctx context.Context, campaignID uint, templates []models.CampaignTemplate) error
}

// TemplateRepository defines operations for templates
type TemplateRepository interface {
	Repository[models.Template, models.TemplateFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Template, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Template, error)
	Update(ctx context.Context, template models.Template) error
	Delete(ctx context.Context, id uint) error
}

// ContactRepository defines operations for scraped contacts
type ContactRepository interface {
	Repository[models.Contact, models.ContactFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Contact, error)
	UpsertByScreenName(ctx context.Context, contact *models.Contact) (bool, error)
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Contact, error)
	ListPendingByCampaign(ctx context.Context, campaignID uint, limit int) ([]*models.Contact, error)
	CountByCampaign(ctx context.Context, campaignID uint) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) error
	UpdateDetails(ctx context.Context, contact models.Contact) error
}

// ListingRepository defines operations for for-sale listings
type ListingRepository interface {
	Repository[models.Listing, models.ListingFilter]
	UpsertByZpid(ctx context.Context, listing *models.Listing) (bool, error)
	ListByContact(ctx context.Context, contactID uint) ([]*models.Listing, error)
}

// OutboxEmailRepository defines operations for queued outbound emails
type OutboxEmailRepository interface {
	Repository[models.OutboxEmail, models.OutboxEmailFilter]
	ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]*models.OutboxEmail, error)
	ClaimSending(ctx context.Context, id uint) (bool, error)
	MarkFailed(ctx context.Context, id uint, errorMessage string) error
	Delete(ctx context.Context, id uint) error
	RequeueStaleSending(ctx context.Context, olderThan time.Time) (int64, error)
}

// SentEmailRepository defines operations for the sent-email archive
type SentEmailRepository interface {
	Repository[models.SentEmail, models.SentEmailFilter]
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.SentEmail, error)
	CountByCampaign(ctx context.Context, campaignID uint) (int64, error)
}

// JobRepository defines operations for queued pipeline jobs
type JobRepository interface {
	Repository[models.Job, models.JobFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Job, error)
	ListPending(ctx context.Context, limit int) ([]*models.Job, error)
	ClaimProcessing(ctx context.Context, id uint) (bool, error)
	MarkCompleted(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, errorMessage string) error
	RequeueStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error)
}

// RapidAPISettingsRepository defines operations for per-user scraper credentials
type RapidAPISettingsRepository interface {
	Repository[models.RapidAPISettings, models.RapidAPISettingsFilter]
	ByUserID(ctx context.Context, userID uuid.UUID) (*models.RapidAPISettings, error)
	Upsert(ctx context.Context, settings *models.RapidAPISettings) error
}
