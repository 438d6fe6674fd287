package dto

import (
	"github.com/google/uuid"

	"github.com/realtyreach/realtyreach/models"
)

// ScrapeAgentsRequest kicks off an agent scrape for a campaign's location.
// UserID is taken from the authenticated token, not the body.
type ScrapeAgentsRequest struct {
	CampaignID string    `json:"campaign_id" validate:"required,uuid4"`
	UserID     uuid.UUID `json:"-"`
}

// ScrapeAgentsResponse summarizes a finished (or partially finished) scrape.
type ScrapeAgentsResponse struct {
	Success       bool `json:"success"`
	TotalAgents   int  `json:"total_agents"`
	ContactsSaved int  `json:"contacts_saved"`
	ListingsSaved int  `json:"listings_saved"`
}

// ProcessCampaignRequest asks the generator to turn pending contacts into outbox emails.
type ProcessCampaignRequest struct {
	CampaignID string    `json:"campaign_id" validate:"required,uuid4"`
	UserID     uuid.UUID `json:"-"`
}

// ProcessCampaignResponse reports how many contacts were consumed and emails queued.
type ProcessCampaignResponse struct {
	Success       bool `json:"success"`
	Processed     int  `json:"processed"`
	EmailsCreated int  `json:"emails_created"`
}

// ProcessOutboxRequest drains a user's pending outbox rows.
type ProcessOutboxRequest struct {
	UserID uuid.UUID `json:"-"`
	Limit  int       `json:"limit,omitempty" validate:"omitempty,gt=0,lte=200"`
}

// ProcessOutboxResponse reports dispatch results for one drain pass.
type ProcessOutboxResponse struct {
	Success    bool `json:"success"`
	Processed  int  `json:"processed"`
	Successful int  `json:"successful"`
	Failed     int  `json:"failed"`
}

// ProcessJobQueueRequest runs one batch of queued jobs, optionally scoped to a user.
type ProcessJobQueueRequest struct {
	UserID *uuid.UUID `json:"-"`
	Limit  int        `json:"limit,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// ProcessJobQueueResponse reports job execution results for one batch.
type ProcessJobQueueResponse struct {
	Success    bool `json:"success"`
	Processed  int  `json:"processed"`
	Successful int  `json:"successful"`
	Failed     int  `json:"failed"`
}

// SendEmailRequest sends a single email immediately, bypassing the outbox.
type SendEmailRequest struct {
	UserID      uuid.UUID                `json:"-"`
	From        string                   `json:"from" validate:"required,email"`
	To          string                   `json:"to" validate:"required,email"`
	Subject     string                   `json:"subject" validate:"required,max=500"`
	HTML        string                   `json:"html" validate:"required"`
	ReplyToID   *string                  `json:"reply_to_id,omitempty"`
	Provider    *string                  `json:"provider,omitempty" validate:"omitempty,oneof=ses smtp mock"`
	Attachments []models.EmailAttachment `json:"attachments,omitempty" validate:"omitempty,dive"`
}

// SendEmailResponse carries the provider message id of a direct send.
type SendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
}

// ReplaceTemplateVariablesRequest renders a stored template with caller-supplied variables.
type ReplaceTemplateVariablesRequest struct {
	TemplateID string            `json:"template_id" validate:"required,uuid4"`
	UserID     uuid.UUID         `json:"-"`
	Variables  map[string]string `json:"variables" validate:"required"`
}

// ReplaceTemplateVariablesResponse returns the rendered template content.
type ReplaceTemplateVariablesResponse struct {
	Content string `json:"content"`
	Format  string `json:"format"`
	Name    string `json:"name"`
}

// FetchAgentDetailsRequest fetches a single agent profile from the upstream API.
// ContactID, when set, refreshes the stored contact with the fetched details.
type FetchAgentDetailsRequest struct {
	ScreenName string    `json:"screen_name" validate:"required,max=255"`
	UserID     uuid.UUID `json:"-"`
	ContactID  *string   `json:"contact_id,omitempty" validate:"omitempty,uuid4"`
}

// FetchAgentDetailsResponse returns the normalized agent profile.
type FetchAgentDetailsResponse struct {
	Success      bool    `json:"success"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	ListingCount int     `json:"listing_count"`
}

// ExportContactsRequest exports a campaign's contacts as a spreadsheet.
type ExportContactsRequest struct {
	CampaignID string    `json:"-" validate:"required,uuid4"`
	UserID     uuid.UUID `json:"-"`
}
