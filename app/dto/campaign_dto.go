package dto

import (
	"time"

	"github.com/google/uuid"
)

// CampaignTemplateRef attaches a template to a campaign in a given role
type CampaignTemplateRef struct {
	UUID string `json:"uuid" validate:"required,uuid4"`
	Type string `json:"type" validate:"required,oneof=body attachment"`
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	UserID        uuid.UUID             `json:"-"`
	Name          string                `json:"name" validate:"required,max=255"`
	City          string                `json:"city" validate:"required,max=255"`
	SenderEmails  []string              `json:"sender_emails,omitempty" validate:"omitempty,dive,email"`
	SubjectLines  []string              `json:"subject_lines,omitempty" validate:"omitempty,dive,max=500"`
	Templates     []CampaignTemplateRef `json:"templates,omitempty" validate:"omitempty,dive"`
	SenderName    string                `json:"sender_name,omitempty" validate:"omitempty,max=255"`
	SenderPhone   string                `json:"sender_phone,omitempty" validate:"omitempty,max=50"`
	SenderCity    string                `json:"sender_city,omitempty" validate:"omitempty,max=255"`
	SenderState   string                `json:"sender_state,omitempty" validate:"omitempty,max=50"`
	DaysTillClose string                `json:"days_till_close,omitempty" validate:"omitempty,max=50"`
	EMD           string                `json:"emd,omitempty" validate:"omitempty,max=50"`
	OptionPeriod  string                `json:"option_period,omitempty" validate:"omitempty,max=50"`
	TitleCompany  string                `json:"title_company,omitempty" validate:"omitempty,max=255"`
	EmailProvider *string               `json:"email_provider,omitempty" validate:"omitempty,oneof=ses smtp mock"`
}

// CreateCampaignResponse represents the response to create a new campaign
type CreateCampaignResponse struct {
	Message   string `json:"message"`
	UUID      string `json:"uuid"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// UpdateCampaignRequest represents the request to update an existing campaign
type UpdateCampaignRequest struct {
	UUID          string                `json:"-"`
	UserID        uuid.UUID             `json:"-"`
	Name          *string               `json:"name,omitempty" validate:"omitempty,max=255"`
	City          *string               `json:"city,omitempty" validate:"omitempty,max=255"`
	SenderEmails  []string              `json:"sender_emails,omitempty" validate:"omitempty,dive,email"`
	SubjectLines  []string              `json:"subject_lines,omitempty" validate:"omitempty,dive,max=500"`
	Templates     []CampaignTemplateRef `json:"templates,omitempty" validate:"omitempty,dive"`
	SenderName    *string               `json:"sender_name,omitempty" validate:"omitempty,max=255"`
	SenderPhone   *string               `json:"sender_phone,omitempty" validate:"omitempty,max=50"`
	SenderCity    *string               `json:"sender_city,omitempty" validate:"omitempty,max=255"`
	SenderState   *string               `json:"sender_state,omitempty" validate:"omitempty,max=50"`
	DaysTillClose *string               `json:"days_till_close,omitempty" validate:"omitempty,max=50"`
	EMD           *string               `json:"emd,omitempty" validate:"omitempty,max=50"`
	OptionPeriod  *string               `json:"option_period,omitempty" validate:"omitempty,max=50"`
	TitleCompany  *string               `json:"title_company,omitempty" validate:"omitempty,max=255"`
	EmailProvider *string               `json:"email_provider,omitempty" validate:"omitempty,oneof=ses smtp mock"`
}

// UpdateCampaignResponse represents the response to update an existing campaign
type UpdateCampaignResponse struct {
	Message string `json:"message"`
}

// GetCampaignRequest represents the request to get an existing campaign
type GetCampaignRequest struct {
	UUID   string    `json:"-"`
	UserID uuid.UUID `json:"-"`
}

// CampaignTemplateDTO is one template association in campaign responses
type CampaignTemplateDTO struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// GetCampaignResponse represents the campaign as returned to clients
type GetCampaignResponse struct {
	UUID          string                `json:"uuid"`
	Name          string                `json:"name"`
	City          string                `json:"city"`
	IsActive      bool                  `json:"is_active"`
	SenderEmails  []string              `json:"sender_emails"`
	SubjectLines  []string              `json:"subject_lines"`
	Templates     []CampaignTemplateDTO `json:"templates,omitempty"`
	SenderName    string                `json:"sender_name,omitempty"`
	SenderPhone   string                `json:"sender_phone,omitempty"`
	SenderCity    string                `json:"sender_city,omitempty"`
	SenderState   string                `json:"sender_state,omitempty"`
	DaysTillClose string                `json:"days_till_close,omitempty"`
	EMD           string                `json:"emd,omitempty"`
	OptionPeriod  string                `json:"option_period,omitempty"`
	TitleCompany  string                `json:"title_company,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     *time.Time            `json:"updated_at,omitempty"`
}

// ListCampaignsRequest represents the request to list a user's campaigns
type ListCampaignsRequest struct {
	UserID uuid.UUID `json:"-"`
	Name   *string   `json:"name,omitempty" validate:"omitempty,max=255"`
	Active *bool     `json:"active,omitempty"`
	Limit  int       `json:"limit,omitempty" validate:"omitempty,gt=0,lte=200"`
	Offset int       `json:"offset,omitempty" validate:"omitempty,gte=0"`
}

// ListCampaignsResponse represents the response to list a user's campaigns
type ListCampaignsResponse struct {
	Items []GetCampaignResponse `json:"items"`
	Total int                   `json:"total"`
}

// SetCampaignActiveRequest toggles a campaign's active flag
type SetCampaignActiveRequest struct {
	UUID   string    `json:"-"`
	UserID uuid.UUID `json:"-"`
	Active bool      `json:"-"`
}

// ListCampaignContactsRequest represents the request to list scraped contacts
type ListCampaignContactsRequest struct {
	UUID   string    `json:"-"`
	UserID uuid.UUID `json:"-"`
	Limit  int       `json:"limit,omitempty" validate:"omitempty,gt=0,lte=500"`
	Offset int       `json:"offset,omitempty" validate:"omitempty,gte=0"`
}

// CampaignContactItem is one contact row in a contact listing
type CampaignContactItem struct {
	UUID         string  `json:"uuid"`
	ScreenName   string  `json:"screen_name"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	Status       string  `json:"status"`
	IsTeamLead   bool    `json:"is_team_lead"`
	ListingCount int     `json:"listing_count"`
}

// ListCampaignContactsResponse represents the response to list scraped contacts
type ListCampaignContactsResponse struct {
	Items []CampaignContactItem `json:"items"`
	Total int                   `json:"total"`
}
