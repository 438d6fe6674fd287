package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Campaign represents a configured outreach effort targeting one location.
// Template and sender-email associations live in campaign_templates and
// campaign_emails; the merge fields below are substituted into templates
// when emails are generated.
type Campaign struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_campaigns_user_id" json:"user_id"`

	Name     string `gorm:"size:255;not null" json:"name"`
	City     string `gorm:"size:255;not null" json:"city"`
	IsActive bool   `gorm:"not null;default:false;index:idx_campaigns_is_active" json:"is_active"`

	SubjectLines pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"subject_lines"`

	// Merge fields
	SenderName    string `gorm:"size:255" json:"sender_name"`
	SenderPhone   string `gorm:"size:50" json:"sender_phone"`
	SenderCity    string `gorm:"size:255" json:"sender_city"`
	SenderState   string `gorm:"size:50" json:"sender_state"`
	EMD           string `gorm:"size:50" json:"emd"`
	OptionPeriod  string `gorm:"size:50" json:"option_period"`
	TitleCompany  string `gorm:"size:255" json:"title_company"`
	DaysTillClose string `gorm:"size:50" json:"days_till_close"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Templates []CampaignTemplate `gorm:"foreignKey:CampaignID;references:ID" json:"templates,omitempty"`
	Emails    []CampaignEmail    `gorm:"foreignKey:CampaignID;references:ID" json:"emails,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate() error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// IsEditable reports whether the campaign may still be mutated by its owner.
// Once activated a campaign is driven solely by the pipeline.
func (c *Campaign) IsEditable() bool {
	return !c.IsActive
}

// MergeFields returns the campaign-level template variables keyed by marker name.
func (c *Campaign) MergeFields() map[string]string {
	return map[string]string{
		"sender_name":     c.SenderName,
		"sender_phone":    c.SenderPhone,
		"sender_city":     c.SenderCity,
		"sender_state":    c.SenderState,
		"city":            c.City,
		"days_till_close": c.DaysTillClose,
		"emd":             c.EMD,
		"option_period":   c.OptionPeriod,
		"title_company":   c.TitleCompany,
	}
}

// Validate checks the activation preconditions: at least one sender email,
// a target location, at least one subject line, and exactly one body template.
// Relations must be loaded before calling.
func (c *Campaign) Validate() error {
	if c.City == "" {
		return ErrCampaignCityRequired
	}
	if len(c.SubjectLines) == 0 {
		return ErrCampaignSubjectLinesRequired
	}
	if len(c.Emails) == 0 {
		return ErrCampaignSenderEmailRequired
	}
	bodies := 0
	for _, ct := range c.Templates {
		if ct.TemplateType == TemplateTypeBody {
			bodies++
		}
	}
	if bodies != 1 {
		return ErrCampaignBodyTemplateRequired
	}
	return nil
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Name          *string    `json:"name,omitempty"`
	City          *string    `json:"city,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
