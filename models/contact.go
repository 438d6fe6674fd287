package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContactStatus represents the processing status of a scraped contact
type ContactStatus string

const (
	ContactStatusPending   ContactStatus = "pending"
	ContactStatusProcessed ContactStatus = "processed"
	ContactStatusFailed    ContactStatus = "failed"
)

// String returns the string representation of the status
func (s ContactStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusPending, ContactStatusProcessed, ContactStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ContactStatus
func (s *ContactStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ContactStatus(v)
	case []byte:
		*s = ContactStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ContactStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ContactStatus
func (s ContactStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ContactStatus: %s", s)
	}
	return string(s), nil
}

// Contact is a scraped real-estate agent, a prospective email recipient.
// AgentData preserves the provider payload verbatim next to the normalized
// columns. A contact is unique per (user, campaign, screen_name).
type Contact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_contacts_uuid" json:"uuid"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_contacts_identity,priority:1" json:"user_id"`
	CampaignID uint      `gorm:"not null;uniqueIndex:uk_contacts_identity,priority:2;index:idx_contacts_campaign_id" json:"campaign_id"`
	ScreenName string    `gorm:"size:255;not null;uniqueIndex:uk_contacts_identity,priority:3" json:"screen_name"`

	Name           string `gorm:"size:255" json:"name"`
	Email          string `gorm:"size:255" json:"email"`
	Phone          string `gorm:"size:50" json:"phone"`
	PhoneCell      string `gorm:"size:50" json:"phone_cell"`
	PhoneBrokerage string `gorm:"size:50" json:"phone_brokerage"`
	PhoneBusiness  string `gorm:"size:50" json:"phone_business"`
	BusinessName   string `gorm:"size:255" json:"business_name"`
	ProfileURL     string `gorm:"size:1024" json:"profile_url"`
	IsTeamLead     bool   `gorm:"not null;default:false" json:"is_team_lead"`

	Status    ContactStatus   `gorm:"type:contact_status;not null;default:'pending';index:idx_contacts_status" json:"status"`
	AgentData json.RawMessage `gorm:"type:jsonb" json:"agent_data,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_contacts_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Listings []Listing `gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:CASCADE" json:"listings,omitempty"`
}

// TableName returns the table name for the model
func (Contact) TableName() string {
	return "contacts"
}

// BeforeCreate is called before creating a new record
func (c *Contact) BeforeCreate() error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ContactStatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// MergeFields returns the contact-level template variables keyed by marker name.
func (c *Contact) MergeFields() map[string]string {
	return map[string]string{
		"name":          c.Name,
		"email":         c.Email,
		"phone":         c.Phone,
		"business_name": c.BusinessName,
	}
}

// ContactFilter represents filter criteria for contacts
type ContactFilter struct {
	ID            *uint          `json:"id,omitempty"`
	UUID          *uuid.UUID     `json:"uuid,omitempty"`
	UserID        *uuid.UUID     `json:"user_id,omitempty"`
	CampaignID    *uint          `json:"campaign_id,omitempty"`
	ScreenName    *string        `json:"screen_name,omitempty"`
	Status        *ContactStatus `json:"status,omitempty"`
	IsTeamLead    *bool          `json:"is_team_lead,omitempty"`
	CreatedAfter  *time.Time     `json:"created_after,omitempty"`
	CreatedBefore *time.Time     `json:"created_before,omitempty"`
}
