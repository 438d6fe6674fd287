package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Template is a reusable piece of text with {{variable}} markers.
// Format describes what the rendered output is ("html", "text", "pdf", ...).
type Template struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UUID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_templates_uuid" json:"uuid"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_templates_user_id" json:"user_id"`
	Name    string    `gorm:"size:255;not null" json:"name"`
	Content string    `gorm:"type:text;not null" json:"content"`
	Format  string    `gorm:"size:50;not null;default:'html'" json:"format"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Template) TableName() string {
	return "templates"
}

// BeforeCreate is called before creating a new record
func (t *Template) BeforeCreate() error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return nil
}

// TemplateType represents the role a template plays in a campaign
type TemplateType string

const (
	TemplateTypeBody       TemplateType = "body"
	TemplateTypeAttachment TemplateType = "attachment"
)

// String returns the string representation of the type
func (t TemplateType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t TemplateType) Valid() bool {
	switch t {
	case TemplateTypeBody, TemplateTypeAttachment:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for TemplateType
func (t *TemplateType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = TemplateType(v)
	case []byte:
		*t = TemplateType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TemplateType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for TemplateType
func (t TemplateType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid TemplateType: %s", t)
	}
	return string(t), nil
}

// CampaignTemplate associates a template with a campaign in a given role.
// A campaign has exactly one body association and zero or more attachments.
type CampaignTemplate struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	CampaignID   uint         `gorm:"not null;index:idx_campaign_templates_campaign_id" json:"campaign_id"`
	TemplateID   uint         `gorm:"not null;index:idx_campaign_templates_template_id" json:"template_id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null" json:"user_id"`
	TemplateType TemplateType `gorm:"type:template_type;not null;default:'body'" json:"template_type"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Template *Template `gorm:"foreignKey:TemplateID;references:ID" json:"template,omitempty"`
}

// TableName returns the table name for the model
func (CampaignTemplate) TableName() string {
	return "campaign_templates"
}

// TemplateFilter represents filter criteria for templates
type TemplateFilter struct {
	ID     *uint      `json:"id,omitempty"`
	UUID   *uuid.UUID `json:"uuid,omitempty"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Name   *string    `json:"name,omitempty"`
	Format *string    `json:"format,omitempty"`
}
