package models

import (
	"time"

	"github.com/google/uuid"
)

// RapidAPISettings holds a user's credentials for the agent search provider.
// One row per user; the scraper refuses to run without it.
type RapidAPISettings struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_rapid_api_settings_uuid" json:"uuid"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_rapid_api_settings_user_id" json:"user_id"`

	APIKey   string `gorm:"size:255;not null" json:"-"`
	APIHost  string `gorm:"size:255;not null" json:"api_host"`
	MaxPages int    `gorm:"not null;default:0" json:"max_pages"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (RapidAPISettings) TableName() string {
	return "rapid_api_settings"
}

// BeforeCreate is called before creating a new record
func (r *RapidAPISettings) BeforeCreate() error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// RapidAPISettingsFilter represents filter criteria for settings rows
type RapidAPISettingsFilter struct {
	ID     *uint      `json:"id,omitempty"`
	UUID   *uuid.UUID `json:"uuid,omitempty"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}
