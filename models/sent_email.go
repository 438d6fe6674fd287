package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SentEmail is the permanent record of a successfully delivered email. Rows
// are inserted by the dispatcher in the same transaction that deletes the
// outbox row.
type SentEmail struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_sent_emails_uuid" json:"uuid"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_sent_emails_user_id" json:"user_id"`
	CampaignID uint      `gorm:"not null;index:idx_sent_emails_campaign_id" json:"campaign_id"`
	ContactID  uint      `gorm:"not null" json:"contact_id"`

	FromEmail string `gorm:"size:255;not null" json:"from_email"`
	ToEmail   string `gorm:"size:255;not null" json:"to_email"`
	Subject   string `gorm:"size:998;not null" json:"subject"`
	Body      string `gorm:"type:text;not null" json:"body"`
	Provider  string `gorm:"size:50;not null" json:"provider"`
	ReplyToID string `gorm:"size:998" json:"reply_to_id"`
	MessageID string `gorm:"size:998;index:idx_sent_emails_message_id" json:"message_id"`

	Attachments json.RawMessage `gorm:"type:jsonb" json:"attachments,omitempty"`

	SentAt    time.Time `gorm:"not null;index:idx_sent_emails_sent_at" json:"sent_at"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (SentEmail) TableName() string {
	return "email_sent"
}

// BeforeCreate is called before creating a new record
func (s *SentEmail) BeforeCreate() error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.SentAt.IsZero() {
		s.SentAt = time.Now().UTC()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

// SentEmailFilter represents filter criteria for sent emails
type SentEmailFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UUID       *uuid.UUID `json:"uuid,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	CampaignID *uint      `json:"campaign_id,omitempty"`
	ContactID  *uint      `json:"contact_id,omitempty"`
	SentAfter  *time.Time `json:"sent_after,omitempty"`
	SentBefore *time.Time `json:"sent_before,omitempty"`
}
