package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the delivery status of a queued email
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSending OutboxStatus = "sending"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// String returns the string representation of the status
func (s OutboxStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s OutboxStatus) Valid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusSending, OutboxStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status can transition to the target status
func (s OutboxStatus) CanTransitionTo(target OutboxStatus) bool {
	switch s {
	case OutboxStatusPending:
		return target == OutboxStatusSending
	case OutboxStatusSending:
		// A sending row either gets deleted on success, marked failed, or
		// requeued by the stale reconciler.
		return target == OutboxStatusFailed || target == OutboxStatusPending
	case OutboxStatusFailed:
		return false
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for OutboxStatus
func (s *OutboxStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = OutboxStatus(v)
	case []byte:
		*s = OutboxStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OutboxStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for OutboxStatus
func (s OutboxStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid OutboxStatus: %s", s)
	}
	return string(s), nil
}

// EmailAttachment is a single attachment carried inside the outbox row's
// attachments jsonb column.
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"` // base64
}

// OutboxEmail is a fully rendered email waiting to be handed to a provider.
// Successful sends delete the row and record a SentEmail; failures keep the
// row with status failed and the provider error.
type OutboxEmail struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_outbox_emails_uuid" json:"uuid"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_outbox_emails_user_id" json:"user_id"`
	CampaignID uint      `gorm:"not null;index:idx_outbox_emails_campaign_id" json:"campaign_id"`
	ContactID  uint      `gorm:"not null" json:"contact_id"`

	FromEmail string `gorm:"size:255;not null" json:"from_email"`
	ToEmail   string `gorm:"size:255;not null" json:"to_email"`
	Subject   string `gorm:"size:998;not null" json:"subject"`
	Body      string `gorm:"type:text;not null" json:"body"`
	Provider  string `gorm:"size:50;not null;default:'smtp'" json:"provider"`
	ReplyToID string `gorm:"size:998" json:"reply_to_id"`

	Attachments  json.RawMessage `gorm:"type:jsonb" json:"attachments,omitempty"`
	Status       OutboxStatus    `gorm:"type:outbox_status;not null;default:'pending';index:idx_outbox_emails_status" json:"status"`
	ErrorMessage string          `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_outbox_emails_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (OutboxEmail) TableName() string {
	return "email_outbox"
}

// BeforeCreate is called before creating a new record
func (o *OutboxEmail) BeforeCreate() error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OutboxStatusPending
	}
	if o.Provider == "" {
		o.Provider = "smtp"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return nil
}

// DecodeAttachments unmarshals the attachments column.
func (o *OutboxEmail) DecodeAttachments() ([]EmailAttachment, error) {
	if len(o.Attachments) == 0 {
		return nil, nil
	}
	var out []EmailAttachment
	if err := json.Unmarshal(o.Attachments, &out); err != nil {
		return nil, fmt.Errorf("failed to decode attachments: %w", err)
	}
	return out, nil
}

// OutboxEmailFilter represents filter criteria for outbox emails
type OutboxEmailFilter struct {
	ID            *uint         `json:"id,omitempty"`
	UUID          *uuid.UUID    `json:"uuid,omitempty"`
	UserID        *uuid.UUID    `json:"user_id,omitempty"`
	CampaignID    *uint         `json:"campaign_id,omitempty"`
	ContactID     *uint         `json:"contact_id,omitempty"`
	Status        *OutboxStatus `json:"status,omitempty"`
	Provider      *string       `json:"provider,omitempty"`
	CreatedBefore *time.Time    `json:"created_before,omitempty"`
}
