package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignEmail is a sender address configured for a campaign, tagged with
// the transport provider used to deliver mail from it.
type CampaignEmail struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CampaignID   uint      `gorm:"not null;index:idx_campaign_emails_campaign_id" json:"campaign_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	EmailAddress string    `gorm:"size:255;not null" json:"email_address"`
	Provider     string    `gorm:"size:50;not null;default:'smtp'" json:"provider"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (CampaignEmail) TableName() string {
	return "campaign_emails"
}
